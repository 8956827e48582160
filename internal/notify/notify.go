// Package notify carries transient user notifications (toasts) from the
// page controller to whatever surface displays them.
package notify

import (
	"sync"
	"sync/atomic"
	"time"
)

// Notifier shows transient messages. Loading returns a func that hides the
// loading message; it is safe to call more than once.
type Notifier interface {
	Loading(text string) (hide func())
	Success(text string)
	Error(text string)
}

type Kind int

const (
	KindLoading Kind = iota
	KindSuccess
	KindError
	KindDismiss
)

func (k Kind) String() string {
	switch k {
	case KindLoading:
		return "loading"
	case KindSuccess:
		return "success"
	case KindError:
		return "error"
	case KindDismiss:
		return "dismiss"
	}
	return "unknown"
}

// Toast is one notification. A KindDismiss toast hides the loading toast
// with the same ID.
type Toast struct {
	ID   uint64
	Kind Kind
	Text string
}

var nextID atomic.Uint64

func newID() uint64 { return nextID.Add(1) }

// dismissWait bounds how long hiding a loading toast waits for buffer room.
var dismissWait = 2 * time.Second

// Channel publishes toasts on a buffered channel. Toasts are dropped when
// the buffer is full, except a dismiss for a delivered loading toast, which
// waits up to dismissWait so a spinner is never left running.
type Channel struct {
	c chan Toast
}

func NewChannel(buffer int) *Channel {
	if buffer <= 0 {
		buffer = 16
	}
	return &Channel{c: make(chan Toast, buffer)}
}

// C is the receive side, read by the display loop.
func (n *Channel) C() <-chan Toast { return n.c }

func (n *Channel) Loading(text string) func() {
	id := newID()
	if !n.send(Toast{ID: id, Kind: KindLoading, Text: text}) {
		return func() {}
	}
	var once sync.Once
	return func() {
		once.Do(func() { n.sendWait(Toast{ID: id, Kind: KindDismiss}, dismissWait) })
	}
}

func (n *Channel) Success(text string) { n.send(Toast{ID: newID(), Kind: KindSuccess, Text: text}) }
func (n *Channel) Error(text string)   { n.send(Toast{ID: newID(), Kind: KindError, Text: text}) }

func (n *Channel) send(t Toast) bool {
	select {
	case n.c <- t:
		return true
	default:
		return false
	}
}

func (n *Channel) sendWait(t Toast, d time.Duration) bool {
	if n.send(t) {
		return true
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case n.c <- t:
		return true
	case <-timer.C:
		return false
	}
}

// Recorder keeps every toast in order. Used by tests and headless runs.
type Recorder struct {
	mu     sync.Mutex
	toasts []Toast
}

func (r *Recorder) Loading(text string) func() {
	id := newID()
	r.add(Toast{ID: id, Kind: KindLoading, Text: text})
	var once sync.Once
	return func() {
		once.Do(func() { r.add(Toast{ID: id, Kind: KindDismiss}) })
	}
}

func (r *Recorder) Success(text string) { r.add(Toast{ID: newID(), Kind: KindSuccess, Text: text}) }
func (r *Recorder) Error(text string)   { r.add(Toast{ID: newID(), Kind: KindError, Text: text}) }

// Toasts returns a copy of everything recorded so far.
func (r *Recorder) Toasts() []Toast {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Toast(nil), r.toasts...)
}

// Kinds returns the recorded kinds in order.
func (r *Recorder) Kinds() []Kind {
	var out []Kind
	for _, t := range r.Toasts() {
		out = append(out, t.Kind)
	}
	return out
}

func (r *Recorder) add(t Toast) {
	r.mu.Lock()
	r.toasts = append(r.toasts, t)
	r.mu.Unlock()
}
