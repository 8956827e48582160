package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/idilsaglam/circles/internal/notify"
	"github.com/idilsaglam/circles/internal/ui"
)

// toastTTL is how long a success or error toast stays on screen.
const toastTTL = 3 * time.Second

type toastMsg struct{ t notify.Toast }

type toastExpiredMsg struct{ id uint64 }

// waitForToast blocks on the channel for the next toast. It is re-issued
// after every toast so the display keeps listening.
func waitForToast(c <-chan notify.Toast) tea.Cmd {
	if c == nil {
		return nil
	}
	return func() tea.Msg {
		t, ok := <-c
		if !ok {
			return nil
		}
		return toastMsg{t: t}
	}
}

// toasts tracks visible notifications: any number of loading messages and
// the most recent result.
type toasts struct {
	loading []notify.Toast
	last    *notify.Toast
	spin    spinner.Model
}

func newToasts() toasts {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = ui.Current().Pending
	return toasts{spin: s}
}

func (ts toasts) push(t notify.Toast) (toasts, tea.Cmd) {
	switch t.Kind {
	case notify.KindLoading:
		ts.loading = append(ts.loading, t)
		return ts, ts.spin.Tick
	case notify.KindDismiss:
		out := ts.loading[:0:0]
		for _, l := range ts.loading {
			if l.ID != t.ID {
				out = append(out, l)
			}
		}
		ts.loading = out
		return ts, nil
	default:
		ts.last = &t
		id := t.ID
		return ts, tea.Tick(toastTTL, func(time.Time) tea.Msg { return toastExpiredMsg{id: id} })
	}
}

func (ts toasts) expire(id uint64) toasts {
	if ts.last != nil && ts.last.ID == id {
		ts.last = nil
	}
	return ts
}

func (ts toasts) update(msg spinner.TickMsg) (toasts, tea.Cmd) {
	if len(ts.loading) == 0 {
		return ts, nil
	}
	var cmd tea.Cmd
	ts.spin, cmd = ts.spin.Update(msg)
	return ts, cmd
}

func (ts toasts) view() string {
	t := ui.Current()
	if n := len(ts.loading); n > 0 {
		return ts.spin.View() + " " + t.Pending.Render(ts.loading[n-1].Text+"...")
	}
	if ts.last == nil {
		return ""
	}
	if ts.last.Kind == notify.KindError {
		return t.Error.Render(t.SymFail + " " + ts.last.Text)
	}
	return t.Success.Render(t.SymOK + " " + ts.last.Text)
}
