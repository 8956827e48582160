package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannelLoadingDismissOnce(t *testing.T) {
	n := NewChannel(4)
	hide := n.Loading("Adding")
	hide()
	hide()

	loading := <-n.C()
	dismiss := <-n.C()
	assert.Equal(t, KindLoading, loading.Kind)
	assert.Equal(t, KindDismiss, dismiss.Kind)
	assert.Equal(t, loading.ID, dismiss.ID)

	select {
	case extra := <-n.C():
		t.Fatalf("unexpected toast %+v", extra)
	default:
	}
}

func TestChannelDropsWhenFull(t *testing.T) {
	n := NewChannel(1)
	n.Success("one")
	n.Error("two")

	got := <-n.C()
	assert.Equal(t, "one", got.Text)
	assert.Empty(t, n.C())
}

func TestChannelDismissWaitsForRoom(t *testing.T) {
	n := NewChannel(1)
	hide := n.Loading("Adding")
	n.Success("dropped")

	done := make(chan struct{})
	go func() {
		hide()
		close(done)
	}()

	loading := <-n.C()
	require.Equal(t, KindLoading, loading.Kind)
	select {
	case dismiss := <-n.C():
		assert.Equal(t, KindDismiss, dismiss.Kind)
		assert.Equal(t, loading.ID, dismiss.ID)
	case <-time.After(time.Second):
		t.Fatal("dismiss was dropped")
	}
	<-done
}

func TestChannelSkipsDismissForDroppedLoading(t *testing.T) {
	n := NewChannel(1)
	n.Success("fill")
	hide := n.Loading("Adding")

	start := time.Now()
	hide()
	assert.Less(t, time.Since(start), dismissWait)

	got := <-n.C()
	assert.Equal(t, KindSuccess, got.Kind)
	assert.Empty(t, n.C())
}

func TestRecorder(t *testing.T) {
	var r Recorder
	hide := r.Loading("Deleting")
	hide()
	r.Success("done")

	require.Len(t, r.Toasts(), 3)
	assert.Equal(t, []Kind{KindLoading, KindDismiss, KindSuccess}, r.Kinds())
}
