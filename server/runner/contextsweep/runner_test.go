package contextsweep

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type mockSweeper struct {
	calls atomic.Int32
}

func (m *mockSweeper) Sweep() int {
	m.calls.Add(1)
	return 1
}

func TestNewRunner_DefaultInterval(t *testing.T) {
	r := NewRunner(&mockSweeper{}, 0)
	assert.Equal(t, DefaultInterval, r.interval)
}

func TestRunner_RunOnce(t *testing.T) {
	s := &mockSweeper{}
	NewRunner(s, time.Minute).RunOnce(context.Background())
	assert.Equal(t, int32(1), s.calls.Load())
}

func TestRunner_RunStopsOnCancel(t *testing.T) {
	s := &mockSweeper{}
	r := NewRunner(s, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return s.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("runner did not stop after cancel")
	}
}
