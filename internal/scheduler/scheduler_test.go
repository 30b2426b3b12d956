package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRunAfterFiresTask(t *testing.T) {
	s := NewTimerScheduler()

	done := make(chan struct{})
	s.RunAfter(10*time.Millisecond, "test", func(ctx context.Context) {
		close(done)
	})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduled task never ran")
	}
}

func TestRunAfterIgnoresNilTask(t *testing.T) {
	s := NewTimerScheduler()
	require.NotPanics(t, func() {
		s.RunAfter(time.Millisecond, "noop", nil)
	})
}
