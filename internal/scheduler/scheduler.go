// Package scheduler runs idempotent actions after a fixed delay. Delivery
// is at-least-once in spirit only: timers die with the process, so callers
// pair every scheduled action with a periodic sweep that catches missed
// runs (see internal/app/maintenance).
package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/famboard/famboard/pkg/logger"
)

// Task is a delayed action. It must be idempotent: it may run after the
// condition it handles has already been dealt with.
type Task func(ctx context.Context)

// Scheduler queues tasks for delayed execution.
type Scheduler interface {
	RunAfter(delay time.Duration, name string, task Task)
}

// TimerScheduler executes tasks on in-process timers.
type TimerScheduler struct {
	log *zap.Logger
}

// NewTimerScheduler builds the production scheduler.
func NewTimerScheduler() *TimerScheduler {
	return &TimerScheduler{log: logger.WithModule("scheduler")}
}

// RunAfter fires the task once the delay elapses. The task receives a
// background context: it outlives the request that scheduled it.
func (s *TimerScheduler) RunAfter(delay time.Duration, name string, task Task) {
	if task == nil {
		return
	}

	time.AfterFunc(delay, func() {
		defer func() {
			if r := recover(); r != nil {
				s.log.Error("scheduled task panicked",
					zap.String("task", name),
					zap.Any("error", r),
				)
			}
		}()
		task(context.Background())
	})

	s.log.Debug("task scheduled", zap.String("task", name), zap.Duration("delay", delay))
}
