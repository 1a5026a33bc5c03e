package loader

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
)

// Task tracks one background unit of work started by Go
type Task struct {
	done      chan struct{}
	once      sync.Once
	delivered atomic.Bool
}

// Done is closed once the result has been delivered or dropped
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Delivered reports whether the result reached its consumer.
// It is only meaningful after Done is closed.
func (t *Task) Delivered() bool {
	return t.delivered.Load()
}

func (t *Task) finish(delivered bool) {
	t.once.Do(func() {
		t.delivered.Store(delivered)
		close(t.done)
	})
}

// Go runs work on a new goroutine, then posts a single message to looper that passes
// the result to deliver. deliver runs on the looper goroutine, at most once, and only
// if scope is still alive when the message is processed.
func Go[T any](looper *Looper, scope *Scope, work func(context.Context) T, deliver func(T)) *Task {
	task := &Task{done: make(chan struct{})}

	go func() {
		result := work(scope.Context())

		posted := looper.post(message{
			run: func() {
				if !scope.Alive() {
					slog.Debug("task_delivery_dropped", "reason", "scope_closed")
					task.finish(false)
					return
				}
				deliver(result)
				task.finish(true)
			},
			drop: func() {
				slog.Debug("task_delivery_dropped", "reason", "looper_quit")
				task.finish(false)
			},
		})
		if !posted {
			slog.Debug("task_delivery_dropped", "reason", "looper_quit")
			task.finish(false)
		}
	}()

	return task
}
