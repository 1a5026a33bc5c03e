// Package loader runs recipe reads off the caller's goroutine and hands results back
// to it. The caller's goroutine drains a Looper, and background work reaches it only
// through Looper.Post.
package loader

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
)

type message struct {
	run  func()
	drop func()
}

// Looper is a FIFO message queue processed by whichever goroutine calls Run.
// That goroutine is the caller context: messages posted to it run there, one at a time.
// Posting never blocks.
type Looper struct {
	mu      sync.Mutex
	pending []message
	stopped bool

	wake        chan struct{}
	quit        chan struct{}
	quitOnce    sync.Once
	dispatching atomic.Bool
}

// NewLooper creates an idle looper
func NewLooper() *Looper {
	return &Looper{
		wake: make(chan struct{}, 1),
		quit: make(chan struct{}),
	}
}

// Post enqueues fn to run on the looper.
// It returns false, without enqueueing, once the looper has quit.
func (l *Looper) Post(fn func()) bool {
	return l.post(message{run: fn})
}

func (l *Looper) post(m message) bool {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return false
	}
	l.pending = append(l.pending, m)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	return true
}

func (l *Looper) next() (message, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.pending) == 0 {
		return message{}, false
	}
	m := l.pending[0]
	l.pending[0] = message{}
	l.pending = l.pending[1:]
	return m, true
}

// Run processes messages on the calling goroutine until ctx is done or Quit is called.
// Messages still queued at that point are dropped.
func (l *Looper) Run(ctx context.Context) error {
	slog.Debug("looper_started")
	defer slog.Debug("looper_stopped")

	for {
		for {
			select {
			case <-ctx.Done():
				l.Quit()
				return ctx.Err()
			case <-l.quit:
				return nil
			default:
			}

			m, ok := l.next()
			if !ok {
				break
			}
			l.dispatch(m.run)
		}

		select {
		case <-ctx.Done():
			l.Quit()
			return ctx.Err()
		case <-l.quit:
			return nil
		case <-l.wake:
		}
	}
}

func (l *Looper) dispatch(fn func()) {
	l.dispatching.Store(true)
	defer l.dispatching.Store(false)
	fn()
}

// Quit stops the looper and drops queued messages. Later Posts return false.
// Safe to call more than once and from inside a message.
func (l *Looper) Quit() {
	l.mu.Lock()
	l.stopped = true
	rest := l.pending
	l.pending = nil
	l.mu.Unlock()

	for _, m := range rest {
		if m.drop != nil {
			m.drop()
		}
	}
	l.quitOnce.Do(func() { close(l.quit) })
}

// Dispatching reports whether the looper is currently running a message.
// Called from inside a message it always returns true.
func (l *Looper) Dispatching() bool {
	return l.dispatching.Load()
}

// Scope tracks the lifetime of a consumer. Once closed, deliveries aimed at it are
// dropped and its context is canceled so in-flight work can stop early.
type Scope struct {
	ctx    context.Context
	cancel context.CancelFunc
	closed atomic.Bool
}

// NewScope creates a scope whose context derives from parent
func NewScope(parent context.Context) *Scope {
	ctx, cancel := context.WithCancel(parent)
	return &Scope{ctx: ctx, cancel: cancel}
}

// Context is canceled when the scope is closed
func (s *Scope) Context() context.Context {
	return s.ctx
}

// Alive reports whether the consumer can still accept deliveries
func (s *Scope) Alive() bool {
	return !s.closed.Load() && s.ctx.Err() == nil
}

// Close discards the consumer
func (s *Scope) Close() {
	s.closed.Store(true)
	s.cancel()
}
