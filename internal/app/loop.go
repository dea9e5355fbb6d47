package app

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
)

var ErrLoopStopped = errors.New("event loop stopped")

// Loop runs submitted events one at a time on a single goroutine.
// Registry, session table and transport room tags are only touched from here.
type Loop struct {
	queue chan func()
	done  chan struct{}
}

func NewLoop(size int) *Loop {
	if size < 1 {
		size = 1
	}
	return &Loop{
		queue: make(chan func(), size),
		done:  make(chan struct{}),
	}
}

// Run blocks until ctx is canceled. Events still queued at that point are dropped.
func (l *Loop) Run(ctx context.Context) {
	defer close(l.done)
	log.Info().Str("module", "app.loop").Int("queue", cap(l.queue)).Msg("event loop started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "app.loop").Int("pending", len(l.queue)).Msg("event loop stopped")
			return
		case fn := <-l.queue:
			l.exec(fn)
		}
	}
}

func (l *Loop) exec(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("module", "app.loop").Interface("panic", r).Msg("event handler panicked")
		}
	}()
	fn()
}

// Submit queues fn without waiting for it to run.
func (l *Loop) Submit(ctx context.Context, fn func()) error {
	select {
	case <-l.done:
		return ErrLoopStopped
	default:
	}
	select {
	case l.queue <- fn:
		return nil
	case <-l.done:
		return ErrLoopStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Call queues fn and waits until it has run.
func (l *Loop) Call(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	if err := l.Submit(ctx, func() {
		defer close(finished)
		fn()
	}); err != nil {
		return err
	}
	select {
	case <-finished:
		return nil
	case <-l.done:
		select {
		case <-finished:
			return nil
		default:
			return ErrLoopStopped
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done is closed once Run has returned.
func (l *Loop) Done() <-chan struct{} { return l.done }
