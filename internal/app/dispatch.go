package app

import (
	"context"
	"fmt"
	"time"

	"github.com/bft-labs/vdesk/internal/domain"
	"github.com/bft-labs/vdesk/internal/ports"
	"github.com/bft-labs/vdesk/pkg/lifecycle"
	"github.com/bft-labs/vdesk/pkg/log"
)

// DefaultMaxRetries is how many times a call is retried after the first
// attempt failed with a transient error.
const DefaultMaxRetries = 5

// RetryPolicy controls the reset-and-retry loop around a call.
type RetryPolicy struct {
	// MaxRetries bounds retries after the first attempt. Zero disables retrying.
	MaxRetries int

	// Delay is the pause before the first retry, doubled on each further retry
	// up to MaxDelay. Zero retries immediately.
	Delay    time.Duration
	MaxDelay time.Duration

	// Retryable classifies errors. Nil uses domain.IsTransient.
	Retryable func(error) bool
}

// DefaultRetryPolicy retries transient errors up to DefaultMaxRetries times
// without delay.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxRetries: DefaultMaxRetries}
}

func (p RetryPolicy) retryable(err error) bool {
	if p.Retryable != nil {
		return p.Retryable(err)
	}
	return domain.IsTransient(err)
}

func (p RetryPolicy) backoff() *lifecycle.Backoff {
	maxDelay := p.MaxDelay
	if maxDelay <= 0 {
		maxDelay = p.Delay * 16
	}
	return lifecycle.NewBackoff(p.Delay, maxDelay)
}

type result[T any] struct {
	value T
	err   error
}

// call is the unit of work Run hands to the worker thread.
type call[C ports.Resource, T any] struct {
	fn      func(C) (T, error)
	policy  RetryPolicy
	logger  log.Logger
	results chan result[T]
}

// Execute runs fn with the reset-and-retry loop. The result channel is closed
// on the way out, so a call that never sends (panic, thread exit) reads as
// "no result" on the caller's side.
func (c *call[C, T]) Execute(ctx C) {
	defer close(c.results)

	v, err := c.fn(ctx)
	var backoff *lifecycle.Backoff
	for retry := 1; err != nil && retry <= c.policy.MaxRetries && c.policy.retryable(err); retry++ {
		c.logger.Debug("retrying after transient error",
			log.Int("retry", retry),
			log.String("resource", ctx.ID()),
			log.Err(err),
		)
		ctx.Reset()
		if c.policy.Delay > 0 {
			if backoff == nil {
				backoff = c.policy.backoff()
			}
			backoff.Sleep()
		}
		v, err = c.fn(ctx)
	}
	if err != nil {
		c.logger.Debug("call failed", log.Err(err))
	}

	c.results <- result[T]{value: v, err: err}
}

// Run executes fn on w's worker thread, retrying transient failures per
// policy, and blocks until the final outcome is available.
//
// fn may be invoked up to policy.MaxRetries+1 times. No two Run bodies ever
// execute concurrently. fn must not call Run or Stop on the same worker.
func Run[C ports.Resource, T any](w *Worker[C], policy RetryPolicy, fn func(C) (T, error)) (T, error) {
	return RunContext(context.Background(), w, policy, fn)
}

// RunContext is Run with a bound on the caller's wait. When ctx is done the
// caller gets ctx.Err(); the submitted call still runs to completion on the
// worker thread and its outcome is discarded.
func RunContext[C ports.Resource, T any](ctx context.Context, w *Worker[C], policy RetryPolicy, fn func(C) (T, error)) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	c := &call[C, T]{
		fn:      fn,
		policy:  policy,
		logger:  w.logger,
		results: make(chan result[T], 1),
	}
	exited, err := w.Submit(c)
	if err != nil {
		return zero, err
	}

	select {
	case r, ok := <-c.results:
		return receive(r, ok)
	case <-exited:
		// The thread may have delivered before it went away.
		select {
		case r, ok := <-c.results:
			return receive(r, ok)
		default:
			return zero, fmt.Errorf("%w: worker thread exited", domain.ErrReceiver)
		}
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

func receive[T any](r result[T], ok bool) (T, error) {
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: call aborted on worker thread", domain.ErrReceiver)
	}
	return r.value, r.err
}
