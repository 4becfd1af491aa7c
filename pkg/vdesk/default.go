package vdesk

import (
	"context"
	"errors"
	"sync"

	"github.com/bft-labs/vdesk/internal/domain"
	"github.com/bft-labs/vdesk/pkg/lifecycle"
)

// The process-wide Accessor used by Run and Stop.
var (
	defaultMu       sync.Mutex
	defaultAccessor *Accessor
	defaultOpts     []Option
	exitHookOnce    sync.Once
)

// Default returns the process-wide Accessor, creating it on first use.
// Its worker thread is stopped by lifecycle.RunExitHooks.
func Default() *Accessor {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultAccessor == nil {
		o := defaultOptions()
		for _, opt := range defaultOpts {
			opt(&o)
		}
		defaultAccessor = newAccessor(o)
	}
	registerExitHook()
	return defaultAccessor
}

// Configure replaces the options of the process-wide Accessor. The replaced
// Accessor is retired: its thread is stopped and calls still made through it
// fail with ErrRetired. The next call starts a new thread with the new options.
func Configure(opts ...Option) error {
	a, err := New(opts...)
	if err != nil {
		return err
	}

	defaultMu.Lock()
	defer defaultMu.Unlock()

	var stopErr error
	if defaultAccessor != nil {
		stopErr = defaultAccessor.retire()
	}
	defaultAccessor = a
	defaultOpts = append([]Option(nil), opts...)
	registerExitHook()
	return stopErr
}

// Run executes fn on the process-wide worker thread. See Call.
func Run[T any](fn func(*Context) (T, error)) (T, error) {
	return RunContext(context.Background(), fn)
}

// RunContext executes fn on the process-wide worker thread. See CallContext.
func RunContext[T any](ctx context.Context, fn func(*Context) (T, error)) (T, error) {
	for {
		v, err := CallContext(ctx, Default(), fn)
		// fn never reached a retired accessor; send it to the replacement.
		if errors.Is(err, domain.ErrRetired) {
			continue
		}
		return v, err
	}
}

// Stop stops the process-wide worker thread, if one is running.
func Stop() error {
	defaultMu.Lock()
	a := defaultAccessor
	defaultMu.Unlock()

	if a == nil {
		return nil
	}
	return a.Stop()
}

func registerExitHook() {
	exitHookOnce.Do(func() {
		lifecycle.OnExit("vdesk worker thread", Stop)
	})
}
