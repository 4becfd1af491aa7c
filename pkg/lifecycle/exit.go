package lifecycle

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// Go has no atexit. Components with process-wide lifetime register a hook
// here, and the program's main routes every exit through RunExitHooks or Exit.

type exitHook struct {
	name string
	fn   func() error
}

var (
	exitMu    sync.Mutex
	exitHooks []exitHook

	osExit = os.Exit
)

// OnExit registers fn to run at process exit. Hooks run once, newest first.
func OnExit(name string, fn func() error) {
	exitMu.Lock()
	defer exitMu.Unlock()
	exitHooks = append(exitHooks, exitHook{name: name, fn: fn})
}

// RunExitHooks runs and unregisters every pending hook in reverse
// registration order. Failures are collected, not retried.
func RunExitHooks() error {
	exitMu.Lock()
	hooks := exitHooks
	exitHooks = nil
	exitMu.Unlock()

	var errs []error
	for i := len(hooks) - 1; i >= 0; i-- {
		if err := hooks[i].fn(); err != nil {
			errs = append(errs, fmt.Errorf("exit hook %s: %w", hooks[i].name, err))
		}
	}
	return errors.Join(errs...)
}

// Exit runs the exit hooks and terminates the process with code.
func Exit(code int) {
	if err := RunExitHooks(); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	osExit(code)
}

// ExitOnSignal exits through Exit when SIGINT or SIGTERM arrives.
// The returned function stops listening.
func ExitOnSignal() (stop func()) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})

	go func() {
		select {
		case sig := <-sigCh:
			code := 130
			if sig == syscall.SIGTERM {
				code = 143
			}
			Exit(code)
		case <-done:
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			signal.Stop(sigCh)
			close(done)
		})
	}
}
