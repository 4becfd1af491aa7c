package domain

import "errors"

// Domain errors represent error conditions of the worker thread and the public API.
// These errors are returned by the public API and can be checked with errors.Is.
var (
	// ErrSender is returned when a unit of work cannot be enqueued because the
	// worker thread's queue is gone.
	ErrSender = errors.New("vdesk: work queue closed")

	// ErrReceiver is returned when the worker thread dropped a call without
	// producing a result.
	ErrReceiver = errors.New("vdesk: result never arrived")

	// ErrWorkerCrashed is returned by Stop when the worker thread exited abnormally.
	ErrWorkerCrashed = errors.New("vdesk: worker thread exited abnormally")

	// ErrReentrant is returned when a unit of work calls back into the worker
	// from the worker thread itself.
	ErrReentrant = errors.New("vdesk: re-entrant call from worker thread")

	// ErrRetired is returned when work is submitted to a worker that was
	// replaced and may not start another thread.
	ErrRetired = errors.New("vdesk: worker retired")

	// ErrAlreadyRunning is returned on an invalid lifecycle transition out of a running state.
	ErrAlreadyRunning = errors.New("vdesk: already running")

	// ErrNotRunning is returned on an invalid lifecycle transition out of a stopped state.
	ErrNotRunning = errors.New("vdesk: not running")

	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("vdesk: invalid configuration")
)
