package vdesk

import (
	"context"
	"fmt"
	"sync"

	"github.com/bft-labs/vdesk/internal/adapters/x11"
	"github.com/bft-labs/vdesk/internal/app"
	"github.com/bft-labs/vdesk/internal/domain"
	"github.com/bft-labs/vdesk/pkg/lifecycle"
	"github.com/bft-labs/vdesk/pkg/log"
)

// Context is the desktop resource handed to every call. It is only valid on
// the worker thread, for the duration of the call.
type Context = x11.Context

// ProbeInfo is the result of Context.Probe.
type ProbeInfo = x11.ProbeInfo

// Dialer opens an X connection for a display name.
type Dialer = x11.Dialer

// RetryPolicy controls the reset-and-retry loop around each call.
type RetryPolicy = app.RetryPolicy

// DefaultRetryPolicy retries transient failures five times without delay.
func DefaultRetryPolicy() RetryPolicy { return app.DefaultRetryPolicy() }

// Errors returned by the Accessor. Resource failures can be matched by kind
// with errors.Is, e.g. errors.Is(err, vdesk.ErrServerUnavailable).
var (
	ErrSender        = domain.ErrSender
	ErrReceiver      = domain.ErrReceiver
	ErrWorkerCrashed = domain.ErrWorkerCrashed
	ErrReentrant     = domain.ErrReentrant
	ErrRetired       = domain.ErrRetired
	ErrInvalidConfig = domain.ErrInvalidConfig

	ErrAlreadyRunning = domain.ErrAlreadyRunning
	ErrNotRunning     = domain.ErrNotRunning

	ErrClassNotRegistered = domain.ErrClassNotRegistered
	ErrServerUnavailable  = domain.ErrServerUnavailable
	ErrObjectNotConnected = domain.ErrObjectNotConnected
	ErrNullResult         = domain.ErrNullResult
	ErrAccessDenied       = domain.ErrAccessDenied
	ErrNotFound           = domain.ErrNotFound
	ErrInvalidArgument    = domain.ErrInvalidArgument
)

// IsTransient reports whether err is one a call is retried on.
func IsTransient(err error) bool { return domain.IsTransient(err) }

// Accessor serializes every use of the desktop onto one dedicated OS thread.
// The thread and its Context are created by the first call and destroyed by
// Stop; a later call starts a fresh thread with a fresh Context.
type Accessor struct {
	worker *app.Worker[*Context]
	logger log.Logger

	mu     sync.RWMutex
	policy RetryPolicy
}

// New creates an Accessor. No thread is started until the first call.
//
// Each Accessor owns its own thread and Context, so two Accessors on the same
// display are two owners. Code that needs one owner per process should use
// Default, Run and Stop instead.
func New(opts ...Option) (*Accessor, error) {
	if err := validateModuleVersions(); err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.queueCapacity < 1 {
		return nil, fmt.Errorf("%w: queue capacity must be at least 1", domain.ErrInvalidConfig)
	}
	if err := validatePolicy(o.retryPolicy); err != nil {
		return nil, err
	}
	return newAccessor(o), nil
}

func newAccessor(o options) *Accessor {
	logger := log.OrNoop(o.logger)
	factory := x11.NewFactory(o.display, o.dialer, logger)
	worker := app.NewWorker(factory, app.WorkerConfig{
		QueueCapacity:   o.queueCapacity,
		ElevatePriority: o.elevatePriority,
	}, logger, emitterFor(o.eventHandler))

	return &Accessor{
		worker: worker,
		logger: logger,
		policy: o.retryPolicy,
	}
}

func validatePolicy(p RetryPolicy) error {
	if p.MaxRetries < 0 {
		return fmt.Errorf("%w: max retries must not be negative", domain.ErrInvalidConfig)
	}
	if p.Delay < 0 || p.MaxDelay < 0 {
		return fmt.Errorf("%w: retry delay must not be negative", domain.ErrInvalidConfig)
	}
	return nil
}

// Call runs fn on a's worker thread and returns its result. Transient
// failures are retried after resetting the Context, up to the retry policy's
// bound. fn must not call back into a.
func Call[T any](a *Accessor, fn func(*Context) (T, error)) (T, error) {
	return CallContext(context.Background(), a, fn)
}

// CallContext is Call with a bound on how long the caller waits. A call that
// was already handed to the worker thread still runs to completion.
func CallContext[T any](ctx context.Context, a *Accessor, fn func(*Context) (T, error)) (T, error) {
	return app.RunContext(ctx, a.worker, a.RetryPolicy(), fn)
}

// Stop drains pending calls, closes the Context and joins the worker thread.
// It is a no-op when no thread is running.
func (a *Accessor) Stop() error {
	return a.worker.Stop()
}

// Status returns the lifecycle state of the worker thread.
func (a *Accessor) Status() State {
	return a.worker.State()
}

// retire stops a and prevents it from starting another thread.
func (a *Accessor) retire() error {
	return a.worker.Retire()
}

// Generation returns how many worker threads have been started so far.
func (a *Accessor) Generation() uint64 {
	return a.worker.Generation()
}

// RetryPolicy returns the policy applied to new calls.
func (a *Accessor) RetryPolicy() RetryPolicy {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.policy
}

// SetRetryPolicy replaces the policy for calls submitted from now on.
func (a *Accessor) SetRetryPolicy(p RetryPolicy) {
	a.mu.Lock()
	a.policy = p
	a.mu.Unlock()
	a.logger.Debug("retry policy updated",
		log.Int("max_retries", p.MaxRetries),
		log.Duration("delay", p.Delay),
	)
}

// validateModuleVersions checks that the sub-modules this package is built
// on are compatible with each other.
func validateModuleVersions() error {
	modules := map[string]struct {
		version    string
		minVersion string
	}{
		"lifecycle": {lifecycle.Version, lifecycle.MinCompatibleVersion},
		"log":       {log.Version, log.MinCompatibleVersion},
	}

	for name, m := range modules {
		if !isVersionCompatible(m.version, m.minVersion) {
			return fmt.Errorf("module %s version %s is below minimum compatible version %s",
				name, m.version, m.minVersion)
		}
	}
	return nil
}

// isVersionCompatible checks if version >= minVersion. Versions are
// "major.minor.patch".
func isVersionCompatible(version, minVersion string) bool {
	var vMajor, vMinor, vPatch int
	var mMajor, mMinor, mPatch int

	_, _ = fmt.Sscanf(version, "%d.%d.%d", &vMajor, &vMinor, &vPatch)
	_, _ = fmt.Sscanf(minVersion, "%d.%d.%d", &mMajor, &mMinor, &mPatch)

	if vMajor != mMajor {
		return vMajor > mMajor
	}
	if vMinor != mMinor {
		return vMinor > mMinor
	}
	return vPatch >= mPatch
}
