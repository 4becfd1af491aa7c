package vdesk

import (
	"github.com/bft-labs/vdesk/internal/adapters/x11"
	"github.com/bft-labs/vdesk/internal/app"
	"github.com/bft-labs/vdesk/pkg/log"
)

// Option configures optional behavior of an Accessor.
type Option func(*options)

type options struct {
	logger          log.Logger
	display         string
	dialer          Dialer
	queueCapacity   int
	retryPolicy     RetryPolicy
	elevatePriority bool
	eventHandler    EventHandler
}

func defaultOptions() options {
	return options{
		logger:          log.NewNoopLogger(),
		dialer:          x11.DefaultDialer,
		queueCapacity:   app.DefaultQueueCapacity,
		retryPolicy:     DefaultRetryPolicy(),
		elevatePriority: true,
	}
}

// WithLogger sets a custom logger for structured logging.
// If not provided, a no-op logger is used (no output).
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithDisplay selects the X display. The default uses $DISPLAY.
func WithDisplay(display string) Option {
	return func(o *options) {
		o.display = display
	}
}

// WithDialer replaces the function used to open X connections.
func WithDialer(dialer Dialer) Option {
	return func(o *options) {
		o.dialer = dialer
	}
}

// WithQueueCapacity bounds how many calls may wait for the worker thread
// before callers block. The default is 10.
func WithQueueCapacity(n int) Option {
	return func(o *options) {
		o.queueCapacity = n
	}
}

// WithRetryPolicy sets how transient failures are retried.
func WithRetryPolicy(p RetryPolicy) Option {
	return func(o *options) {
		o.retryPolicy = p
	}
}

// WithPriorityElevation toggles raising the worker thread's scheduling
// priority. Enabled by default.
func WithPriorityElevation(enabled bool) Option {
	return func(o *options) {
		o.elevatePriority = enabled
	}
}

// WithEventHandler sets a handler for worker thread state changes.
// Events are delivered synchronously; handlers must return quickly and must
// not call back into the Accessor.
func WithEventHandler(handler EventHandler) Option {
	return func(o *options) {
		o.eventHandler = handler
	}
}
