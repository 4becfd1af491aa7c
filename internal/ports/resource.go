package ports

// Resource is the stateful desktop interface owned by the worker thread.
// It is only ever touched from the worker thread, so implementations need
// no locking of their own.
type Resource interface {
	// ID returns the identity token assigned when the resource was constructed.
	ID() string

	// Reset discards any live sub-handles so the next operation reacquires
	// them. It must be safe to call repeatedly.
	Reset()

	// Close releases the resource when the worker thread exits.
	Close() error
}

// Factory constructs a Resource. It is invoked on the worker thread once per
// thread start. Construction must not block on the desktop server; handles are
// acquired lazily by the resource itself.
type Factory[C Resource] func() C

// Unit is a unit of work executed on the worker thread. Execute is called
// exactly once, with the thread's resource.
type Unit[C Resource] interface {
	Execute(ctx C)
}

// UnitFunc adapts a function to the Unit interface.
type UnitFunc[C Resource] func(ctx C)

// Execute calls f(ctx).
func (f UnitFunc[C]) Execute(ctx C) {
	f(ctx)
}
