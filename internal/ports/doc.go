// Package ports defines the interfaces (ports) that connect the worker core
// to the desktop resource adapters.
//
// The worker thread (internal/app) depends only on these interfaces. The
// X11 adapter (internal/adapters/x11) implements [Resource]; tests supply
// in-memory fakes.
//
// # Port Interfaces
//
//   - [Resource]: the single-threaded desktop resource owned by the worker
//   - [Factory]: constructs a Resource on the worker thread
//   - [Unit]: a unit of work executed on the worker thread
package ports
