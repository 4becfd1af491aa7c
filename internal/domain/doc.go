// Package domain contains the core error taxonomy for vdesk.
//
// This package is the innermost layer. It has no dependencies on the X11
// adapter, logging or configuration and only describes how failures of the
// desktop resource and of the worker thread are classified.
//
// # Errors
//
//   - Worker transport errors: [ErrSender], [ErrReceiver]
//   - Worker lifecycle errors: [ErrWorkerCrashed], [ErrReentrant]
//   - Resource errors: [ResourceError], identified by [Kind]
//
// # Transient Errors
//
// Four resource kinds indicate that the desktop server was restarted or is
// momentarily unreachable: [KindClassNotRegistered], [KindServerUnavailable],
// [KindObjectNotConnected] and [KindNullResult]. [IsTransient] reports whether
// an error belongs to that set. Everything else is terminal for a call.
package domain
