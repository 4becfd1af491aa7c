// Package vdesk gives a process single-owner access to the virtual desktop.
//
// Every call made through an [Accessor] runs on one dedicated OS thread that
// owns the only live [Context]. Calls from any number of goroutines are
// executed one at a time, in the order they were submitted. The thread is
// created by the first call and torn down by [Accessor.Stop]; the next call
// after a stop starts a fresh thread with a fresh Context.
//
// # Basic Usage
//
//	a, err := vdesk.New(vdesk.WithDisplay(":0"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer a.Stop()
//
//	n, err := vdesk.Call(a, func(c *vdesk.Context) (int, error) {
//	    return c.DesktopCount()
//	})
//
// Most programs use the process-wide accessor instead:
//
//	n, err := vdesk.Run(func(c *vdesk.Context) (int, error) {
//	    return c.CurrentDesktop()
//	})
//
// The process-wide accessor registers its Stop with [lifecycle.OnExit], so
// main should defer [lifecycle.RunExitHooks] and exit through [lifecycle.Exit].
//
// # Retries
//
// A call failing with a transient error ([ErrClassNotRegistered],
// [ErrServerUnavailable], [ErrObjectNotConnected], [ErrNullResult]) is retried
// after resetting the Context, up to five times by default. Other errors are
// returned as they are. See [RetryPolicy].
//
// # Keeper
//
// A [Keeper] probes the desktop periodically so the worker thread and its
// connection stay warm, and hosts [Plugin]s such as the config file watcher.
package vdesk
