// Package lifecycle provides the state machine, retry backoff and process
// exit hooks shared by the vdesk worker thread and the keeper daemon.
//
// # State Machine
//
// Valid state transitions:
//   - Stopped -> Starting
//   - Starting -> Running, Stopping, Crashed
//   - Running -> Stopping, Crashed
//   - Stopping -> Stopped, Crashed
//   - Crashed -> Starting, Stopping
//
// # Exit Hooks
//
// Components with process-wide lifetime register cleanup with [OnExit]:
//
//	lifecycle.OnExit("worker", worker.Stop)
//
// and the program routes termination through [RunExitHooks] or [Exit]:
//
//	func main() {
//	    defer lifecycle.RunExitHooks()
//	    ...
//	    lifecycle.Exit(1)
//	}
//
// # Version
//
// Current version: 1.1.0
// Minimum compatible version: 1.1.0
package lifecycle
