//go:build !linux

package app

import "errors"

var errPriorityUnsupported = errors.New("thread priority elevation not supported on this platform")

// currentThreadID returns 0, which disables re-entrancy detection.
func currentThreadID() int {
	return 0
}

func elevateThreadPriority() error {
	return errPriorityUnsupported
}
