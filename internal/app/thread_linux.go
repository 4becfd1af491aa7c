//go:build linux

package app

import "golang.org/x/sys/unix"

// niceHighest is the most favourable non-realtime nice value.
const niceHighest = -20

func currentThreadID() int {
	return unix.Gettid()
}

// elevateThreadPriority renices the calling OS thread. Without CAP_SYS_NICE
// the kernel refuses and the thread keeps its priority.
func elevateThreadPriority() error {
	return unix.Setpriority(unix.PRIO_PROCESS, unix.Gettid(), niceHighest)
}
