package lifecycle

// State is the lifecycle state of a worker thread or the keeper.
type State int

const (
	// StateStopped: no thread, no resource.
	StateStopped State = iota
	StateStarting
	StateRunning
	StateStopping
	// StateCrashed: the component exited abnormally and has not been
	// restarted or stopped yet.
	StateCrashed
)

func (s State) String() string {
	switch s {
	case StateStopped:
		return "Stopped"
	case StateStarting:
		return "Starting"
	case StateRunning:
		return "Running"
	case StateStopping:
		return "Stopping"
	case StateCrashed:
		return "Crashed"
	default:
		return "Unknown"
	}
}

// EventEmitter receives every accepted state transition, synchronously, after
// the manager has released its lock.
type EventEmitter interface {
	OnStateChange(previous, current State, reason string)
}

// EmitterFunc adapts a function to the EventEmitter interface.
type EmitterFunc func(previous, current State, reason string)

func (f EmitterFunc) OnStateChange(previous, current State, reason string) {
	f(previous, current, reason)
}
