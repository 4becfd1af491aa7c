package vdesk

import "github.com/bft-labs/vdesk/pkg/lifecycle"

// State is the lifecycle state of the worker thread or the keeper.
type State = lifecycle.State

// Lifecycle states.
const (
	StateStopped  = lifecycle.StateStopped
	StateStarting = lifecycle.StateStarting
	StateRunning  = lifecycle.StateRunning
	StateStopping = lifecycle.StateStopping
	StateCrashed  = lifecycle.StateCrashed
)

// StateChangeEvent describes one lifecycle transition.
type StateChangeEvent struct {
	Previous State
	Current  State
	Reason   string
}

// EventHandler receives lifecycle notifications.
type EventHandler interface {
	OnStateChange(StateChangeEvent)
}

// EventHandlerFunc adapts a function to the EventHandler interface.
type EventHandlerFunc func(StateChangeEvent)

// OnStateChange calls f.
func (f EventHandlerFunc) OnStateChange(e StateChangeEvent) { f(e) }

// emitterFor adapts an EventHandler to the lifecycle emitter.
func emitterFor(h EventHandler) lifecycle.EventEmitter {
	if h == nil {
		return nil
	}
	return lifecycle.EmitterFunc(func(previous, current State, reason string) {
		h.OnStateChange(StateChangeEvent{Previous: previous, Current: current, Reason: reason})
	})
}
