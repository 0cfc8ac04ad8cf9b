// Package halt provides a cooperative task-lifecycle supervisor: a
// broadcast cancellation signal plus a ready/halt/join state machine for
// coordinating the shutdown of a group of goroutines.
package halt

import "sync"

// Trigger is the single-owner half of a Trigger/Tripwire pair. Firing it
// transitions every Tripwire cloned from the same pair to the fired state,
// permanently and exactly once.
type Trigger struct {
	state *tripwireState
}

// Tripwire is a cheap, copyable value that observes a Trigger firing.
// Copying a Tripwire shares the underlying state, so every copy resolves
// together — there is no parent/child relationship the way there is with
// context.Context, just one flat broadcast.
type Tripwire struct {
	state *tripwireState
}

type tripwireState struct {
	once sync.Once
	ch   chan struct{}
}

// NewTripwire creates a fresh, unfired Trigger/Tripwire pair sharing one
// broadcast cell.
func NewTripwire() (Trigger, Tripwire) {
	state := &tripwireState{ch: make(chan struct{})}
	return Trigger{state: state}, Tripwire{state: state}
}

// Cancel fires the trigger. It is idempotent: calling it more than once
// has the same observable effect as calling it once.
func (t Trigger) Cancel() {
	t.state.once.Do(func() { close(t.state.ch) })
}

// Tripwire returns a clone of the tripwire sharing this trigger's cell,
// letting a single Trigger owner hand out observers without giving up
// ownership of Cancel.
func (t Trigger) Tripwire() Tripwire {
	return Tripwire{state: t.state}
}

// Done returns a channel that is closed once the trigger fires. A zero
// Tripwire (no NewTripwire call) returns a nil channel, which blocks
// forever in a select — callers should always obtain a Tripwire from
// NewTripwire or Trigger.Tripwire.
func (tw Tripwire) Done() <-chan struct{} {
	if tw.state == nil {
		return nil
	}
	return tw.state.ch
}

// Fired reports whether the trigger has already fired, without blocking.
func (tw Tripwire) Fired() bool {
	if tw.state == nil {
		return false
	}
	select {
	case <-tw.state.ch:
		return true
	default:
		return false
	}
}
