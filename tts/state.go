package tts

// PlaybackState is the playback state tracked by the controller.
type PlaybackState int

const (
	// StateIdle means nothing is in flight.
	StateIdle PlaybackState = iota
	// StateSpeaking means a request was submitted and not finished.
	StateSpeaking
	// StatePaused means the in-flight request is paused.
	StatePaused
)

// String returns the string representation of the state.
func (s PlaybackState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSpeaking:
		return "speaking"
	case StatePaused:
		return "paused"
	default:
		return "unknown"
	}
}

// StateMachine guards playback state transitions.
type StateMachine struct {
	current     PlaybackState
	transitions map[PlaybackState][]PlaybackState
	onEnter     map[PlaybackState]func()
}

// NewStateMachine creates a state machine in StateIdle. Paused is only
// reachable from Speaking.
func NewStateMachine() *StateMachine {
	return &StateMachine{
		current: StateIdle,
		transitions: map[PlaybackState][]PlaybackState{
			StateIdle:     {StateSpeaking},
			StateSpeaking: {StatePaused, StateIdle},
			StatePaused:   {StateSpeaking, StateIdle},
		},
		onEnter: make(map[PlaybackState]func()),
	}
}

// Can reports whether a transition to the given state is allowed.
func (sm *StateMachine) Can(to PlaybackState) bool {
	for _, s := range sm.transitions[sm.current] {
		if s == to {
			return true
		}
	}
	return false
}

// Transition moves to the given state if allowed.
func (sm *StateMachine) Transition(to PlaybackState) bool {
	if !sm.Can(to) {
		return false
	}

	sm.current = to

	if fn, ok := sm.onEnter[to]; ok && fn != nil {
		fn()
	}
	return true
}

// Current returns the current state.
func (sm *StateMachine) Current() PlaybackState {
	return sm.current
}

// OnEnter registers a callback for entering a state.
func (sm *StateMachine) OnEnter(state PlaybackState, fn func()) {
	sm.onEnter[state] = fn
}
