package tts

import "testing"

func TestPlaybackStateString(t *testing.T) {
	tests := []struct {
		state    PlaybackState
		expected string
	}{
		{StateIdle, "idle"},
		{StateSpeaking, "speaking"},
		{StatePaused, "paused"},
		{PlaybackState(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.state.String(); got != tt.expected {
				t.Errorf("PlaybackState.String() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestStateMachineTransitions(t *testing.T) {
	tests := []struct {
		name    string
		path    []PlaybackState
		to      PlaybackState
		allowed bool
	}{
		{"idle to speaking", nil, StateSpeaking, true},
		{"idle to paused", nil, StatePaused, false},
		{"idle to idle", nil, StateIdle, false},
		{"speaking to paused", []PlaybackState{StateSpeaking}, StatePaused, true},
		{"speaking to idle", []PlaybackState{StateSpeaking}, StateIdle, true},
		{"speaking to speaking", []PlaybackState{StateSpeaking}, StateSpeaking, false},
		{"paused to speaking", []PlaybackState{StateSpeaking, StatePaused}, StateSpeaking, true},
		{"paused to idle", []PlaybackState{StateSpeaking, StatePaused}, StateIdle, true},
		{"paused to paused", []PlaybackState{StateSpeaking, StatePaused}, StatePaused, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sm := NewStateMachine()
			for _, s := range tt.path {
				if !sm.Transition(s) {
					t.Fatalf("setup transition to %v failed", s)
				}
			}

			before := sm.Current()
			if got := sm.Transition(tt.to); got != tt.allowed {
				t.Fatalf("Transition(%v) = %v, want %v", tt.to, got, tt.allowed)
			}
			if !tt.allowed && sm.Current() != before {
				t.Errorf("rejected transition changed state to %v", sm.Current())
			}
		})
	}
}

func TestStateMachineOnEnter(t *testing.T) {
	sm := NewStateMachine()

	entered := 0
	sm.OnEnter(StatePaused, func() { entered++ })

	sm.Transition(StateSpeaking)
	sm.Transition(StatePaused)
	sm.Transition(StatePaused)

	if entered != 1 {
		t.Errorf("OnEnter callback ran %d times, want 1", entered)
	}
}
