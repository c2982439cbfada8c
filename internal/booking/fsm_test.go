package booking

import (
	"testing"
	"time"
)

func TestFSMTransitions(t *testing.T) {
	fsm := NewFSM()

	tests := []struct {
		name        string
		from        State
		to          State
		shouldAllow bool
	}{
		{"idle to ask date", StateIdle, StateAskDate, true},
		{"ask date to ask time", StateAskDate, StateAskTime, true},
		{"ask time to ask reason", StateAskTime, StateAskReason, true},
		{"ask reason to ask message", StateAskReason, StateAskMessage, true},
		{"ask message to complete", StateAskMessage, StateComplete, true},
		{"complete to idle", StateComplete, StateIdle, true},
		// Invalid transitions
		{"idle to complete", StateIdle, StateComplete, false},
		{"ask date to ask reason", StateAskDate, StateAskReason, false},
		{"ask time back to ask date", StateAskTime, StateAskDate, false},
		{"complete to ask message", StateComplete, StateAskMessage, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			allowed := fsm.CanTransition(tt.from, tt.to)
			if allowed != tt.shouldAllow {
				t.Errorf("transition %s -> %s: expected allowed=%v, got %v",
					tt.from, tt.to, tt.shouldAllow, allowed)
			}
		})
	}
}

func TestFSMTransitionUpdatesSession(t *testing.T) {
	fsm := NewFSM()
	session := NewSession(123)

	if session.State != StateAskDate {
		t.Fatalf("expected StateAskDate, got %s", session.State)
	}

	if !fsm.Transition(session, StateAskTime) {
		t.Error("transition to StateAskTime should succeed")
	}
	if session.State != StateAskTime {
		t.Errorf("expected StateAskTime, got %s", session.State)
	}

	if fsm.Transition(session, StateComplete) {
		t.Error("transition from StateAskTime to StateComplete should fail")
	}
	if session.State != StateAskTime {
		t.Error("state should remain StateAskTime after failed transition")
	}
}

func TestSessionExpiry(t *testing.T) {
	session := NewSession(123)
	session.UpdatedAt = time.Now().Add(-time.Hour)

	if !session.IsExpired(30 * time.Minute) {
		t.Error("session should be expired after an hour of inactivity")
	}

	fresh := NewSession(456)
	if fresh.IsExpired(30 * time.Minute) {
		t.Error("fresh session should not be expired")
	}
}

func TestReasonLabel(t *testing.T) {
	tests := []struct {
		token string
		label string
	}{
		{"work", "По работе"},
		{"study", "По учебе"},
		{"date", "Свидание"},
		{"other", "Другое"},
		{"unknown", "Не указано"},
	}

	for _, tt := range tests {
		if got := ReasonLabel(tt.token); got != tt.label {
			t.Errorf("ReasonLabel(%q) = %q, want %q", tt.token, got, tt.label)
		}
	}
}
