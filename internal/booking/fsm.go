// Package booking drives the appointment request dialog.
package booking

import "time"

// State represents the current state of the booking dialog.
type State string

const (
	StateIdle       State = "idle"
	StateAskDate    State = "ask_date"
	StateAskTime    State = "ask_time"
	StateAskReason  State = "ask_reason"
	StateAskMessage State = "ask_message"
	StateComplete   State = "complete"
)

// Draft accumulates the user's selections prior to submission.
type Draft struct {
	Date   string `json:"date"`   // "2006-01-02"
	Time   string `json:"time"`   // "15:04"
	Reason string `json:"reason"` // display label
}

// Session is one user's booking dialog.
type Session struct {
	UserID    int64     `json:"user_id"`
	State     State     `json:"state"`
	Draft     Draft     `json:"draft"`
	StartedAt time.Time `json:"started_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewSession creates a fresh session at the start of the dialog.
func NewSession(userID int64) *Session {
	now := time.Now()
	return &Session{
		UserID:    userID,
		State:     StateAskDate,
		StartedAt: now,
		UpdatedAt: now,
	}
}

// IsExpired checks if the session has been idle longer than timeout.
func (s *Session) IsExpired(timeout time.Duration) bool {
	return time.Since(s.UpdatedAt) > timeout
}

// FSM manages state transitions for the booking dialog.
type FSM struct {
	transitions map[State][]State
}

// NewFSM creates an FSM with the dialog's transitions.
func NewFSM() *FSM {
	return &FSM{
		transitions: map[State][]State{
			StateIdle:       {StateAskDate},
			StateAskDate:    {StateAskTime},
			StateAskTime:    {StateAskReason},
			StateAskReason:  {StateAskMessage},
			StateAskMessage: {StateComplete},
			StateComplete:   {StateIdle},
		},
	}
}

// CanTransition checks if a transition is allowed.
func (f *FSM) CanTransition(from, to State) bool {
	allowed, ok := f.transitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// Transition updates the session state if the transition is allowed.
func (f *FSM) Transition(session *Session, to State) bool {
	if f.CanTransition(session.State, to) {
		session.State = to
		session.UpdatedAt = time.Now()
		return true
	}
	return false
}
