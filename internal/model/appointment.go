package model

import (
	"strings"
	"time"
)

// Appointment statuses.
const (
	StatusPending  = "pending"
	StatusAccepted = "accepted"
	StatusRejected = "rejected"
)

// Appointment represents a meeting request.
type Appointment struct {
	ID        int64
	User      string // requester's display handle
	ChatID    int64  // chat used to notify the requester about the decision
	Time      string // combined slot, "2006-01-02 15:04"
	Reason    string
	Message   string
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Date returns the calendar date part of the slot ("2006-01-02").
func (a *Appointment) Date() string {
	d, _, _ := strings.Cut(a.Time, " ")
	return d
}

// TimeOfDay returns the time-of-day part of the slot ("15:04").
func (a *Appointment) TimeOfDay() string {
	_, t, _ := strings.Cut(a.Time, " ")
	return t
}

// ScheduledAt parses the combined slot into a time.Time in the local zone.
func (a *Appointment) ScheduledAt() (time.Time, error) {
	return time.ParseInLocation("2006-01-02 15:04", a.Time, time.Local)
}

// IsActive reports whether the appointment occupies its slot.
// Rejected appointments never block a slot.
func (a *Appointment) IsActive() bool {
	return a.Status == StatusPending || a.Status == StatusAccepted
}

// CanTransition reports whether a status change is allowed.
// The only legal moves are pending -> accepted and pending -> rejected;
// decisions are final.
func CanTransition(from, to string) bool {
	if from != StatusPending {
		return false
	}
	return to == StatusAccepted || to == StatusRejected
}

// CombineSlot joins a date and a time-of-day into the stored slot format.
func CombineSlot(date, timeOfDay string) string {
	return date + " " + timeOfDay
}
