package model

import (
	"testing"
	"time"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    string
		to      string
		allowed bool
	}{
		{"pending to accepted", StatusPending, StatusAccepted, true},
		{"pending to rejected", StatusPending, StatusRejected, true},
		{"accepted to rejected", StatusAccepted, StatusRejected, false},
		{"rejected to accepted", StatusRejected, StatusAccepted, false},
		{"accepted back to pending", StatusAccepted, StatusPending, false},
		{"rejected back to pending", StatusRejected, StatusPending, false},
		{"pending to pending", StatusPending, StatusPending, false},
		{"pending to garbage", StatusPending, "done", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanTransition(tt.from, tt.to); got != tt.allowed {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.allowed)
			}
		})
	}
}

func TestSlotSplit(t *testing.T) {
	a := &Appointment{Time: "2025-03-15 14:00"}

	if a.Date() != "2025-03-15" {
		t.Errorf("Date() = %q", a.Date())
	}
	if a.TimeOfDay() != "14:00" {
		t.Errorf("TimeOfDay() = %q", a.TimeOfDay())
	}

	at, err := a.ScheduledAt()
	if err != nil {
		t.Fatalf("ScheduledAt: %v", err)
	}
	if at.Hour() != 14 || at.Day() != 15 || at.Month() != time.March {
		t.Errorf("unexpected parsed time: %v", at)
	}
}

func TestCombineSlot(t *testing.T) {
	if got := CombineSlot("2025-03-15", "14:00"); got != "2025-03-15 14:00" {
		t.Errorf("CombineSlot = %q", got)
	}
}

func TestIsActive(t *testing.T) {
	for status, active := range map[string]bool{
		StatusPending:  true,
		StatusAccepted: true,
		StatusRejected: false,
	} {
		a := &Appointment{Status: status}
		if a.IsActive() != active {
			t.Errorf("IsActive() for %s = %v, want %v", status, a.IsActive(), active)
		}
	}
}
