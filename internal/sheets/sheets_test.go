package sheets

import (
	"testing"
	"time"

	"zapisnik/internal/model"
)

func TestAppointmentRowValues(t *testing.T) {
	createdAt := time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)

	a := &model.Appointment{
		ID:        123,
		User:      "@alice",
		ChatID:    456,
		Time:      "2025-03-15 14:00",
		Reason:    "По работе",
		Message:   "буду к двум",
		Status:    "pending",
		CreatedAt: createdAt,
	}

	values := appointmentRowValues(a)

	expected := []interface{}{
		int64(123),
		"@alice",
		"2025-03-15 14:00",
		"По работе",
		"буду к двум",
		"pending",
		"2025-03-10 09:30:00",
	}

	if len(values) != len(expected) {
		t.Fatalf("Expected %d values, got %d", len(expected), len(values))
	}
	for i, v := range values {
		if v != expected[i] {
			t.Errorf("At index %d: expected %v, got %v", i, expected[i], v)
		}
	}
	if len(values) != len(header) {
		t.Errorf("Row width %d does not match header width %d", len(values), len(header))
	}
}
