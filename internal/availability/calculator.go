// Package availability derives occupied dates and time slots from the
// appointment store.
package availability

import (
	"context"
	"fmt"
)

// Offerable slot universe: every hour on the hour, 12:00-22:00 inclusive.
const (
	firstSlotHour = 12
	lastSlotHour  = 22
)

// SlotTimes returns the fixed universe of offerable time-of-day slots.
func SlotTimes() []string {
	times := make([]string, 0, lastSlotHour-firstSlotHour+1)
	for hour := firstSlotHour; hour <= lastSlotHour; hour++ {
		times = append(times, fmt.Sprintf("%02d:00", hour))
	}
	return times
}

// Store is the slice of the appointment store the calculator reads.
type Store interface {
	ActiveDates(ctx context.Context) ([]string, error)
	ActiveTimesOnDate(ctx context.Context, date string) ([]string, error)
}

// Slot pairs a time-of-day label with its availability on a given date.
type Slot struct {
	Label     string
	Available bool
}

// Calculator answers occupancy questions over the current store snapshot.
// Every call re-derives from the store; there is no caching, so results are
// always consistent with the latest committed status changes.
type Calculator struct {
	store Store
}

// NewCalculator creates a calculator over the given store.
func NewCalculator(store Store) *Calculator {
	return &Calculator{store: store}
}

// OccupiedDates returns every date that carries at least one active
// (pending or accepted) appointment.
func (c *Calculator) OccupiedDates(ctx context.Context) (map[string]bool, error) {
	dates, err := c.store.ActiveDates(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active dates: %w", err)
	}
	occupied := make(map[string]bool, len(dates))
	for _, d := range dates {
		occupied[d] = true
	}
	return occupied, nil
}

// OccupiedTimes returns the time-of-day slots already taken on a date by an
// active appointment.
func (c *Calculator) OccupiedTimes(ctx context.Context, date string) (map[string]bool, error) {
	times, err := c.store.ActiveTimesOnDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("list active times: %w", err)
	}
	occupied := make(map[string]bool, len(times))
	for _, t := range times {
		occupied[t] = true
	}
	return occupied, nil
}

// DaySlots returns the full slot universe for a date with each slot marked
// available or taken.
func (c *Calculator) DaySlots(ctx context.Context, date string) ([]Slot, error) {
	occupied, err := c.OccupiedTimes(ctx, date)
	if err != nil {
		return nil, err
	}
	times := SlotTimes()
	slots := make([]Slot, 0, len(times))
	for _, t := range times {
		slots = append(slots, Slot{Label: t, Available: !occupied[t]})
	}
	return slots, nil
}
