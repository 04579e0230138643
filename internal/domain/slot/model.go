package slot

import (
	"errors"
	"time"
)

// DateLayout is the calendar-day format used on the wire and in URLs.
const DateLayout = "2006-01-02"

// Slot is a bookable capacity unit for a specific date, as reported by
// the backend. Remaining is capacity minus pending-or-approved
// occupancy; the portal never derives or mutates it locally, every
// value comes from the latest fetch.
// INVARIANT: 0 <= Remaining <= Capacity.
type Slot struct {
	ID        uint   `json:"id"`
	Date      string `json:"date"`
	Capacity  int    `json:"capacity"`
	Remaining int    `json:"remaining"`
}

// Validate checks the slot's invariants.
// POST: returns nil if valid, error describing the first violation otherwise
func (s *Slot) Validate() error {
	if _, err := time.Parse(DateLayout, s.Date); err != nil {
		return errors.New("slot date must be YYYY-MM-DD")
	}
	if s.Capacity < 1 {
		return errors.New("slot capacity must be at least 1")
	}
	if s.Remaining < 0 {
		return errors.New("slot remaining cannot be negative")
	}
	if s.Remaining > s.Capacity {
		return errors.New("slot remaining cannot exceed capacity")
	}
	return nil
}

// HasCapacity reports whether at least one place is free.
func (s *Slot) HasCapacity() bool {
	return s.Remaining > 0
}

// Calendar maps a date string to the slots on that date. It is a
// client-only view used to answer "is this day bookable and by how
// much"; a date can carry several slot rows.
type Calendar map[string][]Slot

// TotalRemaining sums the remaining places across all slots on a date.
// Unknown dates sum to zero.
func (c Calendar) TotalRemaining(date string) int {
	total := 0
	for _, s := range c[date] {
		total += s.Remaining
	}
	return total
}

// Bookable reports whether a date has at least one free place.
func (c Calendar) Bookable(date string) bool {
	return c.TotalRemaining(date) > 0
}
