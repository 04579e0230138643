package projections

import (
	"fmt"
	"sort"

	"kitaportal/internal/domain/reservation"
	"kitaportal/internal/domain/slot"
)

// Event kinds.
const (
	EventKindReservation  = "reservation"
	EventKindAvailability = "availability"
)

// CSS classes used by the calendar templates.
const (
	colorPending      = "event-pending"
	colorApproved     = "event-approved"
	colorRejected     = "event-rejected"
	colorAvailability = "event-availability"
)

// CalendarEvent is one marker on the reservations calendar: either a
// reservation with its server-reported status, or an availability
// marker advertising how many places a date still has.
type CalendarEvent struct {
	ID         string
	Kind       string
	Date       string
	Label      string
	ColorClass string

	// Reservation payload.
	ReservationID uint
	Status        string

	// Availability payload.
	Remaining int
}

// ProjectCalendarEvents merges the reservation list and the
// availability map into calendar events. Pure function of its inputs;
// neither collection is mutated.
//
// One reservation event is emitted per reservation, labeled with the
// server's last-known status. One availability event is emitted per
// calendar date whose summed remaining is strictly positive. Dates
// with zero total remaining get no marker but may still carry slot
// rows in the map.
//
// Event order is not significant to consumers; the emitted order is
// merely deterministic (input order, then sorted dates).
func ProjectCalendarEvents(reservations []reservation.Reservation, calendar slot.Calendar) []CalendarEvent {
	events := make([]CalendarEvent, 0, len(reservations)+len(calendar))

	for _, r := range reservations {
		events = append(events, CalendarEvent{
			ID:            fmt.Sprintf("res-%d", r.ID),
			Kind:          EventKindReservation,
			Date:          r.Date,
			Label:         r.Status,
			ColorClass:    statusColor(r.Status),
			ReservationID: r.ID,
			Status:        r.Status,
		})
	}

	dates := make([]string, 0, len(calendar))
	for date := range calendar {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	for _, date := range dates {
		remaining := calendar.TotalRemaining(date)
		if remaining <= 0 {
			continue
		}
		events = append(events, CalendarEvent{
			ID:         "avail-" + date,
			Kind:       EventKindAvailability,
			Date:       date,
			Label:      fmt.Sprintf("%d free", remaining),
			ColorClass: colorAvailability,
			Remaining:  remaining,
		})
	}

	return events
}

func statusColor(status string) string {
	switch status {
	case reservation.StatusApproved:
		return colorApproved
	case reservation.StatusRejected:
		return colorRejected
	default:
		return colorPending
	}
}
