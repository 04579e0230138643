package projections

import (
	"context"
	"log/slog"
	"time"

	"kitaportal/internal/domain/reservation"
	"kitaportal/internal/domain/slot"
)

// CalendarReservationLister defines the backend interface needed by
// the reservations calendar projection.
type CalendarReservationLister interface {
	Reservations(ctx context.Context) ([]reservation.Reservation, error)
}

// CalendarAvailabilityFetcher defines the backend interface needed by
// the reservations calendar projection.
type CalendarAvailabilityFetcher interface {
	CalendarMap(ctx context.Context) (slot.Calendar, error)
}

// GetReservationCalendarDeps holds dependencies for the projection.
type GetReservationCalendarDeps struct {
	ReservationLister   CalendarReservationLister
	AvailabilityFetcher CalendarAvailabilityFetcher
}

// GetReservationCalendarQuery carries input for the projection.
type GetReservationCalendarQuery struct {
	Year  int
	Month time.Month
}

// ReservationCalendarResult carries the assembled calendar page data.
type ReservationCalendarResult struct {
	Reservations []reservation.Reservation
	Calendar     slot.Calendar
	Events       []CalendarEvent
	Grid         MonthGrid
}

// QueryGetReservationCalendar fetches the two source collections and
// projects them into calendar events plus a month grid. Fetch failures
// are passive reads and collapse to empty collections: a transient
// backend error renders as an empty calendar rather than a crash.
func QueryGetReservationCalendar(ctx context.Context, query GetReservationCalendarQuery, deps GetReservationCalendarDeps, now time.Time) (ReservationCalendarResult, error) {
	result := ReservationCalendarResult{Calendar: slot.Calendar{}}

	reservations, err := deps.ReservationLister.Reservations(ctx)
	if err == nil {
		result.Reservations = reservations
	} else {
		slog.Warn("calendar_fetch_failed", "collection", "reservations", "error", err.Error())
	}

	calendar, err := deps.AvailabilityFetcher.CalendarMap(ctx)
	if err == nil {
		result.Calendar = calendar
	} else {
		slog.Warn("calendar_fetch_failed", "collection", "calendar", "error", err.Error())
	}

	result.Events = ProjectCalendarEvents(result.Reservations, result.Calendar)
	result.Grid = BuildMonthGrid(query.Year, query.Month, result.Events, result.Calendar, now)
	return result, nil
}
