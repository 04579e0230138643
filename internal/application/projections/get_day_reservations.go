package projections

import (
	"context"
	"log/slog"

	"kitaportal/internal/domain/reservation"
)

// DayReservationLister defines the backend interface needed by the
// admin day-inspection projection.
type DayReservationLister interface {
	AdminReservations(ctx context.Context, status, date string) ([]reservation.Reservation, error)
}

// GetDayReservationsDeps holds dependencies for the projection.
type GetDayReservationsDeps struct {
	ReservationLister DayReservationLister
}

// DayReservationsResult is the read-only detail view of one date: who
// is registered, under which guardian, with which status. No mutation
// actions originate here; approve/reject live on the reservation
// management page.
type DayReservationsResult struct {
	Date         string
	Reservations []reservation.Reservation
}

// Total returns the number of reservations on the date.
func (r DayReservationsResult) Total() int {
	return len(r.Reservations)
}

// QueryGetDayReservations fetches all reservations for one date. A
// fetch failure renders the same as an empty day; the view shows its
// empty state either way.
func QueryGetDayReservations(ctx context.Context, date string, deps GetDayReservationsDeps) (DayReservationsResult, error) {
	result := DayReservationsResult{Date: date}

	reservations, err := deps.ReservationLister.AdminReservations(ctx, "", date)
	if err == nil {
		result.Reservations = reservations
	} else {
		slog.Warn("day_inspection_fetch_failed", "date", date, "error", err.Error())
	}

	return result, nil
}
