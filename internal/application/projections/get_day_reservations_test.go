package projections

import (
	"context"
	"errors"
	"testing"

	"kitaportal/internal/domain/child"
	"kitaportal/internal/domain/reservation"
)

type mockDayReservationLister struct {
	gotStatus string
	gotDate   string
	list      []reservation.Reservation
	err       error
}

// AdminReservations records the filter and returns the seeded list.
func (m *mockDayReservationLister) AdminReservations(_ context.Context, status, date string) ([]reservation.Reservation, error) {
	m.gotStatus = status
	m.gotDate = date
	return m.list, m.err
}

// TestQueryGetDayReservations_FiltersByDate verifies the projection
// asks the backend for exactly the clicked date, all statuses.
func TestQueryGetDayReservations_FiltersByDate(t *testing.T) {
	lister := &mockDayReservationLister{list: []reservation.Reservation{
		{ID: 1, Date: "2026-06-10", Status: reservation.StatusApproved, ChildID: 7, SlotID: 1,
			Child: &child.Child{Name: "Mila", Parent: &child.Parent{FirstName: "Ana", LastName: "Kovac", Email: "ana@example.com"}}},
		{ID: 2, Date: "2026-06-10", Status: reservation.StatusPending, ChildID: 8, SlotID: 1},
	}}

	res, err := QueryGetDayReservations(context.Background(), "2026-06-10", GetDayReservationsDeps{ReservationLister: lister})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lister.gotDate != "2026-06-10" || lister.gotStatus != "" {
		t.Fatalf("filter=(%q,%q) want date only", lister.gotStatus, lister.gotDate)
	}
	if res.Total() != 2 {
		t.Fatalf("total=%d want 2", res.Total())
	}
	if res.Reservations[0].ChildName() != "Mila" {
		t.Fatalf("child=%q", res.Reservations[0].ChildName())
	}
}

// TestQueryGetDayReservations_FailureShowsEmptyDay verifies a fetch
// failure renders as an empty day rather than an error page.
func TestQueryGetDayReservations_FailureShowsEmptyDay(t *testing.T) {
	lister := &mockDayReservationLister{err: errors.New("backend down")}
	res, err := QueryGetDayReservations(context.Background(), "2026-06-10", GetDayReservationsDeps{ReservationLister: lister})
	if err != nil {
		t.Fatalf("passive failure must not propagate, got: %v", err)
	}
	if res.Total() != 0 {
		t.Fatalf("total=%d want 0", res.Total())
	}
	if res.Date != "2026-06-10" {
		t.Fatalf("date=%q", res.Date)
	}
}
