package api

import (
	"context"
	"fmt"
	"net/url"

	"kitaportal/internal/domain/reservation"
)

// Reservations lists the reservations visible to the current session:
// the parent's own, or all of them for admins.
func (c *Client) Reservations(ctx context.Context) ([]reservation.Reservation, error) {
	var out struct {
		Data []reservation.Reservation `json:"data"`
	}
	if err := c.get(ctx, "/reservations", &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// AdminReservations lists all reservations, optionally filtered by
// status and/or date (YYYY-MM-DD).
func (c *Client) AdminReservations(ctx context.Context, status, date string) ([]reservation.Reservation, error) {
	q := url.Values{}
	if status != "" {
		q.Set("status", status)
	}
	if date != "" {
		q.Set("date", date)
	}
	path := "/admin/reservations"
	if encoded := q.Encode(); encoded != "" {
		path += "?" + encoded
	}
	var out struct {
		Data []reservation.Reservation `json:"data"`
	}
	if err := c.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// Reserve submits a reservation request for one child on one slot.
// Capacity and duplicate-booking rules are enforced by the backend;
// a rejection comes back as a *Error with the server's message.
func (c *Client) Reserve(ctx context.Context, slotID, childID uint) error {
	body := map[string]uint{"slot_id": slotID, "child_id": childID}
	return c.post(ctx, "/parent/reserve", body, nil)
}

// CancelReservation withdraws the parent's own pending reservation.
func (c *Client) CancelReservation(ctx context.Context, id uint) error {
	return c.delete(ctx, fmt.Sprintf("/parent/reservations/%d", id))
}

// ApproveReservation marks a pending reservation approved.
func (c *Client) ApproveReservation(ctx context.Context, id uint) error {
	return c.put(ctx, fmt.Sprintf("/admin/approve/%d", id), nil, nil)
}

// RejectReservation marks a pending reservation rejected.
func (c *Client) RejectReservation(ctx context.Context, id uint) error {
	return c.put(ctx, fmt.Sprintf("/admin/reject/%d", id), nil, nil)
}
