package reservation

import (
	"errors"

	"kitaportal/internal/domain/child"
	"kitaportal/internal/domain/slot"
	"kitaportal/internal/domain/user"
)

// Status constants. The displayed status is always the server's
// last-known value; the portal never infers transitions locally.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Reservation is a parent's request to occupy one place of a slot's
// capacity for a child on a date, subject to admin approval.
type Reservation struct {
	ID      uint         `json:"id"`
	Date    string       `json:"date"`
	Status  string       `json:"status"`
	ChildID uint         `json:"child_id"`
	SlotID  uint         `json:"slot_id"`
	Child   *child.Child `json:"child,omitempty"`
	Slot    *slot.Slot   `json:"slot,omitempty"`
}

// ValidStatus reports whether s is a known reservation status.
func ValidStatus(s string) bool {
	return s == StatusPending || s == StatusApproved || s == StatusRejected
}

// Validate checks the reservation's invariants.
// POST: returns nil if valid, error describing the first violation otherwise
func (r *Reservation) Validate() error {
	if r.ChildID == 0 {
		return errors.New("reservation child reference is required")
	}
	if r.SlotID == 0 {
		return errors.New("reservation slot reference is required")
	}
	if !ValidStatus(r.Status) {
		return errors.New("reservation status must be pending, approved or rejected")
	}
	return nil
}

// IsPending reports whether the reservation still awaits a decision.
func (r *Reservation) IsPending() bool {
	return r.Status == StatusPending
}

// CancellableBy reports whether the given role may cancel this
// reservation. Parents may withdraw a request only while it is
// pending; decided reservations are immutable from the parent side.
func (r *Reservation) CancellableBy(role string) bool {
	return role == user.RoleParent && r.IsPending()
}

// ChildName returns the embedded child's name, or empty when the
// backend did not expand the reference.
func (r *Reservation) ChildName() string {
	if r.Child == nil {
		return ""
	}
	return r.Child.Name
}
