// Package booking holds the parent-facing reservation flow: the
// role-aware day selection dispatcher and the booking dialog state
// machine. Both are pure in-memory state; all backend effects go
// through narrow interfaces supplied by the caller.
package booking

import (
	"kitaportal/internal/domain/slot"
	"kitaportal/internal/domain/user"
)

// Views a day selection can open. At most one is open at a time.
const (
	ViewNone     = "none"
	ViewAdminDay = "admin_day"
	ViewBooking  = "booking"
)

// Outcomes of a day selection.
const (
	OutcomeAdminDay       = "admin_day"
	OutcomeBookingDialog  = "booking_dialog"
	OutcomeNoAvailability = "no_availability"
)

// Dispatcher routes a calendar day click by role. Admins get the
// read-only day inspection; parents get the booking dialog, but only
// when the day still has capacity.
// INVARIANT: at most one view is open at any time.
type Dispatcher struct {
	role string
	view string
	date string
}

// NewDispatcher returns a dispatcher for the given role with no view
// open.
func NewDispatcher(role string) *Dispatcher {
	return &Dispatcher{role: role, view: ViewNone}
}

// SelectDay handles a day click against the current availability map.
// PRE: date is a YYYY-MM-DD string from the rendered grid
// POST: admins always land in the day inspection; parents open the
// booking dialog only when the date is bookable. A non-bookable date
// yields OutcomeNoAvailability and leaves the dispatcher untouched,
// including any view already open.
func (d *Dispatcher) SelectDay(date string, calendar slot.Calendar) string {
	if d.role == user.RoleAdmin {
		d.view = ViewAdminDay
		d.date = date
		return OutcomeAdminDay
	}
	if !calendar.Bookable(date) {
		return OutcomeNoAvailability
	}
	d.view = ViewBooking
	d.date = date
	return OutcomeBookingDialog
}

// Close dismisses whatever view is open.
func (d *Dispatcher) Close() {
	d.view = ViewNone
	d.date = ""
}

// View returns the currently open view, ViewNone when none is.
func (d *Dispatcher) View() string {
	return d.view
}

// Date returns the date of the open view, empty when none is.
func (d *Dispatcher) Date() string {
	return d.date
}
