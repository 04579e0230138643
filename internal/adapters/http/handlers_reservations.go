package web

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"kitaportal/internal/adapters/http/middleware"
	"kitaportal/internal/application/booking"
	"kitaportal/internal/application/projections"
	"kitaportal/internal/domain/slot"
)

// monthFromQuery parses ?month=YYYY-MM, defaulting to the current month.
func monthFromQuery(r *http.Request) (int, time.Month) {
	now := timeNow()
	raw := r.URL.Query().Get("month")
	if raw == "" {
		return now.Year(), now.Month()
	}
	t, err := time.Parse("2006-01", raw)
	if err != nil {
		return now.Year(), now.Month()
	}
	return t.Year(), t.Month()
}

// handleReservations handles GET /reservations: the calendar page.
// Every visit re-fetches both collections in full, so the page always
// shows the backend's current state.
func handleReservations(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	ctx := r.Context()
	sess, ok := middleware.GetSessionFromContext(ctx)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	year, month := monthFromQuery(r)
	result, err := projections.QueryGetReservationCalendar(ctx,
		projections.GetReservationCalendarQuery{Year: year, Month: month},
		projections.GetReservationCalendarDeps{
			ReservationLister:   sess.Client,
			AvailabilityFetcher: sess.Client,
		},
		timeNow())
	if err != nil {
		internalError(w, err)
		return
	}

	renderTemplate(w, r, "reservations.html", map[string]any{
		"Grid":         result.Grid,
		"Reservations": result.Reservations,
	})
}

// handleReservationDay handles GET /reservations/day?date=YYYY-MM-DD.
// A day click routes by role: admins land in the read-only inspection,
// parents get the booking dialog, but only for days with capacity. A
// day without capacity bounces back to the calendar with a notice and
// opens nothing.
func handleReservationDay(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	ctx := r.Context()
	sess, ok := middleware.GetSessionFromContext(ctx)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	date := r.URL.Query().Get("date")
	if _, err := time.Parse(slot.DateLayout, date); err != nil {
		http.Error(w, "invalid date", http.StatusBadRequest)
		return
	}

	calendar, err := sess.Client.CalendarMap(ctx)
	if err != nil {
		calendar = slot.Calendar{}
	}

	dispatcher := booking.NewDispatcher(sess.User.Role)
	switch dispatcher.SelectDay(date, calendar) {
	case booking.OutcomeAdminDay:
		result, err := projections.QueryGetDayReservations(ctx, date,
			projections.GetDayReservationsDeps{ReservationLister: sess.Client})
		if err != nil {
			internalError(w, err)
			return
		}
		renderTemplate(w, r, "admin_day.html", map[string]any{
			"Date":         result.Date,
			"Reservations": result.Reservations,
			"Total":        result.Total(),
			"Month":        date[:7],
		})

	case booking.OutcomeBookingDialog:
		renderBookingDialog(w, r, sess, date, calendar, 0, 0, "")

	default:
		setFlash(w, "error", "No free places on "+date+".")
		http.Redirect(w, r, "/reservations?month="+url.QueryEscape(date[:7]), http.StatusSeeOther)
	}
}

// renderBookingDialog renders the booking form for one date with the
// parent's children and the day's open slots. childID and slotID
// preselect options after a failed submit.
func renderBookingDialog(w http.ResponseWriter, r *http.Request, sess middleware.Session, date string, calendar slot.Calendar, childID, slotID uint, errMsg string) {
	children, err := sess.Client.Children(r.Context())
	if err != nil {
		children = nil
	}

	var open []slot.Slot
	for _, s := range calendar[date] {
		if s.HasCapacity() {
			open = append(open, s)
		}
	}

	renderTemplate(w, r, "booking.html", map[string]any{
		"Date":       date,
		"Children":   children,
		"Slots":      open,
		"ChildID":    childID,
		"SlotID":     slotID,
		"Error":      errMsg,
		"Month":      date[:7],
		"CanSubmit":  len(children) > 0 && len(open) > 0,
		"NoChildren": len(children) == 0,
	})
}

// handleBook handles POST /reservations/book: the booking dialog
// submit. The dialog state machine validates the selection pair; the
// backend has the final word on capacity. On failure the dialog
// re-renders with both selections preserved.
func handleBook(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	ctx := r.Context()
	sess, ok := middleware.GetSessionFromContext(ctx)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}

	date := strings.TrimSpace(r.FormValue("date"))
	if _, err := time.Parse(slot.DateLayout, date); err != nil {
		http.Error(w, "invalid date", http.StatusBadRequest)
		return
	}
	childID := parseUintField(r, "child_id")
	slotID := parseUintField(r, "slot_id")

	children, err := sess.Client.Children(ctx)
	if err != nil {
		children = nil
	}
	calendar, err := sess.Client.CalendarMap(ctx)
	if err != nil {
		calendar = slot.Calendar{}
	}

	dialog := booking.NewDialog(date, children, calendar[date])
	if err := dialog.SelectChild(childID); err != nil {
		renderBookingDialog(w, r, sess, date, calendar, 0, slotID, "Pick one of your children first.")
		return
	}
	if err := dialog.SelectSlot(slotID); err != nil {
		renderBookingDialog(w, r, sess, date, calendar, childID, 0, "Pick an open slot for this day.")
		return
	}

	if err := dialog.Submit(ctx, sess.Client); err != nil {
		sessions.Sync(ctx, sess.Token)
		renderBookingDialog(w, r, sess, date, calendar, dialog.ChildID(), dialog.SlotID(), backendErrorMessage(err))
		return
	}

	sessions.Sync(ctx, sess.Token)
	setFlash(w, "success", "Reservation requested for "+date+". It is pending approval.")
	http.Redirect(w, r, "/reservations?month="+url.QueryEscape(date[:7]), http.StatusSeeOther)
}

// handleCancelReservation handles POST /reservations/cancel.
func handleCancelReservation(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	ctx := r.Context()
	sess, ok := middleware.GetSessionFromContext(ctx)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	id := parseUintField(r, "id")
	if id == 0 {
		http.Error(w, "id is required", http.StatusBadRequest)
		return
	}

	if err := sess.Client.CancelReservation(ctx, id); err != nil {
		setFlash(w, "error", backendErrorMessage(err))
	} else {
		setFlash(w, "success", "Reservation cancelled.")
	}
	sessions.Sync(ctx, sess.Token)
	http.Redirect(w, r, "/reservations", http.StatusSeeOther)
}
