package web

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"kitaportal/internal/adapters/api"
	"kitaportal/internal/adapters/http/middleware"
	"kitaportal/internal/domain/reservation"
	"kitaportal/internal/domain/user"
)

// handleAdminSlots handles GET (list) and POST (create) for /admin/slots.
func handleAdminSlots(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess, ok := middleware.GetSessionFromContext(ctx)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	if r.Method == "GET" {
		slots, err := sess.Client.AdminSlots(ctx)
		if err != nil {
			slots = nil
		}
		renderTemplate(w, r, "admin_slots.html", map[string]any{"Slots": slots})
		return
	}
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	input, err := slotInputFromForm(r)
	if err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	if err := sess.Client.CreateSlot(ctx, input); err != nil {
		setFlash(w, "error", backendErrorMessage(err))
	} else {
		setFlash(w, "success", "Slot created for "+input.Date+".")
	}
	sessions.Sync(ctx, sess.Token)
	http.Redirect(w, r, "/admin/slots", http.StatusSeeOther)
}

// handleAdminSlotUpdate handles POST /admin/slots/update.
func handleAdminSlotUpdate(w http.ResponseWriter, r *http.Request) {
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

	input, err := slotInputFromForm(r)
	if err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	id := parseUintField(r, "id")
	if id == 0 {
		http.Error(w, "id is required", http.StatusBadRequest)
		return
	}

	if err := sess.Client.UpdateSlot(ctx, id, input); err != nil {
		setFlash(w, "error", backendErrorMessage(err))
	} else {
		setFlash(w, "success", "Slot updated.")
	}
	sessions.Sync(ctx, sess.Token)
	http.Redirect(w, r, "/admin/slots", http.StatusSeeOther)
}

// handleAdminSlotDelete handles POST /admin/slots/delete.
func handleAdminSlotDelete(w http.ResponseWriter, r *http.Request) {
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

	if err := sess.Client.DeleteSlot(ctx, id); err != nil {
		setFlash(w, "error", backendErrorMessage(err))
	} else {
		setFlash(w, "success", "Slot deleted.")
	}
	sessions.Sync(ctx, sess.Token)
	http.Redirect(w, r, "/admin/slots", http.StatusSeeOther)
}

// handleAdminReservations handles GET /admin/reservations with an
// optional ?status= filter.
func handleAdminReservations(w http.ResponseWriter, r *http.Request) {
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

	status := r.URL.Query().Get("status")
	if status != "" && !reservation.ValidStatus(status) {
		http.Error(w, "invalid status filter", http.StatusBadRequest)
		return
	}
	reservations, err := sess.Client.AdminReservations(ctx, status, "")
	if err != nil {
		reservations = nil
	}

	renderTemplate(w, r, "admin_reservations.html", map[string]any{
		"Reservations": reservations,
		"Status":       status,
		"Statuses":     []string{reservation.StatusPending, reservation.StatusApproved, reservation.StatusRejected},
	})
}

// handleAdminReservationDecision handles POST /admin/reservations/decide
// with action=approve|reject.
func handleAdminReservationDecision(w http.ResponseWriter, r *http.Request) {
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

	var err error
	var done string
	switch r.FormValue("action") {
	case "approve":
		err = sess.Client.ApproveReservation(ctx, id)
		done = "approved"
	case "reject":
		err = sess.Client.RejectReservation(ctx, id)
		done = "rejected"
	default:
		http.Error(w, "action must be approve or reject", http.StatusBadRequest)
		return
	}

	if err != nil {
		setFlash(w, "error", backendErrorMessage(err))
	} else {
		setFlash(w, "success", "Reservation "+done+".")
	}
	sessions.Sync(ctx, sess.Token)

	redirect := "/admin/reservations"
	if back := r.FormValue("back"); strings.HasPrefix(back, "/") {
		redirect = back
	}
	http.Redirect(w, r, redirect, http.StatusSeeOther)
}

// handleAdminChildren handles GET /admin/children.
func handleAdminChildren(w http.ResponseWriter, r *http.Request) {
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

	children, err := sess.Client.AllChildren(ctx)
	if err != nil {
		children = nil
	}
	renderTemplate(w, r, "admin_children.html", map[string]any{"Children": children})
}

// handleAdminUsers handles GET (list) and POST (create) for /admin/users.
func handleAdminUsers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess, ok := middleware.GetSessionFromContext(ctx)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	if r.Method == "GET" {
		users, err := sess.Client.Users(ctx)
		if err != nil {
			users = nil
		}
		renderTemplate(w, r, "admin_users.html", map[string]any{
			"Users": users,
			"Roles": []string{user.RoleParent, user.RoleAdmin},
		})
		return
	}
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	input := api.CreateUserInput{
		Email:     strings.TrimSpace(r.FormValue("email")),
		Password:  r.FormValue("password"),
		Role:      r.FormValue("role"),
		FirstName: strings.TrimSpace(r.FormValue("first_name")),
		LastName:  strings.TrimSpace(r.FormValue("last_name")),
	}
	if !user.ValidRole(input.Role) {
		http.Error(w, "role must be 'parent' or 'admin'", http.StatusBadRequest)
		return
	}

	if err := sess.Client.CreateUser(ctx, input); err != nil {
		setFlash(w, "error", backendErrorMessage(err))
	} else {
		setFlash(w, "success", "Account created for "+input.Email+".")
	}
	sessions.Sync(ctx, sess.Token)
	http.Redirect(w, r, "/admin/users", http.StatusSeeOther)
}

// handleAdminUserDelete handles POST /admin/users/delete.
func handleAdminUserDelete(w http.ResponseWriter, r *http.Request) {
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
	if id == sess.User.ID {
		setFlash(w, "error", "You cannot delete your own account.")
		http.Redirect(w, r, "/admin/users", http.StatusSeeOther)
		return
	}

	if err := sess.Client.DeleteUser(ctx, id); err != nil {
		setFlash(w, "error", backendErrorMessage(err))
	} else {
		setFlash(w, "success", "Account deleted.")
	}
	sessions.Sync(ctx, sess.Token)
	http.Redirect(w, r, "/admin/users", http.StatusSeeOther)
}

// handleAdminUserRole handles POST /admin/users/role.
func handleAdminUserRole(w http.ResponseWriter, r *http.Request) {
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
	role := r.FormValue("role")
	if id == 0 || !user.ValidRole(role) {
		http.Error(w, "id and a valid role are required", http.StatusBadRequest)
		return
	}

	if err := sess.Client.UpdateUserRole(ctx, id, role); err != nil {
		setFlash(w, "error", backendErrorMessage(err))
	} else {
		setFlash(w, "success", "Role updated.")
	}
	sessions.Sync(ctx, sess.Token)
	http.Redirect(w, r, "/admin/users", http.StatusSeeOther)
}

// handleAdminPerf handles GET /admin/perf: the timing dashboard.
func handleAdminPerf(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if perfCollector == nil {
		http.Error(w, "perf collection disabled", http.StatusNotFound)
		return
	}

	window := time.Hour
	if v := r.URL.Query().Get("window"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 24 {
			window = time.Duration(n) * time.Hour
		}
	}
	snap := perfCollector.Snapshot(timeNow().Add(-window), 10)

	renderTemplate(w, r, "admin_perf.html", map[string]any{
		"Snapshot":    snap,
		"WindowHours": int(window.Hours()),
	})
}

// slotInputFromForm reads the shared slot form fields.
func slotInputFromForm(r *http.Request) (api.SlotInput, error) {
	if err := r.ParseForm(); err != nil {
		return api.SlotInput{}, err
	}
	capacity, _ := strconv.Atoi(strings.TrimSpace(r.FormValue("capacity")))
	return api.SlotInput{
		Date:     strings.TrimSpace(r.FormValue("date")),
		Capacity: capacity,
	}, nil
}
