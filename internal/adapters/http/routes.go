package web

import (
	"net/http"

	"kitaportal/internal/adapters/http/middleware"
	"kitaportal/internal/domain/user"
)

// registerRoutes binds every portal page to its handler. Role gating
// happens here; handlers assume it already ran.
func registerRoutes(mux *http.ServeMux) {
	adminOnly := middleware.RequireRole(user.RoleAdmin)
	parentOnly := middleware.RequireRole(user.RoleParent)

	mux.HandleFunc("/healthz", handleHealthz)
	mux.HandleFunc("/login", handleLogin)
	mux.HandleFunc("/register", handleRegister)
	mux.HandleFunc("/logout", handleLogout)

	mux.HandleFunc("/", handleDashboard)
	mux.Handle("/profile", middleware.RequireAuth(http.HandlerFunc(handleProfile)))
	mux.Handle("/profile/picture", middleware.RequireAuth(http.HandlerFunc(handleProfilePicture)))

	mux.Handle("/reservations", middleware.RequireAuth(http.HandlerFunc(handleReservations)))
	mux.Handle("/reservations/day", middleware.RequireAuth(http.HandlerFunc(handleReservationDay)))
	mux.Handle("/reservations/book", parentOnly(http.HandlerFunc(handleBook)))
	mux.Handle("/reservations/cancel", parentOnly(http.HandlerFunc(handleCancelReservation)))

	mux.Handle("/children", parentOnly(http.HandlerFunc(handleChildren)))
	mux.Handle("/children/update", parentOnly(http.HandlerFunc(handleChildUpdate)))
	mux.Handle("/children/delete", parentOnly(http.HandlerFunc(handleChildDelete)))

	mux.Handle("/admin/slots", adminOnly(http.HandlerFunc(handleAdminSlots)))
	mux.Handle("/admin/slots/update", adminOnly(http.HandlerFunc(handleAdminSlotUpdate)))
	mux.Handle("/admin/slots/delete", adminOnly(http.HandlerFunc(handleAdminSlotDelete)))
	mux.Handle("/admin/reservations", adminOnly(http.HandlerFunc(handleAdminReservations)))
	mux.Handle("/admin/reservations/decide", adminOnly(http.HandlerFunc(handleAdminReservationDecision)))
	mux.Handle("/admin/children", adminOnly(http.HandlerFunc(handleAdminChildren)))
	mux.Handle("/admin/users", adminOnly(http.HandlerFunc(handleAdminUsers)))
	mux.Handle("/admin/users/delete", adminOnly(http.HandlerFunc(handleAdminUserDelete)))
	mux.Handle("/admin/users/role", adminOnly(http.HandlerFunc(handleAdminUserRole)))
	mux.Handle("/admin/perf", adminOnly(http.HandlerFunc(handleAdminPerf)))
}
