package web

import (
	"bytes"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/csrf"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"kitaportal/internal/adapters/api"
	"kitaportal/internal/adapters/http/middleware"
	"kitaportal/internal/application/projections"
	"kitaportal/internal/domain/user"
)

// timeNow is a variable for testability.
var timeNow = time.Now

// mdRenderer is a goldmark instance configured for safe HTML output.
// Raw HTML in markdown input is escaped (WithUnsafe is NOT set), preventing XSS.
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// internalError logs the real error and returns a generic message to the client.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// backendErrorMessage extracts the user-facing message from a failed
// mutating call. Transport failures degrade to a generic line.
func backendErrorMessage(err error) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		return apiErr.Error()
	}
	return "The request could not be completed. Please try again."
}

const flashCookieName = "kitaportal_flash"

// flash is a one-shot notification carried across a redirect.
type flash struct {
	Level   string // "success" or "error"
	Message string
}

// setFlash stores a notification for the next page render.
func setFlash(w http.ResponseWriter, level, message string) {
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    url.QueryEscape(level + "|" + message),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   60,
	})
}

// popFlash reads and clears the pending notification, if any.
func popFlash(w http.ResponseWriter, r *http.Request) *flash {
	cookie, err := r.Cookie(flashCookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   -1,
	})
	raw, err := url.QueryUnescape(cookie.Value)
	if err != nil {
		return nil
	}
	level, message, found := strings.Cut(raw, "|")
	if !found || message == "" {
		return nil
	}
	return &flash{Level: level, Message: message}
}

// templatesDir is relative to the process working directory. Tests
// running from the package directory point it at "templates".
var templatesDir = "internal/adapters/http/templates"

func renderTemplate(w http.ResponseWriter, r *http.Request, templateName string, data map[string]any) {
	sess, loggedIn := middleware.GetSessionFromContext(r.Context())
	role := ""
	displayName := ""
	picture := ""
	if loggedIn {
		role = sess.User.Role
		displayName = sess.User.DisplayName()
		picture = sess.User.ProfilePicture
	}

	funcMap := template.FuncMap{
		"currentRole": func() string { return role },
		"currentName": func() string { return displayName },
		"isLoggedIn":  func() bool { return loggedIn },
		"isAdmin":     func() bool { return role == user.RoleAdmin },
		"csrfToken":   func() string { return csrf.Token(r) },
		"renderMarkdown": func(md string) template.HTML {
			var buf bytes.Buffer
			if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
				return template.HTML(template.HTMLEscapeString(md))
			}
			return template.HTML(buf.String())
		},
		"pictureURL": func() string {
			if picture == "" {
				return ""
			}
			return backendBaseURL + picture
		},
		"formatDate": func(date string) string {
			t, err := time.Parse("2006-01-02", date)
			if err != nil {
				return date
			}
			return t.Format("Mon, 2 Jan 2006")
		},
		"formatTime": func(t time.Time) string {
			return t.Format("2 Jan 2006 15:04")
		},
		"add": func(a, b int) int { return a + b },
		"sub": func(a, b int) int { return a - b },
	}

	if data == nil {
		data = map[string]any{}
	}
	if _, ok := data["Flash"]; !ok {
		data["Flash"] = popFlash(w, r)
	}

	layoutPath := filepath.Join(templatesDir, "layout.html")
	pagePath := filepath.Join(templatesDir, templateName)
	tpl, err := template.New("layout.html").Funcs(funcMap).ParseFiles(layoutPath, pagePath)
	if err != nil {
		http.Error(w, "Template error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tpl.Execute(w, data); err != nil {
		http.Error(w, "Render error: "+err.Error(), http.StatusInternalServerError)
		return
	}
}

// parseUintField reads a numeric form value, 0 when absent or invalid.
func parseUintField(r *http.Request, field string) uint {
	n, err := strconv.ParseUint(strings.TrimSpace(r.FormValue(field)), 10, 32)
	if err != nil {
		return 0
	}
	return uint(n)
}

// handleHealthz handles GET /healthz.
func handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok"))
}

// handleLogin handles GET and POST /login.
// POST: authenticates against the backend, creates a portal session
// carrying the backend credentials, and redirects to the dashboard.
func handleLogin(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetSessionFromContext(r.Context()); ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	if r.Method == "GET" {
		renderTemplate(w, r, "login.html", nil)
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
	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")
	if email == "" || password == "" {
		renderTemplate(w, r, "login.html", map[string]any{
			"Error": "Email and password are required.",
			"Email": email,
		})
		return
	}

	ctx := r.Context()
	client := api.NewClient(backendBaseURL)
	if perfCollector != nil {
		client.SetRecorder(perfCollector)
	}
	if err := client.Login(ctx, email, password); err != nil {
		slog.Info("auth_event", "event", "login_failed", "email", email)
		renderTemplate(w, r, "login.html", map[string]any{
			"Error": backendErrorMessage(err),
			"Email": email,
		})
		return
	}

	u, err := client.Profile(ctx)
	if err != nil {
		internalError(w, err)
		return
	}

	token, err := sessions.Create(ctx, u, client)
	if err != nil {
		internalError(w, err)
		return
	}
	middleware.SetSessionCookie(w, token)
	slog.Info("auth_event", "event", "login", "email", email, "role", u.Role)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleRegister handles GET and POST /register.
func handleRegister(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetSessionFromContext(r.Context()); ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	if r.Method == "GET" {
		renderTemplate(w, r, "register.html", nil)
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
	input := api.RegisterInput{
		Email:     strings.TrimSpace(r.FormValue("email")),
		Password:  r.FormValue("password"),
		FirstName: strings.TrimSpace(r.FormValue("first_name")),
		LastName:  strings.TrimSpace(r.FormValue("last_name")),
		Phone:     strings.TrimSpace(r.FormValue("phone")),
	}
	if input.Email == "" || input.Password == "" {
		renderTemplate(w, r, "register.html", map[string]any{
			"Error": "Email and password are required.",
			"Input": input,
		})
		return
	}

	client := api.NewClient(backendBaseURL)
	if err := client.Register(r.Context(), input); err != nil {
		renderTemplate(w, r, "register.html", map[string]any{
			"Error": backendErrorMessage(err),
			"Input": input,
		})
		return
	}

	slog.Info("auth_event", "event", "registered", "email", input.Email)
	setFlash(w, "success", "Account created. You can sign in now.")
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// handleLogout handles POST /logout.
func handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	if sess, ok := middleware.GetSessionFromContext(ctx); ok {
		// Best effort: the portal session dies regardless.
		if err := sess.Client.Logout(ctx); err != nil {
			slog.Warn("auth_event", "event", "backend_logout_failed", "error", err.Error())
		}
		sessions.Delete(ctx, sess.Token)
		slog.Info("auth_event", "event", "logout", "email", sess.User.Email)
	}
	middleware.ClearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// handleDashboard handles GET /.
func handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	sess, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	result, err := projections.QueryGetDashboard(r.Context(),
		projections.GetDashboardQuery{Role: sess.User.Role},
		projections.GetDashboardDeps{
			StatsFetcher:       sess.Client,
			AnnouncementLister: sess.Client,
		})
	if err != nil {
		internalError(w, err)
		return
	}

	renderTemplate(w, r, "dashboard.html", map[string]any{
		"Stats":         result.Stats,
		"Announcements": result.Announcements,
	})
}

// handleProfile handles GET and POST /profile.
// POST: saves the editable fields and refreshes the session snapshot.
func handleProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess, ok := middleware.GetSessionFromContext(ctx)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	if r.Method == "GET" {
		// Re-fetch so the page shows the backend's current state, not
		// the session snapshot.
		u, err := sess.Client.Profile(ctx)
		if err != nil {
			u = sess.User
		}
		renderTemplate(w, r, "profile.html", map[string]any{"User": u})
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
	input := api.ProfileInput{
		FirstName: strings.TrimSpace(r.FormValue("first_name")),
		LastName:  strings.TrimSpace(r.FormValue("last_name")),
		Phone:     strings.TrimSpace(r.FormValue("phone")),
	}

	updated, err := sess.Client.UpdateProfile(ctx, input)
	if err != nil {
		setFlash(w, "error", backendErrorMessage(err))
		http.Redirect(w, r, "/profile", http.StatusSeeOther)
		return
	}

	sessions.UpdateUser(ctx, sess.Token, updated)
	setFlash(w, "success", "Profile saved.")
	http.Redirect(w, r, "/profile", http.StatusSeeOther)
}

// handleProfilePicture handles POST /profile/picture (multipart upload).
func handleProfilePicture(w http.ResponseWriter, r *http.Request) {
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

	const maxUpload = 5 << 20 // 5 MB
	if err := r.ParseMultipartForm(maxUpload); err != nil {
		http.Error(w, "request too large or malformed", http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("picture")
	if err != nil {
		setFlash(w, "error", "Choose an image file first.")
		http.Redirect(w, r, "/profile", http.StatusSeeOther)
		return
	}
	defer file.Close()

	ct := header.Header.Get("Content-Type")
	if ct != "image/png" && ct != "image/jpeg" && ct != "image/webp" {
		setFlash(w, "error", "Profile picture must be a png, jpeg or webp image.")
		http.Redirect(w, r, "/profile", http.StatusSeeOther)
		return
	}

	pictureURL, err := sess.Client.UploadProfilePicture(ctx, header.Filename, file)
	if err != nil {
		setFlash(w, "error", backendErrorMessage(err))
		http.Redirect(w, r, "/profile", http.StatusSeeOther)
		return
	}

	u := sess.User
	u.ProfilePicture = pictureURL
	sessions.UpdateUser(ctx, sess.Token, u)
	setFlash(w, "success", "Profile picture updated.")
	http.Redirect(w, r, "/profile", http.StatusSeeOther)
}
