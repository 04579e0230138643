package browser_test

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"

	_ "modernc.org/sqlite"

	web "kitaportal/internal/adapters/http"
	"kitaportal/internal/adapters/http/middleware"
	"kitaportal/internal/adapters/http/perf"
	"kitaportal/internal/adapters/storage"
	sessionStore "kitaportal/internal/adapters/storage/session"
	"kitaportal/internal/domain/child"
	"kitaportal/internal/domain/reservation"
	"kitaportal/internal/domain/slot"
	"kitaportal/internal/domain/user"
)

const (
	parentEmail    = "ana@example.com"
	parentPassword = "secret123"
	adminEmail     = "admin@example.com"
	adminPassword  = "admin123"
)

// fakeBackend emulates the reservation backend over HTTP, with just
// enough state for the portal flows: cookie auth, CSRF token rotation
// on every response, and capacity bookkeeping on reserve.
type fakeBackend struct {
	mu           sync.Mutex
	users        map[string]user.User // by email
	passwords    map[string]string
	tokens       map[string]string // jwt cookie value -> email
	csrfTokens   map[string]bool   // tokens the backend accepts
	children     []child.Child
	calendar     slot.Calendar
	reservations []reservation.Reservation
	nextID       uint
}

func newFakeBackend(bookableDate, fullDate string) *fakeBackend {
	parent := child.Parent{ID: 1, Email: parentEmail, FirstName: "Ana", LastName: "Kovac"}
	return &fakeBackend{
		users: map[string]user.User{
			parentEmail: {ID: 1, Email: parentEmail, Role: user.RoleParent, FirstName: "Ana", LastName: "Kovac"},
			adminEmail:  {ID: 2, Email: adminEmail, Role: user.RoleAdmin, FirstName: "Admin", LastName: "One"},
		},
		passwords:  map[string]string{parentEmail: parentPassword, adminEmail: adminPassword},
		tokens:     make(map[string]string),
		csrfTokens: make(map[string]bool),
		children: []child.Child{
			{ID: 7, Name: "Mila", Age: 3, ParentID: 1, Parent: &parent},
		},
		calendar: slot.Calendar{
			bookableDate: {{ID: 1, Date: bookableDate, Capacity: 5, Remaining: 2}},
			fullDate:     {{ID: 2, Date: fullDate, Capacity: 3, Remaining: 0}},
		},
		nextID: 100,
	}
}

func randomToken() string {
	b := make([]byte, 16)
	rand.Read(b)
	return hex.EncodeToString(b)
}

func (fb *fakeBackend) writeJSON(w http.ResponseWriter, status int, v any) {
	// Every response carries a fresh CSRF token, like the real backend.
	token := randomToken()
	fb.csrfTokens[token] = true
	w.Header().Set("X-Csrf-Token", token)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (fb *fakeBackend) authed(r *http.Request) (user.User, bool) {
	cookie, err := r.Cookie("jwt")
	if err != nil {
		return user.User{}, false
	}
	email, ok := fb.tokens[cookie.Value]
	if !ok {
		return user.User{}, false
	}
	return fb.users[email], true
}

func (fb *fakeBackend) checkCSRF(r *http.Request) bool {
	return fb.csrfTokens[r.Header.Get("X-Csrf-Token")]
}

func (fb *fakeBackend) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		fb.mu.Lock()
		defer fb.mu.Unlock()
		var body struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		if fb.passwords[body.Email] != body.Password {
			fb.writeJSON(w, 401, map[string]any{"error": "invalid email or password"})
			return
		}
		jwt := randomToken()
		fb.tokens[jwt] = body.Email
		http.SetCookie(w, &http.Cookie{Name: "jwt", Value: jwt, Path: "/"})
		fb.writeJSON(w, 200, map[string]any{"message": "logged in"})
	})

	mux.HandleFunc("/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		fb.mu.Lock()
		defer fb.mu.Unlock()
		if cookie, err := r.Cookie("jwt"); err == nil {
			delete(fb.tokens, cookie.Value)
		}
		fb.writeJSON(w, 200, map[string]any{"message": "logged out"})
	})

	mux.HandleFunc("/user/profile", func(w http.ResponseWriter, r *http.Request) {
		fb.mu.Lock()
		defer fb.mu.Unlock()
		u, ok := fb.authed(r)
		if !ok {
			fb.writeJSON(w, 401, map[string]any{"error": "unauthorized"})
			return
		}
		fb.writeJSON(w, 200, map[string]any{"user": u})
	})

	mux.HandleFunc("/slots/calendar", func(w http.ResponseWriter, r *http.Request) {
		fb.mu.Lock()
		defer fb.mu.Unlock()
		fb.writeJSON(w, 200, map[string]any{"calendar": fb.calendar})
	})

	mux.HandleFunc("/parent/children", func(w http.ResponseWriter, r *http.Request) {
		fb.mu.Lock()
		defer fb.mu.Unlock()
		if _, ok := fb.authed(r); !ok {
			fb.writeJSON(w, 401, map[string]any{"error": "unauthorized"})
			return
		}
		fb.writeJSON(w, 200, map[string]any{"data": fb.children})
	})

	mux.HandleFunc("/reservations", func(w http.ResponseWriter, r *http.Request) {
		fb.mu.Lock()
		defer fb.mu.Unlock()
		if _, ok := fb.authed(r); !ok {
			fb.writeJSON(w, 401, map[string]any{"error": "unauthorized"})
			return
		}
		fb.writeJSON(w, 200, map[string]any{"data": fb.reservations})
	})

	mux.HandleFunc("/admin/reservations", func(w http.ResponseWriter, r *http.Request) {
		fb.mu.Lock()
		defer fb.mu.Unlock()
		u, ok := fb.authed(r)
		if !ok || u.Role != user.RoleAdmin {
			fb.writeJSON(w, 403, map[string]any{"error": "forbidden"})
			return
		}
		date := r.URL.Query().Get("date")
		out := []reservation.Reservation{}
		for _, res := range fb.reservations {
			if date == "" || res.Date == date {
				out = append(out, res)
			}
		}
		fb.writeJSON(w, 200, map[string]any{"data": out})
	})

	mux.HandleFunc("/parent/reserve", func(w http.ResponseWriter, r *http.Request) {
		fb.mu.Lock()
		defer fb.mu.Unlock()
		if _, ok := fb.authed(r); !ok {
			fb.writeJSON(w, 401, map[string]any{"error": "unauthorized"})
			return
		}
		if !fb.checkCSRF(r) {
			fb.writeJSON(w, 403, map[string]any{"error": "missing or invalid csrf token", "code": "CSRF"})
			return
		}
		var body struct {
			SlotID  uint `json:"slot_id"`
			ChildID uint `json:"child_id"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		for date, slots := range fb.calendar {
			for i := range slots {
				if slots[i].ID != body.SlotID {
					continue
				}
				if slots[i].Remaining == 0 {
					fb.writeJSON(w, 409, map[string]any{"error": "no remaining capacity for this slot", "code": "CAPACITY"})
					return
				}
				slots[i].Remaining--
				fb.nextID++
				fb.reservations = append(fb.reservations, reservation.Reservation{
					ID:      fb.nextID,
					Date:    date,
					Status:  reservation.StatusPending,
					ChildID: body.ChildID,
					SlotID:  body.SlotID,
					Child:   &fb.children[0],
				})
				fb.writeJSON(w, 201, map[string]any{"message": "reservation created"})
				return
			}
		}
		fb.writeJSON(w, 404, map[string]any{"error": "slot not found"})
	})

	mux.HandleFunc("/parent/reservations/", func(w http.ResponseWriter, r *http.Request) {
		fb.mu.Lock()
		defer fb.mu.Unlock()
		if !fb.checkCSRF(r) {
			fb.writeJSON(w, 403, map[string]any{"error": "missing or invalid csrf token", "code": "CSRF"})
			return
		}
		id, _ := strconv.Atoi(strings.TrimPrefix(r.URL.Path, "/parent/reservations/"))
		kept := fb.reservations[:0]
		for _, res := range fb.reservations {
			if res.ID != uint(id) {
				kept = append(kept, res)
			}
		}
		fb.reservations = kept
		fb.writeJSON(w, 200, map[string]any{"message": "reservation cancelled"})
	})

	mux.HandleFunc("/dashboard/stats", func(w http.ResponseWriter, r *http.Request) {
		fb.mu.Lock()
		defer fb.mu.Unlock()
		open := 0
		for _, slots := range fb.calendar {
			for _, s := range slots {
				open += s.Remaining
			}
		}
		fb.writeJSON(w, 200, map[string]any{
			"total_children":     len(fb.children),
			"total_reservations": len(fb.reservations),
			"open_slots":         open,
		})
	})

	mux.HandleFunc("/announcements", func(w http.ResponseWriter, r *http.Request) {
		fb.mu.Lock()
		defer fb.mu.Unlock()
		fb.writeJSON(w, 200, map[string]any{"data": []map[string]any{
			{"id": 1, "title": "Welcome", "content": "Summer schedule is **out**.", "created_at": "2026-08-01T10:00:00Z"},
		}})
	})

	return mux
}

// seedReservation inserts a reservation directly, bypassing the portal.
func (fb *fakeBackend) seedReservation(date, status string) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.nextID++
	fb.reservations = append(fb.reservations, reservation.Reservation{
		ID: fb.nextID, Date: date, Status: status,
		ChildID: fb.children[0].ID, SlotID: 1, Child: &fb.children[0],
	})
}

// testApp holds the fake backend, the running portal and Playwright.
type testApp struct {
	BaseURL      string
	Backend      *fakeBackend
	BookableDate string
	FullDate     string
	PW           *playwright.Playwright
	Browser      playwright.Browser
}

// monthDay returns day n of the current month, so the date is always
// on the calendar page the portal opens by default.
func monthDay(n int) string {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), n, 0, 0, 0, 0, time.UTC).Format(slot.DateLayout)
}

// newTestApp starts the fake backend, a portal server on a free port
// and a headless browser.
func newTestApp(t *testing.T) *testApp {
	t.Helper()

	bookableDate := monthDay(10)
	fullDate := monthDay(20)
	backend := newFakeBackend(bookableDate, fullDate)
	backendSrv := httptest.NewServer(backend.handler())
	t.Cleanup(backendSrv.Close)

	// Temp SQLite DB for portal sessions
	dbPath := filepath.Join(t.TempDir(), "portal.db")
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("failed to open test DB: %v", err)
	}
	if err := storage.InitDB(db); err != nil {
		t.Fatalf("failed to initialize test DB: %v", err)
	}
	sessions := middleware.NewSessionStore(backendSrv.URL, sessionStore.NewSQLiteStore(db))

	// Find a free port
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to find free port: %v", err)
	}
	port := listener.Addr().(*net.TCPAddr).Port
	listener.Close()

	// Change to project root so relative template/static paths work
	projectRoot := findProjectRoot(t)
	origDir, _ := os.Getwd()
	if err := os.Chdir(projectRoot); err != nil {
		t.Fatalf("failed to chdir to project root: %v", err)
	}
	t.Cleanup(func() { os.Chdir(origDir) })

	// Trust the test port for CSRF checks before creating the mux
	os.Setenv("PORTAL_TRUSTED_ORIGINS",
		fmt.Sprintf("127.0.0.1:%d,localhost:%d", port, port))
	t.Cleanup(func() { os.Unsetenv("PORTAL_TRUSTED_ORIGINS") })

	web.RateLimitPerSecond = 1000
	mux := web.NewMux("static", backendSrv.URL, sessions, perf.NewCollector(perf.DefaultRingSize))
	srv := &http.Server{
		Addr:    fmt.Sprintf("127.0.0.1:%d", port),
		Handler: mux,
	}
	go func() {
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Printf("test server error: %v", err)
		}
	}()

	// Wait for server to be ready
	baseURL := fmt.Sprintf("http://127.0.0.1:%d", port)
	for i := 0; i < 50; i++ {
		resp, err := http.Get(baseURL + "/login")
		if err == nil {
			resp.Body.Close()
			break
		}
		time.Sleep(100 * time.Millisecond)
	}

	// Start Playwright
	pw, err := playwright.Run()
	if err != nil {
		t.Fatalf("failed to start Playwright: %v", err)
	}
	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
	})
	if err != nil {
		t.Fatalf("failed to launch browser: %v", err)
	}

	app := &testApp{
		BaseURL:      baseURL,
		Backend:      backend,
		BookableDate: bookableDate,
		FullDate:     fullDate,
		PW:           pw,
		Browser:      browser,
	}

	t.Cleanup(func() {
		browser.Close()
		pw.Stop()
		srv.Close()
		db.Close()
	})

	return app
}

// newPage creates a new browser page (tab).
func (a *testApp) newPage(t *testing.T) playwright.Page {
	t.Helper()
	page, err := a.Browser.NewPage()
	if err != nil {
		t.Fatalf("failed to create page: %v", err)
	}
	t.Cleanup(func() { page.Close() })
	return page
}

// login signs in through the form and waits for the dashboard.
func (a *testApp) login(t *testing.T, page playwright.Page, email, password string) {
	t.Helper()
	if _, err := page.Goto(a.BaseURL + "/login"); err != nil {
		t.Fatalf("failed to navigate to login: %v", err)
	}
	if err := page.Locator("input[name=email]").Fill(email); err != nil {
		t.Fatalf("failed to fill email: %v", err)
	}
	if err := page.Locator("input[name=password]").Fill(password); err != nil {
		t.Fatalf("failed to fill password: %v", err)
	}
	if err := page.Locator("button[type=submit]").Click(); err != nil {
		t.Fatalf("failed to click login: %v", err)
	}
	if err := page.WaitForURL(a.BaseURL+"/", playwright.PageWaitForURLOptions{
		Timeout: playwright.Float(10000),
	}); err != nil {
		t.Fatalf("login did not redirect to dashboard: %v", err)
	}
}

// findProjectRoot walks up from the working directory to find the project root (contains go.mod).
func findProjectRoot(t *testing.T) string {
	t.Helper()
	dir, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working directory: %v", err)
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatalf("could not find project root (go.mod) from working directory")
		}
		dir = parent
	}
}
