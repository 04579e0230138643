package middleware

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"kitaportal/internal/adapters/api"
	sessionstore "kitaportal/internal/adapters/storage/session"
	"kitaportal/internal/domain/user"
)

// contextKey is an unexported type for context keys in this package.
type contextKey string

const sessionContextKey contextKey = "session"

// SessionTTL is how long a portal session stays valid.
const SessionTTL = 24 * time.Hour

// Session is an authenticated portal session. The Client carries the
// backend cookies and CSRF token for this login; every backend call on
// behalf of the user goes through it.
type Session struct {
	Token     string
	User      user.User
	Client    *api.Client
	CreatedAt time.Time
}

// SessionStore keeps live sessions in memory and writes them through
// to a persistent store so logins survive a portal restart. The
// persistent store may be nil for memory-only operation.
type SessionStore struct {
	mu         sync.RWMutex
	sessions   map[string]Session
	backendURL string
	persist    sessionstore.Store
}

// NewSessionStore creates a session store. backendURL is used to
// rebuild API clients for sessions loaded from persistence.
func NewSessionStore(backendURL string, persist sessionstore.Store) *SessionStore {
	return &SessionStore{
		sessions:   make(map[string]Session),
		backendURL: backendURL,
		persist:    persist,
	}
}

// Create stores a new session and returns the token.
// PRE: u has been fetched from the backend, client holds its credentials
// POST: Session is stored and persisted, token is returned
func (ss *SessionStore) Create(ctx context.Context, u user.User, client *api.Client) (string, error) {
	token, err := generateToken()
	if err != nil {
		return "", err
	}
	session := Session{
		Token:     token,
		User:      u,
		Client:    client,
		CreatedAt: time.Now(),
	}
	ss.mu.Lock()
	ss.sessions[token] = session
	ss.mu.Unlock()
	ss.persistSession(ctx, session)
	return token, nil
}

// Get retrieves a session by token, falling back to the persistent
// store when the in-memory copy is gone (portal restart).
// PRE: token is non-empty
// POST: Returns session if valid and not expired
func (ss *SessionStore) Get(ctx context.Context, token string) (Session, bool) {
	ss.mu.RLock()
	session, ok := ss.sessions[token]
	ss.mu.RUnlock()
	if ok {
		if time.Since(session.CreatedAt) > SessionTTL {
			ss.Delete(ctx, token)
			return Session{}, false
		}
		return session, true
	}

	if ss.persist == nil {
		return Session{}, false
	}
	record, found, err := ss.persist.Load(ctx, token)
	if err != nil {
		slog.Warn("session_load_failed", "error", err.Error())
		return Session{}, false
	}
	if !found || time.Since(record.CreatedAt) > SessionTTL {
		return Session{}, false
	}
	session = Session{
		Token:     record.Token,
		User:      record.User,
		Client:    api.RestoreClient(ss.backendURL, record.Credentials),
		CreatedAt: record.CreatedAt,
	}
	ss.mu.Lock()
	ss.sessions[token] = session
	ss.mu.Unlock()
	return session, true
}

// Delete removes a session by token from memory and persistence.
// PRE: token is non-empty
// POST: Session with given token is removed
func (ss *SessionStore) Delete(ctx context.Context, token string) {
	ss.mu.Lock()
	delete(ss.sessions, token)
	ss.mu.Unlock()
	if ss.persist != nil {
		if err := ss.persist.Delete(ctx, token); err != nil {
			slog.Warn("session_delete_failed", "error", err.Error())
		}
	}
}

// UpdateUser replaces the user snapshot of a session, after a profile
// edit for example.
// PRE: token exists in the store
// POST: Session user is replaced and persisted
func (ss *SessionStore) UpdateUser(ctx context.Context, token string, u user.User) bool {
	ss.mu.Lock()
	session, ok := ss.sessions[token]
	if !ok {
		ss.mu.Unlock()
		return false
	}
	session.User = u
	ss.sessions[token] = session
	ss.mu.Unlock()
	ss.persistSession(ctx, session)
	return true
}

// Sync writes the session's current backend credentials through to
// persistence. Call it after mutating backend requests; those rotate
// the CSRF token inside the client.
func (ss *SessionStore) Sync(ctx context.Context, token string) {
	ss.mu.RLock()
	session, ok := ss.sessions[token]
	ss.mu.RUnlock()
	if !ok {
		return
	}
	ss.persistSession(ctx, session)
}

func (ss *SessionStore) persistSession(ctx context.Context, session Session) {
	if ss.persist == nil {
		return
	}
	record := sessionstore.Record{
		Token:       session.Token,
		User:        session.User,
		Credentials: session.Client.Credentials(),
		CreatedAt:   session.CreatedAt,
	}
	if err := ss.persist.Save(ctx, record); err != nil {
		slog.Warn("session_persist_failed", "error", err.Error())
	}
}

const sessionCookieName = "kitaportal_session"

// Auth returns middleware that extracts the session from the cookie and sets it in context.
// It does NOT block unauthenticated requests; use RequireAuth or RequireRole for that.
func Auth(sessions *SessionStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(sessionCookieName)
			if err == nil && cookie.Value != "" {
				if session, ok := sessions.Get(r.Context(), cookie.Value); ok {
					ctx := context.WithValue(r.Context(), sessionContextKey, session)
					r = r.WithContext(ctx)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAuth returns middleware that blocks unauthenticated requests.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetSessionFromContext(r.Context()); !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole returns middleware that blocks users without one of the specified roles.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	roleSet := make(map[string]bool, len(roles))
	for _, r := range roles {
		roleSet[r] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, ok := GetSessionFromContext(r.Context())
			if !ok {
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}
			if !roleSet[session.User.Role] {
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetSessionFromContext extracts the session from the request context.
func GetSessionFromContext(ctx context.Context) (Session, bool) {
	session, ok := ctx.Value(sessionContextKey).(Session)
	return session, ok
}

// SetSessionCookie sets the session cookie on the response.
func SetSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		HttpOnly: true,
		Secure:   false, // Allow HTTP for local development
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
		MaxAge:   int(SessionTTL.Seconds()),
	})
}

// ClearSessionCookie removes the session cookie.
func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		HttpOnly: true,
		Secure:   false,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
		MaxAge:   -1,
	})
}

// IsRole checks if the current session has one of the given roles.
func IsRole(ctx context.Context, roles ...string) bool {
	session, ok := GetSessionFromContext(ctx)
	if !ok {
		return false
	}
	for _, r := range roles {
		if session.User.Role == r {
			return true
		}
	}
	return false
}

// IsAdmin checks if the current session is an admin.
func IsAdmin(ctx context.Context) bool {
	return IsRole(ctx, user.RoleAdmin)
}

// ContextWithSession returns a context with the given session set.
// Intended for use in tests.
func ContextWithSession(ctx context.Context, sess Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, sess)
}

func generateToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
