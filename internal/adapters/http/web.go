// Package web serves the portal pages. Every handler reads from the
// backend through the session's API client and renders html/template
// pages; the portal itself holds no domain data.
package web

import (
	"crypto/rand"
	"encoding/hex"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"kitaportal/internal/adapters/http/middleware"
	"kitaportal/internal/adapters/http/perf"
)

// loadCSRFKey reads the CSRF secret from PORTAL_CSRF_KEY (hex-encoded, 32 bytes).
// In production, the key MUST be set. In development, a random key is generated per startup.
func loadCSRFKey() []byte {
	if keyHex := os.Getenv("PORTAL_CSRF_KEY"); keyHex != "" {
		key, err := hex.DecodeString(keyHex)
		if err != nil || len(key) != 32 {
			log.Fatal("PORTAL_CSRF_KEY must be 64 hex characters (32 bytes)")
		}
		return key
	}
	if os.Getenv("PORTAL_ENV") == "production" {
		log.Fatal("PORTAL_CSRF_KEY is required in production")
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		log.Fatalf("failed to generate CSRF key: %v", err)
	}
	log.Println("WARNING: using random CSRF key (forms won't survive restart). Set PORTAL_CSRF_KEY for production.")
	return key
}

// Global backend base URL (set by NewMux)
var backendBaseURL string

// Global session store instance (set by NewMux)
var sessions *middleware.SessionStore

// Global perf collector (set by NewMux)
var perfCollector *perf.Collector

// RateLimitPerSecond controls the per-IP rate limit. Tests can increase this.
var RateLimitPerSecond = 10

// NewMux wires HTTP handlers for the portal.
func NewMux(staticDir, backendURL string, sessionStore *middleware.SessionStore, collector *perf.Collector) http.Handler {
	backendBaseURL = backendURL
	sessions = sessionStore
	perfCollector = collector

	mux := http.NewServeMux()
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir))))
	registerRoutes(mux)

	// CSRF key: 32-byte hex-encoded secret from env var
	csrfKey := loadCSRFKey()

	var trustedOrigins []string
	if v := os.Getenv("PORTAL_TRUSTED_ORIGINS"); v != "" {
		trustedOrigins = strings.Split(v, ",")
	}

	// Rate limiter: configurable requests per second per IP
	limiter := middleware.NewRateLimiter(RateLimitPerSecond, time.Second)

	return middleware.Chain(mux,
		middleware.SecurityHeaders,
		middleware.CSRF(csrfKey, trustedOrigins),
		middleware.Auth(sessions),
		middleware.RateLimit(limiter),
		middleware.Timing(collector),
	)
}
