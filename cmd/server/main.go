package main

import (
	"context"
	"database/sql"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	_ "modernc.org/sqlite"

	web "kitaportal/internal/adapters/http"
	"kitaportal/internal/adapters/http/middleware"
	"kitaportal/internal/adapters/http/perf"
	"kitaportal/internal/adapters/storage"
	sessionStore "kitaportal/internal/adapters/storage/session"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// .env is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded configuration from .env")
	}

	if os.Getenv("PORTAL_ENV") != "production" {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	backendURL := envOrDefault("PORTAL_BACKEND_URL", "http://localhost:8080")

	// The portal's own database only holds sessions. WAL mode with a
	// busy timeout keeps concurrent logins from tripping over locks.
	dbPath := envOrDefault("PORTAL_DB_PATH", "kitaportal.db")
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)

	if err := db.Ping(); err != nil {
		log.Fatalf("database unreachable: %v", err)
	}
	if err := storage.InitDB(db); err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	persist := sessionStore.NewSQLiteStore(db)
	sessions := middleware.NewSessionStore(backendURL, persist)

	// Drop stale sessions on start and then hourly.
	expireSessions := func() {
		cutoff := time.Now().Add(-middleware.SessionTTL)
		if n, err := persist.DeleteExpired(context.Background(), cutoff); err != nil {
			slog.Warn("session_cleanup_failed", "error", err.Error())
		} else if n > 0 {
			slog.Info("session_cleanup", "removed", n)
		}
	}
	expireSessions()
	go func() {
		for range time.Tick(time.Hour) {
			expireSessions()
		}
	}()

	collector := perf.NewCollector(perf.DefaultRingSize)

	mux := web.NewMux("static", backendURL, sessions, collector)

	addr := envOrDefault("PORTAL_ADDR", ":8090")
	log.Printf("Kita portal %s starting on %s (backend=%s, env=%s)", version, addr, backendURL, envOrDefault("PORTAL_ENV", "development"))

	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
