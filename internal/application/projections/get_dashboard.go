package projections

import (
	"context"
	"log/slog"

	"kitaportal/internal/adapters/api"
	"kitaportal/internal/domain/announcement"
)

// DashboardStatsFetcher defines the backend interface needed by the
// dashboard projection.
type DashboardStatsFetcher interface {
	DashboardStats(ctx context.Context) (api.Stats, error)
}

// DashboardAnnouncementLister defines the backend interface needed by
// the dashboard projection.
type DashboardAnnouncementLister interface {
	Announcements(ctx context.Context) ([]announcement.Announcement, error)
}

// GetDashboardDeps holds dependencies for the dashboard projection.
type GetDashboardDeps struct {
	StatsFetcher       DashboardStatsFetcher
	AnnouncementLister DashboardAnnouncementLister
}

// GetDashboardQuery carries input for the dashboard projection.
type GetDashboardQuery struct {
	Role string // parent or admin; the backend scopes counts itself
}

// DashboardResult carries the output of the dashboard projection.
type DashboardResult struct {
	Role          string
	Stats         api.Stats
	Announcements []announcement.Announcement
}

// QueryGetDashboard aggregates the dashboard counters and the
// announcement feed. Both are passive reads: a failed fetch logs and
// falls back to zero values so the page still renders.
func QueryGetDashboard(ctx context.Context, query GetDashboardQuery, deps GetDashboardDeps) (DashboardResult, error) {
	result := DashboardResult{Role: query.Role}

	stats, err := deps.StatsFetcher.DashboardStats(ctx)
	if err == nil {
		result.Stats = stats
	} else {
		slog.Warn("dashboard_fetch_failed", "collection", "stats", "error", err.Error())
	}

	announcements, err := deps.AnnouncementLister.Announcements(ctx)
	if err == nil {
		result.Announcements = announcements
	} else {
		slog.Warn("dashboard_fetch_failed", "collection", "announcements", "error", err.Error())
	}

	return result, nil
}
