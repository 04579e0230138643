package projections

import (
	"context"
	"errors"
	"testing"
	"time"

	"kitaportal/internal/adapters/api"
	"kitaportal/internal/domain/announcement"
)

type mockDashboardStatsFetcher struct {
	stats api.Stats
	err   error
}

// DashboardStats returns the seeded stats or the seeded error.
func (m *mockDashboardStatsFetcher) DashboardStats(_ context.Context) (api.Stats, error) {
	return m.stats, m.err
}

type mockDashboardAnnouncementLister struct {
	announcements []announcement.Announcement
	err           error
}

// Announcements returns the seeded announcements or the seeded error.
func (m *mockDashboardAnnouncementLister) Announcements(_ context.Context) ([]announcement.Announcement, error) {
	return m.announcements, m.err
}

// TestQueryGetDashboard_Aggregates verifies stats and announcements
// end up in one result.
func TestQueryGetDashboard_Aggregates(t *testing.T) {
	deps := GetDashboardDeps{
		StatsFetcher: &mockDashboardStatsFetcher{stats: api.Stats{
			TotalChildren: 12, TotalReservations: 30, OpenSlots: 4,
		}},
		AnnouncementLister: &mockDashboardAnnouncementLister{announcements: []announcement.Announcement{
			{ID: 1, Title: "Summer party", Content: "**Friday!**", CreatedAt: time.Now()},
		}},
	}

	res, err := QueryGetDashboard(context.Background(), GetDashboardQuery{Role: "parent"}, deps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Stats.TotalChildren != 12 || res.Stats.OpenSlots != 4 {
		t.Fatalf("stats=%+v", res.Stats)
	}
	if len(res.Announcements) != 1 || res.Announcements[0].Title != "Summer party" {
		t.Fatalf("announcements=%+v", res.Announcements)
	}
	if res.Role != "parent" {
		t.Fatalf("role=%q", res.Role)
	}
}

// TestQueryGetDashboard_SwallowsFetchFailures verifies failed passive
// reads degrade to zero values, not errors.
func TestQueryGetDashboard_SwallowsFetchFailures(t *testing.T) {
	deps := GetDashboardDeps{
		StatsFetcher:       &mockDashboardStatsFetcher{err: errors.New("timeout")},
		AnnouncementLister: &mockDashboardAnnouncementLister{err: errors.New("timeout")},
	}

	res, err := QueryGetDashboard(context.Background(), GetDashboardQuery{Role: "admin"}, deps)
	if err != nil {
		t.Fatalf("passive failures must not propagate, got: %v", err)
	}
	if res.Stats != (api.Stats{}) {
		t.Fatalf("stats=%+v want zero value", res.Stats)
	}
	if len(res.Announcements) != 0 {
		t.Fatalf("announcements=%d want 0", len(res.Announcements))
	}
}
