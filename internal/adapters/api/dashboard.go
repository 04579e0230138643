package api

import (
	"context"

	"kitaportal/internal/domain/announcement"
)

// Stats are the aggregate counts the backend computes for the
// dashboard, scoped by role server-side.
type Stats struct {
	TotalChildren     int `json:"total_children"`
	TotalReservations int `json:"total_reservations"`
	OpenSlots         int `json:"open_slots"`
}

// DashboardStats fetches the dashboard counters.
func (c *Client) DashboardStats(ctx context.Context) (Stats, error) {
	var out Stats
	if err := c.get(ctx, "/dashboard/stats", &out); err != nil {
		return Stats{}, err
	}
	return out, nil
}

// Announcements lists admin-authored notices, newest first.
func (c *Client) Announcements(ctx context.Context) ([]announcement.Announcement, error) {
	var out struct {
		Data []announcement.Announcement `json:"data"`
	}
	if err := c.get(ctx, "/announcements", &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}
