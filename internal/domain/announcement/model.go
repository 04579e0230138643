package announcement

import "time"

// Announcement is an admin-authored notice shown on the dashboard.
// Content is markdown; rendering escapes raw HTML.
type Announcement struct {
	ID        uint      `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	AuthorID  uint      `json:"author_id"`
	CreatedAt time.Time `json:"created_at"`
}
