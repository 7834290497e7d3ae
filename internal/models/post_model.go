package models

import "time"

type Post struct {
	ID            int64      `json:"id"`
	Title         string     `json:"title"`
	Content       string     `json:"content"`
	ImageURL      string     `json:"image"`
	Status        string     `json:"status"` // posted, scheduled, failed, draft
	ScheduledTime *time.Time `json:"scheduled_time"`
	PlatformIDs   []int64    `json:"platform_ids"`
	CreatedAt     time.Time  `json:"created_at"`
	PostedAt      *time.Time `json:"posted_at"`
}

const (
	PostStatusScheduled = "scheduled"
	PostStatusPosted    = "posted"
	PostStatusFailed    = "failed"
	PostStatusDraft     = "draft"
)

// PublishResult is the per-platform outcome of a single publish call.
type PublishResult struct {
	Platform string `json:"platform"`
	Success  bool   `json:"success"`
	Message  string `json:"message"`
}

// GeneratedImage lives only in view state and the optional local gallery,
// the server does not track it.
type GeneratedImage struct {
	Base64      string    `json:"base64"`
	Prompt      string    `json:"prompt"`
	GeneratedAt time.Time `json:"generated_at"`
}
