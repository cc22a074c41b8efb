package models

import "time"

// MediaType classifies an uploaded file.
type MediaType string

const (
	MediaTypeImage MediaType = "image"
	MediaTypeVideo MediaType = "video"
)

// Post is a feed entry: optional text plus zero or more media attachments.
// Posts are immutable after creation; they are only ever deleted wholesale.
type Post struct {
	ID          string    `json:"id"`
	TextContent *string   `json:"text_content"` // Nullable: a post may be media-only
	Published   bool      `json:"published"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Media       []Media   `json:"media"`
}

// Media is a single image or video attached to a post. Rows are owned by
// their post and cascade-deleted with it.
type Media struct {
	ID        string    `json:"id"`
	PostID    string    `json:"-"`
	Type      MediaType `json:"media_type"`
	FilePath  string    `json:"-"`        // Path relative to the media root
	FileURL   string    `json:"file_url"` // Resolved at serialization time
	CreatedAt time.Time `json:"created_at"`
}
