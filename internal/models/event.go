package models

import "time"

// Event represents a loggable action in the system, kept as an activity
// trail (logins, registrations, post lifecycle, sweeper runs).
type Event struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`  // e.g., "post.create", "auth.login"
	Level     string    `json:"level"` // e.g., "info", "warn", "error"
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}
