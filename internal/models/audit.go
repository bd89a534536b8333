package models

import "time"

// AuditEntry is one row of a user's activity log.
type AuditEntry struct {
	ID        int       `json:"id"`
	UserID    int       `json:"user_id"`
	Action    string    `json:"action"` // register, login, post, follow, unfollow, profile, reset_password
	Details   string    `json:"details,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
