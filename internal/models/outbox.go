package models

import "time"

const (
	OutboxPending = "pending"
	OutboxFailed  = "failed"
	OutboxSent    = "sent"
	// OutboxQueued marks a row claimed by the retry job and handed to the queue.
	OutboxQueued = "queued"
)

// OutboxMessage is an email that could not be delivered on the first try.
type OutboxMessage struct {
	ID        string
	To        []string
	Subject   string
	Text      string
	HTML      string
	Status    string
	Attempts  int
	LastError string
	CreatedAt time.Time
	UpdatedAt time.Time
}
