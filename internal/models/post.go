package models

import "time"

type Post struct {
	ID        int       `json:"id"`
	Body      string    `json:"body"`
	Timestamp time.Time `json:"timestamp"`
	Language  string    `json:"language,omitempty"`
	UserID    int       `json:"user_id"`

	Author      string `json:"author"`
	AuthorEmail string `json:"-"`
}

func (p Post) AuthorAvatar(size int) string {
	return GravatarURL(p.AuthorEmail, size)
}
