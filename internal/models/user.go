package models

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

type User struct {
	ID           int       `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email,omitempty"`
	PasswordHash string    `json:"-"`
	AboutMe      string    `json:"about_me"`
	LastSeen     time.Time `json:"last_seen"`
	CreatedAt    time.Time `json:"created_at"`
}

// Avatar returns the gravatar identicon URL for the user's email at the given pixel size.
func (u User) Avatar(size int) string {
	return GravatarURL(u.Email, size)
}

func GravatarURL(email string, size int) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	return fmt.Sprintf("https://www.gravatar.com/avatar/%s?d=identicon&s=%d", hex.EncodeToString(sum[:]), size)
}

// Profile is a user with follow-graph counts, as shown on the profile page.
type Profile struct {
	User      User `json:"user"`
	Followers int  `json:"followers"`
	Following int  `json:"following"`
	Posts     int  `json:"posts"`
	// IsFollowing reports whether the viewer follows this user.
	IsFollowing bool `json:"is_following"`
	IsSelf      bool `json:"is_self"`
}
