package models

import "testing"

func TestGravatarURL(t *testing.T) {
	// md5("john@example.com")
	want := "https://www.gravatar.com/avatar/d4c74594d841139328695756648b6bd6?d=identicon&s=128"
	if got := GravatarURL("  John@Example.com ", 128); got != want {
		t.Errorf("GravatarURL: got %q, want %q", got, want)
	}
}

func TestPostAuthorAvatar(t *testing.T) {
	u := User{Email: "john@example.com"}
	p := Post{AuthorEmail: "john@example.com"}
	if u.Avatar(36) != p.AuthorAvatar(36) {
		t.Error("user and post avatars differ for the same email")
	}
}
