package forms

import (
	"context"
	"strings"
)

// UserLookup answers uniqueness questions; exceptID excludes one user.
type UserLookup interface {
	UsernameTaken(ctx context.Context, username string, exceptID int) (bool, error)
	EmailTaken(ctx context.Context, email string, exceptID int) (bool, error)
}

const (
	MaxUsername = 64
	MaxEmail    = 120
	MaxAboutMe  = 140
)

type Registration struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Password2 string `json:"password2"`
}

func (f *Registration) Validate(ctx context.Context, users UserLookup, minPassword int) error {
	f.Username = strings.TrimSpace(f.Username)
	f.Email = strings.TrimSpace(f.Email)

	return Set{
		{"username", Required(f.Username)},
		{"username", MaxLen(f.Username, MaxUsername)},
		{"username", Unique(func(ctx context.Context) (bool, error) {
			return users.UsernameTaken(ctx, f.Username, 0)
		}, "Please use a different username.")},
		{"email", Required(f.Email)},
		{"email", MaxLen(f.Email, MaxEmail)},
		{"email", Email(f.Email)},
		{"email", Unique(func(ctx context.Context) (bool, error) {
			return users.EmailTaken(ctx, f.Email, 0)
		}, "Please use a different email address.")},
		{"password", Required(f.Password)},
		{"password", MinLen(f.Password, minPassword)},
		{"password", ContainsLetter(f.Password)},
		{"password2", Required(f.Password2)},
		{"password2", Equal(f.Password2, f.Password, "password")},
	}.Validate(ctx)
}

type Login struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	RememberMe bool   `json:"remember_me"`
}

func (f *Login) Validate(ctx context.Context) error {
	f.Username = strings.TrimSpace(f.Username)
	return Set{
		{"username", Required(f.Username)},
		{"password", Required(f.Password)},
	}.Validate(ctx)
}

// EditProfile is validated against the user being edited, so keeping the
// current username is never a conflict.
type EditProfile struct {
	Username string `json:"username"`
	AboutMe  string `json:"about_me"`
}

func (f *EditProfile) Validate(ctx context.Context, users UserLookup, userID int, currentUsername string) error {
	f.Username = strings.TrimSpace(f.Username)
	return Set{
		{"username", Required(f.Username)},
		{"username", MaxLen(f.Username, MaxUsername)},
		{"username", Unique(func(ctx context.Context) (bool, error) {
			if f.Username == currentUsername {
				return false, nil
			}
			return users.UsernameTaken(ctx, f.Username, userID)
		}, "Please use a different username.")},
		{"about_me", Length(f.AboutMe, 0, MaxAboutMe)},
	}.Validate(ctx)
}

type ResetPasswordRequest struct {
	Email string `json:"email"`
}

func (f *ResetPasswordRequest) Validate(ctx context.Context) error {
	f.Email = strings.TrimSpace(f.Email)
	return Set{
		{"email", Required(f.Email)},
		{"email", Email(f.Email)},
	}.Validate(ctx)
}

type ResetPassword struct {
	Token     string `json:"token,omitempty"`
	Password  string `json:"password"`
	Password2 string `json:"password2"`
}

func (f *ResetPassword) Validate(ctx context.Context, minPassword int) error {
	return Set{
		{"password", Required(f.Password)},
		{"password", MinLen(f.Password, minPassword)},
		{"password", ContainsLetter(f.Password)},
		{"password2", Required(f.Password2)},
		{"password2", Equal(f.Password2, f.Password, "password")},
	}.Validate(ctx)
}
