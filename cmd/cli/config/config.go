package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

const (
	defaultAPIURL = "http://localhost:8080"
	tokenFileName = ".microblog_token"
)

// ErrNotLoggedIn is returned when no token has been saved yet.
var ErrNotLoggedIn = errors.New("not logged in, run `microblog login` first")

// APIURL returns the base URL for the Microblog server.
// It can be overridden with the MICROBLOG_API_URL environment variable.
func APIURL() string {
	if v := os.Getenv("MICROBLOG_API_URL"); v != "" {
		return strings.TrimRight(v, "/")
	}
	return defaultAPIURL
}

// TokenPath is ~/.microblog_token unless MICROBLOG_TOKEN_FILE is set.
func TokenPath() string {
	if v := os.Getenv("MICROBLOG_TOKEN_FILE"); v != "" {
		return v
	}
	dir, _ := os.UserHomeDir()
	return filepath.Join(dir, tokenFileName)
}

func SaveToken(token string) error {
	return os.WriteFile(TokenPath(), []byte(token), 0600)
}

func LoadToken() (string, error) {
	data, err := os.ReadFile(TokenPath())
	if errors.Is(err, os.ErrNotExist) {
		return "", ErrNotLoggedIn
	}
	if err != nil {
		return "", err
	}
	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", ErrNotLoggedIn
	}
	return token, nil
}

// ClearToken removes the saved token. It reports false when there was none.
func ClearToken() (bool, error) {
	err := os.Remove(TokenPath())
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return err == nil, err
}
