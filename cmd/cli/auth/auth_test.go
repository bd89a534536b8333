package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/crucial707/microblog/cmd/cli/config"
)

// captureOutput helps capture stdout during command execution.
func captureOutput(t *testing.T, fn func()) string {
	t.Helper()

	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	fn()

	_ = w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	return buf.String()
}

func setup(t *testing.T, h http.HandlerFunc) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	t.Setenv("MICROBLOG_API_URL", srv.URL)
	t.Setenv("MICROBLOG_TOKEN_FILE", filepath.Join(t.TempDir(), "token"))
}

func TestLogin_SavesToken(t *testing.T) {
	setup(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/auth/login" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		if body["username"] != "alice" || body["password"] != "secret123" {
			t.Errorf("unexpected body: %v", body)
		}
		json.NewEncoder(w).Encode(map[string]string{"token": "tok-123"})
	})

	cmd := loginCmd()
	cmd.SetArgs([]string{"--username", "alice"})
	cmd.SetIn(strings.NewReader("secret123\n"))

	var err error
	out := captureOutput(t, func() { err = cmd.Execute() })
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if !strings.Contains(out, "Login successful") {
		t.Errorf("unexpected output: %s", out)
	}
	token, err := config.LoadToken()
	if err != nil || token != "tok-123" {
		t.Errorf("saved token: got %q, %v", token, err)
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	setup(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"Invalid username or password"}`))
	})

	cmd := loginCmd()
	cmd.SetArgs([]string{"--username", "alice", "--password", "wrong"})
	err := cmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "Invalid username or password") {
		t.Fatalf("expected API error, got %v", err)
	}
	if _, err := config.LoadToken(); err != config.ErrNotLoggedIn {
		t.Errorf("no token should be saved, got %v", err)
	}
}

func TestLogout(t *testing.T) {
	setup(t, func(w http.ResponseWriter, r *http.Request) {})
	config.SaveToken("tok")

	cmd := logoutCmd()
	out := captureOutput(t, func() { cmd.RunE(cmd, nil) })
	if !strings.Contains(out, "Logged out successfully") {
		t.Errorf("unexpected output: %s", out)
	}
	out = captureOutput(t, func() { cmd.RunE(cmd, nil) })
	if !strings.Contains(out, "No user logged in") {
		t.Errorf("unexpected output: %s", out)
	}
}

func TestRegister_ShowsFieldErrors(t *testing.T) {
	setup(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"validation failed","fields":{"username":["Please use a different username."]}}`))
	})

	cmd := registerCmd()
	cmd.SetArgs([]string{"--username", "alice", "--email", "a@example.com", "--password", "password1"})
	err := cmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "Please use a different username.") {
		t.Fatalf("expected field error, got %v", err)
	}
}

func TestResetPassword_Request(t *testing.T) {
	setup(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/auth/reset-password-request" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusAccepted)
		json.NewEncoder(w).Encode(map[string]string{"message": "Check your email"})
	})

	cmd := resetPasswordCmd()
	cmd.SetArgs([]string{"--email", "a@example.com"})
	var err error
	out := captureOutput(t, func() { err = cmd.Execute() })
	if err != nil || !strings.Contains(out, "Check your email") {
		t.Errorf("got %q, %v", out, err)
	}
}

func TestResetPassword_NeedsOneMode(t *testing.T) {
	cmd := resetPasswordCmd()
	cmd.SetArgs([]string{})
	if err := cmd.Execute(); err == nil {
		t.Error("expected error without --email or --token")
	}
}
