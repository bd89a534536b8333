package handlers

import (
	"net/http"
	"time"

	"github.com/crucial707/microblog/internal/app"
	"github.com/crucial707/microblog/internal/forms"
)

// ==========================
// Auth Handler
// ==========================
type AuthHandler struct {
	App *app.App
}

// ==========================
// Register
// ==========================
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input forms.Registration
	if !decode(w, r, &input) {
		return
	}

	user, err := h.App.Register(r.Context(), &input)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// ==========================
// Login
// ==========================
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input forms.Login
	if !decode(w, r, &input) {
		return
	}

	user, err := h.App.Authenticate(r.Context(), &input)
	if err != nil {
		handleError(w, r, err)
		return
	}
	token, ttl, err := h.App.SessionToken(user, input.RememberMe)
	if err != nil {
		handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"token":      token,
		"expires_at": time.Now().Add(ttl).UTC(),
		"user":       user,
	})
}

// ==========================
// Password reset
// ==========================

// RequestPasswordReset always answers 202 for a well-formed address so the
// response does not reveal whether the account exists.
func (h *AuthHandler) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var input forms.ResetPasswordRequest
	if !decode(w, r, &input) {
		return
	}
	if err := h.App.RequestPasswordReset(r.Context(), &input); err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{
		"message": "Check your email for the instructions to reset your password",
	})
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var input forms.ResetPassword
	if !decode(w, r, &input) {
		return
	}
	if _, err := h.App.ResetPassword(r.Context(), input.Token, &input); err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Your password has been reset."})
}
