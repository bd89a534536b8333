package web

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/crucial707/microblog/internal/app"
	"github.com/crucial707/microblog/internal/forms"
	"github.com/crucial707/microblog/internal/middleware"
)

// ==========================
// Login / Logout
// ==========================
func (s *Server) loginForm(w http.ResponseWriter, r *http.Request) {
	if middleware.CurrentUser(r.Context()) != nil {
		http.Redirect(w, r, "/index", http.StatusFound)
		return
	}
	s.render(w, r, http.StatusOK, "login.html", &view{Title: "Sign In", Form: &forms.Login{}})
}

func (s *Server) loginSubmit(w http.ResponseWriter, r *http.Request) {
	if middleware.CurrentUser(r.Context()) != nil {
		http.Redirect(w, r, "/index", http.StatusFound)
		return
	}
	f := &forms.Login{
		Username:   r.PostFormValue("username"),
		Password:   r.PostFormValue("password"),
		RememberMe: r.PostFormValue("remember_me") != "",
	}
	user, err := s.App.Authenticate(r.Context(), f)
	var fieldErrs forms.Errors
	switch {
	case errors.As(err, &fieldErrs):
		f.Password = ""
		s.render(w, r, http.StatusUnprocessableEntity, "login.html", &view{Title: "Sign In", Form: f, Errors: fieldErrs})
		return
	case errors.Is(err, app.ErrInvalidCredentials):
		s.flash(w, r, "Invalid username or password")
		target := "/login"
		if r.URL.RawQuery != "" {
			target += "?" + r.URL.RawQuery
		}
		http.Redirect(w, r, target, http.StatusSeeOther)
		return
	case err != nil:
		s.fail(w, r, err)
		return
	}

	token, ttl, err := s.App.SessionToken(user, f.RememberMe)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.setSession(w, token, ttl, f.RememberMe)
	http.Redirect(w, r, safeNext(r.URL.Query().Get("next")), http.StatusSeeOther)
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	s.clearSession(w)
	http.Redirect(w, r, "/index", http.StatusFound)
}

// ==========================
// Registration
// ==========================
func (s *Server) registerForm(w http.ResponseWriter, r *http.Request) {
	if middleware.CurrentUser(r.Context()) != nil {
		http.Redirect(w, r, "/index", http.StatusFound)
		return
	}
	s.render(w, r, http.StatusOK, "register.html", &view{Title: "Register", Form: &forms.Registration{}})
}

func (s *Server) registerSubmit(w http.ResponseWriter, r *http.Request) {
	if middleware.CurrentUser(r.Context()) != nil {
		http.Redirect(w, r, "/index", http.StatusFound)
		return
	}
	f := &forms.Registration{
		Username:  r.PostFormValue("username"),
		Email:     r.PostFormValue("email"),
		Password:  r.PostFormValue("password"),
		Password2: r.PostFormValue("password2"),
	}
	_, err := s.App.Register(r.Context(), f)
	var fieldErrs forms.Errors
	switch {
	case errors.As(err, &fieldErrs):
		f.Password, f.Password2 = "", ""
		s.render(w, r, http.StatusUnprocessableEntity, "register.html", &view{Title: "Register", Form: f, Errors: fieldErrs})
		return
	case err != nil:
		s.fail(w, r, err)
		return
	}
	s.flash(w, r, "Congratulations, you are now a registered user!")
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// ==========================
// Password reset
// ==========================
func (s *Server) resetRequestForm(w http.ResponseWriter, r *http.Request) {
	if middleware.CurrentUser(r.Context()) != nil {
		http.Redirect(w, r, "/index", http.StatusFound)
		return
	}
	s.render(w, r, http.StatusOK, "reset_password_request.html",
		&view{Title: "Reset Password", Form: &forms.ResetPasswordRequest{}})
}

// resetRequestSubmit answers the same way whether or not the address is
// registered.
func (s *Server) resetRequestSubmit(w http.ResponseWriter, r *http.Request) {
	if middleware.CurrentUser(r.Context()) != nil {
		http.Redirect(w, r, "/index", http.StatusFound)
		return
	}
	f := &forms.ResetPasswordRequest{Email: r.PostFormValue("email")}
	err := s.App.RequestPasswordReset(r.Context(), f)
	var fieldErrs forms.Errors
	switch {
	case errors.As(err, &fieldErrs):
		s.render(w, r, http.StatusUnprocessableEntity, "reset_password_request.html",
			&view{Title: "Reset Password", Form: f, Errors: fieldErrs})
		return
	case err != nil:
		s.fail(w, r, err)
		return
	}
	s.flash(w, r, "Check your email for the instructions to reset your password")
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (s *Server) resetForm(w http.ResponseWriter, r *http.Request) {
	if middleware.CurrentUser(r.Context()) != nil {
		http.Redirect(w, r, "/index", http.StatusFound)
		return
	}
	token := chi.URLParam(r, "token")
	if _, _, err := s.App.ResetTokenUser(r.Context(), token); err != nil {
		s.rejectResetToken(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "reset_password.html",
		&view{Title: "Reset Password", Form: &forms.ResetPassword{}, Token: token})
}

func (s *Server) resetSubmit(w http.ResponseWriter, r *http.Request) {
	if middleware.CurrentUser(r.Context()) != nil {
		http.Redirect(w, r, "/index", http.StatusFound)
		return
	}
	token := chi.URLParam(r, "token")
	f := &forms.ResetPassword{
		Password:  r.PostFormValue("password"),
		Password2: r.PostFormValue("password2"),
	}
	_, err := s.App.ResetPassword(r.Context(), token, f)
	var fieldErrs forms.Errors
	switch {
	case errors.As(err, &fieldErrs):
		f.Password, f.Password2 = "", ""
		s.render(w, r, http.StatusUnprocessableEntity, "reset_password.html",
			&view{Title: "Reset Password", Form: f, Errors: fieldErrs, Token: token})
		return
	case err != nil:
		s.rejectResetToken(w, r, err)
		return
	}
	s.flash(w, r, "Your password has been reset.")
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// rejectResetToken sends bad, expired or used links to the home page.
func (s *Server) rejectResetToken(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, app.ErrInvalidToken) {
		http.Redirect(w, r, "/index", http.StatusFound)
		return
	}
	s.fail(w, r, err)
}
