// Package web serves the server-rendered HTML interface.
package web

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/crucial707/microblog/internal/app"
	"github.com/crucial707/microblog/internal/forms"
	"github.com/crucial707/microblog/internal/middleware"
	"github.com/crucial707/microblog/internal/models"
	"github.com/crucial707/microblog/internal/repo"
)

//go:embed templates templates/_post.html
var templatesFS embed.FS

//go:embed static
var staticFS embed.FS

const (
	sessionCookie = "microblog_session"
	flashCookie   = "microblog_flash"
)

// pages are the templates rendered inside the layout.
var pages = []string{
	"index.html", "user.html", "edit_profile.html", "login.html", "register.html",
	"reset_password_request.html", "reset_password.html", "404.html", "500.html",
}

type Server struct {
	App *app.App
	// Secure marks cookies Secure; set when serving HTTPS.
	Secure bool

	templates map[string]*template.Template
}

func New(a *app.App, secure bool) (*Server, error) {
	s := &Server{App: a, Secure: secure, templates: map[string]*template.Template{}}
	funcs := template.FuncMap{
		"avatar":  models.GravatarURL,
		"fromNow": fromNow,
		"utc":     func(t time.Time) string { return t.UTC().Format(time.RFC3339) },
		"postView": func(p models.Post, locale string) postView {
			return postView{Post: p, Locale: locale}
		},
	}
	for _, name := range pages {
		t, err := template.New(name).Funcs(funcs).ParseFS(templatesFS,
			"templates/layout.html", "templates/_post.html", "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		s.templates[name] = t
	}
	return s, nil
}

// Routes returns the HTML routes with session, last_seen and CSRF handling.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RecovererFunc(s.internalError))
	r.Use(middleware.SecurityHeaders(s.Secure, middleware.WebPolicy))
	r.Use(middleware.MaxBytes(middleware.DefaultMaxBodyBytes))
	r.Use(middleware.SessionCookie(sessionCookie, s.App))
	r.Use(middleware.LastSeen(s.App))
	r.Use(middleware.CSRF(s.Secure))

	static, _ := fs.Sub(staticFS, "static")
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.render(w, r, http.StatusNotFound, "404.html", &view{Title: "Not Found"})
	})

	authLimiter := middleware.AuthRateLimiter()
	authLimiter.OnLimit = s.tooManyRequests
	resetLimiter := middleware.ResetRateLimiter()
	resetLimiter.OnLimit = s.tooManyRequests

	r.Get("/login", s.loginForm)
	r.With(authLimiter.Middleware).Post("/login", s.loginSubmit)
	r.Get("/logout", s.logout)
	r.Get("/register", s.registerForm)
	r.With(authLimiter.Middleware).Post("/register", s.registerSubmit)
	r.Get("/reset_password_request", s.resetRequestForm)
	r.With(resetLimiter.Middleware).Post("/reset_password_request", s.resetRequestSubmit)
	r.Get("/reset_password/{token}", s.resetForm)
	r.With(authLimiter.Middleware).Post("/reset_password/{token}", s.resetSubmit)

	r.Group(func(r chi.Router) {
		r.Use(requireAuth)
		r.Get("/", s.index)
		r.Post("/", s.index)
		r.Get("/index", s.index)
		r.Post("/index", s.index)
		r.Get("/explore", s.explore)
		r.Get("/user/{username}", s.user)
		r.Get("/user/edit_profile", s.editProfile)
		r.Post("/user/edit_profile", s.editProfile)
		r.Post("/follow/{username}", s.follow)
		r.Post("/unfollow/{username}", s.unfollow)
		r.Post("/translate", s.translate)
	})
	return r
}

// requireAuth redirects anonymous requests to /login, keeping the target in next.
func requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if middleware.CurrentUser(r.Context()) == nil {
			http.Redirect(w, r, "/login?next="+url.QueryEscape(r.URL.RequestURI()), http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// view is the data every page template receives.
type view struct {
	Title   string
	User    *models.User
	CSRF    string
	Flashes []string
	Locale  string

	Form    any
	Errors  forms.Errors
	Posts   *repo.Page[models.Post]
	Profile *models.Profile
	NextURL string
	PrevURL string
	Token   string
}

// postView is the data of the "post" template.
type postView struct {
	Post   models.Post
	Locale string
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, v *view) {
	t, ok := s.templates[name]
	if !ok {
		http.Error(w, "template not found", http.StatusInternalServerError)
		return
	}
	v.User = middleware.CurrentUser(r.Context())
	v.CSRF = middleware.CSRFToken(r.Context())
	v.Flashes = popFlashes(w, r)
	v.Locale = forms.DetectLanguage(r.Header.Get("Accept-Language"))
	if v.Errors == nil {
		v.Errors = forms.Errors{}
	}

	var buf strings.Builder
	if err := t.ExecuteTemplate(&buf, "layout", v); err != nil {
		slog.Error("template execute", "template", name, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write([]byte(buf.String()))
}

// fail renders the 404 page for missing resources and the 500 page for
// everything else. Any transaction of the request has already rolled back.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, app.ErrNotFound) {
		s.render(w, r, http.StatusNotFound, "404.html", &view{Title: "Not Found"})
		return
	}
	slog.Error("request failed",
		"request_id", chimw.GetReqID(r.Context()),
		"method", r.Method,
		"path", r.URL.Path,
		"error", err)
	s.internalError(w, r)
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusInternalServerError, "500.html", &view{Title: "Unexpected Error"})
}

func (s *Server) tooManyRequests(w http.ResponseWriter, r *http.Request) {
	http.Error(w, "Too many attempts, please try again later.", http.StatusTooManyRequests)
}

func fromNow(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "a few seconds ago"
	case d < 2*time.Minute:
		return "a minute ago"
	case d < time.Hour:
		return fmt.Sprintf("%d minutes ago", int(d.Minutes()))
	case d < 2*time.Hour:
		return "an hour ago"
	case d < 24*time.Hour:
		return fmt.Sprintf("%d hours ago", int(d.Hours()))
	case d < 48*time.Hour:
		return "a day ago"
	default:
		return fmt.Sprintf("%d days ago", int(d.Hours()/24))
	}
}
