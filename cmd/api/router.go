package main

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/crucial707/microblog/internal/app"
	"github.com/crucial707/microblog/internal/handlers"
	"github.com/crucial707/microblog/internal/middleware"
	"github.com/crucial707/microblog/internal/web"
)

// pinger is implemented by the optional backing services checked by /ready.
type pinger interface {
	Ping(ctx context.Context) error
}

// newRouter wires the JSON API under /api/v1 and the HTML UI at the root.
func newRouter(a *app.App) (http.Handler, error) {
	hsts := a.Config.TLSCertFile != "" && a.Config.TLSKeyFile != ""
	site, err := web.New(a, hsts)
	if err != nil {
		return nil, err
	}

	authH := &handlers.AuthHandler{App: a}
	userH := &handlers.UserHandler{App: a}
	postH := &handlers.PostHandler{App: a}
	auditH := &handlers.AuditHandler{App: a}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLog)
	r.Use(middleware.Prometheus)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Get("/ready", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := a.Ping(ctx); err != nil {
			handlers.JSONError(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		if p, ok := a.Ledger.(pinger); ok {
			if err := p.Ping(ctx); err != nil {
				handlers.JSONError(w, "token store unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.Write([]byte("ready"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Recoverer)
		r.Use(middleware.SecurityHeaders(hsts, middleware.APIPolicy))
		r.Use(middleware.CORS(a.Config.CORSAllowedOrigins))
		r.Use(middleware.MaxBytes(middleware.DefaultMaxBodyBytes))

		authLimiter := middleware.AuthRateLimiter()
		resetLimiter := middleware.ResetRateLimiter()
		r.Route("/auth", func(r chi.Router) {
			r.With(authLimiter.Middleware).Post("/register", authH.Register)
			r.With(authLimiter.Middleware).Post("/login", authH.Login)
			r.With(resetLimiter.Middleware).Post("/reset-password-request", authH.RequestPasswordReset)
			r.With(authLimiter.Middleware).Post("/reset-password", authH.ResetPassword)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.JWTMiddleware(a))
			r.Use(middleware.LastSeen(a))

			r.Get("/feed", postH.Feed)
			r.Get("/explore", postH.Explore)
			r.Post("/posts", postH.CreatePost)
			r.Post("/translate", postH.Translate)

			r.Get("/users", userH.ListUsers)
			r.Get("/users/{username}", userH.GetUser)
			r.Get("/users/{username}/posts", userH.UserPosts)
			r.Get("/users/{username}/followers", userH.Followers)
			r.Get("/users/{username}/following", userH.Following)
			r.Post("/users/{username}/follow", userH.Follow)
			r.Post("/users/{username}/unfollow", userH.Unfollow)

			r.Get("/me", userH.Me)
			r.Put("/me", userH.UpdateMe)
			r.Get("/me/activity", auditH.ListActivity)
		})
	})

	r.Mount("/", site.Routes())
	return r, nil
}
