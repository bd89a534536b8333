package middleware

import (
	"net/http"
)

const (
	// APIPolicy is the Content-Security-Policy for JSON responses.
	APIPolicy = "default-src 'none'; frame-ancestors 'none'"
	// WebPolicy allows the UI's own assets and Gravatar avatars.
	WebPolicy = "default-src 'self'; img-src 'self' https://www.gravatar.com; " +
		"script-src 'self'; style-src 'self'; form-action 'self'; frame-ancestors 'none'"
)

// SecurityHeaders returns a middleware that sets common security response headers.
// When hsts is true (e.g. when serving HTTPS), adds Strict-Transport-Security.
func SecurityHeaders(hsts bool, csp string) func(http.Handler) http.Handler {
	if csp == "" {
		csp = APIPolicy
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Referrer-Policy", "same-origin")
			w.Header().Set("Content-Security-Policy", csp)
			if hsts {
				w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			}
			next.ServeHTTP(w, r)
		})
	}
}
