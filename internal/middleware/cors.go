package middleware

import (
	"net/http"
	"strings"
)

// The JSON API has no DELETE routes; unfollow is a POST.
var (
	corsAllowedMethods = strings.Join([]string{"GET", "POST", "PUT", "OPTIONS"}, ", ")
	corsAllowedHeaders = strings.Join([]string{"Accept", "Accept-Language", "Authorization", "Content-Type"}, ", ")
	// Retry-After tells browser clients when a throttled login may be retried.
	corsExposedHeaders = strings.Join([]string{"Retry-After", "X-Request-Id"}, ", ")
)

// CORS lets browser apps on the listed origins call the bearer-token API.
// Credentials are never allowed since the API does not read cookies.
// Preflights from other origins get 403. With no origins it is a no-op.
func CORS(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[strings.TrimRight(o, "/")] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			w.Header().Add("Vary", "Origin")
			preflight := r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != ""

			if origin == "" || !allowed[origin] {
				if preflight {
					w.WriteHeader(http.StatusForbidden)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("Access-Control-Allow-Origin", origin)
			if preflight {
				w.Header().Set("Access-Control-Allow-Methods", corsAllowedMethods)
				w.Header().Set("Access-Control-Allow-Headers", corsAllowedHeaders)
				w.Header().Set("Access-Control-Max-Age", "600")
				w.WriteHeader(http.StatusNoContent)
				return
			}
			w.Header().Set("Access-Control-Expose-Headers", corsExposedHeaders)
			next.ServeHTTP(w, r)
		})
	}
}
