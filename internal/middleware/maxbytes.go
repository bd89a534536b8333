package middleware

import (
	"net/http"
	"strings"
)

// DefaultMaxBodyBytes bounds API and form bodies. Posts, profiles and
// credentials are a few hundred bytes at most.
const DefaultMaxBodyBytes = 64 << 10

// MaxBytes caps request bodies at maxBytes. A declared Content-Length over the
// cap is answered with 413 before the handler runs; bodies of unknown length
// are cut off by http.MaxBytesReader and the handler sees *http.MaxBytesError.
func MaxBytes(maxBytes int64) func(http.Handler) http.Handler {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBodyBytes
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				bodyTooLarge(w, r)
				return
			}
			if r.Body != nil && r.Body != http.NoBody {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bodyTooLarge(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusRequestEntityTooLarge)
		w.Write([]byte(`{"error":"request body too large"}` + "\n"))
		return
	}
	http.Error(w, "Request body too large.", http.StatusRequestEntityTooLarge)
}
