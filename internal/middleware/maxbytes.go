package middleware

import (
	"errors"
	"net/http"
)

// DefaultMaxBodyBytes caps JSON bodies and login/create forms (64 KiB).
// The largest legitimate payload is a reminder with a 5000 character description.
const DefaultMaxBodyBytes = 64 << 10

// MaxBytes limits the request body size. Reads past maxBytes fail with *http.MaxBytesError,
// which handlers turn into 413 via IsBodyTooLarge.
func MaxBytes(maxBytes int64) func(http.Handler) http.Handler {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBodyBytes
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// IsBodyTooLarge reports whether err came from a body cut off by MaxBytes.
func IsBodyTooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe)
}
