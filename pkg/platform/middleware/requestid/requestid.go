// Package requestid assigns each request an ID for log correlation.
package requestid

import (
	"net/http"

	"github.com/google/uuid"

	"incentra/pkg/requestcontext"
)

// Header carries the request ID to and from clients.
const Header = "X-Request-ID"

// Middleware reuses an inbound request ID when present, otherwise generates
// one, and echoes it on the response.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(Header)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		ctx := requestcontext.WithRequestID(r.Context(), requestID)
		w.Header().Set(Header, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
