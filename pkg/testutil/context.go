package testutil

import (
	"net/http"
	"time"

	"incentra/pkg/requestcontext"
)

// WithFixedTime pins the request-scoped clock on a request. Scoring output
// depends on "now" (freshness decay), so handler tests use this to stay
// deterministic.
func WithFixedTime(req *http.Request, t time.Time) *http.Request {
	ctx := requestcontext.WithTime(req.Context(), t)
	return req.WithContext(ctx)
}

// WithRequestID adds a request ID to the request context, simulating the
// requestid middleware.
func WithRequestID(req *http.Request, requestID string) *http.Request {
	ctx := requestcontext.WithRequestID(req.Context(), requestID)
	return req.WithContext(ctx)
}

