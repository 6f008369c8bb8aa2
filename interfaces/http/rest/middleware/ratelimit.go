package middleware

import (
	"net"
	"net/http"

	"embedgraph-backend/pkg/auth"
	"embedgraph-backend/pkg/common"
	apperrors "embedgraph-backend/pkg/errors"
)

// RateLimitByIP rejects requests beyond the per-IP budget. The proxy route
// uses this since embed pages call it without credentials.
func RateLimitByIP(limiter *auth.IPRateLimiter, requestsPerMinute int) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			allowed, err := limiter.Allow(r.Context(), clientIP(r))
			if err != nil || !allowed {
				common.RespondAppError(w, apperrors.NewRateLimitError(requestsPerMinute, "minute"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP assumes RealIP middleware already resolved forwarding headers.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
