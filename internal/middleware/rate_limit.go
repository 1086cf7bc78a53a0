package middleware

import (
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/So-lol/ace-website-sub001/internal/common"
	"github.com/So-lol/ace-website-sub001/internal/constants"
	"github.com/So-lol/ace-website-sub001/internal/ratelimit"
)

// RateLimitMiddleware throttles a route per client IP through the shared
// limiter, so every instance counts against the same window.
func RateLimitMiddleware(limiter *ratelimit.Limiter, prefix string, limit int, window time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res := limiter.Check(r.Context(), prefix+":"+clientIP(r), limit, window)
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
			if !res.Success {
				w.Header().Set("Retry-After", strconv.Itoa(int(window.Seconds())))
				common.RespondError(w, time.Now(), constants.MsgRateLimited, http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP reads RemoteAddr; chi's RealIP runs first and rewrites it from
// the proxy headers.
func clientIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
