package router

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"github.com/shandysiswandi/signup/internal/pkg/goerror"
)

// NewRateLimiter returns a per-client-IP limiter for a route. rate uses the
// limiter format "<limit>-<period>", e.g. "10-M" for ten requests a minute.
// Counters live in process memory.
func NewRateLimiter(rate string) (Middleware, error) {
	r, err := limiter.NewRateFromFormatted(rate)
	if err != nil {
		return nil, err
	}

	instance := limiter.New(memory.NewStore(), r)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			lctx, err := instance.Get(req.Context(), clientKey(req))
			if err != nil {
				slog.ErrorContext(req.Context(), "rate limiter lookup failed", "error", err)
				next.ServeHTTP(w, req)
				return
			}

			h := w.Header()
			h.Set("X-RateLimit-Limit", strconv.FormatInt(lctx.Limit, 10))
			h.Set("X-RateLimit-Remaining", strconv.FormatInt(lctx.Remaining, 10))
			h.Set("X-RateLimit-Reset", strconv.FormatInt(lctx.Reset, 10))

			if lctx.Reached {
				slog.WarnContext(req.Context(), "rate limit reached", "route", matchedRoutePath(req), "client", clientKey(req))
				writeError(req.Context(), w, goerror.NewTooManyRequest())
				return
			}

			next.ServeHTTP(w, req)
		})
	}, nil
}

// clientKey is the address middlewareRequestContext resolved. Requests it
// could not resolve share a single bucket.
func clientKey(r *http.Request) string {
	if ip := ClientIP(r.Context()); ip != "" {
		return ip
	}
	return "unresolved"
}
