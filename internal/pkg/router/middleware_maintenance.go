package router

import (
	"net/http"
	"strings"

	"github.com/shandysiswandi/signup/internal/pkg/config"
)

// middlewareMaintenance answers 503 for routes listed in
// app.maintenance.endpoints. An entry is a route pattern ("/api/v1/users/otp")
// or a method and pattern ("PUT /api/v1/users/otp"). The list is read on every
// request so a config reload takes effect without a restart.
func middlewareMaintenance(cfg config.Config) Middleware {
	return func(next http.Handler) http.Handler {
		if cfg == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if underMaintenance(cfg.GetArray("app.maintenance.endpoints"), r.Method, matchedRoutePath(r)) {
				w.Header().Set("Retry-After", "120")
				writeJSON(w, errorResponse{Message: "service is under maintenance"}, http.StatusServiceUnavailable)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func underMaintenance(entries []string, method, route string) bool {
	for _, entry := range entries {
		m, path, scoped := strings.Cut(entry, " ")
		if !scoped {
			path = m
		}
		if strings.TrimSpace(path) != route {
			continue
		}
		if !scoped || strings.EqualFold(m, method) {
			return true
		}
	}
	return false
}
