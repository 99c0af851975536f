package router

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/shandysiswandi/signup/internal/pkg/goerror"
	"github.com/shandysiswandi/signup/internal/pkg/stacktrace"
)

// middlewareRecoverer answers a panicking handler with the regular 500 error
// envelope. http.ErrAbortHandler is re-raised so net/http drops the
// connection.
func middlewareRecoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rvr := recover()
			if rvr == nil {
				return
			}
			//nolint:err113,errorlint // sentinel value, compared directly
			if rvr == http.ErrAbortHandler {
				panic(rvr)
			}

			slog.ErrorContext(r.Context(), "panic in http handler",
				"method", r.Method,
				"route", matchedRoutePath(r),
				"panic", rvr,
				stacktrace.Attr(),
			)
			writeError(r.Context(), w, goerror.NewServer(fmt.Errorf("panic: %v", rvr)))
		}()

		next.ServeHTTP(w, r)
	})
}
