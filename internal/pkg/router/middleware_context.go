package router

import (
	"context"
	"net"
	"net/http"
	"net/netip"
	"regexp"
	"strings"

	"github.com/shandysiswandi/signup/internal/pkg/instrument"
	"github.com/shandysiswandi/signup/internal/pkg/uid"
)

// HeaderCorrelationID carries the correlation ID in both directions. The same
// ID travels on published events as the "cID" message header.
const HeaderCorrelationID = "X-Correlation-ID"

// clientIPHeaders are read in order; the first parseable address wins.
var clientIPHeaders = []string{"True-Client-IP", "X-Real-IP", "X-Forwarded-For"}

var reCorrelationID = regexp.MustCompile(`^[A-Za-z0-9._:-]{1,64}$`)

type clientIPKey struct{}

// ClientIP returns the caller address resolved for the request, without a
// port, or "" when none could be parsed.
func ClientIP(ctx context.Context) string {
	ip, _ := ctx.Value(clientIPKey{}).(string)
	return ip
}

// middlewareRequestContext puts the client IP and the correlation ID into the
// request context. A caller-supplied X-Correlation-ID is kept only when it is
// a short opaque token; otherwise a fresh one is generated. The ID is echoed
// on the response.
func middlewareRequestContext(uuid uid.StringID) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), clientIPKey{}, resolveClientIP(r))

			cid := strings.TrimSpace(r.Header.Get(HeaderCorrelationID))
			if !reCorrelationID.MatchString(cid) {
				cid = ""
				if uuid != nil {
					cid = uuid.Generate()
				}
			}
			if cid != "" {
				w.Header().Set(HeaderCorrelationID, cid)
				ctx = instrument.SetCorrelationID(ctx, cid)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func resolveClientIP(r *http.Request) string {
	for _, h := range clientIPHeaders {
		first, _, _ := strings.Cut(r.Header.Get(h), ",")
		if addr, err := netip.ParseAddr(strings.TrimSpace(first)); err == nil {
			return addr.Unmap().String()
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if addr, err := netip.ParseAddr(host); err == nil {
		return addr.Unmap().String()
	}
	return ""
}
