package mw

import (
	"net/http"

	"github.com/netfab/bdscan/internal/logger"
	"github.com/netfab/bdscan/internal/utils"
)

// AllowOnlyCIDRS allows only specific IPs/CIDRs. An empty list means
// passthrough. trustProxy should be true only behind a trusted reverse
// proxy that sets forwarding headers.
func AllowOnlyCIDRS(allowed []string, trustProxy bool, log logger.Logger) func(http.Handler) http.Handler {
	m := utils.NewIPMatcher(allowed)
	if m.IsEmpty() {
		return func(next http.Handler) http.Handler { return next }
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := utils.ClientIP(r, trustProxy)
			if !m.Allow(ip) {
				log.Debug("rejected client ip", logger.String("ip", ip))
				w.WriteHeader(http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
