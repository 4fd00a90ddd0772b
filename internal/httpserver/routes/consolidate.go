package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/netfab/bdscan/internal/httpserver/deps"
	"github.com/netfab/bdscan/internal/httpserver/handlers"
	"github.com/netfab/bdscan/internal/httpserver/mw"
)

func init() { Register(registerConsolidate) }

func registerConsolidate(r chi.Router, d deps.Deps) {
	r.With(
		mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger),
		mw.EnforceHost(d.AllowedHosts, d.Logger),
		mw.RateLimit(mw.RateLimitConfig{Burst: 3, RefillPerIPPerMin: 6, TrustProxy: d.TrustProxy}),
	).Post("/consolidate", handlers.Consolidate(d))
}
