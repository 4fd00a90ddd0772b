package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/netfab/bdscan/internal/httpserver/deps"
	"github.com/netfab/bdscan/internal/httpserver/handlers"
	"github.com/netfab/bdscan/internal/httpserver/mw"
)

func init() { Register(registerInstances) }

func registerInstances(r chi.Router, d deps.Deps) {
	sub := r.With(mw.EnforceHost(d.AllowedHosts, d.Logger))
	sub.Get("/instances", handlers.Instances(d))
	sub.Get("/review", handlers.Review(d))
}
