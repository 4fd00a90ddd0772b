package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/netfab/bdscan/internal/httpserver/deps"
	"github.com/netfab/bdscan/internal/httpserver/handlers"
	"github.com/netfab/bdscan/internal/httpserver/mw"
)

func init() { Register(registerGroups) }

func registerGroups(r chi.Router, d deps.Deps) {
	r.With(mw.EnforceHost(d.AllowedHosts, d.Logger)).Get("/groups", handlers.Groups(d))
}
