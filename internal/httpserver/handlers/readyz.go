package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/netfab/bdscan/internal/httpserver/deps"
)

type readyzResponse struct {
	Ready      bool       `json:"ready"`
	Instances  int        `json:"instances"`
	LastReload *time.Time `json:"last_reload,omitempty"`
}

// Readyz reports ready once the first pipeline run has populated the
// index. Before that the service is up but has nothing to serve.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		resp := readyzResponse{
			Ready:     d.MemoryIndex.LastRun() != nil,
			Instances: d.MemoryIndex.Count(),
		}
		if last := d.MemoryIndex.LastReload(); !last.IsZero() {
			resp.LastReload = &last
		}

		if !resp.Ready {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(resp)
	}
}
