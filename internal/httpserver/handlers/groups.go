package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/netfab/bdscan/internal/httpserver/deps"
)

// Groups serves the report of the latest pipeline run, including every
// consolidation group with its outcome and reason.
func Groups(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		report := d.MemoryIndex.LastRun()
		if report == nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "no pipeline run yet"})
			return
		}
		writeJSON(w, d.Logger, report)
	}
}
