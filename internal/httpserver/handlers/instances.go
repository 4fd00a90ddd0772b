package handlers

import (
	"encoding/json"
	"net/http"
	"sort"

	"github.com/netfab/bdscan/internal/domain"
	"github.com/netfab/bdscan/internal/httpserver/deps"
	"github.com/netfab/bdscan/internal/logger"
)

type instancesResponse struct {
	Count     int                       `json:"count"`
	Instances []*domain.ServiceInstance `json:"instances"`
}

// Instances serves the consolidated inventory. With ?signature= it
// returns the single instance for that exact signature, or 404.
func Instances(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		if sig := r.URL.Query().Get("signature"); sig != "" {
			inst, ok := d.MemoryIndex.GetInstance(sig)
			if !ok {
				w.WriteHeader(http.StatusNotFound)
				_ = json.NewEncoder(w).Encode(map[string]string{"error": "no instance for signature"})
				return
			}
			writeJSON(w, d.Logger, inst)
			return
		}

		instances := d.MemoryIndex.GetAllInstances()
		sort.Slice(instances, func(i, j int) bool {
			return instances[i].Signature < instances[j].Signature
		})
		writeJSON(w, d.Logger, instancesResponse{
			Count:     len(instances),
			Instances: instances,
		})
	}
}

// Review serves the instances the pipeline could not place with
// confidence: unsigned, unsafe to merge, or carrying topology
// violations after merge.
func Review(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		review := d.MemoryIndex.GetReview()
		writeJSON(w, d.Logger, instancesResponse{
			Count:     len(review),
			Instances: review,
		})
	}
}

func writeJSON(w http.ResponseWriter, log logger.Logger, v any) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Debug("failed to encode response", logger.Error(err))
	}
}
