package handlers

import (
	"net/http"

	"github.com/netfab/bdscan/internal/httpserver/deps"
	"github.com/netfab/bdscan/internal/logger"
)

// Consolidate triggers a pipeline re-run over the last loaded snapshot
// without re-reading the file.
func Consolidate(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		select {
		case d.RunTrigger <- struct{}{}:
			d.Logger.Info("manual consolidation run triggered via endpoint",
				logger.String("remote_ip", r.RemoteAddr))
			w.WriteHeader(http.StatusAccepted)
			if _, err := w.Write([]byte("consolidation run triggered\n")); err != nil {
				d.Logger.Debug("failed to write response", logger.Error(err))
			}
		default:
			d.Logger.Warn("consolidation run already in progress",
				logger.String("remote_ip", r.RemoteAddr))
			w.WriteHeader(http.StatusTooManyRequests)
			if _, err := w.Write([]byte("run already in progress, please wait\n")); err != nil {
				d.Logger.Debug("failed to write response", logger.Error(err))
			}
		}
	}
}
