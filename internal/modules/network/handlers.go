package network

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"
)

// NetworkHandlers exposes transition network analysis over HTTP.
type NetworkHandlers struct {
	service *Service
	log     zerolog.Logger
}

// NewNetworkHandlers creates a new network handlers instance
func NewNetworkHandlers(service *Service, log zerolog.Logger) *NetworkHandlers {
	return &NetworkHandlers{
		service: service,
		log:     log.With().Str("handlers", "network").Logger(),
	}
}

// HandleMetrics returns the transition network metrics.
// GET /api/network/metrics
func (h *NetworkHandlers) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	metrics, err := h.service.Analyze()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to analyze network")
		http.Error(w, "Failed to analyze network", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(metrics)
}
