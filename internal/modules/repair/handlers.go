package repair

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/induslogic/isapa/internal/domain"
)

// RepairHandlers exposes gap prediction over HTTP.
type RepairHandlers struct {
	engine *Engine
	log    zerolog.Logger
}

// NewRepairHandlers creates a new repair handlers instance
func NewRepairHandlers(engine *Engine, log zerolog.Logger) *RepairHandlers {
	return &RepairHandlers{
		engine: engine,
		log:    log.With().Str("handlers", "repair").Logger(),
	}
}

// PredictRequest is the POST /api/repair/predict body.
type PredictRequest struct {
	Signs    []domain.SignID `json:"signs"`
	GapIndex int             `json:"gap_index"`
}

// HandlePredict proposes candidates for a damaged position.
// POST /api/repair/predict
func (h *RepairHandlers) HandlePredict(w http.ResponseWriter, r *http.Request) {
	var req PredictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if len(req.Signs) == 0 {
		http.Error(w, "Sequence must contain at least one sign", http.StatusBadRequest)
		return
	}

	predictions, err := h.engine.Predict(req.Signs, req.GapIndex)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if predictions == nil {
		predictions = []Prediction{}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"gap_index":   req.GapIndex,
		"predictions": predictions,
		"count":       len(predictions),
	})
}
