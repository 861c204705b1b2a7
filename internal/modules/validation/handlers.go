package validation

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/induslogic/isapa/internal/domain"
)

// ValidationHandlers exposes the validator over HTTP.
type ValidationHandlers struct {
	service *Service
	log     zerolog.Logger
}

// NewValidationHandlers creates a new validation handlers instance
func NewValidationHandlers(service *Service, log zerolog.Logger) *ValidationHandlers {
	return &ValidationHandlers{
		service: service,
		log:     log.With().Str("handlers", "validation").Logger(),
	}
}

// ValidateRequest is the POST /api/validate body.
type ValidateRequest struct {
	Signs      []domain.SignID `json:"signs"`
	CollectAll bool            `json:"collect_all"`
}

// HandleValidate validates a sequence and archives the receipt.
// POST /api/validate
func (h *ValidationHandlers) HandleValidate(w http.ResponseWriter, r *http.Request) {
	var req ValidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	rec, err := h.service.Run(req.Signs, req.CollectAll)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to run validation")
		http.Error(w, "Failed to run validation", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(rec)
}

// HandleListValidations returns recent archived runs.
// GET /api/validations?limit=50
func (h *ValidationHandlers) HandleListValidations(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	records, err := h.service.Recent(limit)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list validations")
		http.Error(w, "Failed to list validations", http.StatusInternalServerError)
		return
	}

	if records == nil {
		records = []Record{}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"validations": records,
		"count":       len(records),
	})
}

// HandleGetValidation returns one archived run by id.
// GET /api/validations/{id}
func (h *ValidationHandlers) HandleGetValidation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	rec, err := h.service.GetByID(id)
	if err != nil {
		h.log.Error().Err(err).Str("id", id).Msg("Failed to get validation")
		http.Error(w, "Failed to get validation", http.StatusInternalServerError)
		return
	}
	if rec == nil {
		http.Error(w, "Validation not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(rec)
}

// HandleValidationStats summarizes the archive by status.
// GET /api/validations/stats
func (h *ValidationHandlers) HandleValidationStats(w http.ResponseWriter, r *http.Request) {
	counts, err := h.service.Stats()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to get validation stats")
		http.Error(w, "Failed to get validation stats", http.StatusInternalServerError)
		return
	}

	total := 0
	for _, n := range counts {
		total += n
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"total":     total,
		"by_status": counts,
	})
}
