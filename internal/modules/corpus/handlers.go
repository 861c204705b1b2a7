package corpus

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/induslogic/isapa/internal/domain"
)

// CorpusHandlers exposes the inscription archive over HTTP.
type CorpusHandlers struct {
	service *Service
	log     zerolog.Logger
}

// NewCorpusHandlers creates a new corpus handlers instance
func NewCorpusHandlers(service *Service, log zerolog.Logger) *CorpusHandlers {
	return &CorpusHandlers{
		service: service,
		log:     log.With().Str("handlers", "corpus").Logger(),
	}
}

// ArchiveRequest is the POST /api/corpus/inscriptions body.
type ArchiveRequest struct {
	Signs      []domain.SignID `json:"signs"`
	Provenance string          `json:"provenance"`
}

// HandleArchiveInscription archives a sequence with its verdict.
// POST /api/corpus/inscriptions
func (h *CorpusHandlers) HandleArchiveInscription(w http.ResponseWriter, r *http.Request) {
	var req ArchiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if len(req.Signs) == 0 {
		http.Error(w, "Inscription must contain at least one sign", http.StatusBadRequest)
		return
	}

	ins, err := h.service.ArchiveInscription(req.Signs, req.Provenance)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to archive inscription")
		http.Error(w, "Failed to archive inscription", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(ins)
}

// HandleListInscriptions returns recent archive entries.
// GET /api/corpus/inscriptions?limit=50
func (h *CorpusHandlers) HandleListInscriptions(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	inscriptions, err := h.service.RecentInscriptions(limit)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list inscriptions")
		http.Error(w, "Failed to list inscriptions", http.StatusInternalServerError)
		return
	}

	if inscriptions == nil {
		inscriptions = []domain.Inscription{}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"inscriptions": inscriptions,
		"count":        len(inscriptions),
	})
}

// HandleGetInscription returns one archived inscription.
// GET /api/corpus/inscriptions/{id}
func (h *CorpusHandlers) HandleGetInscription(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	ins, err := h.service.GetInscription(id)
	if err != nil {
		h.log.Error().Err(err).Str("id", id).Msg("Failed to get inscription")
		http.Error(w, "Failed to get inscription", http.StatusInternalServerError)
		return
	}
	if ins == nil {
		http.Error(w, "Inscription not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(ins)
}

// HandleSummary returns corpus-level statistics.
// GET /api/corpus/summary
func (h *CorpusHandlers) HandleSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summarize()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to summarize corpus")
		http.Error(w, "Failed to summarize corpus", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(summary)
}

// HandleTransitions returns observed transitions, either the full
// aggregate table or the continuations of one source sign.
// GET /api/corpus/transitions?source=59
func (h *CorpusHandlers) HandleTransitions(w http.ResponseWriter, r *http.Request) {
	sourceParam := r.URL.Query().Get("source")

	if sourceParam == "" {
		bigrams, err := h.service.Bigrams()
		if err != nil {
			h.log.Error().Err(err).Msg("Failed to fetch transitions")
			http.Error(w, "Failed to fetch transitions", http.StatusInternalServerError)
			return
		}
		if bigrams == nil {
			bigrams = []domain.Bigram{}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"bigrams": bigrams,
			"count":   len(bigrams),
		})
		return
	}

	source, err := strconv.ParseInt(sourceParam, 10, 64)
	if err != nil {
		http.Error(w, "Invalid source sign id", http.StatusBadRequest)
		return
	}

	transitions := h.service.Model().Transitions(domain.SignID(source))
	if transitions == nil {
		transitions = []Transition{}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"source":      source,
		"transitions": transitions,
	})
}

// HandleRebuild recomputes the bigram aggregates on demand.
// POST /api/corpus/rebuild
func (h *CorpusHandlers) HandleRebuild(w http.ResponseWriter, r *http.Request) {
	if err := h.service.RebuildTransitions(); err != nil {
		h.log.Error().Err(err).Msg("Failed to rebuild transitions")
		http.Error(w, "Failed to rebuild transitions", http.StatusInternalServerError)
		return
	}

	summary, err := h.service.Summarize()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to summarize corpus")
		http.Error(w, "Failed to summarize corpus", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "rebuilt",
		"summary": summary,
	})
}
