package catalog

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/induslogic/isapa/internal/domain"
)

// CatalogHandlers exposes the sign catalog over HTTP.
type CatalogHandlers struct {
	service *Service
	log     zerolog.Logger
}

// NewCatalogHandlers creates a new catalog handlers instance
func NewCatalogHandlers(service *Service, log zerolog.Logger) *CatalogHandlers {
	return &CatalogHandlers{
		service: service,
		log:     log.With().Str("handlers", "catalog").Logger(),
	}
}

// HandleGetSigns returns the catalog, frequency descending.
// GET /api/signs?role=PAYLOAD
func (h *CatalogHandlers) HandleGetSigns(w http.ResponseWriter, r *http.Request) {
	var signs []domain.Sign
	var err error

	if roleParam := r.URL.Query().Get("role"); roleParam != "" {
		role, perr := domain.ParseRole(roleParam)
		if perr != nil {
			http.Error(w, "Invalid role", http.StatusBadRequest)
			return
		}
		signs, err = h.service.ByRole(role)
	} else {
		signs, err = h.service.All()
	}

	if err != nil {
		h.log.Error().Err(err).Msg("Failed to fetch signs")
		http.Error(w, "Failed to fetch signs", http.StatusInternalServerError)
		return
	}

	if signs == nil {
		signs = []domain.Sign{}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"signs": signs,
		"count": len(signs),
	})
}

// HandleGetSign returns one cataloged sign.
// GET /api/signs/{id}
func (h *CatalogHandlers) HandleGetSign(w http.ResponseWriter, r *http.Request) {
	idParam := chi.URLParam(r, "id")

	id, err := strconv.ParseInt(idParam, 10, 64)
	if err != nil {
		http.Error(w, "Invalid sign id", http.StatusBadRequest)
		return
	}

	sign, err := h.service.GetByID(domain.SignID(id))
	if err != nil {
		h.log.Error().Err(err).Int64("id", id).Msg("Failed to fetch sign")
		http.Error(w, "Failed to fetch sign", http.StatusInternalServerError)
		return
	}
	if sign == nil {
		http.Error(w, "Sign not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(sign)
}

// HandleExport serves the frequency-sorted catalog plus the active rules.
// GET /api/catalog/export
func (h *CatalogHandlers) HandleExport(w http.ResponseWriter, r *http.Request) {
	export, err := h.service.BuildExport()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to build catalog export")
		http.Error(w, "Failed to build catalog export", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(export)
}

// HandleGetGrammar returns the active grammar as a rule view.
// GET /api/grammar
func (h *CatalogHandlers) HandleGetGrammar(w http.ResponseWriter, r *http.Request) {
	g := h.service.Grammar()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"name":    g.Name(),
		"version": g.Version(),
		"signs":   g.SignCount(),
		"rules":   g.Rules(),
	})
}
