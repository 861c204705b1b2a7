package server

import (
	"github.com/go-chi/chi/v5"

	"github.com/induslogic/isapa/internal/modules/catalog"
	"github.com/induslogic/isapa/internal/modules/corpus"
	"github.com/induslogic/isapa/internal/modules/network"
	"github.com/induslogic/isapa/internal/modules/repair"
	"github.com/induslogic/isapa/internal/modules/validation"
)

// setupModuleRoutes configures the module routes under /api.
func (s *Server) setupModuleRoutes(r chi.Router) {
	validationHandlers := validation.NewValidationHandlers(s.validationService, s.log)
	catalogHandlers := catalog.NewCatalogHandlers(s.catalogService, s.log)
	corpusHandlers := corpus.NewCorpusHandlers(s.corpusService, s.log)
	repairHandlers := repair.NewRepairHandlers(s.repairEngine, s.log)
	networkHandlers := network.NewNetworkHandlers(s.networkService, s.log)

	// Validation
	r.Post("/validate", validationHandlers.HandleValidate)
	r.Route("/validations", func(r chi.Router) {
		r.Get("/", validationHandlers.HandleListValidations)
		r.Get("/stats", validationHandlers.HandleValidationStats)
		r.Get("/{id}", validationHandlers.HandleGetValidation)
	})

	// Sign catalog
	r.Route("/signs", func(r chi.Router) {
		r.Get("/", catalogHandlers.HandleGetSigns)
		r.Get("/{id}", catalogHandlers.HandleGetSign)
	})
	r.Get("/catalog/export", catalogHandlers.HandleExport)
	r.Get("/grammar", catalogHandlers.HandleGetGrammar)

	// Corpus
	r.Route("/corpus", func(r chi.Router) {
		r.Route("/inscriptions", func(r chi.Router) {
			r.Post("/", corpusHandlers.HandleArchiveInscription)
			r.Get("/", corpusHandlers.HandleListInscriptions)
			r.Get("/{id}", corpusHandlers.HandleGetInscription)
		})
		r.Get("/summary", corpusHandlers.HandleSummary)
		r.Get("/transitions", corpusHandlers.HandleTransitions)
		r.Post("/rebuild", corpusHandlers.HandleRebuild)
	})

	// Repair
	r.Post("/repair/predict", repairHandlers.HandlePredict)

	// Network analysis
	r.Get("/network/metrics", networkHandlers.HandleMetrics)
}
