package server

import (
	"net/http"
	"runtime"

	"github.com/induslogic/isapa/internal/database"
)

// handleSystemStatus reports runtime, database and scheduler state
// GET /api/system/status
func (s *Server) handleSystemStatus(w http.ResponseWriter, r *http.Request) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	response := map[string]interface{}{
		"status": "running",
		"memory": map[string]interface{}{
			"alloc_mb":       m.Alloc / 1024 / 1024,
			"total_alloc_mb": m.TotalAlloc / 1024 / 1024,
			"sys_mb":         m.Sys / 1024 / 1024,
			"num_gc":         m.NumGC,
		},
		"goroutines": runtime.NumGoroutine(),
		"databases": map[string]interface{}{
			"catalog": s.databaseStatus(s.catalogDB),
			"corpus":  s.databaseStatus(s.corpusDB),
		},
	}

	if s.scheduler != nil {
		response["scheduler"] = map[string]interface{}{
			"jobs": s.scheduler.Entries(),
		}
	}

	if s.catalogService != nil {
		if count, err := s.catalogService.Count(); err == nil {
			response["signs"] = count
		}
	}

	s.writeJSON(w, http.StatusOK, response)
}

// databaseStatus describes one database connection
func (s *Server) databaseStatus(db *database.DB) map[string]interface{} {
	if db == nil {
		return map[string]interface{}{
			"connected": false,
		}
	}

	status := map[string]interface{}{
		"path":      db.Path(),
		"connected": true,
	}

	if err := db.Ping(); err != nil {
		status["connected"] = false
		status["error"] = err.Error()
	}

	return status
}
