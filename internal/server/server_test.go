package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/induslogic/isapa/internal/config"
	"github.com/induslogic/isapa/internal/database"
	"github.com/induslogic/isapa/internal/events"
	"github.com/induslogic/isapa/internal/modules/catalog"
	"github.com/induslogic/isapa/internal/modules/corpus"
	"github.com/induslogic/isapa/internal/modules/grammar"
	"github.com/induslogic/isapa/internal/modules/network"
	"github.com/induslogic/isapa/internal/modules/repair"
	"github.com/induslogic/isapa/internal/modules/validation"
	"github.com/induslogic/isapa/internal/scheduler"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	catalogDB, err := database.NewInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = catalogDB.Close() })

	corpusDB, err := database.NewInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = corpusDB.Close() })

	require.NoError(t, catalog.InitSchema(catalogDB.Conn()))
	require.NoError(t, corpus.InitSchema(corpusDB.Conn()))
	require.NoError(t, validation.InitSchema(corpusDB.Conn()))

	g, err := grammar.Default()
	require.NoError(t, err)

	v, err := validation.New(g)
	require.NoError(t, err)

	log := zerolog.Nop()
	em := events.NewManager(log)

	catalogService := catalog.NewService(catalog.NewSignRepository(catalogDB.Conn(), log), g, em, log)
	require.NoError(t, catalogService.SeedFromGrammar())

	corpusService := corpus.NewService(corpus.NewRepository(corpusDB.Conn(), log), v, em, log)
	require.NoError(t, corpusService.SeedTrainingCorpus())

	validationService := validation.NewService(v, validation.NewRepository(corpusDB.Conn(), log), em, log)
	repairEngine := repair.NewEngine(g, corpusService, em, log)
	networkService := network.NewService(g, corpusService, em, log)

	return New(Config{
		Port:      8080,
		Log:       log,
		CatalogDB: catalogDB,
		CorpusDB:  corpusDB,
		Config:    &config.Config{Port: 8080},
		DevMode:   true,

		Scheduler: scheduler.New(log),

		ValidationService: validationService,
		CatalogService:    catalogService,
		CorpusService:     corpusService,
		RepairEngine:      repairEngine,
		NetworkService:    networkService,
	})
}

func doRequest(t *testing.T, s *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "isapa", body["service"])
}

func TestSystemStatusEndpoint(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/system/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "running", body["status"])
	assert.Contains(t, body, "databases")
	assert.Contains(t, body, "scheduler")
	assert.Equal(t, float64(12), body["signs"])
}

func TestValidateEndpoint(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodPost, "/api/validate", map[string]interface{}{
		"signs": []int64{59, 789, 342},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	require.Contains(t, body, "result")
	result := body["result"].(map[string]interface{})
	assert.Equal(t, "VALID_RECEIPT", result["status"])

	id, ok := body["id"].(string)
	require.True(t, ok)

	rec = doRequest(t, s, http.MethodGet, "/api/validations/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, s, http.MethodGet, "/api/validations", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body = decodeBody(t, rec)
	assert.Equal(t, float64(1), body["count"])

	rec = doRequest(t, s, http.MethodGet, "/api/validations/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body = decodeBody(t, rec)
	assert.Equal(t, float64(1), body["total"])
}

func TestValidateEndpointViolation(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodPost, "/api/validate", map[string]interface{}{
		"signs":       []int64{905, 789, 59, 342},
		"collect_all": true,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	result := body["result"].(map[string]interface{})
	assert.Equal(t, "PROTOCOL_VIOLATION", result["status"])

	reasons := result["reasons"].([]interface{})
	require.Len(t, reasons, 2)
	first := reasons[0].(map[string]interface{})
	assert.Equal(t, "UnknownSignError", first["code"])
}

func TestValidateEndpointBadBody(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/validate", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSignsEndpoints(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/signs", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, float64(12), body["count"])

	rec = doRequest(t, s, http.MethodGet, "/api/signs/59", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body = decodeBody(t, rec)
	assert.Equal(t, "FISH", body["name"])

	rec = doRequest(t, s, http.MethodGet, "/api/signs/905", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(t, s, http.MethodGet, "/api/signs?role=PAYLOAD", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body = decodeBody(t, rec)
	assert.Equal(t, float64(6), body["count"])

	rec = doRequest(t, s, http.MethodGet, "/api/signs?role=WRONG", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCatalogExportEndpoint(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/catalog/export", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "mahadevan-administrative", body["grammar"])
	signs := body["signs"].([]interface{})
	require.Len(t, signs, 12)

	// Frequency descending, most attested first
	first := signs[0].(map[string]interface{})
	assert.Equal(t, float64(342), first["id"])
}

func TestGrammarEndpoint(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/grammar", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "mahadevan-administrative", body["name"])
	assert.Equal(t, float64(12), body["signs"])
}

func TestCorpusEndpoints(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/corpus/summary", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, float64(6), body["inscriptions"])

	rec = doRequest(t, s, http.MethodPost, "/api/corpus/inscriptions", map[string]interface{}{
		"signs":      []int64{59, 789, 342},
		"provenance": "field-survey",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(t, s, http.MethodGet, "/api/corpus/inscriptions?limit=3", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body = decodeBody(t, rec)
	assert.Equal(t, float64(3), body["count"])

	rec = doRequest(t, s, http.MethodGet, "/api/corpus/transitions?source=99", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body = decodeBody(t, rec)
	transitions := body["transitions"].([]interface{})
	assert.NotEmpty(t, transitions)

	rec = doRequest(t, s, http.MethodPost, "/api/corpus/rebuild", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body = decodeBody(t, rec)
	assert.Equal(t, "rebuilt", body["status"])
}

func TestRepairPredictEndpoint(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodPost, "/api/repair/predict", map[string]interface{}{
		"signs":     []int64{59, 0, 342},
		"gap_index": 1,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	predictions := body["predictions"].([]interface{})
	require.NotEmpty(t, predictions)
	top := predictions[0].(map[string]interface{})
	assert.Equal(t, "STROKE", top["name"])

	rec = doRequest(t, s, http.MethodPost, "/api/repair/predict", map[string]interface{}{
		"signs":     []int64{59, 342},
		"gap_index": 9,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNetworkMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/network/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, float64(9), body["nodes"])
	assert.Equal(t, float64(10), body["edges"])
}

func TestUnknownRouteReturnsJSONError(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/nope", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "Route not found", body["error"])
}
