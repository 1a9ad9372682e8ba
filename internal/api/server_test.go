package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/scouthq/scout/internal/config"
	"github.com/scouthq/scout/internal/fetcher"
	"github.com/scouthq/scout/internal/models"
	"github.com/scouthq/scout/internal/sources"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAdapter struct {
	name  string
	items []models.Record
	err   error
}

func (s *stubAdapter) Name() string       { return s.name }
func (s *stubAdapter) Enabled() bool      { return true }
func (s *stubAdapter) Info() sources.Info { return sources.Info{Name: s.name, Description: "stub"} }

func (s *stubAdapter) Fetch(ctx context.Context, query string, limit int) ([]models.Record, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.items, nil
}

func (s *stubAdapter) Probe(ctx context.Context) error {
	return s.err
}

func testServer(adapters ...*stubAdapter) *Server {
	cfg := &config.Config{Port: "0", UserAgent: "test", Timeout: time.Second}
	registry := sources.NewRegistry(cfg)
	for _, a := range adapters {
		registry.Register(a)
	}
	return NewServer(cfg, registry, fetcher.NewService(registry, time.Second))
}

func TestHealthz(t *testing.T) {
	server := testServer()
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status": "ok"}`, rec.Body.String())
}

func TestSourcesEndpoint(t *testing.T) {
	server := testServer()
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/api/sources", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var infos []sources.Info
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &infos))
	assert.Len(t, infos, 8)
}

func TestFetchEndpoint(t *testing.T) {
	stub := &stubAdapter{name: "stub", items: []models.Record{
		{ID: "1", Source: "stub", Title: "hello", DateConfidence: models.ConfidenceLow, Relevance: 0.5},
	}}
	server := testServer(stub)

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/api/fetch?q=hello&sources=stub", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var envelope models.ResponseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "hello", envelope.Meta.Query)
	assert.Equal(t, []string{"stub"}, envelope.Meta.SourcesRequested)
	assert.True(t, envelope.Results["stub"].Success)
	assert.Equal(t, 1, envelope.Results["stub"].ItemCount)
}

func TestFetchEndpointBadRequests(t *testing.T) {
	server := testServer()

	tests := []struct {
		name string
		url  string
	}{
		{"missing query", "/api/fetch"},
		{"blank query", "/api/fetch?q=%20"},
		{"unknown source", "/api/fetch?q=x&sources=myspace"},
		{"bad limit", "/api/fetch?q=x&limit=abc"},
		{"negative limit", "/api/fetch?q=x&limit=-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			server.Handler().ServeHTTP(rec, httptest.NewRequest("GET", tt.url, nil))
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestRankEndpoint(t *testing.T) {
	stub := &stubAdapter{name: "stub", items: []models.Record{
		{ID: "1", Source: "stub", Title: "one", DateConfidence: models.ConfidenceLow, Relevance: 0.9},
		{ID: "2", Source: "stub", Title: "two", DateConfidence: models.ConfidenceLow, Relevance: 0.2},
	}}
	server := testServer(stub)

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec,
		httptest.NewRequest("GET", "/api/rank?q=x&sources=stub&query_type=GENERAL", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body rankResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Ranking, 2)
	assert.Equal(t, "1", body.Ranking[0].Ref.ID)
	assert.Greater(t, body.Ranking[0].Score, body.Ranking[1].Score)
}

func TestRankEndpointRejectsBadQueryType(t *testing.T) {
	server := testServer()
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec,
		httptest.NewRequest("GET", "/api/rank?q=x&query_type=CHITCHAT", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
