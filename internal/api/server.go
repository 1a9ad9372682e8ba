// Package api exposes the fetch engine over HTTP for local tooling and
// other services.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/scouthq/scout/internal/config"
	"github.com/scouthq/scout/internal/doctor"
	"github.com/scouthq/scout/internal/fetcher"
	"github.com/scouthq/scout/internal/models"
	"github.com/scouthq/scout/internal/scoring"
	"github.com/scouthq/scout/internal/sources"
	"github.com/sirupsen/logrus"
)

// Server wires the fetch service and the registry into an HTTP surface.
type Server struct {
	cfg      *config.Config
	registry *sources.Registry
	fetch    *fetcher.Service
	router   *mux.Router
}

// NewServer builds the router with all routes registered.
func NewServer(cfg *config.Config, registry *sources.Registry, fetch *fetcher.Service) *Server {
	s := &Server{
		cfg:      cfg,
		registry: registry,
		fetch:    fetch,
		router:   mux.NewRouter(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.HandleFunc("/healthz", s.handleHealthz).Methods("GET")
	s.router.HandleFunc("/api/sources", s.handleSources).Methods("GET")
	s.router.HandleFunc("/api/fetch", s.handleFetch).Methods("GET")
	s.router.HandleFunc("/api/rank", s.handleRank).Methods("GET")
	s.router.HandleFunc("/api/doctor", s.handleDoctor).Methods("GET")
	s.router.Use(s.logMiddleware)
}

// Handler returns the router for tests and embedding.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe starts the HTTP server and blocks until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:         ":" + s.cfg.Port,
		Handler:      s.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 90 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logrus.Infof("HTTP server listening on :%s", s.cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logrus.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"duration": time.Since(start).String(),
		}).Debug("request handled")
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSources(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.registry.Infos())
}

// parseFetchRequest reads the shared fetch query parameters.
func parseFetchRequest(r *http.Request) (fetcher.Request, error) {
	q := r.URL.Query()

	req := fetcher.Request{
		Query: strings.TrimSpace(q.Get("q")),
		Depth: q.Get("depth"),
	}
	if raw := q.Get("sources"); raw != "" {
		for _, name := range strings.Split(raw, ",") {
			if name = strings.TrimSpace(name); name != "" {
				req.Sources = append(req.Sources, name)
			}
		}
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			return fetcher.Request{}, fmt.Errorf("invalid limit: %q", raw)
		}
		req.Limit = limit
	}
	return req, nil
}

func (s *Server) handleFetch(w http.ResponseWriter, r *http.Request) {
	req, err := parseFetchRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	envelope, err := s.fetch.Fetch(r.Context(), req)
	if err != nil {
		var callerErr *fetcher.CallerError
		if errors.As(err, &callerErr) {
			writeError(w, http.StatusBadRequest, callerErr.Reason)
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, envelope)
}

// rankResponse pairs the envelope with its ranking.
type rankResponse struct {
	Envelope *models.ResponseEnvelope `json:"envelope"`
	Ranking  []models.ScoreEntry      `json:"ranking"`
}

func (s *Server) handleRank(w http.ResponseWriter, r *http.Request) {
	req, err := parseFetchRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	queryType := scoring.QueryGeneral
	if raw := r.URL.Query().Get("query_type"); raw != "" {
		queryType, err = scoring.ParseQueryType(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	envelope, err := s.fetch.Fetch(r.Context(), req)
	if err != nil {
		var callerErr *fetcher.CallerError
		if errors.As(err, &callerErr) {
			writeError(w, http.StatusBadRequest, callerErr.Reason)
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	entries := scoring.Score(scoring.Collect(envelope), queryType, scoring.DefaultConfig())
	writeJSON(w, http.StatusOK, rankResponse{Envelope: envelope, Ranking: entries})
}

func (s *Server) handleDoctor(w http.ResponseWriter, r *http.Request) {
	report := doctor.Run(r.Context(), s.registry, s.cfg.Timeout)
	status := http.StatusOK
	if !report.Healthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, report)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.Errorf("failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
