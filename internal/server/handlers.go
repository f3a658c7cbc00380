package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tooxie/statista-demo-app/internal/models"
	"github.com/tooxie/statista-demo-app/internal/search"
	"github.com/tooxie/statista-demo-app/internal/storage"
)

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"message": "Welcome to the Statistics Search API"})
}

// handleHealth is the shallow liveness check: cheap enough for constant
// probing, no dependency access.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"message": "OK"})
}

// handleDeepHealth verifies that storage is reachable. More expensive than
// /health; intended for startup probes, not constant polling.
func (s *Server) handleDeepHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.storage.Ping(r.Context()); err != nil {
		s.logger.Error("deep health check failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, fmt.Sprintf("Error: %v", err))
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"message": "OK"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	count, err := s.storage.CountStatistics(r.Context())
	if err != nil {
		s.logger.Error("status: count failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := map[string]interface{}{
		"statistics": count,
		"index_size": s.service.IndexSize(),
		"config": map[string]interface{}{
			"embedding_dimensions": s.config.Embedding.Dimensions,
			"database_path":        s.config.Storage.DatabasePath,
			"corpus_path":          s.config.Corpus.Path,
		},
	}
	if diskBytes, err := storage.DiskUsageBytes(s.config.Storage.DatabasePath); err == nil {
		resp["disk_usage_bytes"] = diskBytes
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleFind(w http.ResponseWriter, r *http.Request) {
	var query models.SearchQuery
	if err := json.NewDecoder(r.Body).Decode(&query); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.logger.Debug("find request", zap.String("query", query.Query), zap.Int("limit", query.Limit))
	response, err := s.service.Find(r.Context(), &query)
	if err != nil {
		s.respondSearchError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, response)
}

func (s *Server) handleStreamFind(w http.ResponseWriter, r *http.Request) {
	var query models.SearchQuery
	if err := json.NewDecoder(r.Body).Decode(&query); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// The search runs up front, so failures still map to a proper status
	// code; only successful streams switch to SSE.
	ch, err := s.service.FindStream(r.Context(), query.Query)
	if err != nil {
		s.respondSearchError(w, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		s.respondError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	streamID := uuid.NewString()
	s.logger.Debug("stream started", zap.String("stream_id", streamID), zap.String("query", query.Query))

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	sent := 0
	for result := range ch {
		payload, err := json.Marshal(result.Statistic)
		if err != nil {
			s.logger.Error("stream marshal failed", zap.String("stream_id", streamID), zap.Error(err))
			return
		}
		if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
			// Client went away; the request context cancellation stops the
			// producer, nothing more to do here.
			s.logger.Debug("stream client disconnected",
				zap.String("stream_id", streamID), zap.Int("sent", sent))
			return
		}
		flusher.Flush()
		sent++
	}
	s.logger.Debug("stream finished", zap.String("stream_id", streamID), zap.Int("sent", sent))
}

// respondSearchError maps query service failures onto HTTP status codes.
func (s *Server) respondSearchError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, search.ErrInvalidQuery), errors.Is(err, search.ErrEmbedding):
		s.respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, search.ErrIndexUnavailable):
		s.respondError(w, http.StatusServiceUnavailable, err.Error())
	default:
		s.logger.Error("find failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
