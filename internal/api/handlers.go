package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ytaudio/ytaudio/internal/media"
)

// healthStatus is the /health payload.
type healthStatus struct {
	Status            string `json:"status"`
	ActiveExtractions int64  `json:"active_extractions"`
	Uptime            string `json:"uptime"`
}

// handleIndex describes the service and its endpoints.
func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) error {
	return s.respond(w, map[string]any{
		"service": ServiceName,
		"status":  "running",
		"endpoints": map[string]string{
			"/info":   "GET - Video metadata (query param: url)",
			"/audio":  "GET - Extract audio as MP3 (query param: url)",
			"/health": "GET - Service health",
		},
	}, http.StatusOK)
}

// handleHealth reports liveness and the number of in-flight extractions.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) error {
	return s.respond(w, healthStatus{
		Status:            "healthy",
		ActiveExtractions: s.active.Load(),
		Uptime:            time.Since(s.started).String(),
	}, http.StatusOK)
}

// handleInfo resolves metadata for the requested URL without downloading.
func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) error {
	url := r.URL.Query().Get("url")
	if url == "" {
		return &apiError{Code: http.StatusBadRequest, Detail: "url query parameter is required"}
	}

	meta, err := s.extractor.FetchMetadata(detachedContext(r), url)
	if err != nil {
		return &apiError{
			Code:   http.StatusBadRequest,
			Detail: fmt.Sprintf("Failed to get video info: %v", err),
		}
	}
	return s.respond(w, meta, http.StatusOK)
}

// handleAudio extracts the requested URL's audio and streams the MP3 back.
// Deferred cleanup reclaims the scratch directory on every exit path, panics
// included; on success it runs only after the response body has been fully
// written.
func (s *Server) handleAudio(w http.ResponseWriter, r *http.Request) error {
	url := r.URL.Query().Get("url")
	if url == "" {
		return &apiError{Code: http.StatusBadRequest, Detail: "url query parameter is required"}
	}

	logger := s.logger.With(
		zap.String("request_id", uuid.New().String()),
		zap.String("url", url),
	)

	dir, err := s.scratch.Acquire()
	if err != nil {
		return &apiError{
			Code:   http.StatusInternalServerError,
			Detail: fmt.Sprintf("Failed to extract audio: %v", err),
		}
	}
	defer s.scratch.Release(dir)

	s.active.Add(1)
	defer s.active.Add(-1)

	artifact, err := s.extractor.FetchAudio(detachedContext(r), url, dir.Path())
	if err != nil {
		var missing *media.ArtifactMissingError
		if errors.As(err, &missing) {
			return &apiError{Code: http.StatusInternalServerError, Detail: "Audio file not found after download"}
		}
		return &apiError{
			Code:   http.StatusBadRequest,
			Detail: fmt.Sprintf("Failed to extract audio: %v", err),
		}
	}

	file, err := os.Open(artifact.Path)
	if err != nil {
		logger.Error("opening audio artifact", zap.String("path", artifact.Path), zap.Error(err))
		return &apiError{Code: http.StatusInternalServerError, Detail: "Audio file not found after download"}
	}
	// Runs before the deferred Release: the handle must be closed before the
	// directory goes away.
	defer file.Close()

	w.Header().Set("Content-Type", "audio/mpeg")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.mp3\"", sanitizeFilename(artifact.Title)))
	w.Header().Set("Content-Length", strconv.FormatInt(artifact.Size, 10))

	if _, err := io.Copy(w, file); err != nil {
		// Headers are already on the wire; all that is left is to note the
		// aborted stream.
		logger.Warn("audio stream aborted", zap.Error(err))
		return nil
	}

	logger.Info("audio delivered",
		zap.String("title", artifact.Title),
		zap.Int64("bytes", artifact.Size),
	)
	return nil
}

// detachedContext severs the request's cancellation signal. Once extraction
// has been handed to the external tool a client disconnect does not stop it;
// cleanup still runs when the tool finishes.
func detachedContext(r *http.Request) context.Context {
	return context.WithoutCancel(r.Context())
}
