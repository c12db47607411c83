package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/dgallion1/templatizer/internal/contextstore"
	"github.com/dgallion1/templatizer/internal/customize"
	"github.com/dgallion1/templatizer/internal/pipeline"
	"github.com/go-chi/chi/v5"
)

const maxRequestBytes = 1 << 20

// customizeRequest is the body of POST /api/customize. Fields left empty are
// taken from the named context when one is given.
type customizeRequest struct {
	Source         string   `json:"source"`
	Context        string   `json:"context"`
	Labels         []string `json:"labels"`
	DropTitles     []string `json:"drop_titles"`
	IncludeAnchors *bool    `json:"include_anchors"`
	Language       string   `json:"language"`
}

func (s *Server) handleCustomize(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)

	var body customizeRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	if name := strings.TrimSpace(body.Context); name != "" {
		if s.contexts == nil {
			jsonError(w, "contexts are not configured", http.StatusServiceUnavailable)
			return
		}
		saved, err := s.contexts.Get(r.Context(), name)
		if errors.Is(err, contextstore.ErrNotFound) {
			jsonError(w, err.Error(), http.StatusNotFound)
			return
		}
		if err != nil {
			jsonError(w, "failed to read context: "+err.Error(), http.StatusInternalServerError)
			return
		}
		body = mergeContext(body, saved)
	}

	source := strings.TrimSpace(body.Source)
	if source == "" {
		jsonError(w, "source is required", http.StatusBadRequest)
		return
	}

	req := customize.Request{
		Labels:     body.Labels,
		DropTitles: body.DropTitles,
		Language:   body.Language,
	}
	if body.IncludeAnchors != nil {
		req.IncludeAnchors = *body.IncludeAnchors
	}
	job := pipeline.NewJob(source, req)
	job.Context = strings.TrimSpace(body.Context)

	if err := s.orchestrator.Submit(job); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]any{
		"job_id":      job.ID,
		"status":      pipeline.StatusQueued,
		"poll_url":    fmt.Sprintf("/api/customize/%s/status", job.ID),
		"archive_url": fmt.Sprintf("/api/customize/%s/archive", job.ID),
	})
}

func mergeContext(body customizeRequest, saved contextstore.Context) customizeRequest {
	if strings.TrimSpace(body.Source) == "" {
		body.Source = saved.Source
	}
	if body.Labels == nil {
		body.Labels = saved.Labels
	}
	if body.DropTitles == nil {
		body.DropTitles = saved.DropTitles
	}
	if body.IncludeAnchors == nil {
		anchors := saved.IncludeAnchors
		body.IncludeAnchors = &anchors
	}
	if body.Language == "" {
		body.Language = saved.Language
	}
	return body
}

func (s *Server) handleCustomizeStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(job.Snapshot())
}

func (s *Server) handleCustomizeArchive(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	data, ok := job.Archive()
	if !ok {
		jsonError(w, fmt.Sprintf("job is %s", job.Snapshot().Status), http.StatusConflict)
		return
	}

	name := "template"
	if job.Context != "" {
		name = sanitizeFilename(job.Context)
	}
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.zip"`, name))
	w.Write(data)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "\"", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
