package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dgallion1/templatizer/internal/contextstore"
	"github.com/go-chi/chi/v5"
)

func (s *Server) requireContexts(w http.ResponseWriter) bool {
	if s.contexts == nil {
		jsonError(w, "contexts are not configured", http.StatusServiceUnavailable)
		return false
	}
	return true
}

func contextError(w http.ResponseWriter, err error) {
	if errors.Is(err, contextstore.ErrNotFound) {
		jsonError(w, err.Error(), http.StatusNotFound)
		return
	}
	jsonError(w, err.Error(), http.StatusInternalServerError)
}

func (s *Server) handleListContexts(w http.ResponseWriter, r *http.Request) {
	if !s.requireContexts(w) {
		return
	}
	list, err := s.contexts.List(r.Context())
	if err != nil {
		contextError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"contexts": list})
}

func (s *Server) handleGetContext(w http.ResponseWriter, r *http.Request) {
	if !s.requireContexts(w) {
		return
	}
	c, err := s.contexts.Get(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		contextError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(c)
}

func (s *Server) handlePutContext(w http.ResponseWriter, r *http.Request) {
	if !s.requireContexts(w) {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)

	var c contextstore.Context
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	c.Name = chi.URLParam(r, "name")
	if c.Source == "" {
		jsonError(w, "source is required", http.StatusBadRequest)
		return
	}
	saved, err := s.contexts.Save(r.Context(), c)
	if err != nil {
		contextError(w, err)
		return
	}
	s.log.Info("context saved", "name", saved.Name, "source", saved.Source)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(saved)
}

func (s *Server) handleDeleteContext(w http.ResponseWriter, r *http.Request) {
	if !s.requireContexts(w) {
		return
	}
	if err := s.contexts.Delete(r.Context(), chi.URLParam(r, "name")); err != nil {
		contextError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
