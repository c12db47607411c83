package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/dgallion1/templatizer/internal/catalog"
	"github.com/dgallion1/templatizer/internal/customize"
	"github.com/dgallion1/templatizer/internal/fetch"
	"github.com/dgallion1/templatizer/internal/links"
)

type labelInfo struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Values      []string `json:"values,omitempty"`
}

// handleCatalog lists what a template offers: its labels, ordered values per
// namespace and the sections of each part.
func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	source := strings.TrimSpace(r.URL.Query().Get("source"))
	if source == "" {
		jsonError(w, "source query parameter is required", http.StatusBadRequest)
		return
	}

	tpl, err := s.loader.Load(r.Context(), source)
	if err != nil {
		s.log.Warn("catalog load failed", "source", source, "error", err)
		jsonError(w, err.Error(), loadErrorStatus(err))
		return
	}

	declared := make([]labelInfo, 0, len(tpl.Manifest.Labels))
	for _, l := range tpl.Manifest.Labels {
		declared = append(declared, labelInfo{Name: l.Name, Description: l.Description, Values: l.AvailableValues})
	}
	namespaces := tpl.Catalog.Namespaces()
	if namespaces == nil {
		namespaces = []catalog.Namespace{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"title":       tpl.Manifest.Title,
		"language":    tpl.Manifest.Language,
		"labels":      tpl.Catalog.SelectableLabels(),
		"bare_labels": tpl.Catalog.BareLabels(),
		"namespaces":  namespaces,
		"declared":    declared,
		"parts":       tpl.Catalog.Parts(),
	})
}

// loadErrorStatus maps template loading failures to HTTP statuses.
func loadErrorStatus(err error) int {
	var (
		dup *links.DuplicateIDError
		bad *customize.ManifestError
	)
	switch {
	case fetch.IsNotFound(err):
		return http.StatusNotFound
	case errors.As(err, &dup):
		return http.StatusUnprocessableEntity
	case fetch.IsRetryable(err):
		return http.StatusBadGateway
	case errors.As(err, &bad):
		return http.StatusUnprocessableEntity
	}
	return http.StatusBadRequest
}
