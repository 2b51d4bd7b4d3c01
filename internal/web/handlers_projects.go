package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/otc/internal/core"
	"github.com/JonMunkholm/otc/internal/web/templates"
)

func (s *Server) handleProjectsPage(w http.ResponseWriter, r *http.Request) {
	settings, err := s.service.ListProjectSettings(r.Context())
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	render(w, r, templates.ProjectsPage(settings))
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	settings, err := s.service.ListProjectSettings(r.Context())
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	writeJSON(w, settings)
}

type switchMethodRequest struct {
	Method core.CalculationMethod `json:"method"`
}

// handleSwitchMethod changes a project's calculation method and refreshes
// the analytics views.
func (s *Server) handleSwitchMethod(w http.ResponseWriter, r *http.Request) {
	var req switchMethodRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}

	projectUUID := chi.URLParam(r, "projectUUID")
	ctx := withRequestMetadata(r.Context(), r)
	if err := s.service.SwitchCalculationMethod(ctx, projectUUID, req.Method); err != nil {
		s.respondError(w, r, err, 0)
		return
	}

	writeJSON(w, map[string]any{
		"project_uuid":       projectUUID,
		"calculation_method": req.Method,
	})
}

func (s *Server) handleRefreshAnalytics(w http.ResponseWriter, r *http.Request) {
	if err := s.service.RefreshAnalyticsViews(r.Context()); err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	writeJSON(w, map[string]string{"status": "refreshed"})
}
