package web

// handlers_common.go holds request parsing helpers shared across handlers.

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/otc/internal/core"
	"github.com/JonMunkholm/otc/internal/logging"
)

// maxJSONBody bounds JSON request bodies.
const maxJSONBody = 1 << 20

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 1 {
		return defaultVal
	}
	return i
}

// parseOrderFilter reads the orders search state from the query string.
// Unknown sort columns and oversized pages are corrected by the service.
func parseOrderFilter(r *http.Request) core.OrderFilter {
	q := r.URL.Query()
	dir := "asc"
	if q.Get("dir") == "desc" {
		dir = "desc"
	}
	return core.OrderFilter{
		Query:      q.Get("q"),
		Succursale: q.Get("succursale"),
		Status:     q.Get("status"),
		DateFrom:   q.Get("date_from"),
		DateTo:     q.Get("date_to"),
		Sort:       core.SortSpec{Column: q.Get("sort"), Dir: dir},
		Page:       parseIntParam(r, "page", 1),
		PageSize:   parseIntParam(r, "page_size", core.DefaultPageSize),
	}
}

// render writes an HTML component. The status line is already sent when
// rendering fails, so the error is only logged.
func render(w http.ResponseWriter, r *http.Request, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := c.Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render page", "path", r.URL.Path, "error", err)
	}
}

// decodeJSON reads a size-limited JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// handleHealth reports liveness, database reachability and import slots.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := struct {
		Status   string                   `json:"status"`
		Database string                   `json:"database,omitempty"`
		Imports  core.ImportLimiterStatus `json:"imports"`
	}{
		Status:  "ok",
		Imports: s.service.ImportLimiterStatus(),
	}

	status := http.StatusOK
	if s.ping != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.ping(ctx); err != nil {
			resp.Status = "degraded"
			resp.Database = "unreachable"
			status = http.StatusServiceUnavailable
		} else {
			resp.Database = "ok"
		}
	}
	writeJSONStatus(w, status, resp)
}
