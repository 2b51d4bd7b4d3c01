package web

import (
	"net/http"

	"github.com/JonMunkholm/otc/internal/core"
	"github.com/JonMunkholm/otc/internal/logging"
	"github.com/JonMunkholm/otc/internal/web/templates"
)

// handleOrdersPage renders the orders page, or only the table for HTMX.
func (s *Server) handleOrdersPage(w http.ResponseWriter, r *http.Request) {
	page, err := s.service.SearchOrders(r.Context(), parseOrderFilter(r))
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}

	if isHTMX(r) {
		render(w, r, templates.OrdersTable(page))
		return
	}

	options, err := s.service.FilterOptions(r.Context())
	if err != nil {
		// The page still works without dropdown values.
		logging.FromContext(r.Context()).Warn("load filter options", "error", err)
	}
	render(w, r, templates.OrdersPage(templates.OrdersPageParams{Page: page, Options: options}))
}

func (s *Server) handleSearchOrders(w http.ResponseWriter, r *http.Request) {
	page, err := s.service.SearchOrders(r.Context(), parseOrderFilter(r))
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	writeJSON(w, page)
}

func (s *Server) handleFilterOptions(w http.ResponseWriter, r *http.Request) {
	options, err := s.service.FilterOptions(r.Context())
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	writeJSON(w, options)
}

type deleteOrdersRequest struct {
	IDs     []int64 `json:"ids"`
	Confirm bool    `json:"confirm"`
}

// handleDeleteOrders removes the selected orders. The body must carry
// "confirm": true.
func (s *Server) handleDeleteOrders(w http.ResponseWriter, r *http.Request) {
	var req deleteOrdersRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}

	ctx := withRequestMetadata(r.Context(), r)
	n, err := s.service.DeleteOrders(ctx, req.IDs, req.Confirm)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	writeJSON(w, map[string]int64{"deleted": n})
}

var _ Dashboard = (*core.Service)(nil)
