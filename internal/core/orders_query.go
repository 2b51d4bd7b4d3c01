package core

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/jackc/pgx/v5"

	db "github.com/JonMunkholm/otc/internal/database"
	"github.com/JonMunkholm/otc/internal/logging"
)

const (
	DefaultPageSize = 50
	MaxPageSize     = 500
)

// OrderRepository is the order table as seen by search, deletion and import.
type OrderRepository interface {
	OrderStore
	SearchOrders(ctx context.Context, f OrderFilter) (*OrderPage, error)
	DeleteOrders(ctx context.Context, ids []int64) (int64, error)
	FilterOptions(ctx context.Context) (FilterOptions, error)
}

// FilterOptions lists the distinct values offered by the filter dropdowns.
type FilterOptions struct {
	Succursales []string `json:"succursales"`
	Statuses    []string `json:"statuses"`
}

var orderColumns = []string{
	"id", "succursale", "operateur", "date_cde", "num_cde", "po_client",
	"reference", "designation", "qte_cde", "qte_livree", "solde", "date_bl",
	"num_bl", "status", "num_client", "nom_clients", "created_at",
}

// searchColumns are matched by the free-text box.
var searchColumns = []string{
	"succursale", "operateur", "num_cde", "po_client", "reference",
	"designation", "num_bl", "num_client", "nom_clients", "status",
}

// normalizeFilter clamps paging and drops sorts on unknown columns.
func normalizeFilter(f OrderFilter) OrderFilter {
	f.Query = strings.TrimSpace(f.Query)
	f.Succursale = strings.TrimSpace(f.Succursale)
	f.Status = strings.TrimSpace(f.Status)

	if f.Page < 1 {
		f.Page = 1
	}
	switch {
	case f.PageSize <= 0:
		f.PageSize = DefaultPageSize
	case f.PageSize > MaxPageSize:
		f.PageSize = MaxPageSize
	}

	if !slices.Contains(orderColumns, f.Sort.Column) {
		f.Sort = SortSpec{Column: "id", Dir: "asc"}
	}
	f.Sort.Dir = strings.ToLower(f.Sort.Dir)
	if f.Sort.Dir != "desc" {
		f.Sort.Dir = "asc"
	}
	return f
}

// buildOrderQueries returns the count and page queries for a normalized
// filter. The page query takes two extra arguments: limit and offset.
func buildOrderQueries(f OrderFilter) (countSQL, pageSQL string, args []interface{}) {
	wb := NewWhereBuilder()
	wb.AddSearch(f.Query, searchColumns)
	wb.Add("succursale", f.Succursale)
	wb.Add("status", f.Status)
	if f.DateFrom != "" {
		wb.AddCompare("date_cde", ">=", f.DateFrom)
	}
	if f.DateTo != "" {
		wb.AddCompare("date_cde", "<=", f.DateTo)
	}
	where, args := wb.Build()

	countSQL = "SELECT COUNT(*) FROM otc_orders" + where

	order := fmt.Sprintf("%s %s NULLS LAST", quoteIdentifier(f.Sort.Column), f.Sort.Dir)
	if f.Sort.Column != "id" {
		order += ", id asc"
	}
	next := wb.NextArgIndex()
	pageSQL = fmt.Sprintf("SELECT %s FROM otc_orders%s ORDER BY %s LIMIT $%d OFFSET $%d",
		strings.Join(orderColumns, ", "), where, order, next, next+1)
	return countSQL, pageSQL, args
}

// SearchOrders runs a filtered, paginated query over otc_orders.
func (p *PostgresStore) SearchOrders(ctx context.Context, f OrderFilter) (*OrderPage, error) {
	countSQL, pageSQL, args := buildOrderQueries(f)

	var total int64
	if err := p.conn.QueryRow(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, remoteError("count otc_orders", err)
	}

	totalPages := int((total + int64(f.PageSize) - 1) / int64(f.PageSize))
	if totalPages < 1 {
		totalPages = 1
	}
	if f.Page > totalPages {
		f.Page = totalPages
	}
	offset := (f.Page - 1) * f.PageSize

	rows, err := p.conn.Query(ctx, pageSQL, append(args, f.PageSize, offset)...)
	if err != nil {
		return nil, remoteError("select otc_orders", err)
	}
	stored, err := pgx.CollectRows(rows, pgx.RowToStructByPos[db.OtcOrder])
	if err != nil {
		return nil, remoteError("select otc_orders", err)
	}

	orders := make([]Order, len(stored))
	for i, o := range stored {
		orders[i] = orderFromDB(o)
	}

	return &OrderPage{
		Orders:     orders,
		TotalRows:  total,
		Page:       f.Page,
		PageSize:   f.PageSize,
		TotalPages: totalPages,
		Filter:     f,
	}, nil
}

func orderFromDB(o db.OtcOrder) Order {
	out := Order{
		ID: o.ID,
		OrderRecord: OrderRecord{
			Succursale:  o.Succursale,
			Operateur:   o.Operateur,
			DateCde:     fromPgDate(o.DateCde),
			NumCde:      o.NumCde,
			PoClient:    fromPgText(o.PoClient),
			Reference:   o.Reference,
			Designation: o.Designation,
			QteCde:      o.QteCde,
			QteLivree:   o.QteLivree,
			DateBl:      fromPgDate(o.DateBl),
			NumBl:       fromPgText(o.NumBl),
			Status:      o.Status,
			NumClient:   fromPgText(o.NumClient),
			NomClients:  fromPgText(o.NomClients),
		},
		CreatedAt: o.CreatedAt.Time,
	}
	if o.Solde.Valid {
		solde := o.Solde.Float64
		out.Solde = &solde
	}
	return out
}

// DeleteOrders removes rows by id.
func (p *PostgresStore) DeleteOrders(ctx context.Context, ids []int64) (int64, error) {
	n, err := p.q.DeleteOtcOrdersByIDs(ctx, ids)
	return n, remoteError("delete otc_orders", err)
}

// FilterOptions loads the distinct branch and status values.
func (p *PostgresStore) FilterOptions(ctx context.Context) (FilterOptions, error) {
	succursales, err := p.q.ListOtcSuccursales(ctx)
	if err != nil {
		return FilterOptions{}, remoteError("list succursales", err)
	}
	statuses, err := p.q.ListOtcStatuses(ctx)
	if err != nil {
		return FilterOptions{}, remoteError("list statuses", err)
	}
	return FilterOptions{Succursales: succursales, Statuses: statuses}, nil
}

// SearchOrders validates and normalizes f, then runs the search.
func (s *Service) SearchOrders(ctx context.Context, f OrderFilter) (*OrderPage, error) {
	if err := validate.Struct(f); err != nil {
		return nil, fmt.Errorf("search orders: %s", validationMessage(err))
	}
	return s.orders.SearchOrders(ctx, normalizeFilter(f))
}

// FilterOptions returns the values for the search dropdowns.
func (s *Service) FilterOptions(ctx context.Context) (FilterOptions, error) {
	return s.orders.FilterOptions(ctx)
}

// DeleteOrders removes the given rows. Nothing is deleted unless confirmed
// is true. Duplicate ids are collapsed. Returns the number of rows removed.
func (s *Service) DeleteOrders(ctx context.Context, ids []int64, confirmed bool) (int64, error) {
	if !confirmed {
		return 0, ErrConfirmationRequired
	}

	ids = slices.Clone(ids)
	slices.Sort(ids)
	ids = slices.Compact(ids)
	if len(ids) == 0 {
		return 0, ErrNothingSelected
	}

	n, err := s.orders.DeleteOrders(ctx, ids)
	logger := logging.FromContext(ctx).With(
		"client_ip", ClientIPFromContext(ctx),
		"user_agent", UserAgentFromContext(ctx),
		"requested", len(ids),
	)
	if err != nil {
		logger.Error("delete orders failed", "error", err)
		return 0, err
	}
	s.metrics.OrdersDeleted.Add(float64(n))
	logger.Info("orders deleted", "deleted", n)
	return n, nil
}
