package core

import (
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"

	db "github.com/JonMunkholm/otc/internal/database"
)

const selectColumns = "id, succursale, operateur, date_cde, num_cde, po_client, reference, designation, qte_cde, qte_livree, solde, date_bl, num_bl, status, num_client, nom_clients, created_at"

func TestNormalizeFilter(t *testing.T) {
	tests := []struct {
		name string
		in   OrderFilter
		want OrderFilter
	}{
		{
			name: "zero value",
			in:   OrderFilter{},
			want: OrderFilter{Page: 1, PageSize: DefaultPageSize, Sort: SortSpec{Column: "id", Dir: "asc"}},
		},
		{
			name: "valid sort kept",
			in:   OrderFilter{Page: 3, PageSize: 25, Sort: SortSpec{Column: "date_cde", Dir: "DESC"}},
			want: OrderFilter{Page: 3, PageSize: 25, Sort: SortSpec{Column: "date_cde", Dir: "desc"}},
		},
		{
			name: "unknown direction becomes asc",
			in:   OrderFilter{Sort: SortSpec{Column: "status", Dir: "sideways"}},
			want: OrderFilter{Page: 1, PageSize: DefaultPageSize, Sort: SortSpec{Column: "status", Dir: "asc"}},
		},
		{
			name: "page size capped",
			in:   OrderFilter{Page: -2, PageSize: 100000},
			want: OrderFilter{Page: 1, PageSize: MaxPageSize, Sort: SortSpec{Column: "id", Dir: "asc"}},
		},
		{
			name: "text trimmed",
			in:   OrderFilter{Query: " ref ", Succursale: " GDC", Status: "Pending "},
			want: OrderFilter{Query: "ref", Succursale: "GDC", Status: "Pending", Page: 1, PageSize: DefaultPageSize, Sort: SortSpec{Column: "id", Dir: "asc"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeFilter(tt.in))
		})
	}
}

func TestBuildOrderQueries(t *testing.T) {
	tests := []struct {
		name      string
		filter    OrderFilter
		wantCount string
		wantPage  string
		wantArgs  []interface{}
	}{
		{
			name:      "no filters",
			filter:    normalizeFilter(OrderFilter{}),
			wantCount: "SELECT COUNT(*) FROM otc_orders",
			wantPage:  "SELECT " + selectColumns + ` FROM otc_orders ORDER BY "id" asc NULLS LAST LIMIT $1 OFFSET $2`,
			wantArgs:  nil,
		},
		{
			name: "branch and status",
			filter: normalizeFilter(OrderFilter{
				Succursale: "GDC",
				Status:     "Pending",
				Sort:       SortSpec{Column: "date_cde", Dir: "desc"},
			}),
			wantCount: `SELECT COUNT(*) FROM otc_orders WHERE "succursale" = $1 AND "status" = $2`,
			wantPage:  "SELECT " + selectColumns + ` FROM otc_orders WHERE "succursale" = $1 AND "status" = $2 ORDER BY "date_cde" desc NULLS LAST, id asc LIMIT $3 OFFSET $4`,
			wantArgs:  []interface{}{"GDC", "Pending"},
		},
		{
			name: "date range",
			filter: normalizeFilter(OrderFilter{
				DateFrom: "2024-01-01",
				DateTo:   "2024-06-30",
			}),
			wantCount: `SELECT COUNT(*) FROM otc_orders WHERE "date_cde" >= $1 AND "date_cde" <= $2`,
			wantPage:  "SELECT " + selectColumns + ` FROM otc_orders WHERE "date_cde" >= $1 AND "date_cde" <= $2 ORDER BY "id" asc NULLS LAST LIMIT $3 OFFSET $4`,
			wantArgs:  []interface{}{"2024-01-01", "2024-06-30"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			count, page, args := buildOrderQueries(tt.filter)
			assert.Equal(t, tt.wantCount, count)
			assert.Equal(t, tt.wantPage, page)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestBuildOrderQueries_Search(t *testing.T) {
	count, _, args := buildOrderQueries(normalizeFilter(OrderFilter{Query: "50%"}))

	assert.Contains(t, count, `"reference" ILIKE $1`)
	assert.Contains(t, count, `"nom_clients" ILIKE $1`)
	assert.Equal(t, []interface{}{`%50\%%`}, args)
}

func TestOrderFromDB(t *testing.T) {
	created := time.Date(2024, 6, 25, 9, 0, 0, 0, time.UTC)
	o := orderFromDB(db.OtcOrder{
		ID:          7,
		Succursale:  "GDC",
		Operateur:   "john",
		DateCde:     pgtype.Date{Time: time.Date(2024, 6, 24, 0, 0, 0, 0, time.UTC), Valid: true},
		NumCde:      "CMD001",
		Reference:   "REF1",
		Designation: "Part A",
		QteCde:      10,
		QteLivree:   4,
		Solde:       pgtype.Float8{Float64: 6, Valid: true},
		Status:      "Pending",
		NomClients:  pgtype.Text{String: "ACME", Valid: true},
		CreatedAt:   pgtype.Timestamptz{Time: created, Valid: true},
	})

	assert.Equal(t, int64(7), o.ID)
	assert.Equal(t, "2024-06-24", *o.DateCde)
	assert.Nil(t, o.DateBl)
	assert.Nil(t, o.PoClient)
	assert.Equal(t, "ACME", *o.NomClients)
	assert.Equal(t, 6.0, *o.Solde)
	assert.Equal(t, created, o.CreatedAt)
}
