package core

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	db "github.com/JonMunkholm/otc/internal/database"
)

// PostgresStore writes orders through the generated queries. Every failure
// is returned as a *RemoteError.
type PostgresStore struct {
	conn db.DBTX
	q    *db.Queries
}

// NewPostgresStore returns a store backed by conn.
func NewPostgresStore(conn db.DBTX) *PostgresStore {
	return &PostgresStore{conn: conn, q: db.New(conn)}
}

func (p *PostgresStore) TruncateOrders(ctx context.Context) error {
	return remoteError("truncate_otc_orders_restart_identity", p.q.TruncateOtcOrdersRestartIdentity(ctx))
}

func (p *PostgresStore) DeleteAllOrders(ctx context.Context) error {
	_, err := p.q.DeleteAllOtcOrders(ctx)
	return remoteError("delete otc_orders", err)
}

func (p *PostgresStore) InsertOrders(ctx context.Context, batch []OrderRecord) error {
	params := make([]db.CopyOtcOrdersParams, len(batch))
	for i, r := range batch {
		params[i] = db.CopyOtcOrdersParams{
			Succursale:  r.Succursale,
			Operateur:   r.Operateur,
			DateCde:     toPgDate(r.DateCde),
			NumCde:      r.NumCde,
			PoClient:    toPgText(r.PoClient),
			Reference:   r.Reference,
			Designation: r.Designation,
			QteCde:      r.QteCde,
			QteLivree:   r.QteLivree,
			DateBl:      toPgDate(r.DateBl),
			NumBl:       toPgText(r.NumBl),
			Status:      r.Status,
			NumClient:   toPgText(r.NumClient),
			NomClients:  toPgText(r.NomClients),
		}
	}

	_, err := p.q.CopyOtcOrders(ctx, params)
	return remoteError("insert otc_orders", err)
}

// instrumentedStore counts batch outcomes.
type instrumentedStore struct {
	OrderStore
	metrics *Metrics
}

func (s instrumentedStore) InsertOrders(ctx context.Context, batch []OrderRecord) error {
	err := s.OrderStore.InsertOrders(ctx, batch)
	s.metrics.Batches.WithLabelValues(resultLabel(err)).Inc()
	if err == nil {
		s.metrics.RowsImported.Add(float64(len(batch)))
	}
	return err
}

func toPgText(s *string) pgtype.Text {
	if s == nil {
		return pgtype.Text{}
	}
	return pgtype.Text{String: *s, Valid: true}
}

func toPgDate(s *string) pgtype.Date {
	if s == nil {
		return pgtype.Date{}
	}
	t, err := time.Parse(isoDate, *s)
	if err != nil {
		return pgtype.Date{}
	}
	return pgtype.Date{Time: t, Valid: true}
}

func fromPgText(t pgtype.Text) *string {
	if !t.Valid {
		return nil
	}
	return &t.String
}

func fromPgDate(d pgtype.Date) *string {
	if !d.Valid {
		return nil
	}
	s := d.Time.Format(isoDate)
	return &s
}
