// source: otc_orders.sql

package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const truncateOtcOrdersRestartIdentity = `-- name: TruncateOtcOrdersRestartIdentity :exec
SELECT truncate_otc_orders_restart_identity()
`

func (q *Queries) TruncateOtcOrdersRestartIdentity(ctx context.Context) error {
	_, err := q.db.Exec(ctx, truncateOtcOrdersRestartIdentity)
	return err
}

const deleteAllOtcOrders = `-- name: DeleteAllOtcOrders :execrows
DELETE FROM otc_orders
`

func (q *Queries) DeleteAllOtcOrders(ctx context.Context) (int64, error) {
	result, err := q.db.Exec(ctx, deleteAllOtcOrders)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const deleteOtcOrdersByIDs = `-- name: DeleteOtcOrdersByIDs :execrows
DELETE FROM otc_orders WHERE id = ANY($1::bigint[])
`

func (q *Queries) DeleteOtcOrdersByIDs(ctx context.Context, ids []int64) (int64, error) {
	result, err := q.db.Exec(ctx, deleteOtcOrdersByIDs, ids)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const countOtcOrders = `-- name: CountOtcOrders :one
SELECT COUNT(*) FROM otc_orders
`

func (q *Queries) CountOtcOrders(ctx context.Context) (int64, error) {
	row := q.db.QueryRow(ctx, countOtcOrders)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const listOtcSuccursales = `-- name: ListOtcSuccursales :many
SELECT DISTINCT succursale FROM otc_orders ORDER BY succursale
`

func (q *Queries) ListOtcSuccursales(ctx context.Context) ([]string, error) {
	rows, err := q.db.Query(ctx, listOtcSuccursales)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []string
	for rows.Next() {
		var succursale string
		if err := rows.Scan(&succursale); err != nil {
			return nil, err
		}
		items = append(items, succursale)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listOtcStatuses = `-- name: ListOtcStatuses :many
SELECT DISTINCT status FROM otc_orders ORDER BY status
`

func (q *Queries) ListOtcStatuses(ctx context.Context) ([]string, error) {
	rows, err := q.db.Query(ctx, listOtcStatuses)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []string
	for rows.Next() {
		var status string
		if err := rows.Scan(&status); err != nil {
			return nil, err
		}
		items = append(items, status)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

type CopyOtcOrdersParams struct {
	Succursale  string
	Operateur   string
	DateCde     pgtype.Date
	NumCde      string
	PoClient    pgtype.Text
	Reference   string
	Designation string
	QteCde      float64
	QteLivree   float64
	DateBl      pgtype.Date
	NumBl       pgtype.Text
	Status      string
	NumClient   pgtype.Text
	NomClients  pgtype.Text
}
