// source: otc_orders.sql

package database

import (
	"context"
)

// iteratorForCopyOtcOrders implements pgx.CopyFromSource.
type iteratorForCopyOtcOrders struct {
	rows                 []CopyOtcOrdersParams
	skippedFirstNextCall bool
}

func (r *iteratorForCopyOtcOrders) Next() bool {
	if len(r.rows) == 0 {
		return false
	}
	if !r.skippedFirstNextCall {
		r.skippedFirstNextCall = true
		return true
	}
	r.rows = r.rows[1:]
	return len(r.rows) > 0
}

func (r iteratorForCopyOtcOrders) Values() ([]interface{}, error) {
	return []interface{}{
		r.rows[0].Succursale,
		r.rows[0].Operateur,
		r.rows[0].DateCde,
		r.rows[0].NumCde,
		r.rows[0].PoClient,
		r.rows[0].Reference,
		r.rows[0].Designation,
		r.rows[0].QteCde,
		r.rows[0].QteLivree,
		r.rows[0].DateBl,
		r.rows[0].NumBl,
		r.rows[0].Status,
		r.rows[0].NumClient,
		r.rows[0].NomClients,
	}, nil
}

func (r iteratorForCopyOtcOrders) Err() error {
	return nil
}

func (q *Queries) CopyOtcOrders(ctx context.Context, arg []CopyOtcOrdersParams) (int64, error) {
	return q.db.CopyFrom(ctx, []string{"otc_orders"}, []string{"succursale", "operateur", "date_cde", "num_cde", "po_client", "reference", "designation", "qte_cde", "qte_livree", "date_bl", "num_bl", "status", "num_client", "nom_clients"}, &iteratorForCopyOtcOrders{rows: arg})
}
