package core

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service's Prometheus collectors on a private registry.
type Metrics struct {
	reg            *prometheus.Registry
	RowsImported   prometheus.Counter
	RowsRejected   prometheus.Counter
	Batches        *prometheus.CounterVec
	Imports        *prometheus.CounterVec
	ImportDuration prometheus.Histogram
	ActiveImports  prometheus.Gauge
	MethodSwitches *prometheus.CounterVec
	ViewRefreshes  *prometheus.CounterVec
	OrdersDeleted  prometheus.Counter
}

func NewMetrics() *Metrics {
	r := prometheus.NewRegistry()
	rowsImported := prometheus.NewCounter(prometheus.CounterOpts{Name: "otc_import_rows_imported_total"})
	rowsRejected := prometheus.NewCounter(prometheus.CounterOpts{Name: "otc_import_rows_rejected_total"})
	batches := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "otc_import_batches_total"}, []string{"result"})
	imports := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "otc_imports_total"}, []string{"result"})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "otc_import_duration_seconds",
		Buckets: prometheus.ExponentialBuckets(0.25, 2, 10),
	})
	active := prometheus.NewGauge(prometheus.GaugeOpts{Name: "otc_imports_active"})
	switches := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "otc_calculation_method_switches_total"}, []string{"method"})
	refreshes := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "otc_analytics_view_refreshes_total"}, []string{"result"})
	deleted := prometheus.NewCounter(prometheus.CounterOpts{Name: "otc_orders_deleted_total"})

	r.MustRegister(rowsImported, rowsRejected, batches, imports, duration, active, switches, refreshes, deleted)
	return &Metrics{
		reg:            r,
		RowsImported:   rowsImported,
		RowsRejected:   rowsRejected,
		Batches:        batches,
		Imports:        imports,
		ImportDuration: duration,
		ActiveImports:  active,
		MethodSwitches: switches,
		ViewRefreshes:  refreshes,
		OrdersDeleted:  deleted,
	}
}

func (m *Metrics) Handler() http.Handler { return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{}) }

func resultLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
