package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total HTTP requests by method, path and status.",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	ChargesPosted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "folio_charges_posted_total",
		Help: "Charges posted to folios.",
	})

	PaymentsPosted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "folio_payments_posted_total",
		Help: "Payments posted to folios.",
	})

	ChargesVoided = promauto.NewCounter(prometheus.CounterOpts{
		Name: "folio_charges_voided_total",
		Help: "Charges voided on folios.",
	})

	FoliosClosed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "folios_closed_total",
		Help: "Folios transitioned to closed.",
	})

	DuplicateDeliveries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "order_duplicate_deliveries_total",
		Help: "Duplicate order-served deliveries suppressed by the aggregator.",
	})
)
