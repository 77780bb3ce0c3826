package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "travelcrm_http_requests_total",
			Help: "Total HTTP requests by method, route and status code.",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "travelcrm_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	LeadConversionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "travelcrm_lead_conversions_total",
			Help: "Leads successfully converted into bookings.",
		},
	)

	InventoryExhaustedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "travelcrm_inventory_exhausted_total",
			Help: "Reservation attempts rejected for lack of capacity.",
		},
	)
)
