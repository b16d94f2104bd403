package cosmos

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	pagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "docdb_pages_total",
		Help: "Total number of listing pages decoded by resource type",
	}, []string{"resource"})

	requestChargeTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "docdb_request_charge_total",
		Help: "Total request units charged for listing pages by resource type",
	}, []string{"resource"})

	pageItems = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "docdb_page_items",
		Help:    "Number of items per listing page by resource type",
		Buckets: []float64{0, 1, 10, 50, 100, 500, 1000},
	}, []string{"resource"})

	paginationErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "docdb_pagination_errors_total",
		Help: "Total number of failed pagination steps by resource type and error kind",
	}, []string{"resource", "kind"}) // kind: request, transport, status, decode, metadata
)
