package session

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	sessionLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docdb_session_lookups_total",
			Help: "Total number of session token lookups",
		},
		[]string{"result"}, // "hit", "miss"
	)

	sessionErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docdb_session_errors_total",
			Help: "Total number of session store operation errors",
		},
		[]string{"operation"}, // "get", "set", "delete"
	)
)
