package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MatchesCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "campuscarry_matches_created_total",
		Help: "Total number of matches successfully created.",
	})

	MatchTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "campuscarry_match_transitions_total",
		Help: "Total number of match status changes, by target status.",
	},
		[]string{"status"},
	)

	MessagesSentTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "campuscarry_messages_sent_total",
		Help: "Total number of chat messages stored.",
	})

	ReviewsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "campuscarry_reviews_created_total",
		Help: "Total number of reviews successfully created.",
	})

	OperationErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "campuscarry_operation_errors_total",
		Help: "Total number of unexpected errors encountered during specific operations.",
	},
		[]string{"operation"},
	)

	EventsPublishedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "campuscarry_events_published_total",
		Help: "Realtime events handed to each sink, by outcome.",
	},
		[]string{"sink", "outcome"},
	)

	RealtimeConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "campuscarry_realtime_connections",
		Help: "Current number of open websocket connections.",
	})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "campuscarry_http_requests_total",
		Help: "HTTP requests served, by method, route and status code.",
	},
		[]string{"method", "route", "status"},
	)
)
