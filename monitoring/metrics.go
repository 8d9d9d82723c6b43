package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HttpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	ResponseTimeHistogram = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_response_time_seconds",
			Help:    "Histogram of response times",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	LeaderboardRecomputations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ledger_leaderboard_recomputations_total",
			Help: "Leaderboard recomputations triggered by live collection updates",
		},
	)

	CleanupRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cleanup_runs_total",
			Help: "User deletion runs by outcome",
		},
		[]string{"outcome"},
	)

	CleanupRecordsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cleanup_records_total",
			Help: "Records removed or cleared by user deletion, by kind",
		},
		[]string{"kind"},
	)

	PrizesAwardedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rewards_prizes_awarded_total",
			Help: "Monthly target prizes awarded",
		},
	)

	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_total",
			Help: "Outbound notifications by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)
)
