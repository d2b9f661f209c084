// Package observability exposes Prometheus metrics for games, the bot and the HTTP API.
package observability

import "github.com/prometheus/client_golang/prometheus"

// ThinkBuckets spans a single late-game reply up to a full opening search.
var ThinkBuckets = []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1}

var (
	// GamesStartedTotal counts new sessions by the mark the human plays.
	GamesStartedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tictactoe_games_started_total",
			Help: "Games started",
		},
		[]string{"human_mark"},
	)

	// GamesFinishedTotal counts sessions that reached a terminal result.
	GamesFinishedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tictactoe_games_finished_total",
			Help: "Games finished",
		},
		[]string{"result"},
	)

	// MovesTotal counts accepted moves by actor (human or bot).
	MovesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tictactoe_moves_total",
			Help: "Moves played",
		},
		[]string{"actor"},
	)

	// BotThinkDuration records how long the minimax search took per bot move.
	BotThinkDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tictactoe_bot_think_seconds",
			Help:    "Bot search duration",
			Buckets: ThinkBuckets,
		},
	)

	// RequestsTotal counts HTTP requests by method and status class.
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tictactoe_http_requests_total",
			Help: "Total requests",
		},
		[]string{"method", "status"},
	)

	// RequestDuration records HTTP request duration in seconds.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tictactoe_http_request_duration_seconds",
			Help:    "Request duration",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)
)

const (
	ActorHuman = "human"
	ActorBot   = "bot"
)

func init() {
	prometheus.MustRegister(
		GamesStartedTotal,
		GamesFinishedTotal,
		MovesTotal,
		BotThinkDuration,
		RequestsTotal,
		RequestDuration,
	)
}
