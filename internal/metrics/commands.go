// Package metrics exports searchd Prometheus metrics: per-command outcomes,
// query warnings, the error statistics registry and HTTP request metrics.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kailas-cloud/searchd/internal/queryerr"
)

const namespace = "searchd"

// Command Prometheus metrics.
var (
	CommandsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Total number of RESP commands by outcome",
		},
		[]string{"command", "status"}, // status: "ok" / "error"
	)

	CommandDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "command_duration_seconds",
			Help:      "RESP command duration in seconds",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"command"},
	)

	QueryWarningsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "query_warnings_total",
			Help:      "Queries that completed with a warning",
		},
		[]string{"warning"},
	)
)

var registerCommandsOnce sync.Once

// RegisterCommandMetrics registers the command metrics with the default
// registry. Safe to call more than once.
func RegisterCommandMetrics() {
	registerCommandsOnce.Do(func() {
		prometheus.MustRegister(CommandsTotal)
		prometheus.MustRegister(CommandDuration)
		prometheus.MustRegister(QueryWarningsTotal)
	})
}

// CommandObserver feeds dispatcher outcomes into the command metrics.
type CommandObserver struct{}

// CommandDone records one finished command.
func (CommandObserver) CommandDone(command, status string, d time.Duration) {
	CommandsTotal.WithLabelValues(command, status).Inc()
	CommandDuration.WithLabelValues(command).Observe(d.Seconds())
}

// QueryWarnings records the warnings raised by one query.
func (CommandObserver) QueryWarnings(w queryerr.Warnings) {
	if w.ReachedMaxPrefixExpansions {
		QueryWarningsTotal.WithLabelValues("max_prefix_expansions").Inc()
	}
}
