package logger

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

const metricsNamespace = "evo_authz"

var (
	statements     *prometheus.CounterVec //nolint:gochecknoglobals
	statementsOnce sync.Once              //nolint:gochecknoglobals
)

// MetricsHook exports the number of written log events by level, so a
// burst of denied or failed authorizations shows up on /metrics.
type MetricsHook struct {
	events *prometheus.CounterVec
}

// Run implements zerolog.Hook.
func (h MetricsHook) Run(_ *zerolog.Event, level zerolog.Level, _ string) {
	if h.events == nil || level == zerolog.NoLevel || level == zerolog.Disabled {
		return
	}

	h.events.WithLabelValues(level.String()).Inc()
}

// NewPrometheusHook returns a hook backed by evo_authz_log_events_total.
// The collector is registered once per process and keeps the service
// label of the first call.
func NewPrometheusHook(service string) MetricsHook {
	statementsOnce.Do(func() {
		statements = promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace:   metricsNamespace,
			Name:        "log_events_total",
			Help:        "Log events written, by level.",
			ConstLabels: prometheus.Labels{"service": service},
		}, []string{"level"})
	})

	return MetricsHook{events: statements}
}

// LogEvents returns the collector behind the hook, nil before the first
// NewPrometheusHook call.
func LogEvents() *prometheus.CounterVec {
	return statements
}
