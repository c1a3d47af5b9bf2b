package gate

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeAllow = "allow"
	outcomeDeny  = "deny"
)

var decisionsTotal = promauto.NewCounterVec( //nolint:gochecknoglobals
	prometheus.CounterOpts{
		Name: "evo_authz_decisions_total",
		Help: "Number of authorization decisions by outcome and reason.",
	},
	[]string{"outcome", "reason"},
)

func observe(d Decision) {
	outcome := outcomeDeny
	if d.Allowed {
		outcome = outcomeAllow
	}

	decisionsTotal.WithLabelValues(outcome, string(d.Reason)).Inc()
}
