package auth

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	sourceCache = "cache"
	sourceStore = "store"
)

var loadsTotal = promauto.NewCounterVec( //nolint:gochecknoglobals
	prometheus.CounterOpts{
		Name: "evo_authz_role_permission_loads_total",
		Help: "Role permission lookups, by where the answer came from.",
	},
	[]string{"source"},
)
