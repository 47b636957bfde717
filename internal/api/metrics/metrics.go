// Package metrics defines and registers all custom Prometheus metrics for the
// RBAC API. It is the single source of truth for metric names, labels, and
// help strings. Metrics register themselves with the default registry at
// package init via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "rbac"

// LoginsTotal counts login attempts by outcome.
// Label:
//   - result: "success", "invalid_credentials", "not_found", "rate_limited"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, labelled by outcome.",
	},
	[]string{"result"},
)

// AccessChecksTotal counts module access checks by outcome.
// Label:
//   - result: "granted", "denied", "not_found"
var AccessChecksTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "access_checks_total",
		Help:      "Total number of access-module membership checks, labelled by outcome.",
	},
	[]string{"result"},
)

// BulkUserUpdatesTotal counts user documents modified by bulk operations.
// Label:
//   - kind: "same" (one patch for all users) or "different" (per-user patches)
var BulkUserUpdatesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bulk_user_updates_total",
		Help:      "Total number of user documents modified through bulk updates.",
	},
	[]string{"kind"},
)
