// Package metrics defines and registers all custom Prometheus metrics for the
// accounts API. It is the single source of truth for metric names, labels,
// and help strings; registration happens via promauto at package init.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "accounts"

// RegistrationsTotal counts successfully persisted registrations.
var RegistrationsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of users registered.",
	},
)

// LoginAttemptsTotal counts login attempts.
// Label:
//   - result: "success" or "failure"
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// EmailsSentTotal counts outbound notification emails.
// Labels:
//   - kind: "confirmation" or "recovery"
//   - result: "success" or "failure"
var EmailsSentTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "emails_sent_total",
		Help:      "Total number of notification emails dispatched, by kind and result.",
	},
	[]string{"kind", "result"},
)

// ThrottledRequestsTotal counts requests rejected by the rate limiter.
// Label:
//   - path: the throttled route
var ThrottledRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "throttled_requests_total",
		Help:      "Total number of requests rejected with 429, by route.",
	},
	[]string{"path"},
)
