// Package metrics defines and registers all custom Prometheus metrics for the
// marketplace API. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics are registered with the default Prometheus registry on package
// initialisation; HTTP request metrics come from echoprometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "marketplace"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// SignUpsTotal counts created accounts.
// Label:
//   - profile_type: "WORKER" or "BUSINESS"
var SignUpsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "signups_total",
		Help:      "Total number of accounts created, by initial profile type.",
	},
	[]string{"profile_type"},
)

// SignInsTotal counts sign-in attempts.
// Label:
//   - result: "success", "invalid_credentials", "deleted", "suspended" or "error"
var SignInsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "signins_total",
		Help:      "Total number of sign-in attempts, by result.",
	},
	[]string{"result"},
)

// SessionRefreshesTotal counts session middleware outcomes that involve an
// expired access token.
// Label:
//   - result: "refreshed", "no_refresh", "mobile_rejected", "invalid_refresh" or "revoked"
var SessionRefreshesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_refreshes_total",
		Help:      "Expired access tokens seen by the session middleware, by outcome.",
	},
	[]string{"result"},
)

// AuthorizationDenialsTotal counts requests rejected by the authorization gate.
// Label:
//   - reason: "unauthenticated", "role" or "restriction"
var AuthorizationDenialsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "authorization_denials_total",
		Help:      "Requests rejected by the authorization gate, by reason.",
	},
	[]string{"reason"},
)

// ── Marketplace metrics ───────────────────────────────────────────────────────

// JobsCreatedTotal counts posted jobs.
var JobsCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "jobs_created_total",
		Help:      "Total number of jobs posted.",
	},
)

// ApplicationsSubmittedTotal counts job applications.
var ApplicationsSubmittedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "applications_submitted_total",
		Help:      "Total number of job applications submitted.",
	},
)

// ── Event metrics ─────────────────────────────────────────────────────────────

// EventsQueueDepth tracks the number of events waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var EventsQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "events_queue_depth",
		Help:      "Current number of identity events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// EventProcessingDuration measures delivery of one event to all sinks.
// Label:
//   - result: "ok" or "error"
var EventProcessingDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "event_processing_duration_seconds",
		Help:      "Duration of identity event delivery from dequeue to the last sink.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"result"},
)

// EventsDroppedTotal counts events discarded because a worker channel was full
// or the dispatcher was shutting down.
var EventsDroppedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_dropped_total",
		Help:      "Total number of identity events dropped before processing.",
	},
)
