// Package metrics defines and registers all custom Prometheus metrics
// for the CivicSync API. It is the single source of truth for metric
// names, labels, and help strings. Metrics are registered with the
// default registry via promauto at package load.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "civicsync"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// RegistrationsTotal counts successful registrations.
// Label:
//   - role: "citizen" or "authority"
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of successful registrations, by role.",
	},
	[]string{"role"},
)

// LoginsTotal counts login attempts.
// Label:
//   - result: "success", "not_found", or "invalid_credentials"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// ── Issue metrics ─────────────────────────────────────────────────────────────

// IssuesRaisedTotal counts newly reported issues.
var IssuesRaisedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "issues_raised_total",
		Help:      "Total number of issues raised.",
	},
)

// IssueTransitionsTotal counts successful lifecycle transitions.
// Label:
//   - to: the status entered ("in-progress" or "resolved")
var IssueTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "issue_transitions_total",
		Help:      "Total number of successful issue status transitions, by target status.",
	},
	[]string{"to"},
)

// ── Vote / points metrics ─────────────────────────────────────────────────────

// VotesCastTotal counts recorded votes.
// Label:
//   - direction: "up" or "down"
var VotesCastTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "votes_cast_total",
		Help:      "Total number of votes recorded, by direction.",
	},
	[]string{"direction"},
)

// VotesRejectedTotal counts votes rejected by the per-voter guard.
var VotesRejectedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "votes_rejected_total",
		Help:      "Total number of duplicate votes rejected by the vote guard.",
	},
)

// PointsAwardedTotal accumulates points applied by the dispatcher workers.
var PointsAwardedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "points_awarded_total",
		Help:      "Total points applied to principals by the award workers.",
	},
)

// PointsQueueDepth tracks the number of awards waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var PointsQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "points_queue_depth",
		Help:      "Current number of point awards pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)
