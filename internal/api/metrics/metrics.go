// Package metrics defines and registers all custom Prometheus metrics for the
// reviews API. It is the single source of truth for metric names, labels, and
// help strings.
//
// Metrics are registered with the default Prometheus registry on package
// initialisation through promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "reviews"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// SignupsTotal counts confirmation code requests.
// Label:
//   - result: "ok", "invalid" (validation failure) or "error"
var SignupsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "signups_total",
		Help:      "Total number of confirmation code requests, by result.",
	},
	[]string{"result"},
)

// TokenExchangesTotal counts code-for-token exchanges.
// Label:
//   - result: "ok", "invalid_code", "not_found", "rate_limited" or "error"
var TokenExchangesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_exchanges_total",
		Help:      "Total number of confirmation code exchanges, by result.",
	},
	[]string{"result"},
)

// ── Access metrics ────────────────────────────────────────────────────────────

// AccessDeniedTotal counts requests rejected by the access rules.
// Labels:
//   - resource: the resource class (e.g. "titles", "reviews")
//   - level: "collection" or "object"
var AccessDeniedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "access_denied_total",
		Help:      "Total number of requests denied by the access rules.",
	},
	[]string{"resource", "level"},
)

// ── Mail metrics ──────────────────────────────────────────────────────────────

// MailDeliveriesTotal counts outbound mail attempts.
// Label:
//   - result: "sent", "failed" or "dropped" (queue full)
var MailDeliveriesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "mail_deliveries_total",
		Help:      "Total number of outbound mails, by result.",
	},
	[]string{"result"},
)

// MailQueueDepth tracks the current number of mails waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var MailQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "mail_queue_depth",
		Help:      "Current number of mails pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// MailSendDuration measures a single SMTP delivery.
var MailSendDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "mail_send_duration_seconds",
		Help:      "Duration of a single mail delivery.",
		Buckets:   prometheus.DefBuckets,
	},
)

// ── Content metrics ───────────────────────────────────────────────────────────

// ReviewsCreatedTotal counts newly created reviews.
// Label:
//   - score: the review score, "1" to "10"
var ReviewsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reviews_created_total",
		Help:      "Total number of reviews created, by score.",
	},
	[]string{"score"},
)
