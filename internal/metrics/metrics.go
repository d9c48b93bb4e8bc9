package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Submission metrics
	SubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "support_submissions_total",
			Help: "Total support ticket submissions",
		},
		[]string{"outcome"}, // "ok", "unauthorized", "empty_question", "save_failed", "server_error"
	)

	VerificationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "support_initdata_failures_total",
			Help: "Total initData verification failures",
		},
		[]string{"reason"}, // "no_hash", "bad_hash", "no_user", "exception"
	)

	// Notification metrics
	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "support_admin_notifications_total",
			Help: "Total admin bot notification attempts",
		},
		[]string{"result"}, // "delivered" or "undelivered"
	)
)
