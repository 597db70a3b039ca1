package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ApplicationsCreated counts successfully submitted applications.
	ApplicationsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "jobboard_applications_created_total",
		Help: "Total number of applications submitted",
	})

	// ApplicationStatusChanges counts provider status updates by target status.
	ApplicationStatusChanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jobboard_application_status_changes_total",
		Help: "Application status updates by new status",
	}, []string{"status"})

	// VerificationDecisions counts admin verification decisions by outcome.
	VerificationDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jobboard_provider_verification_decisions_total",
		Help: "Admin provider verification decisions by status",
	}, []string{"status"})

	// NotificationFailures counts best-effort notification writes that failed.
	NotificationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jobboard_notification_failures_total",
		Help: "Notification writes that failed and were dropped",
	}, []string{"type"})

	// JobsExpired counts jobs deactivated by the deadline sweep.
	JobsExpired = promauto.NewCounter(prometheus.CounterOpts{
		Name: "jobboard_jobs_expired_total",
		Help: "Jobs deactivated because their deadline passed",
	})
)
