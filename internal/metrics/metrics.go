package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrdersCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "workshop_work_orders_created_total",
		Help: "Work orders created.",
	})
	BulkRowsAffected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "workshop_bulk_rows_affected_total",
		Help: "Rows affected by bulk work order operations.",
	})
	NotificationsSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "workshop_notifications_sent_total",
		Help: "Status-change emails delivered to the transport.",
	})
	NotificationsSuppressed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "workshop_notifications_suppressed_total",
		Help: "Status-change emails suppressed by the de-dup window.",
	})
	NotificationsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "workshop_notifications_failed_total",
		Help: "Status-change emails that failed (missing address or transport error).",
	})
)
