package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	RequestsTotal      *prometheus.CounterVec
	NotificationsTotal *prometheus.CounterVec
	QueueTasksTotal    *prometheus.CounterVec
	StalePending       prometheus.Gauge
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "moderation_requests_total",
			Help: "Moderation requests processed, by content type and classification.",
		}, []string{"content_type", "classification"}),
		NotificationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "moderation_notifications_total",
			Help: "Notification attempts, by channel and delivery status.",
		}, []string{"channel", "status"}),
		QueueTasksTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "moderation_queue_tasks_total",
			Help: "Deferred queue tasks handled, by type and outcome.",
		}, []string{"type", "outcome"}),
		StalePending: factory.NewGauge(prometheus.GaugeOpts{
			Name: "moderation_stale_pending_requests",
			Help: "Image requests stuck in pending beyond the stale threshold.",
		}),
	}
}
