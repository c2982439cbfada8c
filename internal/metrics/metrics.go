package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	appointmentCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "zapisnik",
			Name:      "appointment_created_total",
			Help:      "Count of appointment requests submitted by users.",
		},
	)

	adminDecision = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "zapisnik",
			Name:      "admin_decision_total",
			Help:      "Count of admin decisions over appointment requests.",
		},
		[]string{"decision"},
	)

	notifyFailed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "zapisnik",
			Name:      "notify_failed_total",
			Help:      "Count of failed outbound notifications by recipient kind.",
		},
		[]string{"recipient"},
	)

	heartbeat = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "zapisnik",
			Name:      "heartbeat_total",
			Help:      "Count of liveness heartbeats emitted.",
		},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(appointmentCreated, adminDecision, notifyFailed, heartbeat)
	})
}

func IncAppointmentCreated() {
	appointmentCreated.Inc()
}

func IncAdminDecision(decision string) {
	adminDecision.WithLabelValues(decision).Inc()
}

func IncNotifyFailed(recipient string) {
	notifyFailed.WithLabelValues(recipient).Inc()
}

func IncHeartbeat() {
	heartbeat.Inc()
}
