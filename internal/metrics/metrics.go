package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "agendei",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint and status.",
		},
		[]string{"endpoint", "status"},
	)

	appointmentsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "agendei",
			Name:      "appointments_created_total",
			Help:      "Successfully booked appointments.",
		},
	)

	appointmentsCanceled = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "agendei",
			Name:      "appointments_canceled_total",
			Help:      "Canceled appointments.",
		},
	)

	notificationsDelivered = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "agendei",
			Name:      "notifications_delivered_total",
			Help:      "Notifications delivered to the store by the dispatcher.",
		},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, appointmentsCreated, appointmentsCanceled, notificationsDelivered)
	})
}

// IncHTTP increments the request counter for an endpoint/status pair.
func IncHTTP(endpoint, status string) {
	httpRequests.WithLabelValues(endpoint, status).Inc()
}

func IncAppointmentsCreated()    { appointmentsCreated.Inc() }
func IncAppointmentsCanceled()   { appointmentsCanceled.Inc() }
func IncNotificationsDelivered() { notificationsDelivered.Inc() }
