package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gym_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gym_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	BookingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gym_bookings_total",
			Help: "Booking attempts by outcome",
		},
		[]string{"outcome"},
	)

	CancellationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gym_workout_cancellations_total",
			Help: "Total number of workout cancellations",
		},
		[]string{"actor"},
	)

	FeedbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gym_feedbacks_total",
			Help: "Total number of feedbacks submitted",
		},
		[]string{"author"},
	)

	ReportsGeneratedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gym_reports_generated_total",
			Help: "Total number of reports generated",
		},
		[]string{"type"},
	)

	ReportRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gym_weekly_report_runs_total",
			Help: "Weekly report runs by trigger and result",
		},
		[]string{"trigger", "result"},
	)

	EmailsSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gym_emails_sent_total",
			Help: "Total number of emails sent",
		},
		[]string{"type", "status"},
	)

	EmailQueueLength = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gym_email_queue_length",
			Help: "Current length of email queue",
		},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordBooking(outcome string) {
	BookingsTotal.WithLabelValues(outcome).Inc()
}

func RecordCancellation(actor string) {
	CancellationsTotal.WithLabelValues(actor).Inc()
}

func RecordFeedback(author string) {
	FeedbacksTotal.WithLabelValues(author).Inc()
}

func RecordReport(reportType string) {
	ReportsGeneratedTotal.WithLabelValues(reportType).Inc()
}

func RecordReportRun(trigger, result string) {
	ReportRunsTotal.WithLabelValues(trigger, result).Inc()
}

func RecordEmail(emailType, status string) {
	EmailsSentTotal.WithLabelValues(emailType, status).Inc()
}
