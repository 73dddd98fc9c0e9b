package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Request metrics
	RequestDurationHistogram *prometheus.HistogramVec
	APIRequestCounter        *prometheus.CounterVec
	APIErrorCounter          *prometheus.CounterVec

	// Outbound side effects
	MailSentCounter     *prometheus.CounterVec
	MailAuditFailures   *prometheus.CounterVec
	CalendarSyncCounter *prometheus.CounterVec
	QueueJobCounter     *prometheus.CounterVec

	// Contract rendering
	RenderCounter *prometheus.CounterVec

	once sync.Once
)

// InitMetrics registers every collector under namespace. Later calls are no-ops.
func InitMetrics(namespace string) {
	once.Do(func() {
		RequestDurationHistogram = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Duration of HTTP requests in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		)

		APIRequestCounter = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "api_requests_total",
				Help:      "Total number of API requests",
			},
			[]string{"method", "path"},
		)

		APIErrorCounter = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "api_errors_total",
				Help:      "Total number of API errors",
			},
			[]string{"method", "path", "status"},
		)

		MailSentCounter = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "mail_attempts_total",
				Help:      "Outbound mail attempts by kind and audit status",
			},
			[]string{"kind", "status"},
		)

		MailAuditFailures = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "mail_audit_failures_total",
				Help:      "Mail attempts whose email_audit row could not be written",
			},
			[]string{"kind"},
		)

		CalendarSyncCounter = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "calendar_sync_total",
				Help:      "Calendar event upserts by result",
			},
			[]string{"result"},
		)

		QueueJobCounter = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "queue_jobs_total",
				Help:      "Side-effect jobs handled by the worker",
			},
			[]string{"type", "result"},
		)

		RenderCounter = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "contract_render_total",
				Help:      "Merge-field resolutions by result",
			},
			[]string{"result"},
		)
	})
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// The helpers below tolerate InitMetrics never having run (unit tests, CLIs).

// ObserveRequest records one HTTP request.
func ObserveRequest(method, path, status string, seconds float64, failed bool) {
	if RequestDurationHistogram == nil {
		return
	}
	RequestDurationHistogram.WithLabelValues(method, path, status).Observe(seconds)
	APIRequestCounter.WithLabelValues(method, path).Inc()
	if failed {
		APIErrorCounter.WithLabelValues(method, path, status).Inc()
	}
}

// IncMail counts one audited mail attempt.
func IncMail(kind, status string) {
	if MailSentCounter != nil {
		MailSentCounter.WithLabelValues(kind, status).Inc()
	}
}

// IncMailAuditFailure counts one attempt that left no audit row. Alert on it:
// the mail's tracking link will not resolve.
func IncMailAuditFailure(kind string) {
	if MailAuditFailures != nil {
		MailAuditFailures.WithLabelValues(kind).Inc()
	}
}

// IncCalendar counts one calendar upsert.
func IncCalendar(result string) {
	if CalendarSyncCounter != nil {
		CalendarSyncCounter.WithLabelValues(result).Inc()
	}
}

// IncQueueJob counts one consumed job.
func IncQueueJob(jobType, result string) {
	if QueueJobCounter != nil {
		QueueJobCounter.WithLabelValues(jobType, result).Inc()
	}
}

// IncRender counts one merge-field resolution.
func IncRender(result string) {
	if RenderCounter != nil {
		RenderCounter.WithLabelValues(result).Inc()
	}
}
