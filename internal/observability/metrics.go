package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce             sync.Once
	httpDurationHistogram    *prometheus.HistogramVec
	billingDriftCounter      *prometheus.CounterVec
	idempotencyCounter       *prometheus.CounterVec
	invoiceCreatedCounter    *prometheus.CounterVec
	invoiceTransitionCounter *prometheus.CounterVec
	workerRunCounter         *prometheus.CounterVec
)

// Init registers all Prometheus collectors.
func Init() {
	registerOnce.Do(func() {
		httpDurationHistogram = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"})

		billingDriftCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "billing_drift_total",
			Help: "Number of billing integrity violations detected",
		}, []string{"check"})

		idempotencyCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "idempotency_events_total",
			Help: "Idempotency middleware outcomes",
		}, []string{"outcome"})

		invoiceCreatedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "invoices_created_total",
			Help: "Invoices created per billing type",
		}, []string{"billing_type"})

		invoiceTransitionCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "invoice_transitions_total",
			Help: "Invoice lifecycle transitions per target status",
		}, []string{"status"})

		workerRunCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_runs_total",
			Help: "Background worker run outcomes",
		}, []string{"worker", "result"})

		prometheus.MustRegister(
			httpDurationHistogram,
			billingDriftCounter,
			idempotencyCounter,
			invoiceCreatedCounter,
			invoiceTransitionCounter,
			workerRunCounter,
		)
	})
}

func ObserveHTTP(method, path string, status int, duration time.Duration) {
	if httpDurationHistogram == nil {
		return
	}
	httpDurationHistogram.WithLabelValues(method, path, strconv.Itoa(status)).Observe(duration.Seconds())
}

func IncrementBillingDrift(check string) {
	if billingDriftCounter == nil {
		return
	}
	billingDriftCounter.WithLabelValues(check).Inc()
}

func IncrementIdempotencyEvent(outcome string) {
	if idempotencyCounter == nil {
		return
	}
	idempotencyCounter.WithLabelValues(outcome).Inc()
}

func IncrementInvoiceCreated(billingType string) {
	if invoiceCreatedCounter == nil {
		return
	}
	invoiceCreatedCounter.WithLabelValues(billingType).Inc()
}

func IncrementInvoiceTransition(status string) {
	if invoiceTransitionCounter == nil {
		return
	}
	invoiceTransitionCounter.WithLabelValues(status).Inc()
}

func IncrementWorkerRun(worker, result string) {
	if workerRunCounter == nil {
		return
	}
	workerRunCounter.WithLabelValues(worker, result).Inc()
}
