package metric

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CheckoutStepsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Subsystem: "checkout",
		Name:      "step_transitions_total",
		Help:      "Wizard step transitions by step and result",
	}, []string{"step", "result"}) // result: advanced / invalid / retreated / edited

	OrdersSubmittedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Subsystem: "checkout",
		Name:      "orders_submitted_total",
		Help:      "Order submissions by result",
	}, []string{"result"}) // placed / replayed / rejected / failed

	BackendRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Subsystem: "backend",
		Name:      "requests_total",
		Help:      "Calls to the shop backend",
	}, []string{"endpoint", "status"})

	BackendDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "storefront",
		Subsystem: "backend",
		Name:      "request_duration_seconds",
		Help:      "Latency of calls to the shop backend",
		Buckets:   prometheus.DefBuckets,
	}, []string{"endpoint"})

	BreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "storefront",
		Subsystem: "backend",
		Name:      "breaker_state",
		Help:      "Circuit breaker state: 0 closed, 1 half-open, 2 open",
	}, []string{"name"})

	StoreOperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Subsystem: "store",
		Name:      "operations_total",
		Help:      "Session store operations",
	}, []string{"operation", "result"}) // hit / miss / error / ok

	OutboxPublishedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Subsystem: "outbox",
		Name:      "events_published_total",
		Help:      "Outbox events pushed to kafka",
	}, []string{"status"})

	RequestMetrics = promauto.NewSummaryVec(prometheus.SummaryOpts{
		Namespace:  "storefront",
		Subsystem:  "http",
		Name:       "request",
		Help:       "Inbound request latency by status",
		Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
	}, []string{"status"})
)

func ObserveRequest(t time.Duration, status int) {
	RequestMetrics.WithLabelValues(strconv.Itoa(status)).Observe(t.Seconds())
}

func ObserveBackend(endpoint string, status int, t time.Duration) {
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	BackendRequestsTotal.WithLabelValues(endpoint, label).Inc()
	BackendDuration.WithLabelValues(endpoint).Observe(t.Seconds())
}
