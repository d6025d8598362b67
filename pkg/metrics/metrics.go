package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "eventplanner"

type Metrics struct {
	Kafka KafkaMetrics
	API   APIMetrics
	Store StoreMetrics
}

type KafkaMetrics struct {
	ProducerAttemptLatencySeconds *prometheus.HistogramVec
	ProducerOperationsTotal       *prometheus.CounterVec
	ProducerSuccessAttempts       *prometheus.HistogramVec
	NotificationsDroppedTotal     *prometheus.CounterVec
}

type APIMetrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

type StoreMetrics struct {
	RequestsTotal          *prometheus.CounterVec
	DurationSeconds        *prometheus.HistogramVec
	InFlight               *prometheus.GaugeVec
	OrderingFallbacksTotal prometheus.Counter
	Up                     prometheus.Gauge
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		Kafka: KafkaMetrics{
			ProducerAttemptLatencySeconds: f.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "kafka",
				Name:      "producer_attempt_latency_seconds",
				Help:      "Latency per single produce attempt.",
				Buckets:   prometheus.DefBuckets,
			}, []string{"topic", "result"}), // ok|error

			ProducerOperationsTotal: f.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "kafka",
				Name:      "producer_operations_total",
				Help:      "Total produce operations (one call) by result.",
			}, []string{"topic", "result"}), // success|failed|permanent|canceled

			ProducerSuccessAttempts: f.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "kafka",
				Name:      "producer_success_attempts",
				Help:      "Attempt number on which produce operation succeeded.",
				Buckets:   []float64{1, 2, 3, 4, 5},
			}, []string{"topic"}),

			NotificationsDroppedTotal: f.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "kafka",
				Name:      "notifications_dropped_total",
				Help:      "Change notifications dropped because the relay buffer was full.",
			}, []string{"type"}),
		},

		API: APIMetrics{
			HTTPRequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "api",
				Name:      "http_requests_total",
				Help:      "Total HTTP requests by method, path and status.",
			}, []string{"method", "path", "status"}),

			HTTPRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "api",
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency.",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			}, []string{"method", "path", "status"}),
		},
		Store: StoreMetrics{
			RequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "store",
				Name:      "requests_total",
				Help:      "Total document store requests by operation and result.",
			}, []string{"op", "result"}),

			DurationSeconds: f.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "store",
				Name:      "request_duration_seconds",
				Help:      "Document store request duration in seconds.",
				// удалённое хранилище, хвосты длиннее чем у локальной БД
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			}, []string{"op", "result"}),

			InFlight: f.NewGaugeVec(prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "store",
				Name:      "inflight",
				Help:      "Number of in-flight document store requests.",
			}, []string{"op"}),

			OrderingFallbacksTotal: f.NewCounter(prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "store",
				Name:      "ordering_fallbacks_total",
				Help:      "Ordered scans that fell back to an unordered scan.",
			}),

			Up: f.NewGauge(prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "store",
				Name:      "up",
				Help:      "1 when the last scheduled store probe succeeded.",
			}),
		},
	}
}
