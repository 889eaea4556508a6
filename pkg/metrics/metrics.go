package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	ObjectEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipelinq_object_events_total",
			Help: "Total number of object change events handled, by entity type and result (count)",
		},
		[]string{"entity", "result"},
	)

	ObjectEventDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pipelinq_object_event_duration_ms",
			Help:    "Time spent handling one object change event in milliseconds",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
		},
		[]string{"result"},
	)

	ChangeEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipelinq_change_events_total",
			Help: "Total number of detected change events, by subject (count)",
		},
		[]string{"subject"},
	)

	DeliveriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipelinq_deliveries_total",
			Help: "Activity and notification deliveries, by channel and status (count)",
		},
		[]string{"channel", "status"},
	)

	SchemaMapBuildsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipelinq_schema_map_builds_total",
			Help: "Schema map (re)builds, by result (count)",
		},
		[]string{"result"},
	)

	SchemaMapSize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "pipelinq_schema_map_size",
			Help: "Number of schema ids currently mapped to an entity type (count)",
		},
	)

	SuppressedEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipelinq_suppressed_events_total",
			Help: "Change events dropped by a suppression rule, by rule name (count)",
		},
		[]string{"rule"},
	)

	DedupChecksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipelinq_dedup_checks_total",
			Help: "Idempotency checks of incoming events, by status (count)",
		},
		[]string{"status"},
	)

	DedupDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pipelinq_dedup_duration_ms",
			Help:    "Duration of the idempotency check in milliseconds",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 25, 50, 100},
		},
		[]string{"status"},
	)

	NoteEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipelinq_note_events_total",
			Help: "Note-added event triggers, by result (count)",
		},
		[]string{"result"},
	)

	TagOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipelinq_tag_operations_total",
			Help: "Tag provisioning operations, by category, operation and status (count)",
		},
		[]string{"category", "operation", "status"},
	)

	ObjectStoreRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipelinq_object_store_requests_total",
			Help: "Requests made to the object register API (count)",
		},
		[]string{"operation", "status"},
	)

	ObjectStoreDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pipelinq_object_store_duration_ms",
			Help:    "Duration of object register API requests in milliseconds",
			Buckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		},
		[]string{"operation"},
	)

	RetryAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "retry_attempts_total",
			Help: "Total number of retry attempts (count)",
		},
		[]string{"service", "topic"},
	)

	DLQMessagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dlq_messages_total",
			Help: "Total number of messages sent to DLQ (count)",
		},
		[]string{"service", "topic", "reason"},
	)

	KafkaMessagesReadTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kafka_messages_read_total",
			Help: "Total number of messages read from Kafka (count)",
		},
		[]string{"service", "topic"},
	)

	KafkaMessagesWrittenTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kafka_messages_written_total",
			Help: "Total number of messages written to Kafka (count)",
		},
		[]string{"topic"},
	)

	KafkaWriteDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kafka_write_duration_ms",
			Help:    "Duration of writing messages to Kafka in milliseconds",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
		[]string{"topic"},
	)

	CircuitBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open) (state code)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker (count)",
		},
		[]string{"name", "state"},
	)

	CircuitBreakerFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_failures_total",
			Help: "Total number of failures through circuit breaker (count)",
		},
		[]string{"name"},
	)

	RateLimitRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limit_requests_total",
			Help: "Total number of requests checked against rate limit (count)",
		},
		[]string{"status"},
	)

	FallbackUsageTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fallback_usage_total",
			Help: "Total number of times fallback strategies were used (count)",
		},
		[]string{"service", "strategy"},
	)
)

var (
	dispatchOnce       sync.Once
	managementOnce     sync.Once
	brokerOnce         sync.Once
	circuitBreakerOnce sync.Once
	fallbackOnce       sync.Once
	objectStoreOnce    sync.Once
)

func RegisterDispatchMetrics() {
	dispatchOnce.Do(func() {
		prometheus.MustRegister(ObjectEventsTotal)
		prometheus.MustRegister(ObjectEventDuration)
		prometheus.MustRegister(ChangeEventsTotal)
		prometheus.MustRegister(DeliveriesTotal)
		prometheus.MustRegister(SchemaMapBuildsTotal)
		prometheus.MustRegister(SchemaMapSize)
		prometheus.MustRegister(SuppressedEventsTotal)
		prometheus.MustRegister(DedupChecksTotal)
		prometheus.MustRegister(DedupDuration)
	})
	registerFallbackUsageTotalOnce()
}

func RegisterManagementMetrics() {
	managementOnce.Do(func() {
		prometheus.MustRegister(RateLimitRequestsTotal)
		prometheus.MustRegister(NoteEventsTotal)
		prometheus.MustRegister(TagOperationsTotal)
	})
}

func RegisterObjectStoreMetrics() {
	objectStoreOnce.Do(func() {
		prometheus.MustRegister(ObjectStoreRequestsTotal)
		prometheus.MustRegister(ObjectStoreDuration)
	})
}

func registerFallbackUsageTotalOnce() {
	fallbackOnce.Do(func() {
		prometheus.MustRegister(FallbackUsageTotal)
	})
}

func RegisterBrokerMetrics() {
	brokerOnce.Do(func() {
		prometheus.MustRegister(RetryAttemptsTotal)
		prometheus.MustRegister(DLQMessagesTotal)
		prometheus.MustRegister(KafkaMessagesReadTotal)
		prometheus.MustRegister(KafkaMessagesWrittenTotal)
		prometheus.MustRegister(KafkaWriteDuration)
	})
}

func RegisterCircuitBreakerMetrics() {
	circuitBreakerOnce.Do(func() {
		prometheus.MustRegister(CircuitBreakerState)
		prometheus.MustRegister(CircuitBreakerRequests)
		prometheus.MustRegister(CircuitBreakerFailures)
	})
}

func ObserveObjectEvent(entity, result string, duration time.Duration) {
	ObjectEventsTotal.WithLabelValues(entity, result).Inc()
	ObjectEventDuration.WithLabelValues(result).Observe(float64(duration.Milliseconds()))
}

func ObserveDedup(duration time.Duration, status string) {
	DedupChecksTotal.WithLabelValues(status).Inc()
	DedupDuration.WithLabelValues(status).Observe(float64(duration.Microseconds()) / 1000)
}

func IncDelivery(channel, status string) {
	DeliveriesTotal.WithLabelValues(channel, status).Inc()
}

func IncTagOperation(category, operation string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	TagOperationsTotal.WithLabelValues(category, operation, status).Inc()
}

func ObserveObjectStoreRequest(operation string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	ObjectStoreRequestsTotal.WithLabelValues(operation, status).Inc()
	ObjectStoreDuration.WithLabelValues(operation).Observe(float64(duration.Milliseconds()))
}

func ObserveKafkaWrite(topic string, duration time.Duration) {
	KafkaMessagesWrittenTotal.WithLabelValues(topic).Inc()
	KafkaWriteDuration.WithLabelValues(topic).Observe(float64(duration.Milliseconds()))
}
