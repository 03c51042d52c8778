package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the member service
type Metrics struct {
	// Enumeration metrics
	EnumerationsTotal    *prometheus.CounterVec
	EnumerationErrors    *prometheus.CounterVec
	MembersYielded       prometheus.Counter
	EnumerationDuration  prometheus.Histogram
	AggressiveRuns       prometheus.Counter
	ParticipantRequests  prometheus.Counter
	ParticipantRateLimit prometheus.Counter

	// Census metrics
	CensusTotal     prometheus.Counter
	CensusErrors    prometheus.Counter
	CensusDuration  prometheus.Histogram
	SnapshotsStored prometheus.Counter

	// Kafka metrics
	KafkaMessagesProduced prometheus.Counter
	KafkaProduceErrors    *prometheus.CounterVec
	KafkaProduceDuration  prometheus.Histogram
}

var (
	// DefaultMetrics is the default metrics instance
	DefaultMetrics *Metrics
	once           sync.Once
)

// GetDefaultMetrics returns the singleton metrics instance
func GetDefaultMetrics() *Metrics {
	once.Do(func() {
		DefaultMetrics = NewMetrics()
	})
	return DefaultMetrics
}

func init() {
	// Initialize DefaultMetrics on package import
	GetDefaultMetrics()
}

// NewMetrics creates a new Metrics instance with all counters and gauges
func NewMetrics() *Metrics {
	return &Metrics{
		// Enumeration metrics
		EnumerationsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "member_service_enumerations_total",
				Help: "Total number of participant enumerations started",
			},
			[]string{"entity_kind"},
		),
		EnumerationErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "member_service_enumeration_errors_total",
				Help: "Total number of failed participant enumerations",
			},
			[]string{"error_type"},
		),
		MembersYielded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "member_service_members_yielded_total",
			Help: "Total number of members yielded by enumerations",
		}),
		EnumerationDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "member_service_enumeration_duration_seconds",
			Help:    "Duration of participant enumerations in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
		AggressiveRuns: promauto.NewCounter(prometheus.CounterOpts{
			Name: "member_service_aggressive_enumerations_total",
			Help: "Total number of enumerations that used letter sharding",
		}),
		ParticipantRequests: promauto.NewCounter(prometheus.CounterOpts{
			Name: "member_service_participant_requests_total",
			Help: "Total number of channels.getParticipants requests issued",
		}),
		ParticipantRateLimit: promauto.NewCounter(prometheus.CounterOpts{
			Name: "member_service_rate_limit_waits_total",
			Help: "Total number of requests delayed by the local rate limiter",
		}),

		// Census metrics
		CensusTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "member_service_census_runs_total",
			Help: "Total number of census runs",
		}),
		CensusErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "member_service_census_errors_total",
			Help: "Total number of failed census runs",
		}),
		CensusDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "member_service_census_duration_seconds",
			Help:    "Duration of census runs in seconds",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}),
		SnapshotsStored: promauto.NewCounter(prometheus.CounterOpts{
			Name: "member_service_snapshots_stored_total",
			Help: "Total number of census snapshots persisted",
		}),

		// Kafka metrics
		KafkaMessagesProduced: promauto.NewCounter(prometheus.CounterOpts{
			Name: "member_service_kafka_messages_produced_total",
			Help: "Total number of messages produced to Kafka",
		}),
		KafkaProduceErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "member_service_kafka_produce_errors_total",
				Help: "Total number of Kafka produce errors",
			},
			[]string{"error_type"},
		),
		KafkaProduceDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "member_service_kafka_produce_duration_seconds",
			Help:    "Duration of Kafka produce operations in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// RecordEnumeration records an enumeration start for an entity kind
func (m *Metrics) RecordEnumeration(entityKind string) {
	if entityKind == "" {
		entityKind = "unknown"
	}
	m.EnumerationsTotal.WithLabelValues(entityKind).Inc()
}

// RecordEnumerationError records a failed enumeration with error type
func (m *Metrics) RecordEnumerationError(errorType string) {
	if errorType == "" {
		errorType = "unknown"
	}
	m.EnumerationErrors.WithLabelValues(errorType).Inc()
}

// RecordEnumerationResult records yielded members and the run duration
func (m *Metrics) RecordEnumerationResult(yielded int, duration float64) {
	// Only add positive values to prevent counter from going backwards
	if yielded > 0 {
		m.MembersYielded.Add(float64(yielded))
	}
	m.EnumerationDuration.Observe(duration)
}

// RecordAggressiveRun records an enumeration that used letter sharding
func (m *Metrics) RecordAggressiveRun() {
	m.AggressiveRuns.Inc()
}

// RecordParticipantRequests records issued getParticipants requests
func (m *Metrics) RecordParticipantRequests(count int) {
	if count > 0 {
		m.ParticipantRequests.Add(float64(count))
	}
}

// RecordRateLimitWait records a request delayed by the local limiter
func (m *Metrics) RecordRateLimitWait() {
	m.ParticipantRateLimit.Inc()
}

// RecordCensus records a completed census run with duration
func (m *Metrics) RecordCensus(duration float64) {
	m.CensusTotal.Inc()
	m.CensusDuration.Observe(duration)
}

// RecordCensusError records a failed census run
func (m *Metrics) RecordCensusError() {
	m.CensusErrors.Inc()
}

// RecordSnapshotStored records a persisted snapshot
func (m *Metrics) RecordSnapshotStored() {
	m.SnapshotsStored.Inc()
}

// RecordKafkaMessage records a Kafka message production with duration
func (m *Metrics) RecordKafkaMessage(duration float64) {
	m.KafkaMessagesProduced.Inc()
	m.KafkaProduceDuration.Observe(duration)
}

// RecordKafkaError records a Kafka production error with error type
func (m *Metrics) RecordKafkaError(errorType string) {
	if errorType == "" {
		errorType = "unknown"
	}
	m.KafkaProduceErrors.WithLabelValues(errorType).Inc()
}
