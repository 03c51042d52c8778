package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/IBM/sarama"
	"github.com/rs/zerolog"

	"github.com/Conte777/MemberFlow/internal/domain"
	"github.com/Conte777/MemberFlow/internal/infrastructure/metrics"
)

const (
	// maxStoredErrors is the maximum number of errors to keep in memory
	// This prevents unbounded memory growth during long-running operations
	maxStoredErrors = 100
)

// CensusProducer sends census completion events to Kafka using an
// asynchronous producer
type CensusProducer struct {
	producer sarama.AsyncProducer
	topic    string
	logger   zerolog.Logger
	metrics  *metrics.Metrics

	wg        sync.WaitGroup
	closeOnce sync.Once
	closeErr  error
	closed    bool
	closeMu   sync.Mutex
	errors    []error
	errorsMu  sync.Mutex
}

// ProducerConfig holds configuration for Kafka producer
type ProducerConfig struct {
	Brokers         []string       // Kafka broker addresses
	Topic           string         // Topic name for census events
	Logger          zerolog.Logger // Logger for monitoring
	Metrics         *metrics.Metrics
	MaxMessageBytes int // Max message size in bytes (default: 1MB)
	MaxRetries      int // Max retries for failed sends (default: 5)
}

// ValidateBrokers checks if Kafka brokers are accessible
// Returns error if cannot connect to any broker
func ValidateBrokers(brokers []string) error {
	if len(brokers) == 0 {
		return fmt.Errorf("no brokers specified")
	}

	config := sarama.NewConfig()
	config.Version = sarama.V2_6_0_0

	client, err := sarama.NewClient(brokers, config)
	if err != nil {
		return fmt.Errorf("failed to connect to Kafka brokers: %w", err)
	}
	defer client.Close()

	// Check if we can communicate with brokers
	if err := client.RefreshMetadata(); err != nil {
		return fmt.Errorf("failed to refresh metadata from Kafka: %w", err)
	}

	return nil
}

// NewCensusProducer creates a new Kafka producer with async configuration
//
// Configuration highlights:
// - Asynchronous producer for high throughput
// - Snappy compression for bandwidth optimization
// - Idempotent mode for at-least-once delivery with deduplication
// - Hash partitioner based on entity_ref for ordering guarantees
func NewCensusProducer(cfg ProducerConfig) (domain.EventProducer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("no kafka brokers specified")
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("kafka topic is required")
	}

	// Set defaults for optional config values
	if cfg.MaxMessageBytes <= 0 {
		cfg.MaxMessageBytes = 1000000 // 1MB default
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 5 // 5 retries default
	}

	config := sarama.NewConfig()

	// Producer settings for high performance and reliability
	config.Producer.Return.Successes = true // Required for async producer monitoring
	config.Producer.Return.Errors = true    // Required for error handling

	// Compression: Snappy (good balance between speed and compression ratio)
	config.Producer.Compression = sarama.CompressionSnappy

	// Idempotent mode: ensures at-least-once delivery with automatic deduplication
	config.Producer.Idempotent = true
	config.Producer.RequiredAcks = sarama.WaitForAll // Required for idempotent producer
	config.Net.MaxOpenRequests = 1                   // Required for idempotent producer
	config.Producer.MaxMessageBytes = cfg.MaxMessageBytes
	config.Producer.Retry.Max = cfg.MaxRetries

	// Partitioner: hash by entity_ref for event ordering per entity
	config.Producer.Partitioner = sarama.NewHashPartitioner

	// Set client ID for identification
	config.ClientID = "member-service-producer"

	// Kafka version compatibility (using stable version)
	config.Version = sarama.V2_6_0_0

	producer, err := sarama.NewAsyncProducer(cfg.Brokers, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	cp := &CensusProducer{
		producer: producer,
		topic:    cfg.Topic,
		logger:   cfg.Logger.With().Str("component", "census_producer").Logger(),
		metrics:  cfg.Metrics,
		errors:   make([]error, 0),
	}

	// Start goroutines to handle async responses
	cp.wg.Add(2)
	go cp.handleSuccesses()
	go cp.handleErrors()

	cp.logger.Info().
		Strs("brokers", cfg.Brokers).
		Str("topic", cfg.Topic).
		Int("max_message_bytes", cfg.MaxMessageBytes).
		Int("max_retries", cfg.MaxRetries).
		Msg("Kafka producer initialized successfully")

	return cp, nil
}

// SendCensusCompleted queues a census completion event for sending.
// The entity reference is the partition key, so events for one entity
// keep their order. Actual send errors surface asynchronously through
// the error handler.
func (p *CensusProducer) SendCensusCompleted(ctx context.Context, event *domain.CensusEvent) error {
	if event == nil {
		return fmt.Errorf("census event is nil")
	}
	if event.SnapshotID == "" {
		return fmt.Errorf("snapshot_id is required")
	}
	if event.EntityRef == "" {
		return fmt.Errorf("entity_ref is required")
	}

	// Check context before expensive operations
	select {
	case <-ctx.Done():
		return fmt.Errorf("context cancelled before sending: %w", ctx.Err())
	default:
	}

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal census event: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic:     p.topic,
		Key:       sarama.StringEncoder(event.EntityRef), // Partition by entity_ref
		Value:     sarama.ByteEncoder(value),
		Timestamp: event.CreatedAt,
	}

	start := time.Now()
	select {
	case p.producer.Input() <- msg:
		if p.metrics != nil {
			p.metrics.RecordKafkaMessage(time.Since(start).Seconds())
		}
		p.logger.Debug().
			Str("entity_ref", event.EntityRef).
			Str("snapshot_id", event.SnapshotID).
			Msg("Census event queued for sending to Kafka")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("context cancelled while sending message: %w", ctx.Err())
	}
}

func (p *CensusProducer) handleSuccesses() {
	defer p.wg.Done()

	for msg := range p.producer.Successes() {
		p.logger.Debug().
			Str("topic", msg.Topic).
			Int32("partition", msg.Partition).
			Int64("offset", msg.Offset).
			Msg("Message sent to Kafka successfully")
	}

	p.logger.Info().Msg("Success handler stopped")
}

func (p *CensusProducer) handleErrors() {
	defer p.wg.Done()

	for producerErr := range p.producer.Errors() {
		p.logger.Error().
			Err(producerErr.Err).
			Str("topic", producerErr.Msg.Topic).
			Interface("key", producerErr.Msg.Key).
			Msg("Failed to send message to Kafka")

		if p.metrics != nil {
			p.metrics.RecordKafkaError("send_failed")
		}

		// Collect errors for Close() method (with size limit to prevent memory leak)
		p.errorsMu.Lock()
		if len(p.errors) < maxStoredErrors {
			p.errors = append(p.errors, producerErr.Err)
		} else if len(p.errors) == maxStoredErrors {
			// Log warning only once when limit is reached
			p.logger.Warn().
				Int("max_errors", maxStoredErrors).
				Msg("Maximum stored errors limit reached, subsequent errors will be dropped")
			p.errors = append(p.errors, fmt.Errorf("max errors limit reached, subsequent errors dropped"))
		}
		p.errorsMu.Unlock()
	}

	p.logger.Info().Msg("Error handler stopped")
}

// Close gracefully shuts down the Kafka producer with a default 10-second timeout
func (p *CensusProducer) Close() error {
	return p.CloseWithTimeout(10 * time.Second)
}

// IsHealthy returns true if the producer is healthy and can send messages
func (p *CensusProducer) IsHealthy() bool {
	if p.producer == nil {
		return false
	}

	p.closeMu.Lock()
	isClosed := p.closed
	p.closeMu.Unlock()

	if isClosed {
		return false
	}

	p.errorsMu.Lock()
	errorCount := len(p.errors)
	p.errorsMu.Unlock()

	// Too many accumulated errors means the broker link is effectively down
	return errorCount < maxStoredErrors
}

// CloseWithTimeout gracefully shuts down the Kafka producer with a custom timeout
//
// The method:
// 1. Closes the producer (stops accepting new messages)
// 2. Waits for all pending messages to be flushed (with timeout)
// 3. Waits for handler goroutines to finish
// 4. Returns any errors that occurred during message delivery
//
// Close is idempotent and can be called multiple times safely.
func (p *CensusProducer) CloseWithTimeout(timeout time.Duration) error {
	p.closeOnce.Do(func() {
		p.logger.Info().
			Dur("timeout", timeout).
			Msg("Closing Kafka producer")

		p.closeMu.Lock()
		p.closed = true
		p.closeMu.Unlock()

		var errs []error

		// Close producer - this will close Input, Successes, and Errors
		// channels after flushing pending messages
		if err := p.producer.Close(); err != nil {
			p.logger.Error().Err(err).Msg("Error closing Kafka producer")
			errs = append(errs, fmt.Errorf("producer close failed: %w", err))
		}

		// Wait for handler goroutines with timeout
		done := make(chan struct{})
		go func() {
			p.wg.Wait()
			close(done)
		}()

		select {
		case <-done:
			p.logger.Info().Msg("Kafka producer closed gracefully")
		case <-time.After(timeout):
			p.logger.Warn().
				Dur("timeout", timeout).
				Msg("Timeout waiting for Kafka handlers to finish")
			errs = append(errs, fmt.Errorf("timeout waiting for handlers after %v", timeout))
		}

		// Report errors collected during operation
		p.errorsMu.Lock()
		if len(p.errors) > 0 {
			errs = append(errs, fmt.Errorf("%d messages failed during operation, first error: %w", len(p.errors), p.errors[0]))
		}
		p.errorsMu.Unlock()

		if len(errs) > 0 {
			p.closeErr = fmt.Errorf("kafka producer close: %v", errs)
		}
	})

	return p.closeErr
}

// Ensure CensusProducer implements domain.EventProducer interface
var _ domain.EventProducer = (*CensusProducer)(nil)
