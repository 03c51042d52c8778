package metrics

import (
	"testing"
)

// TestMetrics_RecordEnumeration tests enumeration recording
func TestMetrics_RecordEnumeration(t *testing.T) {
	// Use the global DefaultMetrics instance
	DefaultMetrics.RecordEnumeration("channel")
	DefaultMetrics.RecordEnumeration("chat")
	DefaultMetrics.RecordEnumeration("") // Test empty entity kind

	// This test verifies that the method doesn't panic
	// Actual metric values are tested via Prometheus scraping in integration tests
}

// TestMetrics_RecordEnumerationError tests enumeration error recording
func TestMetrics_RecordEnumerationError(t *testing.T) {
	// Record errors with different error types
	DefaultMetrics.RecordEnumerationError("rpc_error")
	DefaultMetrics.RecordEnumerationError("unsupported_peer")
	DefaultMetrics.RecordEnumerationError("") // Test empty error type

	// This test verifies that the method doesn't panic
}

// TestMetrics_RecordEnumerationResult tests result recording
func TestMetrics_RecordEnumerationResult(t *testing.T) {
	// Record result with positive yields
	DefaultMetrics.RecordEnumerationResult(150, 2.3)

	// Test with zero yields (should not panic)
	DefaultMetrics.RecordEnumerationResult(0, 1.0)

	// Test with negative yields (should not panic, value won't be added)
	DefaultMetrics.RecordEnumerationResult(-1, 1.5)

	// This test verifies that the method doesn't panic
}

// TestMetrics_RecordParticipantRequests tests request recording
func TestMetrics_RecordParticipantRequests(t *testing.T) {
	DefaultMetrics.RecordParticipantRequests(26)
	DefaultMetrics.RecordParticipantRequests(0)
	DefaultMetrics.RecordParticipantRequests(-3)

	// This test verifies that the method doesn't panic
}

// TestMetrics_RecordCensus tests census recording
func TestMetrics_RecordCensus(t *testing.T) {
	DefaultMetrics.RecordCensus(4.2)
	DefaultMetrics.RecordCensusError()
	DefaultMetrics.RecordSnapshotStored()

	// This test verifies that the method doesn't panic
}

// TestMetrics_RecordKafkaMessage tests Kafka message recording
func TestMetrics_RecordKafkaMessage(t *testing.T) {
	// Record Kafka messages with duration
	DefaultMetrics.RecordKafkaMessage(0.001)
	DefaultMetrics.RecordKafkaMessage(0.05)
	DefaultMetrics.RecordKafkaMessage(0.1)

	// This test verifies that the method doesn't panic
}

// TestMetrics_RecordKafkaError tests Kafka error recording
func TestMetrics_RecordKafkaError(t *testing.T) {
	// Record Kafka errors with different error types
	DefaultMetrics.RecordKafkaError("send_failed")
	DefaultMetrics.RecordKafkaError("timeout")
	DefaultMetrics.RecordKafkaError("") // Test empty error type

	// This test verifies that the method doesn't panic
}

// TestDefaultMetrics_Initialized verifies DefaultMetrics initialization
func TestDefaultMetrics_Initialized(t *testing.T) {
	// Verify DefaultMetrics is initialized
	if DefaultMetrics == nil {
		t.Fatal("DefaultMetrics should be initialized")
	}

	// Verify enumeration metrics are non-nil
	if DefaultMetrics.EnumerationsTotal == nil {
		t.Error("EnumerationsTotal should not be nil")
	}
	if DefaultMetrics.EnumerationErrors == nil {
		t.Error("EnumerationErrors should not be nil")
	}
	if DefaultMetrics.MembersYielded == nil {
		t.Error("MembersYielded should not be nil")
	}
	if DefaultMetrics.ParticipantRequests == nil {
		t.Error("ParticipantRequests should not be nil")
	}

	// Verify census metrics are non-nil
	if DefaultMetrics.CensusTotal == nil {
		t.Error("CensusTotal should not be nil")
	}
	if DefaultMetrics.SnapshotsStored == nil {
		t.Error("SnapshotsStored should not be nil")
	}

	// Verify Kafka metrics are non-nil
	if DefaultMetrics.KafkaMessagesProduced == nil {
		t.Error("KafkaMessagesProduced should not be nil")
	}
	if DefaultMetrics.KafkaProduceErrors == nil {
		t.Error("KafkaProduceErrors should not be nil")
	}
	if DefaultMetrics.KafkaProduceDuration == nil {
		t.Error("KafkaProduceDuration should not be nil")
	}
}
