// Package telemetry defines the outbound step-publishing interface.
// Implementations stream supervisor step records to external consumers
// (message brokers, test doubles).
package telemetry

import (
	"sync"

	"github.com/h2fleet/h2fleet/core/metrics"
)

// Publisher streams step records to an external consumer.
type Publisher interface {
	PublishStep(rec metrics.StepRecord) error
	Close() error
}

// NopPublisher discards every record.
type NopPublisher struct{}

func (NopPublisher) PublishStep(metrics.StepRecord) error { return nil }
func (NopPublisher) Close() error                         { return nil }

// MockPublisher collects records in memory for tests.
type MockPublisher struct {
	mu      sync.Mutex
	Records []metrics.StepRecord
	Closed  bool
}

// NewMockPublisher creates an empty MockPublisher.
func NewMockPublisher() *MockPublisher { return &MockPublisher{} }

// PublishStep appends the record.
func (m *MockPublisher) PublishStep(rec metrics.StepRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Records = append(m.Records, rec)
	return nil
}

// Close marks the publisher closed.
func (m *MockPublisher) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Closed = true
	return nil
}

// Len returns the number of published records.
func (m *MockPublisher) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Records)
}
