// Package testutil provides common test utilities for the GlowDesk backend.
package testutil

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/glowdesk/backend/internal/domain/shared"
)

// EventsOfType returns the recorded events of the given type, in order.
func EventsOfType(agg shared.AggregateRoot, eventType string) []shared.DomainEvent {
	var matched []shared.DomainEvent
	for _, ev := range agg.GetDomainEvents() {
		if ev.EventType() == eventType {
			matched = append(matched, ev)
		}
	}
	return matched
}

// AssertEventRecorded fails the test unless the aggregate recorded at least
// one event of the given type, and returns the first match.
func AssertEventRecorded(t *testing.T, agg shared.AggregateRoot, eventType string) shared.DomainEvent {
	t.Helper()

	matched := EventsOfType(agg, eventType)
	require.NotEmpty(t, matched, "expected event %q to be recorded", eventType)
	return matched[0]
}

// AssertNoEventRecorded fails the test if the aggregate recorded any event
// of the given type.
func AssertNoEventRecorded(t *testing.T, agg shared.AggregateRoot, eventType string) {
	t.Helper()

	matched := EventsOfType(agg, eventType)
	require.Empty(t, matched, "expected no event %q, got %d", eventType, len(matched))
}

// AssertEventCount fails the test unless the aggregate holds exactly count
// pending events.
func AssertEventCount(t *testing.T, agg shared.AggregateRoot, count int) {
	t.Helper()

	events := agg.GetDomainEvents()
	require.Len(t, events, count, "unexpected number of recorded events")
}

// TestEvent is a simple domain event for testing.
type TestEvent struct {
	shared.BaseDomainEvent
	Data string
}

// NewTestEvent creates a new test event.
func NewTestEvent(eventType string, tenantID uuid.UUID) *TestEvent {
	return &TestEvent{
		BaseDomainEvent: shared.BaseDomainEvent{
			ID:            uuid.New(),
			Type:          eventType,
			TenantIDValue: tenantID,
			Timestamp:     time.Now(),
			AggID:         uuid.New(),
			AggType:       "TestAggregate",
		},
		Data: "test-data",
	}
}

// NewTestEventWithID creates a test event with a specific event ID.
func NewTestEventWithID(eventID uuid.UUID, eventType string, tenantID uuid.UUID) *TestEvent {
	return &TestEvent{
		BaseDomainEvent: shared.BaseDomainEvent{
			ID:            eventID,
			Type:          eventType,
			TenantIDValue: tenantID,
			Timestamp:     time.Now(),
			AggID:         uuid.New(),
			AggType:       "TestAggregate",
		},
		Data: "test-data",
	}
}

// WaitForCondition waits for a condition to become true.
// Returns true if the condition was met, false if timeout occurred.
func WaitForCondition(t *testing.T, condition func() bool, timeout, interval time.Duration) bool {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return true
		}
		time.Sleep(interval)
	}
	return false
}
