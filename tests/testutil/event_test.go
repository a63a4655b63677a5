package testutil

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/glowdesk/backend/internal/domain/shared"
)

type stubAggregate struct {
	shared.TenantAggregateRoot
}

func newStubAggregate(tenantID uuid.UUID) *stubAggregate {
	return &stubAggregate{TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID)}
}

func TestEventsOfType(t *testing.T) {
	tenantID := uuid.New()
	agg := newStubAggregate(tenantID)

	agg.AddDomainEvent(NewTestEvent("sale.confirmed", tenantID))
	agg.AddDomainEvent(NewTestEvent("sale.cancelled", tenantID))
	agg.AddDomainEvent(NewTestEvent("sale.confirmed", tenantID))

	matched := EventsOfType(agg, "sale.confirmed")
	assert.Len(t, matched, 2)

	assert.Empty(t, EventsOfType(agg, "sale.created"))
}

func TestAssertEventRecorded(t *testing.T) {
	tenantID := uuid.New()
	agg := newStubAggregate(tenantID)

	recorded := NewTestEvent("client.deactivated", tenantID)
	agg.AddDomainEvent(recorded)

	ev := AssertEventRecorded(t, agg, "client.deactivated")
	assert.Equal(t, recorded.EventID(), ev.EventID())
	assert.Equal(t, tenantID, ev.TenantID())
}

func TestAssertEventCount(t *testing.T) {
	tenantID := uuid.New()
	agg := newStubAggregate(tenantID)

	AssertEventCount(t, agg, 0)

	agg.AddDomainEvent(NewTestEvent("package.consumed", tenantID))
	AssertEventCount(t, agg, 1)

	agg.ClearDomainEvents()
	AssertEventCount(t, agg, 0)
	AssertNoEventRecorded(t, agg, "package.consumed")
}

func TestNewTestEvent(t *testing.T) {
	tenantID := uuid.New()
	event := NewTestEvent("TestEvent", tenantID)

	assert.NotEqual(t, uuid.Nil, event.EventID())
	assert.Equal(t, "TestEvent", event.EventType())
	assert.Equal(t, tenantID, event.TenantID())
	assert.False(t, event.OccurredAt().IsZero())
	assert.Equal(t, "test-data", event.Data)
}

func TestNewTestEventWithID(t *testing.T) {
	eventID := uuid.New()
	tenantID := uuid.New()
	event := NewTestEventWithID(eventID, "CustomEvent", tenantID)

	assert.Equal(t, eventID, event.EventID())
	assert.Equal(t, "CustomEvent", event.EventType())
	assert.Equal(t, tenantID, event.TenantID())
}

func TestWaitForCondition(t *testing.T) {
	t.Run("condition met", func(t *testing.T) {
		counter := 0
		go func() {
			time.Sleep(20 * time.Millisecond)
			counter = 1
		}()

		result := WaitForCondition(t, func() bool {
			return counter == 1
		}, 200*time.Millisecond, 10*time.Millisecond)

		assert.True(t, result)
	})

	t.Run("condition not met within timeout", func(t *testing.T) {
		result := WaitForCondition(t, func() bool {
			return false
		}, 50*time.Millisecond, 10*time.Millisecond)

		assert.False(t, result)
	})
}
