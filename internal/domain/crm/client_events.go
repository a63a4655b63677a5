package crm

import (
	"github.com/glowdesk/backend/internal/domain/shared"
)

// Aggregate type constant for Client
const AggregateTypeClient = "Client"

// Client domain event types
const (
	EventTypeClientCreated     = "ClientCreated"
	EventTypeClientUpdated     = "ClientUpdated"
	EventTypeClientDeactivated = "ClientDeactivated"
	EventTypeClientReactivated = "ClientReactivated"
)

// ClientCreatedEvent is published when a client is created
type ClientCreatedEvent struct {
	shared.BaseDomainEvent
	Name string `json:"name"`
}

// NewClientCreatedEvent creates a new ClientCreatedEvent
func NewClientCreatedEvent(client *Client) *ClientCreatedEvent {
	return &ClientCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeClientCreated, AggregateTypeClient, client.ID, client.TenantID),
		Name:            client.Name,
	}
}

// ClientUpdatedEvent is published when a client's details change
type ClientUpdatedEvent struct {
	shared.BaseDomainEvent
	Name string `json:"name"`
}

// NewClientUpdatedEvent creates a new ClientUpdatedEvent
func NewClientUpdatedEvent(client *Client) *ClientUpdatedEvent {
	return &ClientUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeClientUpdated, AggregateTypeClient, client.ID, client.TenantID),
		Name:            client.Name,
	}
}

// ClientDeactivatedEvent is published when a client is deactivated
type ClientDeactivatedEvent struct {
	shared.BaseDomainEvent
	Name string `json:"name"`
}

// NewClientDeactivatedEvent creates a new ClientDeactivatedEvent
func NewClientDeactivatedEvent(client *Client) *ClientDeactivatedEvent {
	return &ClientDeactivatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeClientDeactivated, AggregateTypeClient, client.ID, client.TenantID),
		Name:            client.Name,
	}
}

// ClientReactivatedEvent is published when a client is reactivated
type ClientReactivatedEvent struct {
	shared.BaseDomainEvent
	Name string `json:"name"`
}

// NewClientReactivatedEvent creates a new ClientReactivatedEvent
func NewClientReactivatedEvent(client *Client) *ClientReactivatedEvent {
	return &ClientReactivatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeClientReactivated, AggregateTypeClient, client.ID, client.TenantID),
		Name:            client.Name,
	}
}
