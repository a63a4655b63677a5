package catalog

import (
	"github.com/glowdesk/backend/internal/domain/shared"
)

// Aggregate type constant for Service
const AggregateTypeService = "Service"

// Service domain event types
const (
	EventTypeServiceCreated       = "ServiceCreated"
	EventTypeServiceUpdated       = "ServiceUpdated"
	EventTypeServiceDeactivated   = "ServiceDeactivated"
	EventTypeServiceReactivated   = "ServiceReactivated"
	EventTypeServiceTiersReplaced = "ServiceTiersReplaced"
)

// ServiceCreatedEvent is published when a service is created
type ServiceCreatedEvent struct {
	shared.BaseDomainEvent
	Name string `json:"name"`
}

// NewServiceCreatedEvent creates a new ServiceCreatedEvent
func NewServiceCreatedEvent(service *Service) *ServiceCreatedEvent {
	return &ServiceCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeServiceCreated, AggregateTypeService, service.ID, service.TenantID),
		Name:            service.Name,
	}
}

// ServiceUpdatedEvent is published when a service's details change
type ServiceUpdatedEvent struct {
	shared.BaseDomainEvent
	Name string `json:"name"`
}

// NewServiceUpdatedEvent creates a new ServiceUpdatedEvent
func NewServiceUpdatedEvent(service *Service) *ServiceUpdatedEvent {
	return &ServiceUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeServiceUpdated, AggregateTypeService, service.ID, service.TenantID),
		Name:            service.Name,
	}
}

// ServiceDeactivatedEvent is published when a service is deactivated
type ServiceDeactivatedEvent struct {
	shared.BaseDomainEvent
	Name string `json:"name"`
}

// NewServiceDeactivatedEvent creates a new ServiceDeactivatedEvent
func NewServiceDeactivatedEvent(service *Service) *ServiceDeactivatedEvent {
	return &ServiceDeactivatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeServiceDeactivated, AggregateTypeService, service.ID, service.TenantID),
		Name:            service.Name,
	}
}

// ServiceReactivatedEvent is published when a service is reactivated
type ServiceReactivatedEvent struct {
	shared.BaseDomainEvent
	Name string `json:"name"`
}

// NewServiceReactivatedEvent creates a new ServiceReactivatedEvent
func NewServiceReactivatedEvent(service *Service) *ServiceReactivatedEvent {
	return &ServiceReactivatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeServiceReactivated, AggregateTypeService, service.ID, service.TenantID),
		Name:            service.Name,
	}
}

// ServiceTiersReplacedEvent is published when a service's price table changes
type ServiceTiersReplacedEvent struct {
	shared.BaseDomainEvent
	Name      string `json:"name"`
	TierCount int    `json:"tier_count"`
}

// NewServiceTiersReplacedEvent creates a new ServiceTiersReplacedEvent
func NewServiceTiersReplacedEvent(service *Service) *ServiceTiersReplacedEvent {
	return &ServiceTiersReplacedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeServiceTiersReplaced, AggregateTypeService, service.ID, service.TenantID),
		Name:            service.Name,
		TierCount:       len(service.Tiers),
	}
}
