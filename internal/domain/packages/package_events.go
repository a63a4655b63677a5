package packages

import (
	"github.com/glowdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Aggregate type constant for ClientPackage
const AggregateTypeClientPackage = "ClientPackage"

// Package domain event types
const (
	EventTypePackageCreated             = "PackageCreated"
	EventTypePackageConsumed            = "PackageConsumed"
	EventTypePackageConsumptionReversed = "PackageConsumptionReversed"
	EventTypePackageDeactivated         = "PackageDeactivated"
)

// PackageCreatedEvent is published when a package is created from a sale
type PackageCreatedEvent struct {
	shared.BaseDomainEvent
	ClientID        uuid.UUID `json:"client_id"`
	ServiceID       uuid.UUID `json:"service_id"`
	SaleID          uuid.UUID `json:"sale_id"`
	InitialQuantity int       `json:"initial_quantity"`
}

// NewPackageCreatedEvent creates a new PackageCreatedEvent
func NewPackageCreatedEvent(pkg *ClientPackage) *PackageCreatedEvent {
	return &PackageCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePackageCreated, AggregateTypeClientPackage, pkg.ID, pkg.TenantID),
		ClientID:        pkg.ClientID,
		ServiceID:       pkg.ServiceID,
		SaleID:          pkg.SaleID,
		InitialQuantity: pkg.InitialQuantity,
	}
}

// PackageConsumedEvent is published when credits are drawn
type PackageConsumedEvent struct {
	shared.BaseDomainEvent
	Quantity          int `json:"quantity"`
	AvailableQuantity int `json:"available_quantity"`
}

// NewPackageConsumedEvent creates a new PackageConsumedEvent
func NewPackageConsumedEvent(pkg *ClientPackage, quantity int) *PackageConsumedEvent {
	return &PackageConsumedEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(EventTypePackageConsumed, AggregateTypeClientPackage, pkg.ID, pkg.TenantID),
		Quantity:          quantity,
		AvailableQuantity: pkg.AvailableQuantity,
	}
}

// PackageConsumptionReversedEvent is published when a cancellation
// returns credits to the package
type PackageConsumptionReversedEvent struct {
	shared.BaseDomainEvent
	Quantity          int `json:"quantity"`
	AvailableQuantity int `json:"available_quantity"`
}

// NewPackageConsumptionReversedEvent creates a new PackageConsumptionReversedEvent
func NewPackageConsumptionReversedEvent(pkg *ClientPackage, quantity int) *PackageConsumptionReversedEvent {
	return &PackageConsumptionReversedEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(EventTypePackageConsumptionReversed, AggregateTypeClientPackage, pkg.ID, pkg.TenantID),
		Quantity:          quantity,
		AvailableQuantity: pkg.AvailableQuantity,
	}
}

// PackageDeactivatedEvent is published when a package is taken out of circulation
type PackageDeactivatedEvent struct {
	shared.BaseDomainEvent
	ClientID uuid.UUID `json:"client_id"`
}

// NewPackageDeactivatedEvent creates a new PackageDeactivatedEvent
func NewPackageDeactivatedEvent(pkg *ClientPackage) *PackageDeactivatedEvent {
	return &PackageDeactivatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePackageDeactivated, AggregateTypeClientPackage, pkg.ID, pkg.TenantID),
		ClientID:        pkg.ClientID,
	}
}
