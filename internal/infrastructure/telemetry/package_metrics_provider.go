// Package telemetry provides OpenTelemetry integration for metrics collection.
package telemetry

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormPackageMetricsProvider implements PackageMetricsProvider by
// aggregating the client_packages table directly.
type GormPackageMetricsProvider struct {
	db *gorm.DB
}

// NewGormPackageMetricsProvider creates a new GormPackageMetricsProvider.
func NewGormPackageMetricsProvider(db *gorm.DB) *GormPackageMetricsProvider {
	return &GormPackageMetricsProvider{db: db}
}

// OutstandingCredits returns the total unconsumed credit across a
// tenant's active, unexpired packages.
func (p *GormPackageMetricsProvider) OutstandingCredits(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var total int64
	err := p.db.WithContext(ctx).
		Table("client_packages").
		Select("COALESCE(SUM(available_quantity), 0)").
		Where("tenant_id = ? AND is_active = ?", tenantID, true).
		Where("expires_at IS NULL OR expires_at > ?", time.Now()).
		Scan(&total).Error

	return total, err
}

// ExpiringSoonCount returns how many active packages with remaining
// balance expire within the window.
func (p *GormPackageMetricsProvider) ExpiringSoonCount(ctx context.Context, tenantID uuid.UUID, within time.Duration) (int64, error) {
	now := time.Now()

	var count int64
	err := p.db.WithContext(ctx).
		Table("client_packages").
		Where("tenant_id = ? AND is_active = ?", tenantID, true).
		Where("available_quantity > 0").
		Where("expires_at IS NOT NULL AND expires_at > ? AND expires_at <= ?", now, now.Add(within)).
		Count(&count).Error

	return count, err
}

// GormTenantProvider implements TenantProvider. There is no tenant
// registry table; the set of live tenants is derived from the tenants
// that have at least one active staff account.
type GormTenantProvider struct {
	db *gorm.DB
}

// NewGormTenantProvider creates a new GormTenantProvider.
func NewGormTenantProvider(db *gorm.DB) *GormTenantProvider {
	return &GormTenantProvider{db: db}
}

// ActiveTenantIDs returns the distinct tenant IDs with active users.
func (p *GormTenantProvider) ActiveTenantIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := p.db.WithContext(ctx).
		Table("users").
		Distinct("tenant_id").
		Where("status = ?", "active").
		Find(&ids).Error

	return ids, err
}
