package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/glowdesk/backend/internal/domain/catalog"
	"github.com/glowdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormServiceRepository implements ServiceRepository using GORM
type GormServiceRepository struct {
	db *gorm.DB
}

// NewGormServiceRepository creates a new GormServiceRepository
func NewGormServiceRepository(db *gorm.DB) *GormServiceRepository {
	return &GormServiceRepository{db: db}
}

// Create persists a new service with its price tiers.
func (r *GormServiceRepository) Create(ctx context.Context, service *catalog.Service) error {
	return r.db.WithContext(ctx).Create(service).Error
}

// Update persists a service. The tier collection is synchronized:
// tiers removed from the aggregate are deleted, the rest upserted.
func (r *GormServiceRepository) Update(ctx context.Context, service *catalog.Service) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Tiers").Save(service).Error; err != nil {
			return err
		}

		currentTierIDs := make([]uuid.UUID, len(service.Tiers))
		for i, tier := range service.Tiers {
			currentTierIDs[i] = tier.ID
		}

		stray := tx.Where("service_id = ?", service.ID)
		if len(currentTierIDs) > 0 {
			stray = stray.Where("id NOT IN ?", currentTierIDs)
		}
		if err := stray.Delete(&catalog.PriceTier{}).Error; err != nil {
			return err
		}

		for i := range service.Tiers {
			service.Tiers[i].ServiceID = service.ID
			if err := tx.Save(&service.Tiers[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// FindByID finds a service by ID within the tenant, tiers preloaded.
func (r *GormServiceRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*catalog.Service, error) {
	var service catalog.Service
	if err := r.db.WithContext(ctx).
		Preload("Tiers").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&service).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &service, nil
}

// FindByName finds a service by exact name within the tenant.
func (r *GormServiceRepository) FindByName(ctx context.Context, tenantID uuid.UUID, name string) (*catalog.Service, error) {
	var service catalog.Service
	if err := r.db.WithContext(ctx).
		Preload("Tiers").
		Where("tenant_id = ? AND name = ?", tenantID, name).
		First(&service).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &service, nil
}

// FindAll returns services for the tenant with pagination, tiers
// preloaded. Keyword matching runs against the normalized search name.
func (r *GormServiceRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter catalog.ServiceFilter) ([]*catalog.Service, int64, error) {
	var total int64
	countQuery := r.applyFilter(
		r.db.WithContext(ctx).Model(&catalog.Service{}).Where("tenant_id = ?", tenantID),
		filter,
	)
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var result []*catalog.Service
	findQuery := r.applyFilter(
		r.db.WithContext(ctx).Model(&catalog.Service{}).Where("tenant_id = ?", tenantID),
		filter,
	)
	err := findQuery.
		Preload("Tiers").
		Order(r.orderClause(filter)).
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&result).Error
	if err != nil {
		return nil, 0, err
	}
	return result, total, nil
}

// ExistsByName checks if a service name is taken within the tenant.
func (r *GormServiceRepository) ExistsByName(ctx context.Context, tenantID uuid.UUID, name string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&catalog.Service{}).
		Where("tenant_id = ? AND name = ?", tenantID, name).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormServiceRepository) applyFilter(query *gorm.DB, filter catalog.ServiceFilter) *gorm.DB {
	if filter.Keyword != "" {
		query = query.Where("search_name LIKE ?", "%"+catalog.NormalizeServiceName(filter.Keyword)+"%")
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.PricingMode != nil {
		query = query.Where("pricing_mode = ?", *filter.PricingMode)
	}
	return query
}

func (r *GormServiceRepository) orderClause(filter catalog.ServiceFilter) string {
	column := "name"
	switch filter.SortBy {
	case "name", "base_price", "created_at":
		column = filter.SortBy
	}
	direction := "ASC"
	if strings.EqualFold(filter.SortOrder, "desc") {
		direction = "DESC"
	}
	return column + " " + direction
}

// Ensure GormServiceRepository implements ServiceRepository
var _ catalog.ServiceRepository = (*GormServiceRepository)(nil)
