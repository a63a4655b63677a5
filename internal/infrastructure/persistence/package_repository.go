package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/glowdesk/backend/internal/domain/packages"
	"github.com/glowdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormClientPackageRepository implements ClientPackageRepository using
// GORM. Consume and ReverseForSale are the only writers of the balance
// columns; both run as transactions so the counters and the consumption
// ledger never diverge.
type GormClientPackageRepository struct {
	db *gorm.DB
}

// NewGormClientPackageRepository creates a new GormClientPackageRepository
func NewGormClientPackageRepository(db *gorm.DB) *GormClientPackageRepository {
	return &GormClientPackageRepository{db: db}
}

// Create persists a new package.
func (r *GormClientPackageRepository) Create(ctx context.Context, pkg *packages.ClientPackage) error {
	return r.db.WithContext(ctx).Create(pkg).Error
}

// Update persists changes to a package's non-balance fields.
func (r *GormClientPackageRepository) Update(ctx context.Context, pkg *packages.ClientPackage) error {
	return r.db.WithContext(ctx).Save(pkg).Error
}

// FindByID finds a package by ID within the tenant.
func (r *GormClientPackageRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*packages.ClientPackage, error) {
	var pkg packages.ClientPackage
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&pkg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &pkg, nil
}

// FindBySaleID finds the package originated by a package_sale.
func (r *GormClientPackageRepository) FindBySaleID(ctx context.Context, tenantID, saleID uuid.UUID) (*packages.ClientPackage, error) {
	var pkg packages.ClientPackage
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND sale_id = ?", tenantID, saleID).
		First(&pkg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &pkg, nil
}

// FindByClientID returns all packages of one client, newest first.
func (r *GormClientPackageRepository) FindByClientID(ctx context.Context, tenantID, clientID uuid.UUID) ([]*packages.ClientPackage, error) {
	var result []*packages.ClientPackage
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND client_id = ?", tenantID, clientID).
		Order("created_at DESC").
		Find(&result).Error; err != nil {
		return nil, err
	}
	return result, nil
}

// FindAll returns packages for the tenant with pagination.
func (r *GormClientPackageRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter packages.PackageFilter) ([]*packages.ClientPackage, int64, error) {
	var total int64
	countQuery := r.applyFilter(
		r.db.WithContext(ctx).Model(&packages.ClientPackage{}).Where("tenant_id = ?", tenantID),
		filter,
	)
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var result []*packages.ClientPackage
	findQuery := r.applyFilter(
		r.db.WithContext(ctx).Model(&packages.ClientPackage{}).Where("tenant_id = ?", tenantID),
		filter,
	)
	err := findQuery.
		Order(r.orderClause(filter)).
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&result).Error
	if err != nil {
		return nil, 0, err
	}
	return result, total, nil
}

// Consume atomically draws quantity credits and records the ledger
// entry. The balance check and decrement are one conditional UPDATE,
// so two concurrent draws can never both spend the same credits: the
// row only changes when it is active, unexpired, and holds enough
// balance at the instant the statement runs.
func (r *GormClientPackageRepository) Consume(ctx context.Context, tenantID, packageID, saleID uuid.UUID, quantity int) error {
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Consumption quantity must be positive")
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		result := tx.Model(&packages.ClientPackage{}).
			Where("tenant_id = ? AND id = ?", tenantID, packageID).
			Where("is_active = ?", true).
			Where("expires_at IS NULL OR expires_at > ?", now).
			Where("available_quantity >= ?", quantity).
			Updates(map[string]interface{}{
				"available_quantity": gorm.Expr("available_quantity - ?", quantity),
				"consumed_quantity":  gorm.Expr("consumed_quantity + ?", quantity),
				"updated_at":         now,
			})
		if result.Error != nil {
			return result.Error
		}

		if result.RowsAffected == 0 {
			// The guard failed; re-read to tell the caller why.
			var pkg packages.ClientPackage
			err := tx.Where("tenant_id = ? AND id = ?", tenantID, packageID).First(&pkg).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.ErrNotFound
			}
			if err != nil {
				return err
			}
			if !pkg.IsConsumable() {
				return shared.ErrNotFound
			}
			return shared.ErrInsufficientBalance
		}

		consumption, err := packages.NewConsumption(tenantID, packageID, saleID, quantity)
		if err != nil {
			return err
		}
		return tx.Create(consumption).Error
	})
}

// ReverseForSale marks every unreversed consumption of the sale
// reversed and restores the package counters by the recorded
// quantities. Returns the total restored quantity; zero means nothing
// was left to reverse, so retries are harmless.
func (r *GormClientPackageRepository) ReverseForSale(ctx context.Context, tenantID, saleID uuid.UUID) (int, error) {
	restored := 0
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var consumptions []packages.Consumption
		if err := tx.
			Where("tenant_id = ? AND sale_id = ? AND reversed_at IS NULL", tenantID, saleID).
			Find(&consumptions).Error; err != nil {
			return err
		}
		if len(consumptions) == 0 {
			return nil
		}

		now := time.Now()
		if err := tx.Model(&packages.Consumption{}).
			Where("tenant_id = ? AND sale_id = ? AND reversed_at IS NULL", tenantID, saleID).
			Update("reversed_at", now).Error; err != nil {
			return err
		}

		// Restoration applies even to packages that have since been
		// deactivated or expired; the ledger rows say what was drawn.
		perPackage := make(map[uuid.UUID]int)
		for _, c := range consumptions {
			perPackage[c.PackageID] += c.Quantity
		}
		for packageID, quantity := range perPackage {
			result := tx.Model(&packages.ClientPackage{}).
				Where("tenant_id = ? AND id = ?", tenantID, packageID).
				Updates(map[string]interface{}{
					"available_quantity": gorm.Expr("available_quantity + ?", quantity),
					"consumed_quantity":  gorm.Expr("consumed_quantity - ?", quantity),
					"updated_at":         now,
				})
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return shared.ErrNotFound
			}
			restored += quantity
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return restored, nil
}

// FindConsumptionsBySaleID returns the ledger entries of one sale.
func (r *GormClientPackageRepository) FindConsumptionsBySaleID(ctx context.Context, tenantID, saleID uuid.UUID) ([]*packages.Consumption, error) {
	var result []*packages.Consumption
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND sale_id = ?", tenantID, saleID).
		Order("created_at ASC").
		Find(&result).Error; err != nil {
		return nil, err
	}
	return result, nil
}

// FindConsumptionsByPackageID returns the ledger entries of one package.
func (r *GormClientPackageRepository) FindConsumptionsByPackageID(ctx context.Context, tenantID, packageID uuid.UUID) ([]*packages.Consumption, error) {
	var result []*packages.Consumption
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND package_id = ?", tenantID, packageID).
		Order("created_at ASC").
		Find(&result).Error; err != nil {
		return nil, err
	}
	return result, nil
}

func (r *GormClientPackageRepository) applyFilter(query *gorm.DB, filter packages.PackageFilter) *gorm.DB {
	if filter.ClientID != nil {
		query = query.Where("client_id = ?", *filter.ClientID)
	}
	if filter.ServiceID != nil {
		query = query.Where("service_id = ?", *filter.ServiceID)
	}
	if filter.Active != nil {
		query = query.Where("is_active = ?", *filter.Active)
	}
	return query
}

func (r *GormClientPackageRepository) orderClause(filter packages.PackageFilter) string {
	column := "created_at"
	switch filter.SortBy {
	case "created_at", "expires_at", "available_quantity":
		column = filter.SortBy
	}
	direction := "DESC"
	if strings.EqualFold(filter.SortOrder, "asc") {
		direction = "ASC"
	}
	return column + " " + direction
}

// Ensure GormClientPackageRepository implements ClientPackageRepository
var _ packages.ClientPackageRepository = (*GormClientPackageRepository)(nil)
