package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/glowdesk/backend/internal/domain/finance"
	"github.com/glowdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCommissionRepository implements CommissionRepository using GORM
type GormCommissionRepository struct {
	db *gorm.DB
}

// NewGormCommissionRepository creates a new GormCommissionRepository
func NewGormCommissionRepository(db *gorm.DB) *GormCommissionRepository {
	return &GormCommissionRepository{db: db}
}

// CreateBatch persists the commissions generated by one confirmation.
func (r *GormCommissionRepository) CreateBatch(ctx context.Context, commissions []*finance.Commission) error {
	if len(commissions) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(commissions).Error
}

// Update persists changes to an existing commission.
func (r *GormCommissionRepository) Update(ctx context.Context, commission *finance.Commission) error {
	return r.db.WithContext(ctx).Save(commission).Error
}

// FindByID finds a commission by ID within a tenant.
func (r *GormCommissionRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*finance.Commission, error) {
	var commission finance.Commission
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&commission).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &commission, nil
}

// FindBySaleID returns all commissions generated by a sale.
func (r *GormCommissionRepository) FindBySaleID(ctx context.Context, tenantID, saleID uuid.UUID) ([]*finance.Commission, error) {
	var result []*finance.Commission
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND sale_id = ?", tenantID, saleID).
		Order("created_at ASC").
		Find(&result).Error; err != nil {
		return nil, err
	}
	return result, nil
}

// ExistsForSale reports whether the sale already generated commissions.
func (r *GormCommissionRepository) ExistsForSale(ctx context.Context, tenantID, saleID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&finance.Commission{}).
		Where("tenant_id = ? AND sale_id = ?", tenantID, saleID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ReverseBySaleID flips all active commissions of a sale to reversed
// and returns how many were flipped. Zero means none were active.
func (r *GormCommissionRepository) ReverseBySaleID(ctx context.Context, tenantID, saleID uuid.UUID) (int, error) {
	now := time.Now()
	result := r.db.WithContext(ctx).
		Model(&finance.Commission{}).
		Where("tenant_id = ? AND sale_id = ? AND status = ?", tenantID, saleID, finance.CommissionStatusActive).
		Updates(map[string]interface{}{
			"status":      finance.CommissionStatusReversed,
			"reversed_at": now,
			"updated_at":  now,
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return int(result.RowsAffected), nil
}

// FindAll returns commissions matching the filter plus the unpaginated
// count.
func (r *GormCommissionRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter finance.CommissionFilter) ([]*finance.Commission, int64, error) {
	var total int64
	countQuery := r.applyFilter(
		r.db.WithContext(ctx).Model(&finance.Commission{}).Where("tenant_id = ?", tenantID),
		filter,
	)
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var result []*finance.Commission
	findQuery := r.applyFilter(
		r.db.WithContext(ctx).Model(&finance.Commission{}).Where("tenant_id = ?", tenantID),
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

func (r *GormCommissionRepository) applyFilter(query *gorm.DB, filter finance.CommissionFilter) *gorm.DB {
	if filter.AttendantID != nil {
		query = query.Where("attendant_id = ?", *filter.AttendantID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.DateFrom != nil {
		query = query.Where("reference_date >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query = query.Where("reference_date <= ?", *filter.DateTo)
	}
	return query
}

func (r *GormCommissionRepository) orderClause(filter finance.CommissionFilter) string {
	column := "reference_date"
	switch filter.SortBy {
	case "reference_date", "amount", "created_at":
		column = filter.SortBy
	}
	direction := "DESC"
	if strings.EqualFold(filter.SortOrder, "asc") {
		direction = "ASC"
	}
	return column + " " + direction
}

// Ensure GormCommissionRepository implements CommissionRepository
var _ finance.CommissionRepository = (*GormCommissionRepository)(nil)
