package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/glowdesk/backend/internal/domain/sales"
	"github.com/glowdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormSaleRepository implements SaleRepository using GORM
type GormSaleRepository struct {
	db *gorm.DB
}

// NewGormSaleRepository creates a new GormSaleRepository
func NewGormSaleRepository(db *gorm.DB) *GormSaleRepository {
	return &GormSaleRepository{db: db}
}

// Create persists a new sale together with its items.
func (r *GormSaleRepository) Create(ctx context.Context, sale *sales.Sale) error {
	return r.db.WithContext(ctx).Create(sale).Error
}

// Update persists changes to a sale. Items are a full replace: rows
// absent from the aggregate are deleted, the rest upserted.
func (r *GormSaleRepository) Update(ctx context.Context, sale *sales.Sale) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Save(sale).Error; err != nil {
			return err
		}

		currentItemIDs := make([]uuid.UUID, len(sale.Items))
		for i, item := range sale.Items {
			currentItemIDs[i] = item.ID
		}

		stray := tx.Where("sale_id = ?", sale.ID)
		if len(currentItemIDs) > 0 {
			stray = stray.Where("id NOT IN ?", currentItemIDs)
		}
		if err := stray.Delete(&sales.SaleItem{}).Error; err != nil {
			return err
		}

		for i := range sale.Items {
			sale.Items[i].SaleID = sale.ID
			if err := tx.Save(&sale.Items[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// FindByID finds a sale by ID within a tenant, items preloaded.
func (r *GormSaleRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*sales.Sale, error) {
	var sale sales.Sale
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&sale).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &sale, nil
}

// FindByNumber finds a sale by its number within a tenant.
func (r *GormSaleRepository) FindByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*sales.Sale, error) {
	var sale sales.Sale
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("tenant_id = ? AND number = ?", tenantID, number).
		First(&sale).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &sale, nil
}

// FindAll returns sales matching the filter plus the unpaginated count.
func (r *GormSaleRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter sales.SaleFilter) ([]*sales.Sale, int64, error) {
	var total int64
	countQuery := r.applyFilter(
		r.db.WithContext(ctx).Model(&sales.Sale{}).Where("tenant_id = ?", tenantID),
		filter,
	)
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var result []*sales.Sale
	findQuery := r.applyFilter(
		r.db.WithContext(ctx).Model(&sales.Sale{}).Where("tenant_id = ?", tenantID),
		filter,
	)
	err := findQuery.
		Preload("Items").
		Order(r.orderClause(filter)).
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&result).Error
	if err != nil {
		return nil, 0, err
	}
	return result, total, nil
}

// ExistsByNumber checks whether a sale number is already taken.
func (r *GormSaleRepository) ExistsByNumber(ctx context.Context, tenantID uuid.UUID, number string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&sales.Sale{}).
		Where("tenant_id = ? AND number = ?", tenantID, number).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GenerateNumber produces the next sale number for the tenant.
// Format: SA-YYYY-NNNNN with the sequence scoped per tenant and year.
func (r *GormSaleRepository) GenerateNumber(ctx context.Context, tenantID uuid.UUID) (string, error) {
	year := time.Now().Year()
	prefix := fmt.Sprintf("SA-%d-", year)

	var lastSale sales.Sale
	err := r.db.WithContext(ctx).
		Model(&sales.Sale{}).
		Where("tenant_id = ? AND number LIKE ?", tenantID, prefix+"%").
		Order("number DESC").
		First(&lastSale).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	var nextNum int64 = 1
	if err == nil && lastSale.Number != "" {
		parts := strings.Split(lastSale.Number, "-")
		if len(parts) == 3 {
			var num int64
			if _, parseErr := fmt.Sscanf(parts[2], "%d", &num); parseErr == nil {
				nextNum = num + 1
			}
		}
	}

	number := fmt.Sprintf("%s%05d", prefix, nextNum)

	// A concurrent creation may have raced us to the same number; walk
	// forward until free.
	exists, err := r.ExistsByNumber(ctx, tenantID, number)
	if err != nil {
		return "", err
	}
	for i := 0; exists && i < 100; i++ {
		nextNum++
		number = fmt.Sprintf("%s%05d", prefix, nextNum)
		exists, err = r.ExistsByNumber(ctx, tenantID, number)
		if err != nil {
			return "", err
		}
	}

	return number, nil
}

func (r *GormSaleRepository) applyFilter(query *gorm.DB, filter sales.SaleFilter) *gorm.DB {
	if filter.Keyword != "" {
		pattern := "%" + filter.Keyword + "%"
		query = query.Where("number ILIKE ? OR client_name ILIKE ?", pattern, pattern)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.ClientID != nil {
		query = query.Where("client_id = ?", *filter.ClientID)
	}
	if filter.AttendantID != nil {
		query = query.Where("attendant_id = ?", *filter.AttendantID)
	}
	if filter.DateFrom != nil {
		query = query.Where("sale_date >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query = query.Where("sale_date <= ?", *filter.DateTo)
	}
	return query
}

func (r *GormSaleRepository) orderClause(filter sales.SaleFilter) string {
	column := "sale_date"
	switch filter.SortBy {
	case "sale_date", "number", "total", "created_at", "status":
		column = filter.SortBy
	}
	direction := "DESC"
	if strings.EqualFold(filter.SortOrder, "asc") {
		direction = "ASC"
	}
	return column + " " + direction
}

// Ensure GormSaleRepository implements SaleRepository
var _ sales.SaleRepository = (*GormSaleRepository)(nil)
