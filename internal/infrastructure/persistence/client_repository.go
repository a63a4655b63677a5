package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/glowdesk/backend/internal/domain/crm"
	"github.com/glowdesk/backend/internal/domain/shared"
	"github.com/glowdesk/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormClientRepository implements ClientRepository using GORM
type GormClientRepository struct {
	db *gorm.DB
}

// NewGormClientRepository creates a new GormClientRepository
func NewGormClientRepository(db *gorm.DB) *GormClientRepository {
	return &GormClientRepository{db: db}
}

// Create persists a new client
func (r *GormClientRepository) Create(ctx context.Context, client *crm.Client) error {
	model := models.ClientModelFromDomain(client)
	return r.db.WithContext(ctx).Create(model).Error
}

// Update persists an existing client
func (r *GormClientRepository) Update(ctx context.Context, client *crm.Client) error {
	model := models.ClientModelFromDomain(client)
	return r.db.WithContext(ctx).Save(model).Error
}

// FindByID finds a client by ID within the tenant
func (r *GormClientRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*crm.Client, error) {
	var model models.ClientModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByTaxID finds a client by tax ID within the tenant
func (r *GormClientRepository) FindByTaxID(ctx context.Context, tenantID uuid.UUID, taxID string) (*crm.Client, error) {
	if taxID == "" {
		return nil, shared.NewDomainError("INVALID_TAX_ID", "Tax ID cannot be empty")
	}
	var model models.ClientModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND tax_id = ?", tenantID, strings.TrimSpace(taxID)).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll returns clients for the tenant with pagination.
// Keyword matching runs against the normalized search name, phone, and
// email; search_name and email are stored lowercase so plain LIKE works.
func (r *GormClientRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter crm.ClientFilter) ([]*crm.Client, int64, error) {
	var total int64
	countQuery := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.ClientModel{}).Where("tenant_id = ?", tenantID),
		filter,
	)
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var clientModels []models.ClientModel
	findQuery := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.ClientModel{}).Where("tenant_id = ?", tenantID),
		filter,
	)
	err := findQuery.
		Order(r.orderClause(filter)).
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&clientModels).Error
	if err != nil {
		return nil, 0, err
	}

	clients := make([]*crm.Client, len(clientModels))
	for i, model := range clientModels {
		clients[i] = model.ToDomain()
	}
	return clients, total, nil
}

// ExistsByTaxID checks if a tax ID is already registered within the tenant
func (r *GormClientRepository) ExistsByTaxID(ctx context.Context, tenantID uuid.UUID, taxID string) (bool, error) {
	if taxID == "" {
		return false, nil
	}
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.ClientModel{}).
		Where("tenant_id = ? AND tax_id = ?", tenantID, strings.TrimSpace(taxID)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormClientRepository) applyFilter(query *gorm.DB, filter crm.ClientFilter) *gorm.DB {
	if filter.Keyword != "" {
		pattern := "%" + crm.NormalizeName(filter.Keyword) + "%"
		query = query.Where("search_name LIKE ? OR phone LIKE ? OR email LIKE ?",
			pattern, pattern, pattern)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	return query
}

func (r *GormClientRepository) orderClause(filter crm.ClientFilter) string {
	column := "created_at"
	switch filter.SortBy {
	case "name", "created_at", "birth_date":
		column = filter.SortBy
	}
	direction := "DESC"
	if strings.EqualFold(filter.SortOrder, "asc") {
		direction = "ASC"
	}
	return column + " " + direction
}

// Ensure GormClientRepository implements ClientRepository
var _ crm.ClientRepository = (*GormClientRepository)(nil)
