package persistence

import (
	"context"

	appsales "github.com/glowdesk/backend/internal/application/sales"
	"github.com/glowdesk/backend/internal/domain/catalog"
	"github.com/glowdesk/backend/internal/domain/crm"
	"github.com/glowdesk/backend/internal/domain/finance"
	"github.com/glowdesk/backend/internal/domain/packages"
	"github.com/glowdesk/backend/internal/domain/sales"
	"gorm.io/gorm"
)

// GormTransactionScope implements TransactionScope using GORM transactions.
// A sale and its ledger effects (package creation or consumption,
// commission entries) commit or roll back as one unit.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
// If the function succeeds, the transaction is committed.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appsales.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := &gormTransactionalRepositories{tx: tx}
		return fn(repos)
	})
}

// gormTransactionalRepositories provides access to all repositories within a transaction.
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

// SaleRepo returns the sale repository scoped to the current transaction.
func (r *gormTransactionalRepositories) SaleRepo() sales.SaleRepository {
	return NewGormSaleRepository(r.tx)
}

// PackageRepo returns the package repository scoped to the current transaction.
func (r *gormTransactionalRepositories) PackageRepo() packages.ClientPackageRepository {
	return NewGormClientPackageRepository(r.tx)
}

// CommissionRepo returns the commission repository scoped to the current transaction.
func (r *gormTransactionalRepositories) CommissionRepo() finance.CommissionRepository {
	return NewGormCommissionRepository(r.tx)
}

// ServiceRepo returns the service repository scoped to the current transaction.
func (r *gormTransactionalRepositories) ServiceRepo() catalog.ServiceRepository {
	return NewGormServiceRepository(r.tx)
}

// ClientRepo returns the client repository scoped to the current transaction.
func (r *gormTransactionalRepositories) ClientRepo() crm.ClientRepository {
	return NewGormClientRepository(r.tx)
}

// Ensure GormTransactionScope implements TransactionScope
var _ appsales.TransactionScope = (*GormTransactionScope)(nil)

// Ensure gormTransactionalRepositories implements TransactionalRepositories
var _ appsales.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
