package sales

import (
	"context"

	"github.com/glowdesk/backend/internal/domain/catalog"
	"github.com/glowdesk/backend/internal/domain/crm"
	"github.com/glowdesk/backend/internal/domain/finance"
	"github.com/glowdesk/backend/internal/domain/packages"
	"github.com/glowdesk/backend/internal/domain/sales"
)

// TransactionScope provides transactional access to the repositories a
// sale operation touches. When a function executes within a scope, all
// repository operations join the same database transaction and commit
// or roll back atomically — a sale header is never persisted without
// its ledger effect, and vice versa.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to every repository a sale
// operation needs, all bound to the same transaction.
//
// Aggregate boundary notes:
//   - SaleRepo owns the Sale aggregate including its items; item
//     replacement is persisted through it, never row by row.
//   - PackageRepo owns the package ledger. Consume and ReverseForSale
//     are the only balance mutations and stay conditional updates even
//     inside the transaction.
//   - CommissionRepo is append-and-flip: entries are created on
//     confirmation and reversed on cancellation, never deleted.
//   - ServiceRepo and ClientRepo are read-only collaborators here,
//     used for pricing, commission rates, and client snapshots.
type TransactionalRepositories interface {
	// SaleRepo returns the sale repository scoped to the current transaction
	SaleRepo() sales.SaleRepository
	// PackageRepo returns the package repository scoped to the current transaction
	PackageRepo() packages.ClientPackageRepository
	// CommissionRepo returns the commission repository scoped to the current transaction
	CommissionRepo() finance.CommissionRepository
	// ServiceRepo returns the service repository scoped to the current transaction
	ServiceRepo() catalog.ServiceRepository
	// ClientRepo returns the client repository scoped to the current transaction
	ClientRepo() crm.ClientRepository
}

// NoOpTransactionScope is a transaction scope without real
// transactions, for tests and single-repository wiring.
type NoOpTransactionScope struct {
	saleRepo       sales.SaleRepository
	packageRepo    packages.ClientPackageRepository
	commissionRepo finance.CommissionRepository
	serviceRepo    catalog.ServiceRepository
	clientRepo     crm.ClientRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	saleRepo sales.SaleRepository,
	packageRepo packages.ClientPackageRepository,
	commissionRepo finance.CommissionRepository,
	serviceRepo catalog.ServiceRepository,
	clientRepo crm.ClientRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		saleRepo:       saleRepo,
		packageRepo:    packageRepo,
		commissionRepo: commissionRepo,
		serviceRepo:    serviceRepo,
		clientRepo:     clientRepo,
	}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// SaleRepo returns the sale repository.
func (s *NoOpTransactionScope) SaleRepo() sales.SaleRepository {
	return s.saleRepo
}

// PackageRepo returns the package repository.
func (s *NoOpTransactionScope) PackageRepo() packages.ClientPackageRepository {
	return s.packageRepo
}

// CommissionRepo returns the commission repository.
func (s *NoOpTransactionScope) CommissionRepo() finance.CommissionRepository {
	return s.commissionRepo
}

// ServiceRepo returns the service repository.
func (s *NoOpTransactionScope) ServiceRepo() catalog.ServiceRepository {
	return s.serviceRepo
}

// ClientRepo returns the client repository.
func (s *NoOpTransactionScope) ClientRepo() crm.ClientRepository {
	return s.clientRepo
}

// Ensure NoOpTransactionScope implements both interfaces
var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
