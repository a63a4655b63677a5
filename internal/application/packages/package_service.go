package packages

import (
	"context"

	"github.com/glowdesk/backend/internal/domain/packages"
	"github.com/google/uuid"
)

// PackageService exposes read access to the package ledger. Packages
// are created, consumed, and reversed exclusively through sales, so
// this service carries no mutating operations.
type PackageService struct {
	packageRepo packages.ClientPackageRepository
}

// NewPackageService creates a new PackageService
func NewPackageService(packageRepo packages.ClientPackageRepository) *PackageService {
	return &PackageService{
		packageRepo: packageRepo,
	}
}

// GetByID retrieves a package with its current balance
func (s *PackageService) GetByID(ctx context.Context, tenantID, packageID uuid.UUID) (*PackageResponse, error) {
	pkg, err := s.packageRepo.FindByID(ctx, tenantID, packageID)
	if err != nil {
		return nil, err
	}
	response := ToPackageResponse(pkg)
	return &response, nil
}

// GetStatement retrieves a package together with its full consumption
// history, reversed entries included.
func (s *PackageService) GetStatement(ctx context.Context, tenantID, packageID uuid.UUID) (*PackageStatementResponse, error) {
	pkg, err := s.packageRepo.FindByID(ctx, tenantID, packageID)
	if err != nil {
		return nil, err
	}

	consumptions, err := s.packageRepo.FindConsumptionsByPackageID(ctx, tenantID, packageID)
	if err != nil {
		return nil, err
	}

	return &PackageStatementResponse{
		Package:      ToPackageResponse(pkg),
		Consumptions: ToConsumptionResponses(consumptions),
	}, nil
}

// List retrieves packages with filtering and pagination
func (s *PackageService) List(ctx context.Context, tenantID uuid.UUID, filter PackageListFilter) ([]PackageResponse, int64, error) {
	domainFilter := packages.NewPackageFilter()
	if filter.ClientID != nil {
		domainFilter = domainFilter.WithClientID(*filter.ClientID)
	}
	if filter.ServiceID != nil {
		domainFilter = domainFilter.WithServiceID(*filter.ServiceID)
	}
	if filter.Active != nil {
		domainFilter = domainFilter.WithActive(*filter.Active)
	}
	if filter.Page > 0 || filter.PageSize > 0 {
		domainFilter = domainFilter.WithPagination(filter.Page, filter.PageSize)
	}

	pkgs, total, err := s.packageRepo.FindAll(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToPackageResponses(pkgs), total, nil
}

// ListByClient retrieves all packages of one client, consumable first
func (s *PackageService) ListByClient(ctx context.Context, tenantID, clientID uuid.UUID) ([]PackageResponse, error) {
	pkgs, err := s.packageRepo.FindByClientID(ctx, tenantID, clientID)
	if err != nil {
		return nil, err
	}
	return ToPackageResponses(pkgs), nil
}
