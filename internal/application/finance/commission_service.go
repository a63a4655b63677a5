package finance

import (
	"context"

	"github.com/glowdesk/backend/internal/domain/finance"
	"github.com/glowdesk/backend/internal/domain/identity"
	"github.com/google/uuid"
)

// CommissionService exposes the commission ledger for payroll review.
// Entries are generated and reversed by sale confirmation and
// cancellation; this service only reads.
type CommissionService struct {
	commissionRepo finance.CommissionRepository
}

// NewCommissionService creates a new CommissionService
func NewCommissionService(commissionRepo finance.CommissionRepository) *CommissionService {
	return &CommissionService{
		commissionRepo: commissionRepo,
	}
}

// List retrieves commissions with filtering. Attendants only ever see
// their own entries; the attendant_id filter is admin-only and is
// overridden for everyone else.
func (s *CommissionService) List(ctx context.Context, principal identity.Principal, filter CommissionListFilter) ([]CommissionResponse, int64, error) {
	domainFilter := finance.NewCommissionFilter()

	if principal.IsAdmin() {
		if filter.AttendantID != nil {
			domainFilter = domainFilter.WithAttendant(*filter.AttendantID)
		}
	} else {
		domainFilter = domainFilter.WithAttendant(principal.UserID)
	}

	if filter.Status != "" {
		domainFilter = domainFilter.WithStatus(finance.CommissionStatus(filter.Status))
	}
	if filter.DateFrom != nil && filter.DateTo != nil {
		domainFilter = domainFilter.WithDateRange(*filter.DateFrom, *filter.DateTo)
	}
	if filter.Page > 0 || filter.PageSize > 0 {
		domainFilter = domainFilter.WithPagination(filter.Page, filter.PageSize)
	}

	commissions, total, err := s.commissionRepo.FindAll(ctx, principal.TenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToCommissionResponses(commissions), total, nil
}

// ListBySale returns the commissions one sale generated
func (s *CommissionService) ListBySale(ctx context.Context, tenantID, saleID uuid.UUID) ([]CommissionResponse, error) {
	commissions, err := s.commissionRepo.FindBySaleID(ctx, tenantID, saleID)
	if err != nil {
		return nil, err
	}
	return ToCommissionResponses(commissions), nil
}
