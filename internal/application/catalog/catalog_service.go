package catalog

import (
	"context"

	"github.com/glowdesk/backend/internal/domain/catalog"
	"github.com/glowdesk/backend/internal/domain/shared"
	"github.com/glowdesk/backend/internal/domain/shared/valueobject"
	"github.com/glowdesk/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
)

// CatalogService handles the service registry and its price tiers
type CatalogService struct {
	serviceRepo catalog.ServiceRepository
}

// NewCatalogService creates a new CatalogService
func NewCatalogService(serviceRepo catalog.ServiceRepository) *CatalogService {
	return &CatalogService{
		serviceRepo: serviceRepo,
	}
}

// Create registers a new service with optional price tiers
func (s *CatalogService) Create(ctx context.Context, tenantID uuid.UUID, req CreateServiceRequest) (*ServiceResponse, error) {
	exists, err := s.serviceRepo.ExistsByName(ctx, tenantID, req.Name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "A service with this name already exists")
	}

	service, err := catalog.NewService(tenantID, req.Name, valueobject.NewMoneyUSD(req.BasePrice), req.CommissionRate)
	if err != nil {
		return nil, err
	}

	if req.Description != "" {
		service.SetDescription(req.Description)
	}
	if req.PricingMode != "" {
		if err := service.SetPricingMode(catalog.PricingMode(req.PricingMode)); err != nil {
			return nil, err
		}
	}

	if len(req.Tiers) > 0 {
		tiers, err := buildTiers(service.ID, req.Tiers)
		if err != nil {
			return nil, err
		}
		if err := service.ReplaceTiers(tiers); err != nil {
			return nil, err
		}
	}

	if err := s.serviceRepo.Create(ctx, service); err != nil {
		return nil, err
	}

	response := ToServiceResponse(service)
	return &response, nil
}

// GetByID retrieves a service with its tiers
func (s *CatalogService) GetByID(ctx context.Context, tenantID, serviceID uuid.UUID) (*ServiceResponse, error) {
	service, err := s.serviceRepo.FindByID(ctx, tenantID, serviceID)
	if err != nil {
		return nil, err
	}
	response := ToServiceResponse(service)
	return &response, nil
}

// List retrieves services with filtering and pagination
func (s *CatalogService) List(ctx context.Context, tenantID uuid.UUID, filter ServiceListFilter) ([]ServiceResponse, int64, error) {
	domainFilter := catalog.NewServiceFilter()
	if filter.Search != "" {
		domainFilter = domainFilter.WithKeyword(filter.Search)
	}
	if filter.Status != "" {
		domainFilter = domainFilter.WithStatus(catalog.ServiceStatus(filter.Status))
	}
	if filter.Page > 0 || filter.PageSize > 0 {
		domainFilter = domainFilter.WithPagination(filter.Page, filter.PageSize)
	}

	services, total, err := s.serviceRepo.FindAll(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToServiceResponses(services), total, nil
}

// Update changes a service's catalog data
func (s *CatalogService) Update(ctx context.Context, tenantID, serviceID uuid.UUID, req UpdateServiceRequest) (*ServiceResponse, error) {
	service, err := s.serviceRepo.FindByID(ctx, tenantID, serviceID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil && *req.Name != service.Name {
		exists, err := s.serviceRepo.ExistsByName(ctx, tenantID, *req.Name)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, shared.NewDomainError("ALREADY_EXISTS", "A service with this name already exists")
		}
		if err := service.SetName(*req.Name); err != nil {
			return nil, err
		}
	}
	if req.Description != nil {
		service.SetDescription(*req.Description)
	}
	if req.BasePrice != nil {
		if err := service.SetBasePrice(valueobject.NewMoneyUSD(*req.BasePrice)); err != nil {
			return nil, err
		}
	}
	if req.CommissionRate != nil {
		if err := service.SetCommissionRate(*req.CommissionRate); err != nil {
			return nil, err
		}
	}
	if req.PricingMode != nil {
		if err := service.SetPricingMode(catalog.PricingMode(*req.PricingMode)); err != nil {
			return nil, err
		}
	}

	if err := s.serviceRepo.Update(ctx, service); err != nil {
		return nil, err
	}

	response := ToServiceResponse(service)
	return &response, nil
}

// ReplaceTiers swaps the full tier table of a service. Contiguity is
// validated by the aggregate; an empty set clears the tiers, which
// turns later quotes into misconfiguration warnings.
func (s *CatalogService) ReplaceTiers(ctx context.Context, tenantID, serviceID uuid.UUID, req ReplaceTiersRequest) (*ServiceResponse, error) {
	service, err := s.serviceRepo.FindByID(ctx, tenantID, serviceID)
	if err != nil {
		return nil, err
	}

	tiers, err := buildTiers(service.ID, req.Tiers)
	if err != nil {
		return nil, err
	}
	if err := service.ReplaceTiers(tiers); err != nil {
		return nil, err
	}

	if err := s.serviceRepo.Update(ctx, service); err != nil {
		return nil, err
	}

	response := ToServiceResponse(service)
	return &response, nil
}

// PreviewPrice quotes a quantity without creating a sale, surfacing
// tier misconfiguration before the front desk finds it mid-checkout.
func (s *CatalogService) PreviewPrice(ctx context.Context, tenantID, serviceID uuid.UUID, query PricePreviewQuery) (*PricePreviewResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "catalog", "preview_price")
	defer span.End()

	saleType := catalog.SaleTypeCommon
	if query.SaleType != "" {
		saleType = catalog.SaleType(query.SaleType)
	}

	telemetry.SetAttributes(span,
		telemetry.SpanAttrServiceID, serviceID.String(),
		telemetry.SpanAttrSaleType, saleType.String(),
		telemetry.SpanAttrQuantity, query.Quantity,
	)

	var response *PricePreviewResponse
	var err error
	telemetry.WithProfilingLabels(ctx, telemetry.SaleOperationLabels(telemetry.OperationPriceQuote, saleType.String()), func(c context.Context) {
		var service *catalog.Service
		service, err = s.serviceRepo.FindByID(c, tenantID, serviceID)
		if err != nil {
			return
		}

		quote := service.Quote(saleType, query.Quantity)

		response = &PricePreviewResponse{
			ServiceID:     service.ID,
			SaleType:      saleType.String(),
			Quantity:      query.Quantity,
			Amount:        quote.Amount.Amount(),
			Currency:      quote.Amount.Currency(),
			Misconfigured: quote.Misconfigured,
		}
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if response.Misconfigured {
		telemetry.AddEvent(span, "tier_misconfigured",
			"service_id", serviceID.String(),
			"quantity", query.Quantity,
		)
	}

	return response, nil
}

// Deactivate retires a service from the catalog. Existing sales and
// packages keep referencing it.
func (s *CatalogService) Deactivate(ctx context.Context, tenantID, serviceID uuid.UUID) error {
	service, err := s.serviceRepo.FindByID(ctx, tenantID, serviceID)
	if err != nil {
		return err
	}

	if err := service.Deactivate(); err != nil {
		return err
	}

	return s.serviceRepo.Update(ctx, service)
}

// Reactivate restores a deactivated service
func (s *CatalogService) Reactivate(ctx context.Context, tenantID, serviceID uuid.UUID) error {
	service, err := s.serviceRepo.FindByID(ctx, tenantID, serviceID)
	if err != nil {
		return err
	}

	if err := service.Reactivate(); err != nil {
		return err
	}

	return s.serviceRepo.Update(ctx, service)
}

// buildTiers converts tier inputs into domain tiers bound to the service
func buildTiers(serviceID uuid.UUID, inputs []PriceTierInput) ([]catalog.PriceTier, error) {
	tiers := make([]catalog.PriceTier, 0, len(inputs))
	for _, input := range inputs {
		tier, err := catalog.NewPriceTier(
			serviceID,
			catalog.SaleType(input.SaleType),
			input.MinQuantity,
			input.MaxQuantity,
			valueobject.NewMoneyUSD(input.UnitPrice),
		)
		if err != nil {
			return nil, err
		}
		tiers = append(tiers, *tier)
	}
	return tiers, nil
}
