package sales

import (
	"context"
	"fmt"
	"time"

	"github.com/glowdesk/backend/internal/domain/catalog"
	"github.com/glowdesk/backend/internal/domain/finance"
	"github.com/glowdesk/backend/internal/domain/identity"
	"github.com/glowdesk/backend/internal/domain/packages"
	"github.com/glowdesk/backend/internal/domain/sales"
	"github.com/glowdesk/backend/internal/domain/shared"
	"github.com/glowdesk/backend/internal/domain/shared/valueobject"
	"github.com/glowdesk/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SaleService orchestrates the sale lifecycle: creation with its
// ledger effect, item replacement, confirmation with commission
// generation, and cancellation with full reversal. Every mutation runs
// inside one TransactionScope so a sale and its side effects commit or
// roll back together.
type SaleService struct {
	txScope         TransactionScope
	businessMetrics *telemetry.BusinessMetrics
}

// NewSaleService creates a new SaleService
func NewSaleService(txScope TransactionScope) *SaleService {
	return &SaleService{
		txScope: txScope,
	}
}

// SetBusinessMetrics sets the business metrics collector
func (s *SaleService) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.businessMetrics = bm
}

// Create opens a new sale. A package_sale also creates the client's
// package (sized by the first item, funded by the sale total); a
// package_consumption atomically draws the summed item quantity from
// the referenced package. Either effect failing rolls everything back.
func (s *SaleService) Create(ctx context.Context, principal identity.Principal, req CreateSaleRequest) (*SaleResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "sale", "create")
	defer span.End()

	telemetry.SetAttributes(span,
		telemetry.SpanAttrClientID, req.ClientID.String(),
		telemetry.SpanAttrSaleType, req.Type,
	)

	var (
		response        *SaleResponse
		consumedCredits int64
		err             error
	)
	telemetry.WithProfilingLabels(ctx, telemetry.SaleOperationLabels(telemetry.OperationCreateSale, req.Type), func(c context.Context) {
		err = s.txScope.Execute(c, func(repos TransactionalRepositories) error {
			client, err := repos.ClientRepo().FindByID(c, principal.TenantID, req.ClientID)
			if err != nil {
				return err
			}
			if !client.IsActive() {
				return shared.NewDomainError("VALIDATION_ERROR", "Client is deactivated")
			}

			number, err := repos.SaleRepo().GenerateNumber(c, principal.TenantID)
			if err != nil {
				return err
			}

			saleDate := time.Now()
			if req.SaleDate != nil {
				saleDate = *req.SaleDate
			}

			sale, err := sales.NewSale(
				principal.TenantID,
				number,
				client.ID,
				client.Name,
				principal.UserID,
				saleDate,
				sales.SaleType(req.Type),
				sales.PaymentMethod(req.PaymentMethod),
			)
			if err != nil {
				return err
			}

			if req.ServiceID != nil {
				if err := sale.SetServiceRef(*req.ServiceID); err != nil {
					return err
				}
			}
			if req.PackageID != nil {
				if err := sale.SetPackageRef(*req.PackageID); err != nil {
					return err
				}
			}
			if err := sale.ValidateTypeRequirements(); err != nil {
				return err
			}

			items, warnings, err := s.buildItems(c, repos, principal.TenantID, sale.Type, req.Items)
			if err != nil {
				return err
			}
			for _, item := range items {
				if err := sale.AddItem(item); err != nil {
					return err
				}
			}

			if req.GeneralDiscountType != "" {
				if err := sale.SetGeneralDiscount(sales.DiscountType(req.GeneralDiscountType), req.GeneralDiscountValue); err != nil {
					return err
				}
			}
			if req.Notes != "" {
				sale.SetNotes(req.Notes)
			}

			if err := repos.SaleRepo().Create(c, sale); err != nil {
				return err
			}

			switch sale.Type {
			case sales.SaleTypePackageSale:
				pkg, err := packages.NewClientPackage(
					principal.TenantID,
					client.ID,
					*sale.ServiceID,
					sale.ID,
					sale.FirstItemQuantity(),
					sale.GetTotalMoney(),
					req.PackageExpiresAt,
				)
				if err != nil {
					return err
				}
				if err := repos.PackageRepo().Create(c, pkg); err != nil {
					return err
				}
				telemetry.AddEvent(span, "package_created",
					"package_id", pkg.ID.String(),
					"quantity", pkg.InitialQuantity,
				)
			case sales.SaleTypePackageConsumption:
				pkg, err := repos.PackageRepo().FindByID(c, principal.TenantID, *sale.PackageID)
				if err != nil {
					return err
				}
				if pkg.ClientID != client.ID {
					return shared.NewDomainError("VALIDATION_ERROR", "Package belongs to a different client")
				}
				if err := validateConsumptionItems(pkg, sale.Items); err != nil {
					return err
				}
				if err := repos.PackageRepo().Consume(c, principal.TenantID, pkg.ID, sale.ID, sale.TotalItemQuantity()); err != nil {
					return err
				}
				consumedCredits = int64(sale.TotalItemQuantity())
				telemetry.AddEvent(span, "package_consumed",
					"package_id", pkg.ID.String(),
					"quantity", consumedCredits,
				)
			}

			resp := ToSaleResponse(sale)
			resp.Warnings = warnings
			response = &resp
			return nil
		})
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.SetAttributes(span,
		telemetry.SpanAttrSaleID, response.ID.String(),
		telemetry.SpanAttrSaleNumber, response.Number,
	)

	if consumedCredits > 0 && s.businessMetrics != nil {
		s.businessMetrics.RecordPackageConsumption(ctx, principal.TenantID, consumedCredits)
	}

	return response, nil
}

// GetByID retrieves a sale with its items
func (s *SaleService) GetByID(ctx context.Context, principal identity.Principal, saleID uuid.UUID) (*SaleResponse, error) {
	var response *SaleResponse

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		sale, err := repos.SaleRepo().FindByID(ctx, principal.TenantID, saleID)
		if err != nil {
			return err
		}
		resp := ToSaleResponse(sale)
		response = &resp
		return nil
	})
	if err != nil {
		return nil, err
	}

	return response, nil
}

// List retrieves sales with filtering and pagination
func (s *SaleService) List(ctx context.Context, principal identity.Principal, filter SaleListFilter) ([]SaleListItemResponse, int64, error) {
	domainFilter := sales.NewSaleFilter()
	if filter.Search != "" {
		domainFilter = domainFilter.WithKeyword(filter.Search)
	}
	if filter.Status != "" {
		domainFilter = domainFilter.WithStatus(sales.SaleStatus(filter.Status))
	}
	if filter.Type != "" {
		domainFilter = domainFilter.WithType(sales.SaleType(filter.Type))
	}
	if filter.ClientID != nil {
		domainFilter = domainFilter.WithClient(*filter.ClientID)
	}
	if filter.AttendantID != nil {
		domainFilter = domainFilter.WithAttendant(*filter.AttendantID)
	}
	if filter.DateFrom != nil && filter.DateTo != nil {
		domainFilter = domainFilter.WithDateRange(*filter.DateFrom, *filter.DateTo)
	}
	if filter.Page > 0 || filter.PageSize > 0 {
		domainFilter = domainFilter.WithPagination(filter.Page, filter.PageSize)
	}

	var (
		results []SaleListItemResponse
		total   int64
	)
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		found, count, err := repos.SaleRepo().FindAll(ctx, principal.TenantID, domainFilter)
		if err != nil {
			return err
		}
		results = ToSaleListItemResponses(found)
		total = count
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	return results, total, nil
}

// Update edits an open sale. Only the owning attendant or an admin may
// edit. Items replace the full set; a package_sale's originated
// package is resized in the same transaction and must still be
// unconsumed. Item edits on package_consumption sales are refused:
// the drawn balance is settled and editing it would desync the ledger.
func (s *SaleService) Update(ctx context.Context, principal identity.Principal, saleID uuid.UUID, req UpdateSaleRequest) (*SaleResponse, error) {
	var response *SaleResponse

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		sale, err := repos.SaleRepo().FindByID(ctx, principal.TenantID, saleID)
		if err != nil {
			return err
		}

		if !principal.CanManageRecordOf(sale.AttendantID) {
			return shared.ErrForbidden
		}
		if !sale.CanModify() {
			return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot edit a %s sale", sale.Status))
		}

		if req.SaleDate != nil {
			if err := sale.SetSaleDate(*req.SaleDate); err != nil {
				return err
			}
		}
		if req.PaymentMethod != nil {
			if err := sale.SetPaymentMethod(sales.PaymentMethod(*req.PaymentMethod)); err != nil {
				return err
			}
		}

		var warnings []string
		if req.Items != nil {
			if sale.Type == sales.SaleTypePackageConsumption {
				return shared.NewDomainError("INVALID_STATE", "Items of a consumption sale cannot be edited; cancel and recreate the sale instead")
			}

			items, itemWarnings, err := s.buildItems(ctx, repos, principal.TenantID, sale.Type, req.Items)
			if err != nil {
				return err
			}
			if err := sale.ReplaceItems(items); err != nil {
				return err
			}
			warnings = itemWarnings
		}

		if req.GeneralDiscountType != nil {
			value := decimal.Zero
			if req.GeneralDiscountValue != nil {
				value = *req.GeneralDiscountValue
			}
			if err := sale.SetGeneralDiscount(sales.DiscountType(*req.GeneralDiscountType), value); err != nil {
				return err
			}
		}
		if req.Notes != nil {
			sale.SetNotes(*req.Notes)
		}

		// A package_sale funds its package with the sale total, so any
		// edit that moved the numbers must resize the package while it
		// is still untouched.
		if sale.Type == sales.SaleTypePackageSale && (req.Items != nil || req.GeneralDiscountType != nil) {
			pkg, err := repos.PackageRepo().FindBySaleID(ctx, principal.TenantID, sale.ID)
			if err != nil {
				return err
			}
			if !pkg.IsUnconsumed() {
				return shared.NewDomainError("INVALID_STATE", "Cannot edit a package sale after the package has been consumed")
			}
			if err := pkg.Resize(sale.FirstItemQuantity(), sale.GetTotalMoney()); err != nil {
				return err
			}
			if err := repos.PackageRepo().Update(ctx, pkg); err != nil {
				return err
			}
		}

		if err := repos.SaleRepo().Update(ctx, sale); err != nil {
			return err
		}

		resp := ToSaleResponse(sale)
		resp.Warnings = warnings
		response = &resp
		return nil
	})
	if err != nil {
		return nil, err
	}

	return response, nil
}

// Confirm freezes an open sale and generates one commission per
// service item, rated by each service's commission rate at this
// moment, referenced to the sale date. Ad-hoc items earn nothing.
func (s *SaleService) Confirm(ctx context.Context, principal identity.Principal, saleID uuid.UUID) (*SaleResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "sale", "confirm")
	defer span.End()

	telemetry.SetAttribute(span, telemetry.SpanAttrSaleID, saleID)

	var (
		response  *SaleResponse
		confirmed []*finance.Commission
		err       error
	)
	telemetry.WithProfilingLabels(ctx, telemetry.SaleOperationLabels(telemetry.OperationConfirmSale, ""), func(c context.Context) {
		err = s.txScope.Execute(c, func(repos TransactionalRepositories) error {
			sale, err := repos.SaleRepo().FindByID(c, principal.TenantID, saleID)
			if err != nil {
				return err
			}

			if err := sale.Confirm(); err != nil {
				return err
			}

			generated, err := repos.CommissionRepo().ExistsForSale(c, principal.TenantID, sale.ID)
			if err != nil {
				return err
			}
			if !generated {
				commissions, err := s.generateCommissions(c, repos, sale)
				if err != nil {
					return err
				}
				if len(commissions) > 0 {
					if err := repos.CommissionRepo().CreateBatch(c, commissions); err != nil {
						return err
					}
				}
				confirmed = commissions
			}

			if err := repos.SaleRepo().Update(c, sale); err != nil {
				return err
			}

			resp := ToSaleResponse(sale)
			response = &resp
			return nil
		})
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.SetAttributes(span,
		telemetry.SpanAttrSaleNumber, response.Number,
		telemetry.SpanAttrSaleType, response.Type,
	)
	telemetry.AddEvent(span, "sale_confirmed",
		"commission_count", len(confirmed),
		"total", response.Total.String(),
	)

	if s.businessMetrics != nil {
		s.businessMetrics.RecordSaleConfirmed(ctx, principal.TenantID, response.Type, response.Total)
		for _, commission := range confirmed {
			s.businessMetrics.RecordCommission(ctx, principal.TenantID, commission.AttendantID, commission.Amount)
		}
	}

	return response, nil
}

// Cancel terminates a sale and unwinds its effects: consumptions are
// restored, commissions reversed, an unconsumed originated package is
// deactivated. Cancelling an already-cancelled sale succeeds without
// further effect.
func (s *SaleService) Cancel(ctx context.Context, principal identity.Principal, saleID uuid.UUID, req CancelSaleRequest) (*SaleResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "sale", "cancel")
	defer span.End()

	telemetry.SetAttribute(span, telemetry.SpanAttrSaleID, saleID)

	var (
		response     *SaleResponse
		alreadyDone  bool
		reversedQty  int
		reversedComm int
		err          error
	)
	telemetry.WithProfilingLabels(ctx, telemetry.SaleOperationLabels(telemetry.OperationCancelSale, ""), func(c context.Context) {
		err = s.txScope.Execute(c, func(repos TransactionalRepositories) error {
			sale, err := repos.SaleRepo().FindByID(c, principal.TenantID, saleID)
			if err != nil {
				return err
			}

			if sale.IsCancelled() {
				alreadyDone = true
				resp := ToSaleResponse(sale)
				response = &resp
				return nil
			}

			wasConfirmed := sale.IsConfirmed()

			// The originated package blocks cancellation once consumed, so
			// check it before mutating anything.
			var originatedPkg *packages.ClientPackage
			if sale.Type == sales.SaleTypePackageSale {
				pkg, err := repos.PackageRepo().FindBySaleID(c, principal.TenantID, sale.ID)
				if err != nil {
					return err
				}
				if !pkg.IsUnconsumed() {
					return shared.NewDomainError("INVALID_STATE", "Cannot cancel a package sale after the package has been consumed")
				}
				originatedPkg = pkg
			}

			if err := sale.Cancel(req.Reason); err != nil {
				return err
			}

			switch sale.Type {
			case sales.SaleTypePackageSale:
				if originatedPkg.IsActive {
					if err := originatedPkg.Deactivate(); err != nil {
						return err
					}
					if err := repos.PackageRepo().Update(c, originatedPkg); err != nil {
						return err
					}
				}
			case sales.SaleTypePackageConsumption:
				restored, err := repos.PackageRepo().ReverseForSale(c, principal.TenantID, sale.ID)
				if err != nil {
					return err
				}
				reversedQty = restored
			}

			if wasConfirmed {
				reversed, err := repos.CommissionRepo().ReverseBySaleID(c, principal.TenantID, sale.ID)
				if err != nil {
					return err
				}
				reversedComm = reversed
			}

			if err := repos.SaleRepo().Update(c, sale); err != nil {
				return err
			}

			resp := ToSaleResponse(sale)
			response = &resp
			return nil
		})
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.SetAttributes(span,
		telemetry.SpanAttrSaleNumber, response.Number,
		telemetry.SpanAttrSaleType, response.Type,
	)
	if !alreadyDone {
		telemetry.AddEvent(span, "sale_cancelled",
			"credits_restored", reversedQty,
			"commissions_reversed", reversedComm,
		)
		if s.businessMetrics != nil {
			s.businessMetrics.RecordSaleCancelled(ctx, principal.TenantID, response.Type)
		}
	}

	return response, nil
}

// buildItems turns item inputs into priced domain items. Service items
// are quoted by the tier calculator; a misconfigured quote becomes a
// warning on the response, never a silent zero.
func (s *SaleService) buildItems(ctx context.Context, repos TransactionalRepositories, tenantID uuid.UUID, saleType sales.SaleType, inputs []SaleItemInput) ([]sales.SaleItem, []string, error) {
	items := make([]sales.SaleItem, 0, len(inputs))
	var warnings []string

	for _, input := range inputs {
		discountType := sales.DiscountTypeNone
		if input.DiscountType != "" {
			discountType = sales.DiscountType(input.DiscountType)
		}

		if input.ServiceID == nil {
			if input.UnitPrice == nil {
				return nil, nil, shared.NewDomainError("VALIDATION_ERROR", "Unit price is required for items without a service")
			}
			if input.Description == "" {
				return nil, nil, shared.NewDomainError("VALIDATION_ERROR", "Description is required for items without a service")
			}
			item, err := sales.NewAdHocItem(input.Description, input.Quantity, valueobject.NewMoneyUSD(*input.UnitPrice), discountType, input.DiscountValue)
			if err != nil {
				return nil, nil, err
			}
			items = append(items, *item)
			continue
		}

		service, err := repos.ServiceRepo().FindByID(ctx, tenantID, *input.ServiceID)
		if err != nil {
			return nil, nil, err
		}
		if !service.IsActive() {
			return nil, nil, shared.NewDomainError("VALIDATION_ERROR", fmt.Sprintf("Service %q is deactivated", service.Name))
		}

		quote := service.Quote(catalog.SaleType(saleType), input.Quantity)
		if quote.Misconfigured {
			warnings = append(warnings, fmt.Sprintf(
				"Service %q has no price tier covering quantity %d for %s sales; review its tier table",
				service.Name, input.Quantity, saleType,
			))
		}

		description := input.Description
		if description == "" {
			description = service.Name
		}

		item, err := sales.NewServiceItem(service.ID, description, input.Quantity, quote.Amount, discountType, input.DiscountValue)
		if err != nil {
			return nil, nil, err
		}
		items = append(items, *item)
	}

	return items, warnings, nil
}

// generateCommissions builds one commission per service item using the
// rate each service carries right now.
func (s *SaleService) generateCommissions(ctx context.Context, repos TransactionalRepositories, sale *sales.Sale) ([]*finance.Commission, error) {
	commissions := make([]*finance.Commission, 0, len(sale.Items))

	for i := range sale.Items {
		item := &sale.Items[i]
		if item.ServiceID == nil {
			continue
		}

		service, err := repos.ServiceRepo().FindByID(ctx, sale.TenantID, *item.ServiceID)
		if err != nil {
			return nil, err
		}

		commission, err := finance.NewCommission(
			sale.TenantID,
			sale.AttendantID,
			sale.ID,
			item.ID,
			service.ID,
			sale.Number,
			sale.SaleDate,
			item.GetTotalMoney(),
			service.CommissionRate,
		)
		if err != nil {
			return nil, err
		}
		commissions = append(commissions, commission)
	}

	return commissions, nil
}

// validateConsumptionItems checks that every service line of a
// consumption sale draws the service the package was bought for.
func validateConsumptionItems(pkg *packages.ClientPackage, items []sales.SaleItem) error {
	for i := range items {
		if items[i].ServiceID != nil && *items[i].ServiceID != pkg.ServiceID {
			return shared.NewDomainError("VALIDATION_ERROR", "Consumption items must match the package's service")
		}
	}
	return nil
}
