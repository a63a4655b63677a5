package sales

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/glowdesk/backend/internal/domain/catalog"
	"github.com/glowdesk/backend/internal/domain/crm"
	"github.com/glowdesk/backend/internal/domain/finance"
	"github.com/glowdesk/backend/internal/domain/identity"
	"github.com/glowdesk/backend/internal/domain/packages"
	"github.com/glowdesk/backend/internal/domain/sales"
	"github.com/glowdesk/backend/internal/domain/shared"
	"github.com/glowdesk/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockSaleRepository is a mock implementation of sales.SaleRepository
type MockSaleRepository struct {
	mock.Mock
}

func (m *MockSaleRepository) Create(ctx context.Context, sale *sales.Sale) error {
	args := m.Called(ctx, sale)
	return args.Error(0)
}

func (m *MockSaleRepository) Update(ctx context.Context, sale *sales.Sale) error {
	args := m.Called(ctx, sale)
	return args.Error(0)
}

func (m *MockSaleRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*sales.Sale, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sales.Sale), args.Error(1)
}

func (m *MockSaleRepository) FindByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*sales.Sale, error) {
	args := m.Called(ctx, tenantID, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sales.Sale), args.Error(1)
}

func (m *MockSaleRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter sales.SaleFilter) ([]*sales.Sale, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*sales.Sale), args.Get(1).(int64), args.Error(2)
}

func (m *MockSaleRepository) ExistsByNumber(ctx context.Context, tenantID uuid.UUID, number string) (bool, error) {
	args := m.Called(ctx, tenantID, number)
	return args.Bool(0), args.Error(1)
}

func (m *MockSaleRepository) GenerateNumber(ctx context.Context, tenantID uuid.UUID) (string, error) {
	args := m.Called(ctx, tenantID)
	return args.String(0), args.Error(1)
}

// MockPackageRepository is a mock implementation of packages.ClientPackageRepository
type MockPackageRepository struct {
	mock.Mock
}

func (m *MockPackageRepository) Create(ctx context.Context, pkg *packages.ClientPackage) error {
	args := m.Called(ctx, pkg)
	return args.Error(0)
}

func (m *MockPackageRepository) Update(ctx context.Context, pkg *packages.ClientPackage) error {
	args := m.Called(ctx, pkg)
	return args.Error(0)
}

func (m *MockPackageRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*packages.ClientPackage, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*packages.ClientPackage), args.Error(1)
}

func (m *MockPackageRepository) FindBySaleID(ctx context.Context, tenantID, saleID uuid.UUID) (*packages.ClientPackage, error) {
	args := m.Called(ctx, tenantID, saleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*packages.ClientPackage), args.Error(1)
}

func (m *MockPackageRepository) FindByClientID(ctx context.Context, tenantID, clientID uuid.UUID) ([]*packages.ClientPackage, error) {
	args := m.Called(ctx, tenantID, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*packages.ClientPackage), args.Error(1)
}

func (m *MockPackageRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter packages.PackageFilter) ([]*packages.ClientPackage, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*packages.ClientPackage), args.Get(1).(int64), args.Error(2)
}

func (m *MockPackageRepository) Consume(ctx context.Context, tenantID, packageID, saleID uuid.UUID, quantity int) error {
	args := m.Called(ctx, tenantID, packageID, saleID, quantity)
	return args.Error(0)
}

func (m *MockPackageRepository) ReverseForSale(ctx context.Context, tenantID, saleID uuid.UUID) (int, error) {
	args := m.Called(ctx, tenantID, saleID)
	return args.Int(0), args.Error(1)
}

func (m *MockPackageRepository) FindConsumptionsBySaleID(ctx context.Context, tenantID, saleID uuid.UUID) ([]*packages.Consumption, error) {
	args := m.Called(ctx, tenantID, saleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*packages.Consumption), args.Error(1)
}

func (m *MockPackageRepository) FindConsumptionsByPackageID(ctx context.Context, tenantID, packageID uuid.UUID) ([]*packages.Consumption, error) {
	args := m.Called(ctx, tenantID, packageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*packages.Consumption), args.Error(1)
}

// MockCommissionRepository is a mock implementation of finance.CommissionRepository
type MockCommissionRepository struct {
	mock.Mock
}

func (m *MockCommissionRepository) CreateBatch(ctx context.Context, commissions []*finance.Commission) error {
	args := m.Called(ctx, commissions)
	return args.Error(0)
}

func (m *MockCommissionRepository) Update(ctx context.Context, commission *finance.Commission) error {
	args := m.Called(ctx, commission)
	return args.Error(0)
}

func (m *MockCommissionRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*finance.Commission, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*finance.Commission), args.Error(1)
}

func (m *MockCommissionRepository) FindBySaleID(ctx context.Context, tenantID, saleID uuid.UUID) ([]*finance.Commission, error) {
	args := m.Called(ctx, tenantID, saleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*finance.Commission), args.Error(1)
}

func (m *MockCommissionRepository) ExistsForSale(ctx context.Context, tenantID, saleID uuid.UUID) (bool, error) {
	args := m.Called(ctx, tenantID, saleID)
	return args.Bool(0), args.Error(1)
}

func (m *MockCommissionRepository) ReverseBySaleID(ctx context.Context, tenantID, saleID uuid.UUID) (int, error) {
	args := m.Called(ctx, tenantID, saleID)
	return args.Int(0), args.Error(1)
}

func (m *MockCommissionRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter finance.CommissionFilter) ([]*finance.Commission, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*finance.Commission), args.Get(1).(int64), args.Error(2)
}

// MockServiceRepository is a mock implementation of catalog.ServiceRepository
type MockServiceRepository struct {
	mock.Mock
}

func (m *MockServiceRepository) Create(ctx context.Context, service *catalog.Service) error {
	args := m.Called(ctx, service)
	return args.Error(0)
}

func (m *MockServiceRepository) Update(ctx context.Context, service *catalog.Service) error {
	args := m.Called(ctx, service)
	return args.Error(0)
}

func (m *MockServiceRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*catalog.Service, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Service), args.Error(1)
}

func (m *MockServiceRepository) FindByName(ctx context.Context, tenantID uuid.UUID, name string) (*catalog.Service, error) {
	args := m.Called(ctx, tenantID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Service), args.Error(1)
}

func (m *MockServiceRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter catalog.ServiceFilter) ([]*catalog.Service, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*catalog.Service), args.Get(1).(int64), args.Error(2)
}

func (m *MockServiceRepository) ExistsByName(ctx context.Context, tenantID uuid.UUID, name string) (bool, error) {
	args := m.Called(ctx, tenantID, name)
	return args.Bool(0), args.Error(1)
}

// MockClientRepository is a mock implementation of crm.ClientRepository
type MockClientRepository struct {
	mock.Mock
}

func (m *MockClientRepository) Create(ctx context.Context, client *crm.Client) error {
	args := m.Called(ctx, client)
	return args.Error(0)
}

func (m *MockClientRepository) Update(ctx context.Context, client *crm.Client) error {
	args := m.Called(ctx, client)
	return args.Error(0)
}

func (m *MockClientRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*crm.Client, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*crm.Client), args.Error(1)
}

func (m *MockClientRepository) FindByTaxID(ctx context.Context, tenantID uuid.UUID, taxID string) (*crm.Client, error) {
	args := m.Called(ctx, tenantID, taxID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*crm.Client), args.Error(1)
}

func (m *MockClientRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter crm.ClientFilter) ([]*crm.Client, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*crm.Client), args.Get(1).(int64), args.Error(2)
}

func (m *MockClientRepository) ExistsByTaxID(ctx context.Context, tenantID uuid.UUID, taxID string) (bool, error) {
	args := m.Called(ctx, tenantID, taxID)
	return args.Bool(0), args.Error(1)
}

// ============================================================================
// Test Helpers
// ============================================================================

var (
	testTenantID    = uuid.New()
	testAdminID     = uuid.New()
	testAttendantID = uuid.New()
	testClientID    = uuid.New()
	testServiceID   = uuid.New()
	testPackageID   = uuid.New()
	testSaleNumber  = "SA-2026-00001"
	testSaleDate    = time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
)

type saleServiceMocks struct {
	saleRepo       *MockSaleRepository
	packageRepo    *MockPackageRepository
	commissionRepo *MockCommissionRepository
	serviceRepo    *MockServiceRepository
	clientRepo     *MockClientRepository
}

func newTestSaleService() (*SaleService, *saleServiceMocks) {
	m := &saleServiceMocks{
		saleRepo:       new(MockSaleRepository),
		packageRepo:    new(MockPackageRepository),
		commissionRepo: new(MockCommissionRepository),
		serviceRepo:    new(MockServiceRepository),
		clientRepo:     new(MockClientRepository),
	}
	scope := NewNoOpTransactionScope(m.saleRepo, m.packageRepo, m.commissionRepo, m.serviceRepo, m.clientRepo)
	return NewSaleService(scope), m
}

func adminPrincipal() identity.Principal {
	return identity.Principal{UserID: testAdminID, TenantID: testTenantID, Role: identity.RoleAdmin}
}

func attendantPrincipal() identity.Principal {
	return identity.Principal{UserID: testAttendantID, TenantID: testTenantID, Role: identity.RoleAttendant}
}

func createStoredClient(t *testing.T) *crm.Client {
	t.Helper()
	client, err := crm.NewClient(testTenantID, "Maria Santos")
	require.NoError(t, err)
	client.ID = testClientID
	client.ClearDomainEvents()
	return client
}

// createStoredService returns a service with a single open-ended
// common tier at 100/unit and a 10% commission rate.
func createStoredService(t *testing.T) *catalog.Service {
	t.Helper()
	service, err := catalog.NewService(testTenantID, "Deep Tissue Massage", valueobject.NewMoneyUSDFromFloat(80), decimal.NewFromInt(10))
	require.NoError(t, err)
	service.ID = testServiceID
	tier, err := catalog.NewPriceTier(service.ID, catalog.SaleTypeCommon, 1, nil, valueobject.NewMoneyUSDFromFloat(100))
	require.NoError(t, err)
	require.NoError(t, service.ReplaceTiers([]catalog.PriceTier{*tier}))
	service.ClearDomainEvents()
	return service
}

func createUntieredService(t *testing.T) *catalog.Service {
	t.Helper()
	service, err := catalog.NewService(testTenantID, "Deep Tissue Massage", valueobject.NewMoneyUSDFromFloat(80), decimal.NewFromInt(10))
	require.NoError(t, err)
	service.ID = testServiceID
	service.ClearDomainEvents()
	return service
}

func createProgressiveService(t *testing.T) *catalog.Service {
	t.Helper()
	service := createUntieredService(t)
	require.NoError(t, service.SetPricingMode(catalog.PricingModeProgressive))

	ten := 10
	first, err := catalog.NewPriceTier(service.ID, catalog.SaleTypeCommon, 1, &ten, valueobject.NewMoneyUSDFromFloat(40))
	require.NoError(t, err)
	rest, err := catalog.NewPriceTier(service.ID, catalog.SaleTypeCommon, 11, nil, valueobject.NewMoneyUSDFromFloat(15))
	require.NoError(t, err)
	require.NoError(t, service.ReplaceTiers([]catalog.PriceTier{*first, *rest}))
	service.ClearDomainEvents()
	return service
}

func createStoredSale(t *testing.T, saleType sales.SaleType) *sales.Sale {
	t.Helper()
	sale, err := sales.NewSale(testTenantID, testSaleNumber, testClientID, "Maria Santos", testAttendantID, testSaleDate, saleType, sales.PaymentMethodCash)
	require.NoError(t, err)
	sale.ClearDomainEvents()
	return sale
}

func createStoredSaleWithItem(t *testing.T) *sales.Sale {
	t.Helper()
	sale := createStoredSale(t, sales.SaleTypeCommon)
	item, err := sales.NewServiceItem(testServiceID, "Deep Tissue Massage", 2, valueobject.NewMoneyUSD(decimal.NewFromInt(200)), sales.DiscountTypeNone, decimal.Zero)
	require.NoError(t, err)
	require.NoError(t, sale.AddItem(*item))
	sale.ClearDomainEvents()
	return sale
}

func createStoredPackageSale(t *testing.T) *sales.Sale {
	t.Helper()
	sale := createStoredSale(t, sales.SaleTypePackageSale)
	require.NoError(t, sale.SetServiceRef(testServiceID))
	item, err := sales.NewServiceItem(testServiceID, "Deep Tissue Massage", 10, valueobject.NewMoneyUSD(decimal.NewFromInt(1000)), sales.DiscountTypeNone, decimal.Zero)
	require.NoError(t, err)
	require.NoError(t, sale.AddItem(*item))
	sale.ClearDomainEvents()
	return sale
}

func createStoredConsumptionSale(t *testing.T) *sales.Sale {
	t.Helper()
	sale := createStoredSale(t, sales.SaleTypePackageConsumption)
	require.NoError(t, sale.SetPackageRef(testPackageID))
	item, err := sales.NewServiceItem(testServiceID, "Deep Tissue Massage", 3, valueobject.NewMoneyUSD(decimal.NewFromInt(300)), sales.DiscountTypeNone, decimal.Zero)
	require.NoError(t, err)
	require.NoError(t, sale.AddItem(*item))
	sale.ClearDomainEvents()
	return sale
}

// createStoredPackage returns a 10-session package funded with 1000,
// owned by the test client and originated by the given sale.
func createStoredPackage(t *testing.T, saleID uuid.UUID) *packages.ClientPackage {
	t.Helper()
	pkg, err := packages.NewClientPackage(testTenantID, testClientID, testServiceID, saleID, 10, valueobject.NewMoneyUSD(decimal.NewFromInt(1000)), nil)
	require.NoError(t, err)
	pkg.ID = testPackageID
	pkg.ClearDomainEvents()
	return pkg
}

// ============================================================================
// Create Tests
// ============================================================================

func TestSaleService_Create(t *testing.T) {
	t.Run("creates a common sale with quoted pricing and discounts", func(t *testing.T) {
		service, m := newTestSaleService()
		ctx := context.Background()

		m.clientRepo.On("FindByID", mock.Anything, testTenantID, testClientID).Return(createStoredClient(t), nil)
		m.saleRepo.On("GenerateNumber", mock.Anything, testTenantID).Return(testSaleNumber, nil)
		m.serviceRepo.On("FindByID", mock.Anything, testTenantID, testServiceID).Return(createStoredService(t), nil)
		m.saleRepo.On("Create", mock.Anything, mock.AnythingOfType("*sales.Sale")).Return(nil)

		resp, err := service.Create(ctx, attendantPrincipal(), CreateSaleRequest{
			ClientID:      testClientID,
			Type:          "common",
			PaymentMethod: "credit_card",
			Items: []SaleItemInput{
				{ServiceID: &testServiceID, Quantity: 2, DiscountType: "percentage", DiscountValue: decimal.NewFromInt(10)},
			},
			GeneralDiscountType:  "fixed",
			GeneralDiscountValue: decimal.NewFromInt(20),
		})

		require.NoError(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, testSaleNumber, resp.Number)
		assert.Equal(t, "open", resp.Status)
		assert.Equal(t, "common", resp.Type)
		assert.Equal(t, "Maria Santos", resp.ClientName)
		assert.Equal(t, testAttendantID, resp.AttendantID)
		require.Len(t, resp.Items, 1)
		assert.True(t, resp.Items[0].UnitPrice.Equal(decimal.NewFromInt(100)), "unit price = %s", resp.Items[0].UnitPrice)
		assert.True(t, resp.Items[0].Subtotal.Equal(decimal.NewFromInt(200)), "item subtotal = %s", resp.Items[0].Subtotal)
		assert.True(t, resp.Items[0].Total.Equal(decimal.NewFromInt(180)), "item total = %s", resp.Items[0].Total)
		assert.True(t, resp.Subtotal.Equal(decimal.NewFromInt(200)), "subtotal = %s", resp.Subtotal)
		assert.True(t, resp.TotalDiscount.Equal(decimal.NewFromInt(40)), "total discount = %s", resp.TotalDiscount)
		assert.True(t, resp.Total.Equal(decimal.NewFromInt(160)), "total = %s", resp.Total)
		assert.Empty(t, resp.Warnings)
		m.saleRepo.AssertExpectations(t)
		m.packageRepo.AssertNotCalled(t, "Create")
		m.packageRepo.AssertNotCalled(t, "Consume")
	})

	t.Run("prices progressive brackets across tiers", func(t *testing.T) {
		service, m := newTestSaleService()
		ctx := context.Background()

		m.clientRepo.On("FindByID", mock.Anything, testTenantID, testClientID).Return(createStoredClient(t), nil)
		m.saleRepo.On("GenerateNumber", mock.Anything, testTenantID).Return(testSaleNumber, nil)
		m.serviceRepo.On("FindByID", mock.Anything, testTenantID, testServiceID).Return(createProgressiveService(t), nil)
		m.saleRepo.On("Create", mock.Anything, mock.AnythingOfType("*sales.Sale")).Return(nil)

		resp, err := service.Create(ctx, attendantPrincipal(), CreateSaleRequest{
			ClientID:      testClientID,
			Type:          "common",
			PaymentMethod: "cash",
			Items: []SaleItemInput{
				{ServiceID: &testServiceID, Quantity: 15},
			},
		})

		require.NoError(t, err)
		// 10x40 + 5x15
		assert.True(t, resp.Total.Equal(decimal.NewFromInt(475)), "total = %s", resp.Total)
		assert.Empty(t, resp.Warnings)
	})

	t.Run("warns when the tier table cannot price the quantity", func(t *testing.T) {
		service, m := newTestSaleService()
		ctx := context.Background()

		m.clientRepo.On("FindByID", mock.Anything, testTenantID, testClientID).Return(createStoredClient(t), nil)
		m.saleRepo.On("GenerateNumber", mock.Anything, testTenantID).Return(testSaleNumber, nil)
		m.serviceRepo.On("FindByID", mock.Anything, testTenantID, testServiceID).Return(createUntieredService(t), nil)
		m.saleRepo.On("Create", mock.Anything, mock.AnythingOfType("*sales.Sale")).Return(nil)

		resp, err := service.Create(ctx, attendantPrincipal(), CreateSaleRequest{
			ClientID:      testClientID,
			Type:          "common",
			PaymentMethod: "cash",
			Items: []SaleItemInput{
				{ServiceID: &testServiceID, Quantity: 2},
			},
		})

		require.NoError(t, err)
		assert.True(t, resp.Total.IsZero(), "total = %s", resp.Total)
		require.Len(t, resp.Warnings, 1)
		assert.Contains(t, resp.Warnings[0], "Deep Tissue Massage")
	})

	t.Run("uses the service name when the item has no description", func(t *testing.T) {
		service, m := newTestSaleService()
		ctx := context.Background()

		m.clientRepo.On("FindByID", mock.Anything, testTenantID, testClientID).Return(createStoredClient(t), nil)
		m.saleRepo.On("GenerateNumber", mock.Anything, testTenantID).Return(testSaleNumber, nil)
		m.serviceRepo.On("FindByID", mock.Anything, testTenantID, testServiceID).Return(createStoredService(t), nil)
		m.saleRepo.On("Create", mock.Anything, mock.AnythingOfType("*sales.Sale")).Return(nil)

		resp, err := service.Create(ctx, attendantPrincipal(), CreateSaleRequest{
			ClientID:      testClientID,
			Type:          "common",
			PaymentMethod: "cash",
			Items: []SaleItemInput{
				{ServiceID: &testServiceID, Quantity: 1},
			},
		})

		require.NoError(t, err)
		assert.Equal(t, "Deep Tissue Massage", resp.Items[0].Description)
	})

	t.Run("accepts ad-hoc items priced by hand", func(t *testing.T) {
		service, m := newTestSaleService()
		ctx := context.Background()

		m.clientRepo.On("FindByID", mock.Anything, testTenantID, testClientID).Return(createStoredClient(t), nil)
		m.saleRepo.On("GenerateNumber", mock.Anything, testTenantID).Return(testSaleNumber, nil)
		m.saleRepo.On("Create", mock.Anything, mock.AnythingOfType("*sales.Sale")).Return(nil)

		price := decimal.NewFromInt(35)
		resp, err := service.Create(ctx, attendantPrincipal(), CreateSaleRequest{
			ClientID:      testClientID,
			Type:          "common",
			PaymentMethod: "cash",
			Items: []SaleItemInput{
				{Description: "Hair pin set", Quantity: 2, UnitPrice: &price},
			},
		})

		require.NoError(t, err)
		assert.True(t, resp.Total.Equal(decimal.NewFromInt(70)), "total = %s", resp.Total)
		m.serviceRepo.AssertNotCalled(t, "FindByID")
	})

	t.Run("requires a unit price for ad-hoc items", func(t *testing.T) {
		service, m := newTestSaleService()
		ctx := context.Background()

		m.clientRepo.On("FindByID", mock.Anything, testTenantID, testClientID).Return(createStoredClient(t), nil)
		m.saleRepo.On("GenerateNumber", mock.Anything, testTenantID).Return(testSaleNumber, nil)

		_, err := service.Create(ctx, attendantPrincipal(), CreateSaleRequest{
			ClientID:      testClientID,
			Type:          "common",
			PaymentMethod: "cash",
			Items: []SaleItemInput{
				{Description: "Hair pin set", Quantity: 1},
			},
		})

		require.Error(t, err)
		var domainErr *shared.DomainError
		require.True(t, errors.As(err, &domainErr))
		assert.Equal(t, "VALIDATION_ERROR", domainErr.Code)
		m.saleRepo.AssertNotCalled(t, "Create")
	})

	t.Run("rejects a deactivated client", func(t *testing.T) {
		service, m := newTestSaleService()
		ctx := context.Background()

		client := createStoredClient(t)
		require.NoError(t, client.Deactivate())
		m.clientRepo.On("FindByID", mock.Anything, testTenantID, testClientID).Return(client, nil)

		_, err := service.Create(ctx, attendantPrincipal(), CreateSaleRequest{
			ClientID:      testClientID,
			Type:          "common",
			PaymentMethod: "cash",
			Items:         []SaleItemInput{{ServiceID: &testServiceID, Quantity: 1}},
		})

		require.Error(t, err)
		var domainErr *shared.DomainError
		require.True(t, errors.As(err, &domainErr))
		assert.Equal(t, "VALIDATION_ERROR", domainErr.Code)
		m.saleRepo.AssertNotCalled(t, "Create")
	})

	t.Run("rejects a deactivated service", func(t *testing.T) {
		service, m := newTestSaleService()
		ctx := context.Background()

		svc := createStoredService(t)
		require.NoError(t, svc.Deactivate())
		m.clientRepo.On("FindByID", mock.Anything, testTenantID, testClientID).Return(createStoredClient(t), nil)
		m.saleRepo.On("GenerateNumber", mock.Anything, testTenantID).Return(testSaleNumber, nil)
		m.serviceRepo.On("FindByID", mock.Anything, testTenantID, testServiceID).Return(svc, nil)

		_, err := service.Create(ctx, attendantPrincipal(), CreateSaleRequest{
			ClientID:      testClientID,
			Type:          "common",
			PaymentMethod: "cash",
			Items:         []SaleItemInput{{ServiceID: &testServiceID, Quantity: 1}},
		})

		require.Error(t, err)
		var domainErr *shared.DomainError
		require.True(t, errors.As(err, &domainErr))
		assert.Equal(t, "VALIDATION_ERROR", domainErr.Code)
		m.saleRepo.AssertNotCalled(t, "Create")
	})

	t.Run("creates a package sale and its package in one pass", func(t *testing.T) {
		service, m := newTestSaleService()
		ctx := context.Background()

		m.clientRepo.On("FindByID", mock.Anything, testTenantID, testClientID).Return(createStoredClient(t), nil)
		m.saleRepo.On("GenerateNumber", mock.Anything, testTenantID).Return(testSaleNumber, nil)
		m.serviceRepo.On("FindByID", mock.Anything, testTenantID, testServiceID).Return(createStoredService(t), nil)
		m.saleRepo.On("Create", mock.Anything, mock.AnythingOfType("*sales.Sale")).Return(nil)

		var createdPkg *packages.ClientPackage
		m.packageRepo.On("Create", mock.Anything, mock.AnythingOfType("*packages.ClientPackage")).
			Run(func(args mock.Arguments) { createdPkg = args.Get(1).(*packages.ClientPackage) }).
			Return(nil)

		resp, err := service.Create(ctx, attendantPrincipal(), CreateSaleRequest{
			ClientID:      testClientID,
			Type:          "package_sale",
			PaymentMethod: "credit_card",
			ServiceID:     &testServiceID,
			Items: []SaleItemInput{
				{ServiceID: &testServiceID, Quantity: 10},
			},
		})

		require.NoError(t, err)
		assert.True(t, resp.Total.Equal(decimal.NewFromInt(1000)), "total = %s", resp.Total)
		require.NotNil(t, createdPkg)
		assert.Equal(t, testClientID, createdPkg.ClientID)
		assert.Equal(t, testServiceID, createdPkg.ServiceID)
		assert.Equal(t, resp.ID, createdPkg.SaleID)
		assert.Equal(t, 10, createdPkg.InitialQuantity)
		assert.Equal(t, 10, createdPkg.AvailableQuantity)
		assert.True(t, createdPkg.TotalPaid.Equal(decimal.NewFromInt(1000)), "total paid = %s", createdPkg.TotalPaid)
		assert.True(t, createdPkg.UnitPrice.Equal(decimal.NewFromInt(100)), "unit price = %s", createdPkg.UnitPrice)
		m.packageRepo.AssertExpectations(t)
	})

	t.Run("funds the package with the discounted sale total", func(t *testing.T) {
		service, m := newTestSaleService()
		ctx := context.Background()

		m.clientRepo.On("FindByID", mock.Anything, testTenantID, testClientID).Return(createStoredClient(t), nil)
		m.saleRepo.On("GenerateNumber", mock.Anything, testTenantID).Return(testSaleNumber, nil)
		m.serviceRepo.On("FindByID", mock.Anything, testTenantID, testServiceID).Return(createStoredService(t), nil)
		m.saleRepo.On("Create", mock.Anything, mock.AnythingOfType("*sales.Sale")).Return(nil)

		var createdPkg *packages.ClientPackage
		m.packageRepo.On("Create", mock.Anything, mock.AnythingOfType("*packages.ClientPackage")).
			Run(func(args mock.Arguments) { createdPkg = args.Get(1).(*packages.ClientPackage) }).
			Return(nil)

		_, err := service.Create(ctx, attendantPrincipal(), CreateSaleRequest{
			ClientID:      testClientID,
			Type:          "package_sale",
			PaymentMethod: "transfer",
			ServiceID:     &testServiceID,
			Items: []SaleItemInput{
				{ServiceID: &testServiceID, Quantity: 10},
			},
			GeneralDiscountType:  "percentage",
			GeneralDiscountValue: decimal.NewFromInt(50),
		})

		require.NoError(t, err)
		require.NotNil(t, createdPkg)
		assert.True(t, createdPkg.TotalPaid.Equal(decimal.NewFromInt(500)), "total paid = %s", createdPkg.TotalPaid)
		assert.True(t, createdPkg.UnitPrice.Equal(decimal.NewFromInt(50)), "unit price = %s", createdPkg.UnitPrice)
	})

	t.Run("draws the package on a consumption sale", func(t *testing.T) {
		service, m := newTestSaleService()
		ctx := context.Background()

		m.clientRepo.On("FindByID", mock.Anything, testTenantID, testClientID).Return(createStoredClient(t), nil)
		m.saleRepo.On("GenerateNumber", mock.Anything, testTenantID).Return(testSaleNumber, nil)
		m.serviceRepo.On("FindByID", mock.Anything, testTenantID, testServiceID).Return(createStoredService(t), nil)
		m.saleRepo.On("Create", mock.Anything, mock.AnythingOfType("*sales.Sale")).Return(nil)
		m.packageRepo.On("FindByID", mock.Anything, testTenantID, testPackageID).Return(createStoredPackage(t, uuid.New()), nil)
		m.packageRepo.On("Consume", mock.Anything, testTenantID, testPackageID, mock.AnythingOfType("uuid.UUID"), 3).Return(nil)

		resp, err := service.Create(ctx, attendantPrincipal(), CreateSaleRequest{
			ClientID:      testClientID,
			Type:          "package_consumption",
			PaymentMethod: "package",
			PackageID:     &testPackageID,
			Items: []SaleItemInput{
				{ServiceID: &testServiceID, Quantity: 2},
				{ServiceID: &testServiceID, Quantity: 1},
			},
		})

		require.NoError(t, err)
		assert.Equal(t, "package_consumption", resp.Type)
		m.packageRepo.AssertExpectations(t)
	})

	t.Run("rejects consumption from another client's package", func(t *testing.T) {
		service, m := newTestSaleService()
		ctx := context.Background()

		pkg := createStoredPackage(t, uuid.New())
		pkg.ClientID = uuid.New()
		m.clientRepo.On("FindByID", mock.Anything, testTenantID, testClientID).Return(createStoredClient(t), nil)
		m.saleRepo.On("GenerateNumber", mock.Anything, testTenantID).Return(testSaleNumber, nil)
		m.serviceRepo.On("FindByID", mock.Anything, testTenantID, testServiceID).Return(createStoredService(t), nil)
		m.saleRepo.On("Create", mock.Anything, mock.AnythingOfType("*sales.Sale")).Return(nil)
		m.packageRepo.On("FindByID", mock.Anything, testTenantID, testPackageID).Return(pkg, nil)

		_, err := service.Create(ctx, attendantPrincipal(), CreateSaleRequest{
			ClientID:      testClientID,
			Type:          "package_consumption",
			PaymentMethod: "package",
			PackageID:     &testPackageID,
			Items:         []SaleItemInput{{ServiceID: &testServiceID, Quantity: 1}},
		})

		require.Error(t, err)
		var domainErr *shared.DomainError
		require.True(t, errors.As(err, &domainErr))
		assert.Equal(t, "VALIDATION_ERROR", domainErr.Code)
		m.packageRepo.AssertNotCalled(t, "Consume")
	})

	t.Run("rejects consumption items of another service", func(t *testing.T) {
		service, m := newTestSaleService()
		ctx := context.Background()

		pkg := createStoredPackage(t, uuid.New())
		pkg.ServiceID = uuid.New()
		m.clientRepo.On("FindByID", mock.Anything, testTenantID, testClientID).Return(createStoredClient(t), nil)
		m.saleRepo.On("GenerateNumber", mock.Anything, testTenantID).Return(testSaleNumber, nil)
		m.serviceRepo.On("FindByID", mock.Anything, testTenantID, testServiceID).Return(createStoredService(t), nil)
		m.saleRepo.On("Create", mock.Anything, mock.AnythingOfType("*sales.Sale")).Return(nil)
		m.packageRepo.On("FindByID", mock.Anything, testTenantID, testPackageID).Return(pkg, nil)

		_, err := service.Create(ctx, attendantPrincipal(), CreateSaleRequest{
			ClientID:      testClientID,
			Type:          "package_consumption",
			PaymentMethod: "package",
			PackageID:     &testPackageID,
			Items:         []SaleItemInput{{ServiceID: &testServiceID, Quantity: 1}},
		})

		require.Error(t, err)
		var domainErr *shared.DomainError
		require.True(t, errors.As(err, &domainErr))
		assert.Equal(t, "VALIDATION_ERROR", domainErr.Code)
		m.packageRepo.AssertNotCalled(t, "Consume")
	})

	t.Run("propagates insufficient balance from the ledger", func(t *testing.T) {
		service, m := newTestSaleService()
		ctx := context.Background()

		m.clientRepo.On("FindByID", mock.Anything, testTenantID, testClientID).Return(createStoredClient(t), nil)
		m.saleRepo.On("GenerateNumber", mock.Anything, testTenantID).Return(testSaleNumber, nil)
		m.serviceRepo.On("FindByID", mock.Anything, testTenantID, testServiceID).Return(createStoredService(t), nil)
		m.saleRepo.On("Create", mock.Anything, mock.AnythingOfType("*sales.Sale")).Return(nil)
		m.packageRepo.On("FindByID", mock.Anything, testTenantID, testPackageID).Return(createStoredPackage(t, uuid.New()), nil)
		m.packageRepo.On("Consume", mock.Anything, testTenantID, testPackageID, mock.AnythingOfType("uuid.UUID"), 12).Return(shared.ErrInsufficientBalance)

		_, err := service.Create(ctx, attendantPrincipal(), CreateSaleRequest{
			ClientID:      testClientID,
			Type:          "package_consumption",
			PaymentMethod: "package",
			PackageID:     &testPackageID,
			Items:         []SaleItemInput{{ServiceID: &testServiceID, Quantity: 12}},
		})

		assert.ErrorIs(t, err, shared.ErrInsufficientBalance)
	})

	t.Run("propagates not found for a missing client", func(t *testing.T) {
		service, m := newTestSaleService()
		ctx := context.Background()

		m.clientRepo.On("FindByID", mock.Anything, testTenantID, testClientID).Return(nil, shared.ErrNotFound)

		_, err := service.Create(ctx, attendantPrincipal(), CreateSaleRequest{
			ClientID:      testClientID,
			Type:          "common",
			PaymentMethod: "cash",
			Items:         []SaleItemInput{{ServiceID: &testServiceID, Quantity: 1}},
		})

		assert.ErrorIs(t, err, shared.ErrNotFound)
		m.saleRepo.AssertNotCalled(t, "Create")
	})
}

// ============================================================================
// Update Tests
// ============================================================================

func TestSaleService_Update(t *testing.T) {
	t.Run("replaces the item set on an open sale", func(t *testing.T) {
		service, m := newTestSaleService()
		ctx := context.Background()

		sale := createStoredSaleWithItem(t)
		m.saleRepo.On("FindByID", mock.Anything, testTenantID, sale.ID).Return(sale, nil)
		m.serviceRepo.On("FindByID", mock.Anything, testTenantID, testServiceID).Return(createStoredService(t), nil)
		m.saleRepo.On("Update", mock.Anything, mock.AnythingOfType("*sales.Sale")).Return(nil)

		resp, err := service.Update(ctx, attendantPrincipal(), sale.ID, UpdateSaleRequest{
			Items: []SaleItemInput{
				{ServiceID: &testServiceID, Quantity: 3},
			},
		})

		require.NoError(t, err)
		require.Len(t, resp.Items, 1)
		assert.Equal(t, 3, resp.Items[0].Quantity)
		assert.True(t, resp.Total.Equal(decimal.NewFromInt(300)), "total = %s", resp.Total)
		m.saleRepo.AssertExpectations(t)
	})

	t.Run("forbids edits by an attendant who does not own the sale", func(t *testing.T) {
		service, m := newTestSaleService()
		ctx := context.Background()

		sale := createStoredSaleWithItem(t)
		m.saleRepo.On("FindByID", mock.Anything, testTenantID, sale.ID).Return(sale, nil)

		other := identity.Principal{UserID: uuid.New(), TenantID: testTenantID, Role: identity.RoleAttendant}
		notes := "Client asked to move the session"
		_, err := service.Update(ctx, other, sale.ID, UpdateSaleRequest{Notes: &notes})

		assert.ErrorIs(t, err, shared.ErrForbidden)
		m.saleRepo.AssertNotCalled(t, "Update")
	})

	t.Run("allows an admin to edit any attendant's sale", func(t *testing.T) {
		service, m := newTestSaleService()
		ctx := context.Background()

		sale := createStoredSaleWithItem(t)
		m.saleRepo.On("FindByID", mock.Anything, testTenantID, sale.ID).Return(sale, nil)
		m.saleRepo.On("Update", mock.Anything, mock.AnythingOfType("*sales.Sale")).Return(nil)

		notes := "Rebooked for Friday"
		resp, err := service.Update(ctx, adminPrincipal(), sale.ID, UpdateSaleRequest{Notes: &notes})

		require.NoError(t, err)
		assert.Equal(t, "Rebooked for Friday", resp.Notes)
		m.saleRepo.AssertExpectations(t)
	})

	t.Run("rejects edits once the sale is confirmed", func(t *testing.T) {
		service, m := newTestSaleService()
		ctx := context.Background()

		sale := createStoredSaleWithItem(t)
		require.NoError(t, sale.Confirm())
		sale.ClearDomainEvents()
		m.saleRepo.On("FindByID", mock.Anything, testTenantID, sale.ID).Return(sale, nil)

		notes := "too late"
		_, err := service.Update(ctx, attendantPrincipal(), sale.ID, UpdateSaleRequest{Notes: &notes})

		require.Error(t, err)
		var domainErr *shared.DomainError
		require.True(t, errors.As(err, &domainErr))
		assert.Equal(t, "INVALID_STATE", domainErr.Code)
		m.saleRepo.AssertNotCalled(t, "Update")
	})

	t.Run("rejects item edits on a consumption sale", func(t *testing.T) {
		service, m := newTestSaleService()
		ctx := context.Background()

		sale := createStoredConsumptionSale(t)
		m.saleRepo.On("FindByID", mock.Anything, testTenantID, sale.ID).Return(sale, nil)

		_, err := service.Update(ctx, attendantPrincipal(), sale.ID, UpdateSaleRequest{
			Items: []SaleItemInput{{ServiceID: &testServiceID, Quantity: 1}},
		})

		require.Error(t, err)
		var domainErr *shared.DomainError
		require.True(t, errors.As(err, &domainErr))
		assert.Equal(t, "INVALID_STATE", domainErr.Code)
		m.saleRepo.AssertNotCalled(t, "Update")
	})

	t.Run("resizes the unconsumed package of a package sale", func(t *testing.T) {
		service, m := newTestSaleService()
		ctx := context.Background()

		sale := createStoredPackageSale(t)
		pkg := createStoredPackage(t, sale.ID)
		m.saleRepo.On("FindByID", mock.Anything, testTenantID, sale.ID).Return(sale, nil)
		m.serviceRepo.On("FindByID", mock.Anything, testTenantID, testServiceID).Return(createStoredService(t), nil)
		m.packageRepo.On("FindBySaleID", mock.Anything, testTenantID, sale.ID).Return(pkg, nil)

		var resized *packages.ClientPackage
		m.packageRepo.On("Update", mock.Anything, mock.AnythingOfType("*packages.ClientPackage")).
			Run(func(args mock.Arguments) { resized = args.Get(1).(*packages.ClientPackage) }).
			Return(nil)
		m.saleRepo.On("Update", mock.Anything, mock.AnythingOfType("*sales.Sale")).Return(nil)

		resp, err := service.Update(ctx, attendantPrincipal(), sale.ID, UpdateSaleRequest{
			Items: []SaleItemInput{
				{ServiceID: &testServiceID, Quantity: 8},
			},
		})

		require.NoError(t, err)
		assert.True(t, resp.Total.Equal(decimal.NewFromInt(800)), "total = %s", resp.Total)
		require.NotNil(t, resized)
		assert.Equal(t, 8, resized.InitialQuantity)
		assert.Equal(t, 8, resized.AvailableQuantity)
		assert.True(t, resized.TotalPaid.Equal(decimal.NewFromInt(800)), "total paid = %s", resized.TotalPaid)
		assert.True(t, resized.UnitPrice.Equal(decimal.NewFromInt(100)), "unit price = %s", resized.UnitPrice)
	})

	t.Run("resizes the package when only the discount changes", func(t *testing.T) {
		service, m := newTestSaleService()
		ctx := context.Background()

		sale := createStoredPackageSale(t)
		pkg := createStoredPackage(t, sale.ID)
		m.saleRepo.On("FindByID", mock.Anything, testTenantID, sale.ID).Return(sale, nil)
		m.packageRepo.On("FindBySaleID", mock.Anything, testTenantID, sale.ID).Return(pkg, nil)

		var resized *packages.ClientPackage
		m.packageRepo.On("Update", mock.Anything, mock.AnythingOfType("*packages.ClientPackage")).
			Run(func(args mock.Arguments) { resized = args.Get(1).(*packages.ClientPackage) }).
			Return(nil)
		m.saleRepo.On("Update", mock.Anything, mock.AnythingOfType("*sales.Sale")).Return(nil)

		discountType := "fixed"
		discountValue := decimal.NewFromInt(100)
		resp, err := service.Update(ctx, attendantPrincipal(), sale.ID, UpdateSaleRequest{
			GeneralDiscountType:  &discountType,
			GeneralDiscountValue: &discountValue,
		})

		require.NoError(t, err)
		assert.True(t, resp.Total.Equal(decimal.NewFromInt(900)), "total = %s", resp.Total)
		require.NotNil(t, resized)
		assert.Equal(t, 10, resized.InitialQuantity)
		assert.True(t, resized.TotalPaid.Equal(decimal.NewFromInt(900)), "total paid = %s", resized.TotalPaid)
		assert.True(t, resized.UnitPrice.Equal(decimal.NewFromInt(90)), "unit price = %s", resized.UnitPrice)
	})

	t.Run("refuses to resize once the package is consumed", func(t *testing.T) {
		service, m := newTestSaleService()
		ctx := context.Background()

		sale := createStoredPackageSale(t)
		pkg := createStoredPackage(t, sale.ID)
		require.NoError(t, pkg.Consume(2))
		m.saleRepo.On("FindByID", mock.Anything, testTenantID, sale.ID).Return(sale, nil)
		m.serviceRepo.On("FindByID", mock.Anything, testTenantID, testServiceID).Return(createStoredService(t), nil)
		m.packageRepo.On("FindBySaleID", mock.Anything, testTenantID, sale.ID).Return(pkg, nil)

		_, err := service.Update(ctx, attendantPrincipal(), sale.ID, UpdateSaleRequest{
			Items: []SaleItemInput{{ServiceID: &testServiceID, Quantity: 8}},
		})

		require.Error(t, err)
		var domainErr *shared.DomainError
		require.True(t, errors.As(err, &domainErr))
		assert.Equal(t, "INVALID_STATE", domainErr.Code)
		m.packageRepo.AssertNotCalled(t, "Update")
		m.saleRepo.AssertNotCalled(t, "Update")
	})
}

// ============================================================================
// Confirm Tests
// ============================================================================

func TestSaleService_Confirm(t *testing.T) {
	t.Run("confirms and generates commissions for service items", func(t *testing.T) {
		service, m := newTestSaleService()
		ctx := context.Background()

		sale := createStoredSaleWithItem(t)
		adHoc, err := sales.NewAdHocItem("Scalp treatment add-on", 1, valueobject.NewMoneyUSD(decimal.NewFromInt(50)), sales.DiscountTypeNone, decimal.Zero)
		require.NoError(t, err)
		require.NoError(t, sale.AddItem(*adHoc))
		sale.ClearDomainEvents()

		m.saleRepo.On("FindByID", mock.Anything, testTenantID, sale.ID).Return(sale, nil)
		m.commissionRepo.On("ExistsForSale", mock.Anything, testTenantID, sale.ID).Return(false, nil)
		m.serviceRepo.On("FindByID", mock.Anything, testTenantID, testServiceID).Return(createStoredService(t), nil)

		var created []*finance.Commission
		m.commissionRepo.On("CreateBatch", mock.Anything, mock.AnythingOfType("[]*finance.Commission")).
			Run(func(args mock.Arguments) { created = args.Get(1).([]*finance.Commission) }).
			Return(nil)
		m.saleRepo.On("Update", mock.Anything, mock.AnythingOfType("*sales.Sale")).Return(nil)

		resp, err := service.Confirm(ctx, attendantPrincipal(), sale.ID)

		require.NoError(t, err)
		assert.Equal(t, "confirmed", resp.Status)
		assert.NotNil(t, resp.ConfirmedAt)
		require.Len(t, created, 1)
		assert.Equal(t, testAttendantID, created[0].AttendantID)
		assert.Equal(t, sale.ID, created[0].SaleID)
		assert.Equal(t, sale.Items[0].ID, created[0].SaleItemID)
		assert.Equal(t, testServiceID, created[0].ServiceID)
		assert.Equal(t, testSaleNumber, created[0].SaleNumber)
		assert.True(t, created[0].Rate.Equal(decimal.NewFromInt(10)), "rate = %s", created[0].Rate)
		assert.True(t, created[0].BaseAmount.Equal(decimal.NewFromInt(200)), "base = %s", created[0].BaseAmount)
		assert.True(t, created[0].Amount.Equal(decimal.NewFromInt(20)), "amount = %s", created[0].Amount)
		m.commissionRepo.AssertExpectations(t)
	})

	t.Run("skips generation when commissions already exist", func(t *testing.T) {
		service, m := newTestSaleService()
		ctx := context.Background()

		sale := createStoredSaleWithItem(t)
		m.saleRepo.On("FindByID", mock.Anything, testTenantID, sale.ID).Return(sale, nil)
		m.commissionRepo.On("ExistsForSale", mock.Anything, testTenantID, sale.ID).Return(true, nil)
		m.saleRepo.On("Update", mock.Anything, mock.AnythingOfType("*sales.Sale")).Return(nil)

		resp, err := service.Confirm(ctx, attendantPrincipal(), sale.ID)

		require.NoError(t, err)
		assert.Equal(t, "confirmed", resp.Status)
		m.commissionRepo.AssertNotCalled(t, "CreateBatch")
		m.serviceRepo.AssertNotCalled(t, "FindByID")
	})

	t.Run("generates nothing for a sale of only ad-hoc items", func(t *testing.T) {
		service, m := newTestSaleService()
		ctx := context.Background()

		sale := createStoredSale(t, sales.SaleTypeCommon)
		adHoc, err := sales.NewAdHocItem("Hair pin set", 2, valueobject.NewMoneyUSD(decimal.NewFromInt(35)), sales.DiscountTypeNone, decimal.Zero)
		require.NoError(t, err)
		require.NoError(t, sale.AddItem(*adHoc))
		sale.ClearDomainEvents()

		m.saleRepo.On("FindByID", mock.Anything, testTenantID, sale.ID).Return(sale, nil)
		m.commissionRepo.On("ExistsForSale", mock.Anything, testTenantID, sale.ID).Return(false, nil)
		m.saleRepo.On("Update", mock.Anything, mock.AnythingOfType("*sales.Sale")).Return(nil)

		resp, err := service.Confirm(ctx, attendantPrincipal(), sale.ID)

		require.NoError(t, err)
		assert.Equal(t, "confirmed", resp.Status)
		m.commissionRepo.AssertNotCalled(t, "CreateBatch")
		m.serviceRepo.AssertNotCalled(t, "FindByID")
	})

	t.Run("rejects confirming a cancelled sale", func(t *testing.T) {
		service, m := newTestSaleService()
		ctx := context.Background()

		sale := createStoredSaleWithItem(t)
		require.NoError(t, sale.Cancel("client no-show"))
		sale.ClearDomainEvents()
		m.saleRepo.On("FindByID", mock.Anything, testTenantID, sale.ID).Return(sale, nil)

		_, err := service.Confirm(ctx, attendantPrincipal(), sale.ID)

		require.Error(t, err)
		var domainErr *shared.DomainError
		require.True(t, errors.As(err, &domainErr))
		assert.Equal(t, "INVALID_STATE", domainErr.Code)
		m.commissionRepo.AssertNotCalled(t, "CreateBatch")
		m.saleRepo.AssertNotCalled(t, "Update")
	})

	t.Run("rejects confirming a sale without items", func(t *testing.T) {
		service, m := newTestSaleService()
		ctx := context.Background()

		sale := createStoredSale(t, sales.SaleTypeCommon)
		m.saleRepo.On("FindByID", mock.Anything, testTenantID, sale.ID).Return(sale, nil)

		_, err := service.Confirm(ctx, attendantPrincipal(), sale.ID)

		require.Error(t, err)
		var domainErr *shared.DomainError
		require.True(t, errors.As(err, &domainErr))
		assert.Equal(t, "INVALID_STATE", domainErr.Code)
		m.saleRepo.AssertNotCalled(t, "Update")
	})
}

// ============================================================================
// Cancel Tests
// ============================================================================

func TestSaleService_Cancel(t *testing.T) {
	t.Run("cancels an open common sale", func(t *testing.T) {
		service, m := newTestSaleService()
		ctx := context.Background()

		sale := createStoredSaleWithItem(t)
		m.saleRepo.On("FindByID", mock.Anything, testTenantID, sale.ID).Return(sale, nil)
		m.saleRepo.On("Update", mock.Anything, mock.AnythingOfType("*sales.Sale")).Return(nil)

		resp, err := service.Cancel(ctx, attendantPrincipal(), sale.ID, CancelSaleRequest{Reason: "client no-show"})

		require.NoError(t, err)
		assert.Equal(t, "cancelled", resp.Status)
		assert.Equal(t, "client no-show", resp.CancelReason)
		assert.NotNil(t, resp.CancelledAt)
		m.commissionRepo.AssertNotCalled(t, "ReverseBySaleID")
		m.packageRepo.AssertNotCalled(t, "ReverseForSale")
	})

	t.Run("reverses commissions when cancelling a confirmed sale", func(t *testing.T) {
		service, m := newTestSaleService()
		ctx := context.Background()

		sale := createStoredSaleWithItem(t)
		require.NoError(t, sale.Confirm())
		sale.ClearDomainEvents()

		m.saleRepo.On("FindByID", mock.Anything, testTenantID, sale.ID).Return(sale, nil)
		m.commissionRepo.On("ReverseBySaleID", mock.Anything, testTenantID, sale.ID).Return(1, nil)
		m.saleRepo.On("Update", mock.Anything, mock.AnythingOfType("*sales.Sale")).Return(nil)

		resp, err := service.Cancel(ctx, adminPrincipal(), sale.ID, CancelSaleRequest{Reason: "billing error"})

		require.NoError(t, err)
		assert.Equal(t, "cancelled", resp.Status)
		m.commissionRepo.AssertExpectations(t)
	})

	t.Run("restores the ledger when cancelling a consumption sale", func(t *testing.T) {
		service, m := newTestSaleService()
		ctx := context.Background()

		sale := createStoredConsumptionSale(t)
		m.saleRepo.On("FindByID", mock.Anything, testTenantID, sale.ID).Return(sale, nil)
		m.packageRepo.On("ReverseForSale", mock.Anything, testTenantID, sale.ID).Return(3, nil)
		m.saleRepo.On("Update", mock.Anything, mock.AnythingOfType("*sales.Sale")).Return(nil)

		resp, err := service.Cancel(ctx, attendantPrincipal(), sale.ID, CancelSaleRequest{Reason: "session rescheduled"})

		require.NoError(t, err)
		assert.Equal(t, "cancelled", resp.Status)
		m.packageRepo.AssertExpectations(t)
	})

	t.Run("deactivates the unconsumed package of a package sale", func(t *testing.T) {
		service, m := newTestSaleService()
		ctx := context.Background()

		sale := createStoredPackageSale(t)
		pkg := createStoredPackage(t, sale.ID)
		m.saleRepo.On("FindByID", mock.Anything, testTenantID, sale.ID).Return(sale, nil)
		m.packageRepo.On("FindBySaleID", mock.Anything, testTenantID, sale.ID).Return(pkg, nil)

		var deactivated *packages.ClientPackage
		m.packageRepo.On("Update", mock.Anything, mock.AnythingOfType("*packages.ClientPackage")).
			Run(func(args mock.Arguments) { deactivated = args.Get(1).(*packages.ClientPackage) }).
			Return(nil)
		m.saleRepo.On("Update", mock.Anything, mock.AnythingOfType("*sales.Sale")).Return(nil)

		resp, err := service.Cancel(ctx, attendantPrincipal(), sale.ID, CancelSaleRequest{Reason: "payment bounced"})

		require.NoError(t, err)
		assert.Equal(t, "cancelled", resp.Status)
		require.NotNil(t, deactivated)
		assert.False(t, deactivated.IsActive)
	})

	t.Run("refuses to cancel a package sale once consumed", func(t *testing.T) {
		service, m := newTestSaleService()
		ctx := context.Background()

		sale := createStoredPackageSale(t)
		pkg := createStoredPackage(t, sale.ID)
		require.NoError(t, pkg.Consume(4))
		m.saleRepo.On("FindByID", mock.Anything, testTenantID, sale.ID).Return(sale, nil)
		m.packageRepo.On("FindBySaleID", mock.Anything, testTenantID, sale.ID).Return(pkg, nil)

		_, err := service.Cancel(ctx, attendantPrincipal(), sale.ID, CancelSaleRequest{Reason: "payment bounced"})

		require.Error(t, err)
		var domainErr *shared.DomainError
		require.True(t, errors.As(err, &domainErr))
		assert.Equal(t, "INVALID_STATE", domainErr.Code)
		assert.True(t, sale.IsOpen(), "sale must stay untouched")
		m.saleRepo.AssertNotCalled(t, "Update")
		m.packageRepo.AssertNotCalled(t, "Update")
	})

	t.Run("cancelling twice succeeds without further effect", func(t *testing.T) {
		service, m := newTestSaleService()
		ctx := context.Background()

		sale := createStoredSaleWithItem(t)
		require.NoError(t, sale.Cancel("client no-show"))
		sale.ClearDomainEvents()
		m.saleRepo.On("FindByID", mock.Anything, testTenantID, sale.ID).Return(sale, nil)

		resp, err := service.Cancel(ctx, attendantPrincipal(), sale.ID, CancelSaleRequest{Reason: "again"})

		require.NoError(t, err)
		assert.Equal(t, "cancelled", resp.Status)
		assert.Equal(t, "client no-show", resp.CancelReason)
		m.saleRepo.AssertNotCalled(t, "Update")
		m.commissionRepo.AssertNotCalled(t, "ReverseBySaleID")
		m.packageRepo.AssertNotCalled(t, "ReverseForSale")
	})
}

// ============================================================================
// Read Path Tests
// ============================================================================

func TestSaleService_GetByID(t *testing.T) {
	t.Run("returns the sale with items", func(t *testing.T) {
		service, m := newTestSaleService()
		ctx := context.Background()

		sale := createStoredSaleWithItem(t)
		m.saleRepo.On("FindByID", mock.Anything, testTenantID, sale.ID).Return(sale, nil)

		resp, err := service.GetByID(ctx, attendantPrincipal(), sale.ID)

		require.NoError(t, err)
		assert.Equal(t, sale.ID, resp.ID)
		assert.Equal(t, testSaleNumber, resp.Number)
		require.Len(t, resp.Items, 1)
	})

	t.Run("propagates not found", func(t *testing.T) {
		service, m := newTestSaleService()
		ctx := context.Background()

		missing := uuid.New()
		m.saleRepo.On("FindByID", mock.Anything, testTenantID, missing).Return(nil, shared.ErrNotFound)

		_, err := service.GetByID(ctx, attendantPrincipal(), missing)

		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestSaleService_List(t *testing.T) {
	t.Run("maps the filter to the repository query", func(t *testing.T) {
		service, m := newTestSaleService()
		ctx := context.Background()

		sale := createStoredSaleWithItem(t)
		expected := sales.NewSaleFilter().
			WithStatus(sales.SaleStatusOpen).
			WithClient(testClientID).
			WithPagination(2, 25)
		m.saleRepo.On("FindAll", mock.Anything, testTenantID, expected).Return([]*sales.Sale{sale}, int64(1), nil)

		results, total, err := service.List(ctx, attendantPrincipal(), SaleListFilter{
			Status:   "open",
			ClientID: &testClientID,
			Page:     2,
			PageSize: 25,
		})

		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, results, 1)
		assert.Equal(t, testSaleNumber, results[0].Number)
		m.saleRepo.AssertExpectations(t)
	})

	t.Run("returns an empty page cleanly", func(t *testing.T) {
		service, m := newTestSaleService()
		ctx := context.Background()

		m.saleRepo.On("FindAll", mock.Anything, testTenantID, mock.AnythingOfType("sales.SaleFilter")).Return([]*sales.Sale{}, int64(0), nil)

		results, total, err := service.List(ctx, attendantPrincipal(), SaleListFilter{})

		require.NoError(t, err)
		assert.Equal(t, int64(0), total)
		assert.Empty(t, results)
	})
}
