package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	salesapp "github.com/glowdesk/backend/internal/application/sales"
	"github.com/glowdesk/backend/internal/domain/catalog"
	"github.com/glowdesk/backend/internal/domain/crm"
	"github.com/glowdesk/backend/internal/domain/identity"
	"github.com/glowdesk/backend/internal/domain/sales"
	"github.com/glowdesk/backend/internal/domain/shared"
	"github.com/glowdesk/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockSaleRepository implements sales.SaleRepository for testing
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

var _ sales.SaleRepository = (*MockSaleRepository)(nil)

// Shared fixture identities for handler tests. The tenant matches the
// development default so requests without explicit context still land
// in the same tenant.
var (
	testTenantID    = uuid.MustParse("00000000-0000-0000-0000-000000000001")
	testAdminID     = uuid.New()
	testAttendantID = uuid.New()
	testClientID    = uuid.New()
	testServiceID   = uuid.New()
	testPackageID   = uuid.New()
)

func attendantTestPrincipal() identity.Principal {
	return identity.Principal{UserID: testAttendantID, TenantID: testTenantID, Role: identity.RoleAttendant}
}

func adminTestPrincipal() identity.Principal {
	return identity.Principal{UserID: testAdminID, TenantID: testTenantID, Role: identity.RoleAdmin}
}

type saleHandlerMocks struct {
	saleRepo       *MockSaleRepository
	packageRepo    *MockPackageRepository
	commissionRepo *MockCommissionRepository
	serviceRepo    *MockServiceRepository
	clientRepo     *MockClientRepository
}

func setupSaleTestRouter(principal identity.Principal) (*gin.Engine, *saleHandlerMocks, *SaleHandler) {
	gin.SetMode(gin.TestMode)

	mocks := &saleHandlerMocks{
		saleRepo:       new(MockSaleRepository),
		packageRepo:    new(MockPackageRepository),
		commissionRepo: new(MockCommissionRepository),
		serviceRepo:    new(MockServiceRepository),
		clientRepo:     new(MockClientRepository),
	}
	scope := salesapp.NewNoOpTransactionScope(
		mocks.saleRepo, mocks.packageRepo, mocks.commissionRepo, mocks.serviceRepo, mocks.clientRepo,
	)
	handler := NewSaleHandler(salesapp.NewSaleService(scope))

	router := gin.New()
	// Test authentication middleware that sets JWT context values
	router.Use(func(c *gin.Context) {
		setJWTContext(c, principal.TenantID, principal.UserID)
		setJWTRole(c, principal.Role)
		c.Next()
	})

	return router, mocks, handler
}

func (m *saleHandlerMocks) assertExpectations(t *testing.T) {
	t.Helper()
	m.saleRepo.AssertExpectations(t)
	m.packageRepo.AssertExpectations(t)
	m.commissionRepo.AssertExpectations(t)
	m.serviceRepo.AssertExpectations(t)
	m.clientRepo.AssertExpectations(t)
}

func createTestClient(t *testing.T) *crm.Client {
	t.Helper()
	client, err := crm.NewClient(testTenantID, "Maria Santos")
	require.NoError(t, err)
	client.ID = testClientID
	client.ClearDomainEvents()
	return client
}

// createTestService returns a service with one open-ended common tier
// at 100/unit and a 10% commission rate.
func createTestService(t *testing.T) *catalog.Service {
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

func createTestSale(t *testing.T, saleType sales.SaleType) *sales.Sale {
	t.Helper()
	sale, err := sales.NewSale(testTenantID, "SA-2026-00001", testClientID, "Maria Santos", testAttendantID,
		time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), saleType, sales.PaymentMethodCash)
	require.NoError(t, err)
	sale.ClearDomainEvents()
	return sale
}

func createTestSaleWithServiceItem(t *testing.T) *sales.Sale {
	t.Helper()
	sale := createTestSale(t, sales.SaleTypeCommon)
	item, err := sales.NewServiceItem(testServiceID, "Deep Tissue Massage", 2, valueobject.NewMoneyUSD(decimal.NewFromInt(200)), sales.DiscountTypeNone, decimal.Zero)
	require.NoError(t, err)
	require.NoError(t, sale.AddItem(*item))
	sale.ClearDomainEvents()
	return sale
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	return response
}

// Tests

func TestSaleHandler_Create(t *testing.T) {
	t.Run("should create a sale with an ad-hoc item", func(t *testing.T) {
		router, mocks, handler := setupSaleTestRouter(attendantTestPrincipal())
		router.POST("/sales", handler.Create)

		client := createTestClient(t)
		mocks.clientRepo.On("FindByID", mock.Anything, testTenantID, testClientID).Return(client, nil)
		mocks.saleRepo.On("GenerateNumber", mock.Anything, testTenantID).Return("SA-2026-00001", nil)
		mocks.saleRepo.On("Create", mock.Anything, mock.AnythingOfType("*sales.Sale")).Return(nil)

		price := decimal.NewFromInt(80)
		reqBody := salesapp.CreateSaleRequest{
			ClientID:      testClientID,
			Type:          "common",
			PaymentMethod: "cash",
			Items: []salesapp.SaleItemInput{
				{Description: "Blowout", Quantity: 1, UnitPrice: &price},
			},
		}
		body, _ := json.Marshal(reqBody)

		req, _ := http.NewRequest(http.MethodPost, "/sales", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)

		response := decodeResponse(t, w)
		assert.True(t, response["success"].(bool))
		data := response["data"].(map[string]interface{})
		assert.Equal(t, "SA-2026-00001", data["number"])
		assert.Equal(t, "open", data["status"])
		assert.Equal(t, "80", data["total"])

		mocks.assertExpectations(t)
	})

	t.Run("should price service items from the tier table", func(t *testing.T) {
		router, mocks, handler := setupSaleTestRouter(attendantTestPrincipal())
		router.POST("/sales", handler.Create)

		mocks.clientRepo.On("FindByID", mock.Anything, testTenantID, testClientID).Return(createTestClient(t), nil)
		mocks.serviceRepo.On("FindByID", mock.Anything, testTenantID, testServiceID).Return(createTestService(t), nil)
		mocks.saleRepo.On("GenerateNumber", mock.Anything, testTenantID).Return("SA-2026-00002", nil)
		mocks.saleRepo.On("Create", mock.Anything, mock.AnythingOfType("*sales.Sale")).Return(nil)

		reqBody := salesapp.CreateSaleRequest{
			ClientID:      testClientID,
			Type:          "common",
			PaymentMethod: "credit_card",
			Items: []salesapp.SaleItemInput{
				{ServiceID: &testServiceID, Quantity: 2},
			},
		}
		body, _ := json.Marshal(reqBody)

		req, _ := http.NewRequest(http.MethodPost, "/sales", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)

		response := decodeResponse(t, w)
		data := response["data"].(map[string]interface{})
		assert.Equal(t, "200", data["total"])
		items := data["items"].([]interface{})
		require.Len(t, items, 1)
		assert.Equal(t, "Deep Tissue Massage", items[0].(map[string]interface{})["description"])

		mocks.assertExpectations(t)
	})

	t.Run("should create the package on a package sale", func(t *testing.T) {
		router, mocks, handler := setupSaleTestRouter(attendantTestPrincipal())
		router.POST("/sales", handler.Create)

		mocks.clientRepo.On("FindByID", mock.Anything, testTenantID, testClientID).Return(createTestClient(t), nil)
		mocks.serviceRepo.On("FindByID", mock.Anything, testTenantID, testServiceID).Return(createTestService(t), nil)
		mocks.saleRepo.On("GenerateNumber", mock.Anything, testTenantID).Return("SA-2026-00003", nil)
		mocks.saleRepo.On("Create", mock.Anything, mock.AnythingOfType("*sales.Sale")).Return(nil)
		mocks.packageRepo.On("Create", mock.Anything, mock.AnythingOfType("*packages.ClientPackage")).Return(nil)

		reqBody := salesapp.CreateSaleRequest{
			ClientID:      testClientID,
			Type:          "package_sale",
			PaymentMethod: "cash",
			ServiceID:     &testServiceID,
			Items: []salesapp.SaleItemInput{
				{ServiceID: &testServiceID, Quantity: 10},
			},
		}
		body, _ := json.Marshal(reqBody)

		req, _ := http.NewRequest(http.MethodPost, "/sales", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		mocks.assertExpectations(t)
	})

	t.Run("should return insufficient balance when the package cannot cover the draw", func(t *testing.T) {
		router, mocks, handler := setupSaleTestRouter(attendantTestPrincipal())
		router.POST("/sales", handler.Create)

		pkg := createTestPackage(t, uuid.New())
		mocks.clientRepo.On("FindByID", mock.Anything, testTenantID, testClientID).Return(createTestClient(t), nil)
		mocks.serviceRepo.On("FindByID", mock.Anything, testTenantID, testServiceID).Return(createTestService(t), nil)
		mocks.saleRepo.On("GenerateNumber", mock.Anything, testTenantID).Return("SA-2026-00004", nil)
		mocks.saleRepo.On("Create", mock.Anything, mock.AnythingOfType("*sales.Sale")).Return(nil)
		mocks.packageRepo.On("FindByID", mock.Anything, testTenantID, testPackageID).Return(pkg, nil)
		mocks.packageRepo.On("Consume", mock.Anything, testTenantID, testPackageID, mock.AnythingOfType("uuid.UUID"), 25).
			Return(shared.ErrInsufficientBalance)

		reqBody := salesapp.CreateSaleRequest{
			ClientID:      testClientID,
			Type:          "package_consumption",
			PaymentMethod: "package",
			PackageID:     &testPackageID,
			Items: []salesapp.SaleItemInput{
				{ServiceID: &testServiceID, Quantity: 25},
			},
		}
		body, _ := json.Marshal(reqBody)

		req, _ := http.NewRequest(http.MethodPost, "/sales", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)

		response := decodeResponse(t, w)
		errInfo := response["error"].(map[string]interface{})
		assert.Equal(t, "INSUFFICIENT_BALANCE", errInfo["code"])

		mocks.assertExpectations(t)
	})

	t.Run("should return 404 when the client does not exist", func(t *testing.T) {
		router, mocks, handler := setupSaleTestRouter(attendantTestPrincipal())
		router.POST("/sales", handler.Create)

		mocks.clientRepo.On("FindByID", mock.Anything, testTenantID, testClientID).Return(nil, shared.ErrNotFound)

		price := decimal.NewFromInt(50)
		reqBody := salesapp.CreateSaleRequest{
			ClientID:      testClientID,
			Type:          "common",
			PaymentMethod: "cash",
			Items: []salesapp.SaleItemInput{
				{Description: "Manicure", Quantity: 1, UnitPrice: &price},
			},
		}
		body, _ := json.Marshal(reqBody)

		req, _ := http.NewRequest(http.MethodPost, "/sales", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		mocks.assertExpectations(t)
	})

	t.Run("should reject a deactivated client", func(t *testing.T) {
		router, mocks, handler := setupSaleTestRouter(attendantTestPrincipal())
		router.POST("/sales", handler.Create)

		client := createTestClient(t)
		require.NoError(t, client.Deactivate())
		mocks.clientRepo.On("FindByID", mock.Anything, testTenantID, testClientID).Return(client, nil)

		price := decimal.NewFromInt(50)
		reqBody := salesapp.CreateSaleRequest{
			ClientID:      testClientID,
			Type:          "common",
			PaymentMethod: "cash",
			Items: []salesapp.SaleItemInput{
				{Description: "Manicure", Quantity: 1, UnitPrice: &price},
			},
		}
		body, _ := json.Marshal(reqBody)

		req, _ := http.NewRequest(http.MethodPost, "/sales", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mocks.assertExpectations(t)
	})

	t.Run("should return 400 for missing items", func(t *testing.T) {
		router, _, handler := setupSaleTestRouter(attendantTestPrincipal())
		router.POST("/sales", handler.Create)

		reqBody := map[string]interface{}{
			"client_id":      testClientID.String(),
			"type":           "common",
			"payment_method": "cash",
		}
		body, _ := json.Marshal(reqBody)

		req, _ := http.NewRequest(http.MethodPost, "/sales", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("should return 400 for an unknown sale type", func(t *testing.T) {
		router, _, handler := setupSaleTestRouter(attendantTestPrincipal())
		router.POST("/sales", handler.Create)

		reqBody := map[string]interface{}{
			"client_id":      testClientID.String(),
			"type":           "subscription",
			"payment_method": "cash",
			"items":          []map[string]interface{}{{"description": "X", "quantity": 1, "unit_price": "10"}},
		}
		body, _ := json.Marshal(reqBody)

		req, _ := http.NewRequest(http.MethodPost, "/sales", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestSaleHandler_GetByID(t *testing.T) {
	t.Run("should get sale by ID", func(t *testing.T) {
		router, mocks, handler := setupSaleTestRouter(attendantTestPrincipal())
		router.GET("/sales/:id", handler.GetByID)

		sale := createTestSaleWithServiceItem(t)
		mocks.saleRepo.On("FindByID", mock.Anything, testTenantID, sale.ID).Return(sale, nil)

		req, _ := http.NewRequest(http.MethodGet, "/sales/"+sale.ID.String(), nil)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		response := decodeResponse(t, w)
		assert.True(t, response["success"].(bool))
		data := response["data"].(map[string]interface{})
		assert.Equal(t, "SA-2026-00001", data["number"])

		mocks.assertExpectations(t)
	})

	t.Run("should return 404 for a non-existent sale", func(t *testing.T) {
		router, mocks, handler := setupSaleTestRouter(attendantTestPrincipal())
		router.GET("/sales/:id", handler.GetByID)

		saleID := uuid.New()
		mocks.saleRepo.On("FindByID", mock.Anything, testTenantID, saleID).Return(nil, shared.ErrNotFound)

		req, _ := http.NewRequest(http.MethodGet, "/sales/"+saleID.String(), nil)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		mocks.assertExpectations(t)
	})

	t.Run("should return 400 for an invalid sale ID", func(t *testing.T) {
		router, _, handler := setupSaleTestRouter(attendantTestPrincipal())
		router.GET("/sales/:id", handler.GetByID)

		req, _ := http.NewRequest(http.MethodGet, "/sales/invalid-uuid", nil)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestSaleHandler_List(t *testing.T) {
	t.Run("should list sales with pagination meta", func(t *testing.T) {
		router, mocks, handler := setupSaleTestRouter(attendantTestPrincipal())
		router.GET("/sales", handler.List)

		listed := []*sales.Sale{createTestSaleWithServiceItem(t)}
		mocks.saleRepo.On("FindAll", mock.Anything, testTenantID, mock.AnythingOfType("sales.SaleFilter")).
			Return(listed, int64(1), nil)

		req, _ := http.NewRequest(http.MethodGet, "/sales?status=open&page=1&page_size=10", nil)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		response := decodeResponse(t, w)
		assert.True(t, response["success"].(bool))
		meta := response["meta"].(map[string]interface{})
		assert.Equal(t, float64(1), meta["total"])
		assert.Equal(t, float64(10), meta["page_size"])

		mocks.assertExpectations(t)
	})

	t.Run("should return 400 for a malformed date filter", func(t *testing.T) {
		router, _, handler := setupSaleTestRouter(attendantTestPrincipal())
		router.GET("/sales", handler.List)

		req, _ := http.NewRequest(http.MethodGet, "/sales?date_from=14-03-2026", nil)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestSaleHandler_Update(t *testing.T) {
	t.Run("should replace items on an open sale", func(t *testing.T) {
		router, mocks, handler := setupSaleTestRouter(attendantTestPrincipal())
		router.PUT("/sales/:id", handler.Update)

		sale := createTestSaleWithServiceItem(t)
		mocks.saleRepo.On("FindByID", mock.Anything, testTenantID, sale.ID).Return(sale, nil)
		mocks.saleRepo.On("Update", mock.Anything, mock.AnythingOfType("*sales.Sale")).Return(nil)

		price := decimal.NewFromInt(120)
		reqBody := salesapp.UpdateSaleRequest{
			Items: []salesapp.SaleItemInput{
				{Description: "Hair Treatment", Quantity: 1, UnitPrice: &price},
			},
		}
		body, _ := json.Marshal(reqBody)

		req, _ := http.NewRequest(http.MethodPut, "/sales/"+sale.ID.String(), bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		response := decodeResponse(t, w)
		data := response["data"].(map[string]interface{})
		assert.Equal(t, "120", data["total"])

		mocks.assertExpectations(t)
	})

	t.Run("should refuse another attendant's sale", func(t *testing.T) {
		otherAttendant := identity.Principal{UserID: uuid.New(), TenantID: testTenantID, Role: identity.RoleAttendant}
		router, mocks, handler := setupSaleTestRouter(otherAttendant)
		router.PUT("/sales/:id", handler.Update)

		sale := createTestSaleWithServiceItem(t)
		mocks.saleRepo.On("FindByID", mock.Anything, testTenantID, sale.ID).Return(sale, nil)

		notes := "updated"
		reqBody := salesapp.UpdateSaleRequest{Notes: &notes}
		body, _ := json.Marshal(reqBody)

		req, _ := http.NewRequest(http.MethodPut, "/sales/"+sale.ID.String(), bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
		mocks.assertExpectations(t)
	})

	t.Run("should allow an admin to edit any sale", func(t *testing.T) {
		router, mocks, handler := setupSaleTestRouter(adminTestPrincipal())
		router.PUT("/sales/:id", handler.Update)

		sale := createTestSaleWithServiceItem(t)
		mocks.saleRepo.On("FindByID", mock.Anything, testTenantID, sale.ID).Return(sale, nil)
		mocks.saleRepo.On("Update", mock.Anything, mock.AnythingOfType("*sales.Sale")).Return(nil)

		notes := "admin adjustment"
		reqBody := salesapp.UpdateSaleRequest{Notes: &notes}
		body, _ := json.Marshal(reqBody)

		req, _ := http.NewRequest(http.MethodPut, "/sales/"+sale.ID.String(), bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		mocks.assertExpectations(t)
	})

	t.Run("should refuse edits on a confirmed sale", func(t *testing.T) {
		router, mocks, handler := setupSaleTestRouter(attendantTestPrincipal())
		router.PUT("/sales/:id", handler.Update)

		sale := createTestSaleWithServiceItem(t)
		require.NoError(t, sale.Confirm())
		sale.ClearDomainEvents()
		mocks.saleRepo.On("FindByID", mock.Anything, testTenantID, sale.ID).Return(sale, nil)

		notes := "too late"
		reqBody := salesapp.UpdateSaleRequest{Notes: &notes}
		body, _ := json.Marshal(reqBody)

		req, _ := http.NewRequest(http.MethodPut, "/sales/"+sale.ID.String(), bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)

		response := decodeResponse(t, w)
		errInfo := response["error"].(map[string]interface{})
		assert.Equal(t, "INVALID_STATE", errInfo["code"])

		mocks.assertExpectations(t)
	})
}

func TestSaleHandler_Confirm(t *testing.T) {
	t.Run("should confirm and generate commissions for service items", func(t *testing.T) {
		router, mocks, handler := setupSaleTestRouter(attendantTestPrincipal())
		router.POST("/sales/:id/confirm", handler.Confirm)

		sale := createTestSaleWithServiceItem(t)
		mocks.saleRepo.On("FindByID", mock.Anything, testTenantID, sale.ID).Return(sale, nil)
		mocks.commissionRepo.On("ExistsForSale", mock.Anything, testTenantID, sale.ID).Return(false, nil)
		mocks.serviceRepo.On("FindByID", mock.Anything, testTenantID, testServiceID).Return(createTestService(t), nil)
		mocks.commissionRepo.On("CreateBatch", mock.Anything, mock.AnythingOfType("[]*finance.Commission")).Return(nil)
		mocks.saleRepo.On("Update", mock.Anything, mock.AnythingOfType("*sales.Sale")).Return(nil)

		req, _ := http.NewRequest(http.MethodPost, "/sales/"+sale.ID.String()+"/confirm", nil)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		response := decodeResponse(t, w)
		data := response["data"].(map[string]interface{})
		assert.Equal(t, "confirmed", data["status"])

		mocks.assertExpectations(t)
	})

	t.Run("should confirm an ad-hoc-only sale without commissions", func(t *testing.T) {
		router, mocks, handler := setupSaleTestRouter(attendantTestPrincipal())
		router.POST("/sales/:id/confirm", handler.Confirm)

		sale := createTestSale(t, sales.SaleTypeCommon)
		item, err := sales.NewAdHocItem("Gift wrap", 1, valueobject.NewMoneyUSDFromFloat(15), sales.DiscountTypeNone, decimal.Zero)
		require.NoError(t, err)
		require.NoError(t, sale.AddItem(*item))
		sale.ClearDomainEvents()

		mocks.saleRepo.On("FindByID", mock.Anything, testTenantID, sale.ID).Return(sale, nil)
		mocks.commissionRepo.On("ExistsForSale", mock.Anything, testTenantID, sale.ID).Return(false, nil)
		mocks.saleRepo.On("Update", mock.Anything, mock.AnythingOfType("*sales.Sale")).Return(nil)

		req, _ := http.NewRequest(http.MethodPost, "/sales/"+sale.ID.String()+"/confirm", nil)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		mocks.commissionRepo.AssertNotCalled(t, "CreateBatch", mock.Anything, mock.Anything)
		mocks.assertExpectations(t)
	})

	t.Run("should skip generation when commissions already exist", func(t *testing.T) {
		router, mocks, handler := setupSaleTestRouter(attendantTestPrincipal())
		router.POST("/sales/:id/confirm", handler.Confirm)

		sale := createTestSaleWithServiceItem(t)
		mocks.saleRepo.On("FindByID", mock.Anything, testTenantID, sale.ID).Return(sale, nil)
		mocks.commissionRepo.On("ExistsForSale", mock.Anything, testTenantID, sale.ID).Return(true, nil)
		mocks.saleRepo.On("Update", mock.Anything, mock.AnythingOfType("*sales.Sale")).Return(nil)

		req, _ := http.NewRequest(http.MethodPost, "/sales/"+sale.ID.String()+"/confirm", nil)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		mocks.commissionRepo.AssertNotCalled(t, "CreateBatch", mock.Anything, mock.Anything)
		mocks.assertExpectations(t)
	})

	t.Run("should return 400 when the sale is already cancelled", func(t *testing.T) {
		router, mocks, handler := setupSaleTestRouter(attendantTestPrincipal())
		router.POST("/sales/:id/confirm", handler.Confirm)

		sale := createTestSaleWithServiceItem(t)
		require.NoError(t, sale.Cancel("client no-show"))
		sale.ClearDomainEvents()
		mocks.saleRepo.On("FindByID", mock.Anything, testTenantID, sale.ID).Return(sale, nil)

		req, _ := http.NewRequest(http.MethodPost, "/sales/"+sale.ID.String()+"/confirm", nil)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mocks.assertExpectations(t)
	})
}

func TestSaleHandler_Cancel(t *testing.T) {
	t.Run("should cancel an open sale", func(t *testing.T) {
		router, mocks, handler := setupSaleTestRouter(attendantTestPrincipal())
		router.POST("/sales/:id/cancel", handler.Cancel)

		sale := createTestSaleWithServiceItem(t)
		mocks.saleRepo.On("FindByID", mock.Anything, testTenantID, sale.ID).Return(sale, nil)
		mocks.saleRepo.On("Update", mock.Anything, mock.AnythingOfType("*sales.Sale")).Return(nil)

		reqBody := salesapp.CancelSaleRequest{Reason: "client no-show"}
		body, _ := json.Marshal(reqBody)

		req, _ := http.NewRequest(http.MethodPost, "/sales/"+sale.ID.String()+"/cancel", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		response := decodeResponse(t, w)
		data := response["data"].(map[string]interface{})
		assert.Equal(t, "cancelled", data["status"])
		assert.Equal(t, "client no-show", data["cancel_reason"])

		mocks.assertExpectations(t)
	})

	t.Run("should restore consumed credits when cancelling a consumption sale", func(t *testing.T) {
		router, mocks, handler := setupSaleTestRouter(attendantTestPrincipal())
		router.POST("/sales/:id/cancel", handler.Cancel)

		sale := createTestSale(t, sales.SaleTypePackageConsumption)
		require.NoError(t, sale.SetPackageRef(testPackageID))
		item, err := sales.NewServiceItem(testServiceID, "Deep Tissue Massage", 3, valueobject.NewMoneyUSD(decimal.NewFromInt(300)), sales.DiscountTypeNone, decimal.Zero)
		require.NoError(t, err)
		require.NoError(t, sale.AddItem(*item))
		sale.ClearDomainEvents()

		mocks.saleRepo.On("FindByID", mock.Anything, testTenantID, sale.ID).Return(sale, nil)
		mocks.packageRepo.On("ReverseForSale", mock.Anything, testTenantID, sale.ID).Return(3, nil)
		mocks.saleRepo.On("Update", mock.Anything, mock.AnythingOfType("*sales.Sale")).Return(nil)

		reqBody := salesapp.CancelSaleRequest{Reason: "rescheduled"}
		body, _ := json.Marshal(reqBody)

		req, _ := http.NewRequest(http.MethodPost, "/sales/"+sale.ID.String()+"/cancel", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		mocks.assertExpectations(t)
	})

	t.Run("should reverse commissions when cancelling a confirmed sale", func(t *testing.T) {
		router, mocks, handler := setupSaleTestRouter(attendantTestPrincipal())
		router.POST("/sales/:id/cancel", handler.Cancel)

		sale := createTestSaleWithServiceItem(t)
		require.NoError(t, sale.Confirm())
		sale.ClearDomainEvents()

		mocks.saleRepo.On("FindByID", mock.Anything, testTenantID, sale.ID).Return(sale, nil)
		mocks.commissionRepo.On("ReverseBySaleID", mock.Anything, testTenantID, sale.ID).Return(1, nil)
		mocks.saleRepo.On("Update", mock.Anything, mock.AnythingOfType("*sales.Sale")).Return(nil)

		reqBody := salesapp.CancelSaleRequest{Reason: "charge dispute"}
		body, _ := json.Marshal(reqBody)

		req, _ := http.NewRequest(http.MethodPost, "/sales/"+sale.ID.String()+"/cancel", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		mocks.assertExpectations(t)
	})

	t.Run("should be idempotent for an already-cancelled sale", func(t *testing.T) {
		router, mocks, handler := setupSaleTestRouter(attendantTestPrincipal())
		router.POST("/sales/:id/cancel", handler.Cancel)

		sale := createTestSaleWithServiceItem(t)
		require.NoError(t, sale.Cancel("first cancellation"))
		sale.ClearDomainEvents()

		mocks.saleRepo.On("FindByID", mock.Anything, testTenantID, sale.ID).Return(sale, nil)

		reqBody := salesapp.CancelSaleRequest{Reason: "second attempt"}
		body, _ := json.Marshal(reqBody)

		req, _ := http.NewRequest(http.MethodPost, "/sales/"+sale.ID.String()+"/cancel", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		response := decodeResponse(t, w)
		data := response["data"].(map[string]interface{})
		assert.Equal(t, "first cancellation", data["cancel_reason"])

		mocks.saleRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
		mocks.assertExpectations(t)
	})

	t.Run("should require a reason", func(t *testing.T) {
		router, _, handler := setupSaleTestRouter(attendantTestPrincipal())
		router.POST("/sales/:id/cancel", handler.Cancel)

		req, _ := http.NewRequest(http.MethodPost, "/sales/"+uuid.New().String()+"/cancel", bytes.NewBufferString("{}"))
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
