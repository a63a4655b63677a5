package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	financeapp "github.com/glowdesk/backend/internal/application/finance"
	"github.com/glowdesk/backend/internal/domain/finance"
	"github.com/glowdesk/backend/internal/domain/identity"
	"github.com/glowdesk/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockCommissionRepository implements finance.CommissionRepository for testing
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

var _ finance.CommissionRepository = (*MockCommissionRepository)(nil)

// createTestCommission returns an active entry for a 200 base at 10%.
func createTestCommission(t *testing.T, saleID uuid.UUID) *finance.Commission {
	t.Helper()
	commission, err := finance.NewCommission(
		testTenantID,
		testAttendantID,
		saleID,
		uuid.New(),
		testServiceID,
		"SA-2026-00001",
		time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
		valueobject.NewMoneyUSDFromFloat(200),
		decimal.NewFromInt(10),
	)
	require.NoError(t, err)
	commission.ClearDomainEvents()
	return commission
}

func setupCommissionTestRouter(principal identity.Principal) (*gin.Engine, *MockCommissionRepository, *CommissionHandler) {
	gin.SetMode(gin.TestMode)

	mockRepo := new(MockCommissionRepository)
	handler := NewCommissionHandler(financeapp.NewCommissionService(mockRepo))

	router := gin.New()
	router.Use(func(c *gin.Context) {
		setJWTContext(c, principal.TenantID, principal.UserID)
		setJWTRole(c, principal.Role)
		c.Next()
	})

	return router, mockRepo, handler
}

func TestCommissionHandler_List(t *testing.T) {
	t.Run("should scope attendants to their own entries", func(t *testing.T) {
		router, mockRepo, handler := setupCommissionTestRouter(attendantTestPrincipal())
		router.GET("/commissions", handler.List)

		saleID := uuid.New()
		listed := []*finance.Commission{createTestCommission(t, saleID)}
		mockRepo.On("FindAll", mock.Anything, testTenantID, mock.MatchedBy(func(f finance.CommissionFilter) bool {
			return f.AttendantID != nil && *f.AttendantID == testAttendantID
		})).Return(listed, int64(1), nil)

		// The attendant_id filter must be overridden for non-admins
		req, _ := http.NewRequest(http.MethodGet, "/commissions?attendant_id="+uuid.NewString(), nil)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		response := decodeResponse(t, w)
		data := response["data"].([]interface{})
		require.Len(t, data, 1)
		entry := data[0].(map[string]interface{})
		assert.Equal(t, testAttendantID.String(), entry["attendant_id"])
		assert.Equal(t, "20", entry["amount"])
		assert.Equal(t, "active", entry["status"])

		mockRepo.AssertExpectations(t)
	})

	t.Run("should let admins filter by attendant", func(t *testing.T) {
		router, mockRepo, handler := setupCommissionTestRouter(adminTestPrincipal())
		router.GET("/commissions", handler.List)

		saleID := uuid.New()
		listed := []*finance.Commission{createTestCommission(t, saleID)}
		mockRepo.On("FindAll", mock.Anything, testTenantID, mock.MatchedBy(func(f finance.CommissionFilter) bool {
			return f.AttendantID != nil && *f.AttendantID == testAttendantID
		})).Return(listed, int64(1), nil)

		req, _ := http.NewRequest(http.MethodGet, "/commissions?attendant_id="+testAttendantID.String(), nil)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		mockRepo.AssertExpectations(t)
	})

	t.Run("should not scope admins without a filter", func(t *testing.T) {
		router, mockRepo, handler := setupCommissionTestRouter(adminTestPrincipal())
		router.GET("/commissions", handler.List)

		mockRepo.On("FindAll", mock.Anything, testTenantID, mock.MatchedBy(func(f finance.CommissionFilter) bool {
			return f.AttendantID == nil
		})).Return([]*finance.Commission{}, int64(0), nil)

		req, _ := http.NewRequest(http.MethodGet, "/commissions", nil)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		mockRepo.AssertExpectations(t)
	})

	t.Run("should include reversed entries with their reversal time", func(t *testing.T) {
		router, mockRepo, handler := setupCommissionTestRouter(attendantTestPrincipal())
		router.GET("/commissions", handler.List)

		reversed := createTestCommission(t, uuid.New())
		reversed.Reverse()
		reversed.ClearDomainEvents()
		mockRepo.On("FindAll", mock.Anything, testTenantID, mock.AnythingOfType("finance.CommissionFilter")).
			Return([]*finance.Commission{reversed}, int64(1), nil)

		req, _ := http.NewRequest(http.MethodGet, "/commissions?status=reversed", nil)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		response := decodeResponse(t, w)
		data := response["data"].([]interface{})
		require.Len(t, data, 1)
		entry := data[0].(map[string]interface{})
		assert.Equal(t, "reversed", entry["status"])
		assert.NotNil(t, entry["reversed_at"])

		mockRepo.AssertExpectations(t)
	})

	t.Run("should return 400 for an invalid status filter", func(t *testing.T) {
		router, _, handler := setupCommissionTestRouter(attendantTestPrincipal())
		router.GET("/commissions", handler.List)

		req, _ := http.NewRequest(http.MethodGet, "/commissions?status=pending", nil)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestCommissionHandler_ListBySale(t *testing.T) {
	t.Run("should list the commissions a sale generated", func(t *testing.T) {
		router, mockRepo, handler := setupCommissionTestRouter(attendantTestPrincipal())
		router.GET("/sales/:id/commissions", handler.ListBySale)

		saleID := uuid.New()
		active := createTestCommission(t, saleID)
		reversed := createTestCommission(t, saleID)
		reversed.Reverse()
		reversed.ClearDomainEvents()
		mockRepo.On("FindBySaleID", mock.Anything, testTenantID, saleID).
			Return([]*finance.Commission{active, reversed}, nil)

		req, _ := http.NewRequest(http.MethodGet, "/sales/"+saleID.String()+"/commissions", nil)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		response := decodeResponse(t, w)
		data := response["data"].([]interface{})
		require.Len(t, data, 2)
		assert.Equal(t, "active", data[0].(map[string]interface{})["status"])
		assert.Equal(t, "reversed", data[1].(map[string]interface{})["status"])

		mockRepo.AssertExpectations(t)
	})

	t.Run("should return 400 for an invalid sale ID", func(t *testing.T) {
		router, _, handler := setupCommissionTestRouter(attendantTestPrincipal())
		router.GET("/sales/:id/commissions", handler.ListBySale)

		req, _ := http.NewRequest(http.MethodGet, "/sales/not-a-uuid/commissions", nil)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
