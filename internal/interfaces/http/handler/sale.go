package handler

import (
	salesapp "github.com/glowdesk/backend/internal/application/sales"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SaleHandler handles sale-related API endpoints
type SaleHandler struct {
	BaseHandler
	saleService *salesapp.SaleService
}

// NewSaleHandler creates a new SaleHandler
func NewSaleHandler(saleService *salesapp.SaleService) *SaleHandler {
	return &SaleHandler{
		saleService: saleService,
	}
}

// Create godoc
// @ID           createSale
// @Summary      Create a new sale
// @Description  Create a sale in the open state. Items referencing a service are priced by its tier table. A package_sale creates the client package and a package_consumption debits the referenced package, in the same transaction as the sale.
// @Tags         sales
// @Accept       json
// @Produce      json
// @Param        request body sales.CreateSaleRequest true "Sale creation request"
// @Success      201 {object} APIResponse[sales.SaleResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /sales [post]
func (h *SaleHandler) Create(c *gin.Context) {
	principal, err := getPrincipal(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req salesapp.CreateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	sale, err := h.saleService.Create(c.Request.Context(), principal, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, sale)
}

// GetByID godoc
// @ID           getSaleById
// @Summary      Get sale by ID
// @Description  Retrieve a sale with its items.
// @Tags         sales
// @Produce      json
// @Param        id path string true "Sale ID" format(uuid)
// @Success      200 {object} APIResponse[sales.SaleResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /sales/{id} [get]
func (h *SaleHandler) GetByID(c *gin.Context) {
	principal, err := getPrincipal(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	saleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid sale ID format")
		return
	}

	sale, err := h.saleService.GetByID(c.Request.Context(), principal, saleID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, sale)
}

// List godoc
// @ID           listSales
// @Summary      List sales
// @Description  Retrieve a paginated list of sales with optional filtering.
// @Tags         sales
// @Produce      json
// @Param        search query string false "Search term (sale number, client name)"
// @Param        status query string false "Sale status" Enums(open, confirmed, cancelled)
// @Param        type query string false "Sale type" Enums(common, package_sale, package_consumption)
// @Param        client_id query string false "Filter by client" format(uuid)
// @Param        attendant_id query string false "Filter by attendant" format(uuid)
// @Param        date_from query string false "Sale date lower bound (YYYY-MM-DD)"
// @Param        date_to query string false "Sale date upper bound (YYYY-MM-DD)"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} APIResponse[[]sales.SaleListItemResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /sales [get]
func (h *SaleHandler) List(c *gin.Context) {
	principal, err := getPrincipal(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var filter salesapp.SaleListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	listed, total, err := h.saleService.List(c.Request.Context(), principal, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, listed, total, filter.Page, filter.PageSize)
}

// Update godoc
// @ID           updateSale
// @Summary      Update an open sale
// @Description  Update an open sale. When items are present they replace the full item set and totals are recalculated. Confirmed and cancelled sales reject updates.
// @Tags         sales
// @Accept       json
// @Produce      json
// @Param        id path string true "Sale ID" format(uuid)
// @Param        request body sales.UpdateSaleRequest true "Sale update request"
// @Success      200 {object} APIResponse[sales.SaleResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /sales/{id} [put]
func (h *SaleHandler) Update(c *gin.Context) {
	principal, err := getPrincipal(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	saleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid sale ID format")
		return
	}

	var req salesapp.UpdateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	sale, err := h.saleService.Update(c.Request.Context(), principal, saleID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, sale)
}

// Confirm godoc
// @ID           confirmSale
// @Summary      Confirm a sale
// @Description  Transition an open sale to confirmed. Confirmation generates attendant commissions for service items, once per sale.
// @Tags         sales
// @Produce      json
// @Param        id path string true "Sale ID" format(uuid)
// @Success      200 {object} APIResponse[sales.SaleResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /sales/{id}/confirm [post]
func (h *SaleHandler) Confirm(c *gin.Context) {
	principal, err := getPrincipal(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	saleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid sale ID format")
		return
	}

	sale, err := h.saleService.Confirm(c.Request.Context(), principal, saleID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, sale)
}

// Cancel godoc
// @ID           cancelSale
// @Summary      Cancel a sale
// @Description  Cancel an open or confirmed sale. Package effects are rolled back; cancelling a confirmed sale also reverses its commissions.
// @Tags         sales
// @Accept       json
// @Produce      json
// @Param        id path string true "Sale ID" format(uuid)
// @Param        request body sales.CancelSaleRequest true "Cancellation reason"
// @Success      200 {object} APIResponse[sales.SaleResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /sales/{id}/cancel [post]
func (h *SaleHandler) Cancel(c *gin.Context) {
	principal, err := getPrincipal(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	saleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid sale ID format")
		return
	}

	var req salesapp.CancelSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	sale, err := h.saleService.Cancel(c.Request.Context(), principal, saleID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, sale)
}
