package handler

import (
	financeapp "github.com/glowdesk/backend/internal/application/finance"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CommissionHandler handles commission API endpoints. Commissions are
// generated and reversed by the sale lifecycle; this surface is
// read-only.
type CommissionHandler struct {
	BaseHandler
	commissionService *financeapp.CommissionService
}

// NewCommissionHandler creates a new CommissionHandler
func NewCommissionHandler(commissionService *financeapp.CommissionService) *CommissionHandler {
	return &CommissionHandler{
		commissionService: commissionService,
	}
}

// List godoc
// @ID           listCommissions
// @Summary      List commissions
// @Description  Retrieve a paginated list of commissions. Attendants only see their own; admins can filter by attendant.
// @Tags         commissions
// @Produce      json
// @Param        attendant_id query string false "Filter by attendant (admin only)" format(uuid)
// @Param        status query string false "Commission status" Enums(active, reversed)
// @Param        date_from query string false "Reference date lower bound (YYYY-MM-DD)"
// @Param        date_to query string false "Reference date upper bound (YYYY-MM-DD)"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} APIResponse[[]finance.CommissionResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /commissions [get]
func (h *CommissionHandler) List(c *gin.Context) {
	principal, err := getPrincipal(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var filter financeapp.CommissionListFilter
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

	commissions, total, err := h.commissionService.List(c.Request.Context(), principal, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, commissions, total, filter.Page, filter.PageSize)
}

// ListBySale godoc
// @ID           listSaleCommissions
// @Summary      List commissions of a sale
// @Description  Retrieve all commissions generated by a sale, including reversed entries
// @Tags         sales
// @Produce      json
// @Param        id path string true "Sale ID" format(uuid)
// @Success      200 {object} APIResponse[[]finance.CommissionResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /sales/{id}/commissions [get]
func (h *CommissionHandler) ListBySale(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	saleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid sale ID format")
		return
	}

	commissions, err := h.commissionService.ListBySale(c.Request.Context(), tenantID, saleID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, commissions)
}
