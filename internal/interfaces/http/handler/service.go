package handler

import (
	catalogapp "github.com/glowdesk/backend/internal/application/catalog"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ServiceHandler handles service catalog API endpoints
type ServiceHandler struct {
	BaseHandler
	catalogService *catalogapp.CatalogService
}

// NewServiceHandler creates a new ServiceHandler
func NewServiceHandler(catalogService *catalogapp.CatalogService) *ServiceHandler {
	return &ServiceHandler{
		catalogService: catalogService,
	}
}

// Create godoc
// @ID           createService
// @Summary      Create a new service
// @Description  Create a service in the catalog, optionally with an initial price tier table
// @Tags         services
// @Accept       json
// @Produce      json
// @Param        request body catalog.CreateServiceRequest true "Service creation request"
// @Success      201 {object} APIResponse[catalog.ServiceResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /services [post]
func (h *ServiceHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req catalogapp.CreateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	service, err := h.catalogService.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, service)
}

// GetByID godoc
// @ID           getServiceById
// @Summary      Get service by ID
// @Description  Retrieve a service with its price tiers
// @Tags         services
// @Produce      json
// @Param        id path string true "Service ID" format(uuid)
// @Success      200 {object} APIResponse[catalog.ServiceResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /services/{id} [get]
func (h *ServiceHandler) GetByID(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	serviceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid service ID format")
		return
	}

	service, err := h.catalogService.GetByID(c.Request.Context(), tenantID, serviceID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, service)
}

// List godoc
// @ID           listServices
// @Summary      List services
// @Description  Retrieve a paginated list of services with optional filtering
// @Tags         services
// @Produce      json
// @Param        search query string false "Search term (service name)"
// @Param        status query string false "Service status" Enums(active, inactive)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} APIResponse[[]catalog.ServiceResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /services [get]
func (h *ServiceHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var filter catalogapp.ServiceListFilter
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

	services, total, err := h.catalogService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, services, total, filter.Page, filter.PageSize)
}

// Update godoc
// @ID           updateService
// @Summary      Update a service
// @Description  Update a service's base attributes. Tier tables are replaced through the tiers endpoint.
// @Tags         services
// @Accept       json
// @Produce      json
// @Param        id path string true "Service ID" format(uuid)
// @Param        request body catalog.UpdateServiceRequest true "Service update request"
// @Success      200 {object} APIResponse[catalog.ServiceResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /services/{id} [put]
func (h *ServiceHandler) Update(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	serviceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid service ID format")
		return
	}

	var req catalogapp.UpdateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	service, err := h.catalogService.Update(c.Request.Context(), tenantID, serviceID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, service)
}

// ReplaceTiers godoc
// @ID           replaceServiceTiers
// @Summary      Replace service price tiers
// @Description  Replace the full tier table for a service. Tiers must not overlap within a sale type; an empty list clears the table and pricing falls back to the base price.
// @Tags         services
// @Accept       json
// @Produce      json
// @Param        id path string true "Service ID" format(uuid)
// @Param        request body catalog.ReplaceTiersRequest true "New tier table"
// @Success      200 {object} APIResponse[catalog.ServiceResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /services/{id}/tiers [put]
func (h *ServiceHandler) ReplaceTiers(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	serviceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid service ID format")
		return
	}

	var req catalogapp.ReplaceTiersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	service, err := h.catalogService.ReplaceTiers(c.Request.Context(), tenantID, serviceID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, service)
}

// PreviewPrice godoc
// @ID           previewServicePrice
// @Summary      Preview a price
// @Description  Compute the price for a quantity of this service without creating a sale. The response flags quantities that fall outside the configured tier table.
// @Tags         services
// @Produce      json
// @Param        id path string true "Service ID" format(uuid)
// @Param        quantity query int true "Quantity to price" minimum(1)
// @Param        sale_type query string false "Sale type" Enums(common, package_sale, package_consumption) default(common)
// @Success      200 {object} APIResponse[catalog.PricePreviewResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /services/{id}/price-preview [get]
func (h *ServiceHandler) PreviewPrice(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	serviceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid service ID format")
		return
	}

	var query catalogapp.PricePreviewQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	preview, err := h.catalogService.PreviewPrice(c.Request.Context(), tenantID, serviceID, query)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, preview)
}

// Deactivate godoc
// @ID           deactivateService
// @Summary      Deactivate a service
// @Description  Soft-deactivate a service. Existing sales keep their references; new sales cannot use it.
// @Tags         services
// @Produce      json
// @Param        id path string true "Service ID" format(uuid)
// @Success      204
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /services/{id}/deactivate [post]
func (h *ServiceHandler) Deactivate(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	serviceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid service ID format")
		return
	}

	if err := h.catalogService.Deactivate(c.Request.Context(), tenantID, serviceID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

// Reactivate godoc
// @ID           reactivateService
// @Summary      Reactivate a service
// @Description  Return a deactivated service to the active state
// @Tags         services
// @Produce      json
// @Param        id path string true "Service ID" format(uuid)
// @Success      204
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /services/{id}/reactivate [post]
func (h *ServiceHandler) Reactivate(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	serviceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid service ID format")
		return
	}

	if err := h.catalogService.Reactivate(c.Request.Context(), tenantID, serviceID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}
