package handler

import (
	packagesapp "github.com/glowdesk/backend/internal/application/packages"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PackageHandler handles client package API endpoints. Packages are
// created and mutated exclusively through the sale lifecycle, so this
// surface is read-only.
type PackageHandler struct {
	BaseHandler
	packageService *packagesapp.PackageService
}

// NewPackageHandler creates a new PackageHandler
func NewPackageHandler(packageService *packagesapp.PackageService) *PackageHandler {
	return &PackageHandler{
		packageService: packageService,
	}
}

// List godoc
// @ID           listPackages
// @Summary      List client packages
// @Description  Retrieve a paginated list of client packages with optional filtering
// @Tags         packages
// @Produce      json
// @Param        client_id query string false "Filter by client" format(uuid)
// @Param        service_id query string false "Filter by service" format(uuid)
// @Param        active query bool false "Filter by active flag"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} APIResponse[[]packages.PackageResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /packages [get]
func (h *PackageHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var filter packagesapp.PackageListFilter
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

	pkgs, total, err := h.packageService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, pkgs, total, filter.Page, filter.PageSize)
}

// GetByID godoc
// @ID           getPackageById
// @Summary      Get package by ID
// @Description  Retrieve a client package with its balance counters
// @Tags         packages
// @Produce      json
// @Param        id path string true "Package ID" format(uuid)
// @Success      200 {object} APIResponse[packages.PackageResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /packages/{id} [get]
func (h *PackageHandler) GetByID(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	packageID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid package ID format")
		return
	}

	pkg, err := h.packageService.GetByID(c.Request.Context(), tenantID, packageID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, pkg)
}

// GetStatement godoc
// @ID           getPackageStatement
// @Summary      Get package statement
// @Description  Retrieve a package together with its full consumption ledger, including reversed entries
// @Tags         packages
// @Produce      json
// @Param        id path string true "Package ID" format(uuid)
// @Success      200 {object} APIResponse[packages.PackageStatementResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /packages/{id}/statement [get]
func (h *PackageHandler) GetStatement(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	packageID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid package ID format")
		return
	}

	statement, err := h.packageService.GetStatement(c.Request.Context(), tenantID, packageID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, statement)
}

// ListByClient godoc
// @ID           listClientPackages
// @Summary      List packages of a client
// @Description  Retrieve all packages belonging to a client, most recent first
// @Tags         clients
// @Produce      json
// @Param        id path string true "Client ID" format(uuid)
// @Success      200 {object} APIResponse[[]packages.PackageResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /clients/{id}/packages [get]
func (h *PackageHandler) ListByClient(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	clientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid client ID format")
		return
	}

	pkgs, err := h.packageService.ListByClient(c.Request.Context(), tenantID, clientID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, pkgs)
}
