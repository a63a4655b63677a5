package handler

import (
	crmapp "github.com/glowdesk/backend/internal/application/crm"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ClientHandler handles client-related API endpoints
type ClientHandler struct {
	BaseHandler
	clientService *crmapp.ClientService
}

// NewClientHandler creates a new ClientHandler
func NewClientHandler(clientService *crmapp.ClientService) *ClientHandler {
	return &ClientHandler{
		clientService: clientService,
	}
}

// Create godoc
// @ID           createClient
// @Summary      Create a new client
// @Description  Register a client in the CRM. Name is the only required field.
// @Tags         clients
// @Accept       json
// @Produce      json
// @Param        request body crm.CreateClientRequest true "Client creation request"
// @Success      201 {object} APIResponse[crm.ClientResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /clients [post]
func (h *ClientHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req crmapp.CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	client, err := h.clientService.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, client)
}

// GetByID godoc
// @ID           getClientById
// @Summary      Get client by ID
// @Description  Retrieve a client by its ID
// @Tags         clients
// @Produce      json
// @Param        id path string true "Client ID" format(uuid)
// @Success      200 {object} APIResponse[crm.ClientResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /clients/{id} [get]
func (h *ClientHandler) GetByID(c *gin.Context) {
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

	client, err := h.clientService.GetByID(c.Request.Context(), tenantID, clientID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, client)
}

// List godoc
// @ID           listClients
// @Summary      List clients
// @Description  Retrieve a paginated list of clients with optional filtering
// @Tags         clients
// @Produce      json
// @Param        search query string false "Search term (name, phone, email)"
// @Param        status query string false "Client status" Enums(active, inactive)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} APIResponse[[]crm.ClientResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /clients [get]
func (h *ClientHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var filter crmapp.ClientListFilter
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

	clients, total, err := h.clientService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, clients, total, filter.Page, filter.PageSize)
}

// Update godoc
// @ID           updateClient
// @Summary      Update a client
// @Description  Update an existing client's contact details
// @Tags         clients
// @Accept       json
// @Produce      json
// @Param        id path string true "Client ID" format(uuid)
// @Param        request body crm.UpdateClientRequest true "Client update request"
// @Success      200 {object} APIResponse[crm.ClientResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /clients/{id} [put]
func (h *ClientHandler) Update(c *gin.Context) {
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

	var req crmapp.UpdateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	client, err := h.clientService.Update(c.Request.Context(), tenantID, clientID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, client)
}

// Deactivate godoc
// @ID           deactivateClient
// @Summary      Deactivate a client
// @Description  Soft-deactivate a client. History is preserved; new sales cannot reference the client.
// @Tags         clients
// @Produce      json
// @Param        id path string true "Client ID" format(uuid)
// @Success      204
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /clients/{id}/deactivate [post]
func (h *ClientHandler) Deactivate(c *gin.Context) {
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

	if err := h.clientService.Deactivate(c.Request.Context(), tenantID, clientID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

// Reactivate godoc
// @ID           reactivateClient
// @Summary      Reactivate a client
// @Description  Return a deactivated client to the active state
// @Tags         clients
// @Produce      json
// @Param        id path string true "Client ID" format(uuid)
// @Success      204
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /clients/{id}/reactivate [post]
func (h *ClientHandler) Reactivate(c *gin.Context) {
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

	if err := h.clientService.Reactivate(c.Request.Context(), tenantID, clientID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}
