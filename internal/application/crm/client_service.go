package crm

import (
	"context"

	"github.com/glowdesk/backend/internal/domain/crm"
	"github.com/glowdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ClientService handles client registry operations
type ClientService struct {
	clientRepo crm.ClientRepository
}

// NewClientService creates a new ClientService
func NewClientService(clientRepo crm.ClientRepository) *ClientService {
	return &ClientService{
		clientRepo: clientRepo,
	}
}

// Create registers a new client
func (s *ClientService) Create(ctx context.Context, tenantID uuid.UUID, req CreateClientRequest) (*ClientResponse, error) {
	if req.TaxID != "" {
		exists, err := s.clientRepo.ExistsByTaxID(ctx, tenantID, req.TaxID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, shared.NewDomainError("ALREADY_EXISTS", "A client with this tax ID already exists")
		}
	}

	client, err := crm.NewClient(tenantID, req.Name)
	if err != nil {
		return nil, err
	}

	if err := s.applyOptionalFields(client, req); err != nil {
		return nil, err
	}

	if err := s.clientRepo.Create(ctx, client); err != nil {
		return nil, err
	}

	response := ToClientResponse(client)
	return &response, nil
}

func (s *ClientService) applyOptionalFields(client *crm.Client, req CreateClientRequest) error {
	if req.Phone != "" {
		if err := client.SetPhone(req.Phone); err != nil {
			return err
		}
	}
	if req.Email != "" {
		if err := client.SetEmail(req.Email); err != nil {
			return err
		}
	}
	if req.TaxID != "" {
		if err := client.SetTaxID(req.TaxID); err != nil {
			return err
		}
	}
	if req.ReferralSource != "" {
		if err := client.SetReferralSource(req.ReferralSource); err != nil {
			return err
		}
	}
	if req.BirthDate != nil {
		if err := client.SetBirthDate(req.BirthDate); err != nil {
			return err
		}
	}
	if req.Notes != "" {
		client.SetNotes(req.Notes)
	}
	return nil
}

// GetByID retrieves a client by ID
func (s *ClientService) GetByID(ctx context.Context, tenantID, clientID uuid.UUID) (*ClientResponse, error) {
	client, err := s.clientRepo.FindByID(ctx, tenantID, clientID)
	if err != nil {
		return nil, err
	}
	response := ToClientResponse(client)
	return &response, nil
}

// List retrieves clients with filtering and pagination. The keyword
// search is diacritic-insensitive: it matches the normalized search
// name as well as phone and tax ID.
func (s *ClientService) List(ctx context.Context, tenantID uuid.UUID, filter ClientListFilter) ([]ClientResponse, int64, error) {
	domainFilter := crm.NewClientFilter()
	if filter.Search != "" {
		domainFilter = domainFilter.WithKeyword(crm.NormalizeName(filter.Search))
	}
	if filter.Status != "" {
		domainFilter = domainFilter.WithStatus(crm.ClientStatus(filter.Status))
	}
	if filter.Page > 0 || filter.PageSize > 0 {
		domainFilter = domainFilter.WithPagination(filter.Page, filter.PageSize)
	}

	clients, total, err := s.clientRepo.FindAll(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToClientResponses(clients), total, nil
}

// Update changes a client's registry data
func (s *ClientService) Update(ctx context.Context, tenantID, clientID uuid.UUID, req UpdateClientRequest) (*ClientResponse, error) {
	client, err := s.clientRepo.FindByID(ctx, tenantID, clientID)
	if err != nil {
		return nil, err
	}

	if req.TaxID != nil && *req.TaxID != "" && *req.TaxID != client.TaxID {
		exists, err := s.clientRepo.ExistsByTaxID(ctx, tenantID, *req.TaxID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, shared.NewDomainError("ALREADY_EXISTS", "A client with this tax ID already exists")
		}
	}

	if req.Name != nil {
		if err := client.SetName(*req.Name); err != nil {
			return nil, err
		}
	}
	if req.Phone != nil {
		if err := client.SetPhone(*req.Phone); err != nil {
			return nil, err
		}
	}
	if req.Email != nil {
		if err := client.SetEmail(*req.Email); err != nil {
			return nil, err
		}
	}
	if req.TaxID != nil {
		if err := client.SetTaxID(*req.TaxID); err != nil {
			return nil, err
		}
	}
	if req.ReferralSource != nil {
		if err := client.SetReferralSource(*req.ReferralSource); err != nil {
			return nil, err
		}
	}
	if req.BirthDate != nil {
		if err := client.SetBirthDate(req.BirthDate); err != nil {
			return nil, err
		}
	}
	if req.Notes != nil {
		client.SetNotes(*req.Notes)
	}

	if err := s.clientRepo.Update(ctx, client); err != nil {
		return nil, err
	}

	response := ToClientResponse(client)
	return &response, nil
}

// Deactivate retires a client while keeping their sale and package
// history reachable.
func (s *ClientService) Deactivate(ctx context.Context, tenantID, clientID uuid.UUID) error {
	client, err := s.clientRepo.FindByID(ctx, tenantID, clientID)
	if err != nil {
		return err
	}

	if err := client.Deactivate(); err != nil {
		return err
	}

	return s.clientRepo.Update(ctx, client)
}

// Reactivate restores a deactivated client
func (s *ClientService) Reactivate(ctx context.Context, tenantID, clientID uuid.UUID) error {
	client, err := s.clientRepo.FindByID(ctx, tenantID, clientID)
	if err != nil {
		return err
	}

	if err := client.Reactivate(); err != nil {
		return err
	}

	return s.clientRepo.Update(ctx, client)
}
