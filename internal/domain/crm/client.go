package crm

import (
	"regexp"
	"strings"
	"time"

	"github.com/glowdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ClientStatus represents the status of a client
type ClientStatus string

const (
	ClientStatusActive   ClientStatus = "active"   // Normal active status
	ClientStatusInactive ClientStatus = "inactive" // Deactivated, history preserved
)

// IsValid checks if the status is valid
func (s ClientStatus) IsValid() bool {
	switch s {
	case ClientStatusActive, ClientStatusInactive:
		return true
	}
	return false
}

// String returns the string representation
func (s ClientStatus) String() string {
	return string(s)
}

// Client represents a customer of the tenant business.
// Clients are never hard-deleted: sales, packages, and commissions
// reference them, so removal is always a soft deactivation.
type Client struct {
	shared.TenantAggregateRoot
	Name           string
	SearchName     string // Normalized (lowercase, diacritics stripped) for lookup
	Phone          string
	Email          string
	TaxID          string
	ReferralSource string
	BirthDate      *time.Time
	Notes          string
	Status         ClientStatus
}

// NewClient creates a new client with required fields
func NewClient(tenantID uuid.UUID, name string) (*Client, error) {
	if err := validateClientName(name); err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	client := &Client{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                name,
		SearchName:          NormalizeName(name),
		Status:              ClientStatusActive,
	}

	client.AddDomainEvent(NewClientCreatedEvent(client))

	return client, nil
}

// SetName sets the client's name and refreshes the search name
func (c *Client) SetName(name string) error {
	if err := validateClientName(name); err != nil {
		return err
	}

	c.Name = strings.TrimSpace(name)
	c.SearchName = NormalizeName(c.Name)
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return nil
}

// SetPhone sets the client's phone number
func (c *Client) SetPhone(phone string) error {
	if phone != "" {
		if err := validatePhone(phone); err != nil {
			return err
		}
	}

	c.Phone = strings.TrimSpace(phone)
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return nil
}

// SetEmail sets the client's email
func (c *Client) SetEmail(email string) error {
	if email != "" {
		if err := validateEmail(email); err != nil {
			return err
		}
		email = strings.ToLower(strings.TrimSpace(email))
	}

	c.Email = email
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return nil
}

// SetTaxID sets the client's tax identifier.
// Uniqueness within the tenant is enforced by the application service.
func (c *Client) SetTaxID(taxID string) error {
	taxID = strings.TrimSpace(taxID)
	if taxID != "" && len(taxID) > 50 {
		return shared.NewDomainError("INVALID_TAX_ID", "Tax ID cannot exceed 50 characters")
	}

	c.TaxID = taxID
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return nil
}

// SetReferralSource sets how the client found the business
func (c *Client) SetReferralSource(source string) error {
	if source != "" && len(source) > 200 {
		return shared.NewDomainError("INVALID_REFERRAL_SOURCE", "Referral source cannot exceed 200 characters")
	}

	c.ReferralSource = strings.TrimSpace(source)
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return nil
}

// SetBirthDate sets the client's birth date
func (c *Client) SetBirthDate(birthDate *time.Time) error {
	if birthDate != nil && birthDate.After(time.Now()) {
		return shared.NewDomainError("INVALID_BIRTH_DATE", "Birth date cannot be in the future")
	}

	c.BirthDate = birthDate
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return nil
}

// SetNotes sets the client's notes
func (c *Client) SetNotes(notes string) {
	c.Notes = notes
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}

// Deactivate deactivates the client, keeping all history
func (c *Client) Deactivate() error {
	if c.Status == ClientStatusInactive {
		return shared.NewDomainError("ALREADY_INACTIVE", "Client is already deactivated")
	}

	c.Status = ClientStatusInactive
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	c.AddDomainEvent(NewClientDeactivatedEvent(c))

	return nil
}

// Reactivate reactivates a deactivated client
func (c *Client) Reactivate() error {
	if c.Status == ClientStatusActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "Client is already active")
	}

	c.Status = ClientStatusActive
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	c.AddDomainEvent(NewClientReactivatedEvent(c))

	return nil
}

// IsActive returns true if the client is active
func (c *Client) IsActive() bool {
	return c.Status == ClientStatusActive
}

// Validation functions

func validateClientName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Client name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Client name cannot exceed 200 characters")
	}
	return nil
}

func validatePhone(phone string) error {
	phone = strings.TrimSpace(phone)
	if len(phone) > 50 {
		return shared.NewDomainError("INVALID_PHONE", "Phone cannot exceed 50 characters")
	}

	phoneRegex := regexp.MustCompile(`^[\d\s\-+()]+$`)
	if !phoneRegex.MatchString(phone) {
		return shared.NewDomainError("INVALID_PHONE", "Phone contains invalid characters")
	}

	return nil
}

func validateEmail(email string) error {
	email = strings.TrimSpace(email)
	if len(email) > 200 {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot exceed 200 characters")
	}

	emailRegex := regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	if !emailRegex.MatchString(email) {
		return shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}

	return nil
}
