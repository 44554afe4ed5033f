package property

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tidyforge/tidyforge/internal/client"
)

// Service provides property business logic
type Service struct {
	repo    Repository
	clients client.Repository
}

// NewService creates a new property service
func NewService(repo Repository, clients client.Repository) *Service {
	return &Service{repo: repo, clients: clients}
}

// CreateParams holds the fields accepted when registering a property.
type CreateParams struct {
	ClientID           string
	Address            string
	City               string
	State              string
	ZipCode            string
	PropertyType       string
	SquareFootage      int
	Bedrooms           int
	Bathrooms          int
	AccessCode         string
	AccessInstructions string
}

// Create registers a property, optionally linked to one of the company's
// clients.
func (s *Service) Create(ctx context.Context, companyID string, params CreateParams) (*Property, error) {
	if params.Address == "" {
		return nil, fmt.Errorf("property address is required")
	}

	// When a client is linked it must belong to the caller's company;
	// standalone properties carry no client at all.
	if params.ClientID != "" {
		if _, err := s.clients.GetByID(ctx, companyID, params.ClientID); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	p := &Property{
		ID:                 uuid.Must(uuid.NewV7()).String(),
		CompanyID:          companyID,
		ClientID:           params.ClientID,
		Address:            params.Address,
		City:               params.City,
		State:              params.State,
		ZipCode:            params.ZipCode,
		PropertyType:       params.PropertyType,
		SquareFootage:      params.SquareFootage,
		Bedrooms:           params.Bedrooms,
		Bathrooms:          params.Bathrooms,
		AccessCode:         params.AccessCode,
		AccessInstructions: params.AccessInstructions,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to create property: %w", err)
	}

	return p, nil
}

// Get retrieves a property within the company scope.
func (s *Service) Get(ctx context.Context, companyID, id string) (*Property, error) {
	return s.repo.GetByID(ctx, companyID, id)
}

// List lists all properties for a company.
func (s *Service) List(ctx context.Context, companyID string) ([]*Property, error) {
	return s.repo.ListByCompany(ctx, companyID)
}

// ListByClient lists a single client's properties.
func (s *Service) ListByClient(ctx context.Context, companyID, clientID string) ([]*Property, error) {
	return s.repo.ListByClient(ctx, companyID, clientID)
}

// Update modifies a property's details.
func (s *Service) Update(ctx context.Context, companyID, id string, params CreateParams) (*Property, error) {
	p, err := s.repo.GetByID(ctx, companyID, id)
	if err != nil {
		return nil, err
	}

	if params.Address != "" {
		p.Address = params.Address
	}
	p.City = params.City
	p.State = params.State
	p.ZipCode = params.ZipCode
	p.PropertyType = params.PropertyType
	p.SquareFootage = params.SquareFootage
	p.Bedrooms = params.Bedrooms
	p.Bathrooms = params.Bathrooms
	p.AccessCode = params.AccessCode
	p.AccessInstructions = params.AccessInstructions
	p.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to update property: %w", err)
	}

	return p, nil
}

// Delete removes a property.
func (s *Service) Delete(ctx context.Context, companyID, id string) error {
	return s.repo.Delete(ctx, companyID, id)
}
