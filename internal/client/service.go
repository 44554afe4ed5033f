package client

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Service provides client business logic
type Service struct {
	repo Repository
}

// NewService creates a new client service
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateParams holds the fields accepted when adding a client.
type CreateParams struct {
	Name  string
	Email string
	Phone string
	Notes string
}

// Create adds a new client to a company's book.
func (s *Service) Create(ctx context.Context, companyID string, params CreateParams) (*Client, error) {
	if params.Name == "" {
		return nil, fmt.Errorf("client name is required")
	}

	now := time.Now()
	c := &Client{
		ID:        uuid.Must(uuid.NewV7()).String(),
		CompanyID: companyID,
		Name:      params.Name,
		Email:     params.Email,
		Phone:     params.Phone,
		Notes:     params.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return c, nil
}

// Get retrieves a client within the company scope.
func (s *Service) Get(ctx context.Context, companyID, id string) (*Client, error) {
	return s.repo.GetByID(ctx, companyID, id)
}

// List lists all clients for a company.
func (s *Service) List(ctx context.Context, companyID string) ([]*Client, error) {
	return s.repo.ListByCompany(ctx, companyID)
}

// Update modifies a client's contact details.
func (s *Service) Update(ctx context.Context, companyID, id string, params CreateParams) (*Client, error) {
	c, err := s.repo.GetByID(ctx, companyID, id)
	if err != nil {
		return nil, err
	}

	if params.Name != "" {
		c.Name = params.Name
	}
	c.Email = params.Email
	c.Phone = params.Phone
	c.Notes = params.Notes
	c.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to update client: %w", err)
	}

	return c, nil
}

// Delete removes a client from the company's book.
func (s *Service) Delete(ctx context.Context, companyID, id string) error {
	return s.repo.Delete(ctx, companyID, id)
}
