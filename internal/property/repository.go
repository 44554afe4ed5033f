package property

import (
	"context"
	"errors"
)

// ErrPropertyNotFound is returned when a property doesn't exist
var ErrPropertyNotFound = errors.New("property not found")

// Repository defines the interface for property storage
type Repository interface {
	Create(ctx context.Context, p *Property) error
	GetByID(ctx context.Context, companyID, id string) (*Property, error)
	ListByCompany(ctx context.Context, companyID string) ([]*Property, error)
	ListByClient(ctx context.Context, companyID, clientID string) ([]*Property, error)
	Update(ctx context.Context, p *Property) error
	Delete(ctx context.Context, companyID, id string) error
}
