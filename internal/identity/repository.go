package identity

import (
	"context"
	"errors"

	"github.com/tidyforge/tidyforge/internal/company"
)

var (
	ErrProfileNotFound      = errors.New("profile not found")
	ErrProfileAlreadyExists = errors.New("profile already exists")
)

// Repository defines the interface for profile storage
type Repository interface {
	GetByID(ctx context.Context, id string) (*Profile, error)

	ListByCompany(ctx context.Context, companyID string) ([]*Profile, error)

	// CreateWithCompany creates a company and its founding admin profile as
	// one atomic unit. A company must never exist without its founding
	// profile, so the postgres implementation wraps both inserts in a single
	// transaction. A duplicate profile ID must surface as
	// ErrProfileAlreadyExists with neither row written.
	CreateWithCompany(ctx context.Context, c *company.Company, p *Profile) error

	UpdateRole(ctx context.Context, id, role string) error
}
