package client

import (
	"context"
	"errors"
)

// ErrClientNotFound is returned when a client doesn't exist
var ErrClientNotFound = errors.New("client not found")

// Repository defines the interface for client storage
type Repository interface {
	Create(ctx context.Context, c *Client) error
	GetByID(ctx context.Context, companyID, id string) (*Client, error)
	ListByCompany(ctx context.Context, companyID string) ([]*Client, error)
	Update(ctx context.Context, c *Client) error
	Delete(ctx context.Context, companyID, id string) error
}
