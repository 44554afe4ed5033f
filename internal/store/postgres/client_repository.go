package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/tidyforge/tidyforge/internal/client"
)

// ClientRepository implements client.Repository
type ClientRepository struct {
	db *DB
}

// NewClientRepository creates a new client repository
func NewClientRepository(db *DB) *ClientRepository {
	return &ClientRepository{db: db}
}

// Create persists a new client
func (r *ClientRepository) Create(ctx context.Context, c *client.Client) error {
	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO clients (id, company_id, name, email, phone, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, c.ID, c.CompanyID, c.Name, c.Email, c.Phone, c.Notes, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert client: %w", err)
	}

	return nil
}

// GetByID retrieves a client within the company scope
func (r *ClientRepository) GetByID(ctx context.Context, companyID, id string) (*client.Client, error) {
	var c client.Client

	err := r.db.pool.QueryRow(ctx, `
		SELECT id, company_id, name, email, phone, notes, created_at, updated_at
		FROM clients
		WHERE company_id = $1 AND id = $2
	`, companyID, id).Scan(&c.ID, &c.CompanyID, &c.Name, &c.Email, &c.Phone, &c.Notes, &c.CreatedAt, &c.UpdatedAt)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, client.ErrClientNotFound
		}
		return nil, fmt.Errorf("failed to get client: %w", err)
	}

	return &c, nil
}

// ListByCompany retrieves all clients for a company
func (r *ClientRepository) ListByCompany(ctx context.Context, companyID string) ([]*client.Client, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT id, company_id, name, email, phone, notes, created_at, updated_at
		FROM clients
		WHERE company_id = $1
		ORDER BY name
	`, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	defer rows.Close()

	var clients []*client.Client
	for rows.Next() {
		var c client.Client
		if err := rows.Scan(&c.ID, &c.CompanyID, &c.Name, &c.Email, &c.Phone, &c.Notes, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan client: %w", err)
		}
		clients = append(clients, &c)
	}

	return clients, rows.Err()
}

// Update updates a client's details
func (r *ClientRepository) Update(ctx context.Context, c *client.Client) error {
	result, err := r.db.pool.Exec(ctx, `
		UPDATE clients SET
			name = $3, email = $4, phone = $5, notes = $6, updated_at = $7
		WHERE company_id = $1 AND id = $2
	`, c.CompanyID, c.ID, c.Name, c.Email, c.Phone, c.Notes, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update client: %w", err)
	}

	if result.RowsAffected() == 0 {
		return client.ErrClientNotFound
	}

	return nil
}

// Delete removes a client
func (r *ClientRepository) Delete(ctx context.Context, companyID, id string) error {
	result, err := r.db.pool.Exec(ctx, `
		DELETE FROM clients WHERE company_id = $1 AND id = $2
	`, companyID, id)
	if err != nil {
		return fmt.Errorf("failed to delete client: %w", err)
	}

	if result.RowsAffected() == 0 {
		return client.ErrClientNotFound
	}

	return nil
}
