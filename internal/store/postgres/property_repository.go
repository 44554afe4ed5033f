package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/tidyforge/tidyforge/internal/property"
)

// PropertyRepository implements property.Repository
type PropertyRepository struct {
	db *DB
}

// NewPropertyRepository creates a new property repository
func NewPropertyRepository(db *DB) *PropertyRepository {
	return &PropertyRepository{db: db}
}

const propertyColumns = `
	id, company_id, client_id, address, city, state, zip_code,
	property_type, square_footage, bedrooms, bathrooms,
	access_code, access_instructions, created_at, updated_at
`

func scanProperty(row pgx.Row) (*property.Property, error) {
	var (
		p        property.Property
		clientID sql.NullString
	)
	err := row.Scan(
		&p.ID, &p.CompanyID, &clientID, &p.Address, &p.City, &p.State, &p.ZipCode,
		&p.PropertyType, &p.SquareFootage, &p.Bedrooms, &p.Bathrooms,
		&p.AccessCode, &p.AccessInstructions, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.ClientID = clientID.String
	return &p, nil
}

// Create persists a new property
func (r *PropertyRepository) Create(ctx context.Context, p *property.Property) error {
	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO properties (
			id, company_id, client_id, address, city, state, zip_code,
			property_type, square_footage, bedrooms, bathrooms,
			access_code, access_instructions, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`, p.ID, p.CompanyID, nullable(p.ClientID), p.Address, p.City, p.State, p.ZipCode,
		p.PropertyType, p.SquareFootage, p.Bedrooms, p.Bathrooms,
		p.AccessCode, p.AccessInstructions, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert property: %w", err)
	}

	return nil
}

// GetByID retrieves a property within the company scope
func (r *PropertyRepository) GetByID(ctx context.Context, companyID, id string) (*property.Property, error) {
	row := r.db.pool.QueryRow(ctx, `
		SELECT `+propertyColumns+`
		FROM properties
		WHERE company_id = $1 AND id = $2
	`, companyID, id)

	p, err := scanProperty(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, property.ErrPropertyNotFound
		}
		return nil, fmt.Errorf("failed to get property: %w", err)
	}

	return p, nil
}

// ListByCompany retrieves all properties for a company
func (r *PropertyRepository) ListByCompany(ctx context.Context, companyID string) ([]*property.Property, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT `+propertyColumns+`
		FROM properties
		WHERE company_id = $1
		ORDER BY address
	`, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list properties: %w", err)
	}
	defer rows.Close()

	return collectProperties(rows)
}

// ListByClient retrieves a client's properties
func (r *PropertyRepository) ListByClient(ctx context.Context, companyID, clientID string) ([]*property.Property, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT `+propertyColumns+`
		FROM properties
		WHERE company_id = $1 AND client_id = $2
		ORDER BY address
	`, companyID, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list client properties: %w", err)
	}
	defer rows.Close()

	return collectProperties(rows)
}

func collectProperties(rows pgx.Rows) ([]*property.Property, error) {
	var properties []*property.Property
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan property: %w", err)
		}
		properties = append(properties, p)
	}
	return properties, rows.Err()
}

// Update updates a property's details
func (r *PropertyRepository) Update(ctx context.Context, p *property.Property) error {
	result, err := r.db.pool.Exec(ctx, `
		UPDATE properties SET
			address = $3, city = $4, state = $5, zip_code = $6,
			property_type = $7, square_footage = $8, bedrooms = $9, bathrooms = $10,
			access_code = $11, access_instructions = $12, updated_at = $13
		WHERE company_id = $1 AND id = $2
	`, p.CompanyID, p.ID, p.Address, p.City, p.State, p.ZipCode,
		p.PropertyType, p.SquareFootage, p.Bedrooms, p.Bathrooms,
		p.AccessCode, p.AccessInstructions, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update property: %w", err)
	}

	if result.RowsAffected() == 0 {
		return property.ErrPropertyNotFound
	}

	return nil
}

// Delete removes a property
func (r *PropertyRepository) Delete(ctx context.Context, companyID, id string) error {
	result, err := r.db.pool.Exec(ctx, `
		DELETE FROM properties WHERE company_id = $1 AND id = $2
	`, companyID, id)
	if err != nil {
		return fmt.Errorf("failed to delete property: %w", err)
	}

	if result.RowsAffected() == 0 {
		return property.ErrPropertyNotFound
	}

	return nil
}
