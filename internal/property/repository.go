package property

import (
	"database/sql"
	"errors"
	"fmt"
)

// ErrNotFound is returned when no property matches a lookup.
var ErrNotFound = errors.New("property not found")

// Repository provides CRUD operations for properties.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a property repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const selectColumns = `id, reference, slug, title, description, price, bedrooms, bathrooms,
	size, permit_number, agent_id, community_id, type_id, offering_type_id, city_id,
	luxury, imported, status, created_at, updated_at`

// scanProperty scans a property from a database row.
func scanProperty(row interface{ Scan(...interface{}) error }) (*Property, error) {
	var p Property
	err := row.Scan(
		&p.ID, &p.Reference, &p.Slug, &p.Title, &p.Description,
		&p.Price, &p.Bedrooms, &p.Bathrooms, &p.Size, &p.PermitNumber,
		&p.AgentID, &p.CommunityID, &p.TypeID, &p.OfferingTypeID, &p.CityID,
		&p.Luxury, &p.Imported, &p.Status, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByReference returns the property with the given canonical reference
// number, or ErrNotFound.
func (r *Repository) GetByReference(reference string) (*Property, error) {
	query := fmt.Sprintf("SELECT %s FROM properties WHERE reference = ?", selectColumns)
	p, err := scanProperty(r.db.QueryRow(query, reference))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying property %s: %w", reference, err)
	}
	return p, nil
}

// GetByID returns a property by its ID.
func (r *Repository) GetByID(id int64) (*Property, error) {
	query := fmt.Sprintf("SELECT %s FROM properties WHERE id = ?", selectColumns)
	p, err := scanProperty(r.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying property %d: %w", id, err)
	}
	return p, nil
}

// SlugExists reports whether any property already uses the given slug.
func (r *Repository) SlugExists(slug string) (bool, error) {
	var n int
	err := r.db.QueryRow("SELECT COUNT(*) FROM properties WHERE slug = ?", slug).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("checking slug %q: %w", slug, err)
	}
	return n > 0, nil
}

// Insert adds a new property and returns it with its generated ID.
func (r *Repository) Insert(p *Property) (*Property, error) {
	result, err := r.db.Exec(
		`INSERT INTO properties
			(reference, slug, title, description, price, bedrooms, bathrooms, size,
			 permit_number, agent_id, community_id, type_id, offering_type_id, city_id,
			 luxury, imported, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.Reference, p.Slug, p.Title, p.Description, p.Price, p.Bedrooms, p.Bathrooms,
		p.Size, p.PermitNumber, p.AgentID, p.CommunityID, p.TypeID, p.OfferingTypeID,
		p.CityID, p.Luxury, p.Imported, p.Status,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting property %s: %w", p.Reference, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting insert id: %w", err)
	}

	return r.GetByID(id)
}

// Update overwrites all mutable fields of the row with p's ID, keeping
// identity and creation timestamp.
func (r *Repository) Update(p *Property) (*Property, error) {
	result, err := r.db.Exec(
		`UPDATE properties SET
			slug = ?, title = ?, description = ?, price = ?, bedrooms = ?, bathrooms = ?,
			size = ?, permit_number = ?, agent_id = ?, community_id = ?, type_id = ?,
			offering_type_id = ?, city_id = ?, luxury = ?, imported = ?, status = ?,
			updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		p.Slug, p.Title, p.Description, p.Price, p.Bedrooms, p.Bathrooms,
		p.Size, p.PermitNumber, p.AgentID, p.CommunityID, p.TypeID,
		p.OfferingTypeID, p.CityID, p.Luxury, p.Imported, p.Status,
		p.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("updating property %s: %w", p.Reference, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return nil, ErrNotFound
	}

	return r.GetByID(p.ID)
}

// CountAll returns the number of persisted properties.
func (r *Repository) CountAll() (int, error) {
	var n int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM properties").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting properties: %w", err)
	}
	return n, nil
}
