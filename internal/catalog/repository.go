package catalog

import (
	"database/sql"
	"fmt"

	"github.com/joshfom/trpe-import/internal/listing"
	"github.com/joshfom/trpe-import/internal/slug"
)

// Repository provides find-or-create access to the reference tables.
// Every table carries a unique index on its natural key, so creation is
// insert-on-conflict-do-nothing followed by a re-select; concurrent
// resolution of the same new name collapses onto one row.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a catalog repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Resolved holds the reference entities a listing points at.
type Resolved struct {
	Agent        *Agent
	Community    *Entity
	PropertyType *Entity
	OfferingType *Entity
	City         *Entity
}

// Resolve maps a normalized listing's denormalized attributes onto
// reference rows, creating any that do not exist yet. Rows are never
// updated after creation; repeated imports reuse them.
func (r *Repository) Resolve(l *listing.Listing) (*Resolved, error) {
	agent, err := r.FindOrCreateAgent(l.AgentName)
	if err != nil {
		return nil, fmt.Errorf("resolving agent: %w", err)
	}

	community, err := r.FindOrCreateCommunity(l.Community)
	if err != nil {
		return nil, fmt.Errorf("resolving community: %w", err)
	}

	propertyType, err := r.findOrCreate("property_types", l.PropertyType)
	if err != nil {
		return nil, fmt.Errorf("resolving property type: %w", err)
	}

	offeringType, err := r.findOrCreate("offering_types", DefaultOfferingType)
	if err != nil {
		return nil, fmt.Errorf("resolving offering type: %w", err)
	}

	city, err := r.findOrCreate("cities", DefaultCity)
	if err != nil {
		return nil, fmt.Errorf("resolving city: %w", err)
	}

	return &Resolved{
		Agent:        agent,
		Community:    community,
		PropertyType: propertyType,
		OfferingType: offeringType,
		City:         city,
	}, nil
}

// FindOrCreateAgent looks up an agent by the email derived from their
// display name, creating the row on first encounter.
func (r *Repository) FindOrCreateAgent(name string) (*Agent, error) {
	email := AgentEmail(name)

	_, err := r.db.Exec(
		`INSERT INTO agents (name, email, slug) VALUES (?, ?, ?)
		 ON CONFLICT(email) DO NOTHING`,
		name, email, slug.Make(name),
	)
	if err != nil {
		return nil, fmt.Errorf("inserting agent %q: %w", name, err)
	}

	var a Agent
	err = r.db.QueryRow(
		"SELECT id, name, email, slug FROM agents WHERE email = ?", email,
	).Scan(&a.ID, &a.Name, &a.Email, &a.Slug)
	if err != nil {
		return nil, fmt.Errorf("querying agent %q: %w", email, err)
	}
	return &a, nil
}

// FindOrCreateCommunity looks up a community by its case-insensitive
// name. An empty name maps to the UnknownCommunity placeholder.
func (r *Repository) FindOrCreateCommunity(name string) (*Entity, error) {
	if name == "" {
		name = UnknownCommunity
	}
	return r.findOrCreate("communities", name)
}

// findOrCreate is the shared lookup for name-keyed reference tables.
func (r *Repository) findOrCreate(table, name string) (*Entity, error) {
	_, err := r.db.Exec(
		fmt.Sprintf(`INSERT INTO %s (name, slug) VALUES (?, ?)
		 ON CONFLICT(name) DO NOTHING`, table),
		name, slug.Make(name),
	)
	if err != nil {
		return nil, fmt.Errorf("inserting into %s: %w", table, err)
	}

	var e Entity
	err = r.db.QueryRow(
		fmt.Sprintf("SELECT id, name, slug FROM %s WHERE name = ?", table), name,
	).Scan(&e.ID, &e.Name, &e.Slug)
	if err != nil {
		return nil, fmt.Errorf("querying %s for %q: %w", table, name, err)
	}
	return &e, nil
}
