package images

import (
	"database/sql"
	"fmt"
)

// PropertyImage is one stored image row. Rows are created once per
// (property, source URL) pair and never updated.
type PropertyImage struct {
	ID         int64
	PropertyID int64
	SourceURL  string
	StoredURL  string
	Position   int
}

// Repository provides access to the property_images table.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a property-image repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Exists reports whether an image from sourceURL is already recorded for
// the property. Used to keep re-imports from duplicating rows or
// re-fetching bytes already stored.
func (r *Repository) Exists(propertyID int64, sourceURL string) (bool, error) {
	var n int
	err := r.db.QueryRow(
		"SELECT COUNT(*) FROM property_images WHERE property_id = ? AND source_url = ?",
		propertyID, sourceURL,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("checking image %q: %w", sourceURL, err)
	}
	return n > 0, nil
}

// Insert records a processed image.
func (r *Repository) Insert(img *PropertyImage) error {
	result, err := r.db.Exec(
		`INSERT INTO property_images (property_id, source_url, stored_url, position)
		 VALUES (?, ?, ?, ?)`,
		img.PropertyID, img.SourceURL, img.StoredURL, img.Position,
	)
	if err != nil {
		return fmt.Errorf("inserting image %q: %w", img.SourceURL, err)
	}

	img.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("getting insert id: %w", err)
	}
	return nil
}

// CountForProperty returns the number of stored images for a property.
func (r *Repository) CountForProperty(propertyID int64) (int, error) {
	var n int
	err := r.db.QueryRow(
		"SELECT COUNT(*) FROM property_images WHERE property_id = ?", propertyID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting images for property %d: %w", propertyID, err)
	}
	return n, nil
}
