package property

import (
	"errors"
	"fmt"
)

// Upsert creates or updates a property by its canonical reference
// number. An existing row keeps its identity and creation timestamp and
// has every mutable field overwritten. A failing existence check is
// surfaced as an error rather than assumed absent, so read failures
// cannot produce duplicate-reference rows.
func (r *Repository) Upsert(p *Property) (*Property, bool, error) {
	existing, err := r.GetByReference(p.Reference)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, false, fmt.Errorf("checking existing property: %w", err)
	}

	if existing == nil {
		saved, err := r.Insert(p)
		if err != nil {
			return nil, false, err
		}
		return saved, true, nil
	}

	p.ID = existing.ID
	saved, err := r.Update(p)
	if err != nil {
		return nil, false, err
	}
	return saved, false, nil
}
