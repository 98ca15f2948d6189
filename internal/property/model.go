// Package property provides the imported property row and its data
// access, including the create-or-update decision by reference number.
package property

import "time"

// Property is a persisted listing row. Reference is the natural key:
// repeated imports of the same reference update this row in place,
// preserving its identity and creation timestamp.
type Property struct {
	ID             int64
	Reference      string
	Slug           string
	Title          string
	Description    string
	Price          int64
	Bedrooms       int
	Bathrooms      int
	Size           int64
	PermitNumber   string
	AgentID        int64
	CommunityID    int64
	TypeID         int64
	OfferingTypeID int64
	CityID         int64
	Luxury         bool
	Imported       bool
	Status         string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// StatusPublished is the status imported listings are stored with.
const StatusPublished = "published"
