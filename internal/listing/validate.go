package listing

import (
	"fmt"
	"strings"

	"github.com/joshfom/trpe-import/internal/feed"
)

const (
	// MinRooms and MaxRooms bound bedroom and bathroom counts.
	MinRooms = 0
	MaxRooms = 20

	// LuxuryThreshold is the price above which a listing's images are
	// fetched and stored. Strictly greater-than.
	LuxuryThreshold = 20_000_000
)

// IsLuxury reports whether a price qualifies a listing for image
// processing.
func IsLuxury(price int64) bool {
	return price > LuxuryThreshold
}

// Listing is the validated, typed projection of a scraped listing.
// Slug is allocated by the orchestrator after validation, once the
// persistence layer has been probed for collisions.
type Listing struct {
	Title        string
	Description  string
	Price        int64
	Bedrooms     int
	Bathrooms    int
	PropertyType string
	Reference    string
	AgentName    string
	Community    string
	PermitNumber string
	Size         int64
	Luxury       bool
	Images       []string
	Slug         string

	// Warnings are non-fatal findings, such as an unparseable size.
	Warnings []string
}

// Rejection explains why a listing failed validation.
type Rejection struct {
	Reference string
	Reasons   []string
}

func (r *Rejection) String() string {
	return strings.Join(r.Reasons, "; ")
}

// Normalize validates a raw listing and produces its typed projection.
// Ordinary bad data yields a Rejection, never an error; the returned
// error is reserved for hard failures (an empty reference number), which
// callers record as an unknown-error skip rather than a validation
// rejection.
func Normalize(raw *feed.RawListing) (*Listing, *Rejection, error) {
	reject := func(reasons ...string) (*Listing, *Rejection, error) {
		return nil, &Rejection{Reference: raw.Details.Reference, Reasons: reasons}, nil
	}

	// Required non-empty string fields.
	var missing []string
	for _, f := range []struct{ name, value string }{
		{"title", raw.Title},
		{"price", raw.Price},
		{"description", raw.Description},
		{"agentName", raw.AgentName},
		{"details.reference", raw.Details.Reference},
		{"details.propertyType", raw.Details.PropertyType},
		{"details.bedrooms", raw.Details.Bedrooms},
		{"details.bathrooms", raw.Details.Bathrooms},
	} {
		if f.value == "" {
			missing = append(missing, fmt.Sprintf("missing %s", f.name))
		}
	}
	if len(missing) > 0 {
		return reject(missing...)
	}

	price, ok := ParsePrice(raw.Price)
	if !ok {
		return reject(fmt.Sprintf("invalid price %q", raw.Price))
	}

	// Both counts are parsed before rejecting so diagnostics carry
	// every problem.
	var countErrs []string
	bedrooms, err := ParseCount(raw.Details.Bedrooms, "bedrooms", MinRooms, MaxRooms)
	if err != nil {
		countErrs = append(countErrs, err.Error())
	}
	bathrooms, err := ParseCount(raw.Details.Bathrooms, "bathrooms", MinRooms, MaxRooms)
	if err != nil {
		countErrs = append(countErrs, err.Error())
	}
	if len(countErrs) > 0 {
		return reject(countErrs...)
	}

	var warnings []string
	size := ParseSize(raw.Details.Size)
	if size == 0 {
		warnings = append(warnings, fmt.Sprintf("unparseable size %q, stored as unknown", raw.Details.Size))
	}

	propertyType := strings.TrimSpace(raw.Details.PropertyType)
	if propertyType == "" {
		return reject("property type is blank")
	}

	// Community is optional; an empty name is substituted with a
	// placeholder at entity-resolution time.
	community := strings.TrimSpace(raw.Details.ZoneName)

	agent := strings.TrimSpace(raw.AgentName)
	if agent == "" {
		return reject("agent name is blank")
	}

	reference, err := ExtractReference(raw.Details.Reference)
	if err != nil {
		return nil, nil, fmt.Errorf("extracting reference: %w", err)
	}

	return &Listing{
		Title:        strings.TrimSpace(raw.Title),
		Description:  strings.TrimSpace(raw.Description),
		Price:        price,
		Bedrooms:     bedrooms,
		Bathrooms:    bathrooms,
		PropertyType: propertyType,
		Reference:    reference,
		AgentName:    agent,
		Community:    community,
		PermitNumber: strings.TrimSpace(raw.Details.PermitNumber),
		Size:         size,
		Luxury:       IsLuxury(price),
		Images:       raw.ImageURLs(),
		Warnings:     warnings,
	}, nil, nil
}
