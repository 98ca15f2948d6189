// Package feed reads and structurally validates the scraped listing feed.
package feed

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// RawListing is one scraped listing exactly as it appears in the feed.
// Fields are loose strings; typing and validation happen downstream.
type RawListing struct {
	URL         string          `json:"url"`
	Title       string          `json:"title"`
	Price       string          `json:"price"`
	Description string          `json:"description"`
	Details     RawDetails      `json:"details"`
	AgentName   string          `json:"agentName"`
	Images      json.RawMessage `json:"images"`
	ScrapedAt   string          `json:"scrapedAt"`
}

// RawDetails is the nested detail block of a scraped listing.
type RawDetails struct {
	PropertyType string `json:"propertyType"`
	Size         string `json:"size"`
	Bedrooms     string `json:"bedrooms"`
	Bathrooms    string `json:"bathrooms"`
	Reference    string `json:"reference"`
	ZoneName     string `json:"zoneName"`
	PermitNumber string `json:"permitNumber"`
}

// ImageURLs returns the listing's images as a slice of non-empty strings.
// Anything that is not an array of non-empty strings is coerced to an
// empty list rather than rejected.
func (l *RawListing) ImageURLs() []string {
	if len(l.Images) == 0 {
		return nil
	}

	var urls []string
	if err := json.Unmarshal(l.Images, &urls); err != nil {
		return nil
	}

	filtered := urls[:0]
	for _, u := range urls {
		if strings.TrimSpace(u) != "" {
			filtered = append(filtered, u)
		}
	}
	return filtered
}

// Metadata describes the scrape run that produced the feed.
type Metadata struct {
	ScrapedAt         string `json:"scrapedAt"`
	TotalProperties   *int   `json:"totalProperties"`
	SuccessfulScrapes *int   `json:"successfulScrapes"`
	FailedScrapes     *int   `json:"failedScrapes"`
}

// Feed is the parsed and structurally validated input file.
type Feed struct {
	Metadata   Metadata
	Properties []RawListing
}

// spotCheckCount is how many leading listings get their shape verified
// before per-listing processing starts.
const spotCheckCount = 3

// Read loads the feed file at path and validates its structure.
// A missing file, malformed JSON, or structural problem is fatal: the
// returned error enumerates every problem found and no listings are
// processed.
func Read(path string) (*Feed, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("feed file not found: %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading feed file: %w", err)
	}

	var envelope struct {
		Metadata   json.RawMessage `json:"metadata"`
		Properties json.RawMessage `json:"properties"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("parsing feed file: %w", err)
	}

	var problems []string
	feed := &Feed{}

	if len(envelope.Metadata) == 0 || string(envelope.Metadata) == "null" {
		problems = append(problems, "missing metadata object")
	} else if err := json.Unmarshal(envelope.Metadata, &feed.Metadata); err != nil {
		problems = append(problems, fmt.Sprintf("metadata is not an object: %v", err))
	} else {
		if feed.Metadata.ScrapedAt == "" {
			problems = append(problems, "metadata.scrapedAt is missing or empty")
		}
		if feed.Metadata.TotalProperties == nil {
			problems = append(problems, "metadata.totalProperties is missing")
		}
		if feed.Metadata.SuccessfulScrapes == nil {
			problems = append(problems, "metadata.successfulScrapes is missing")
		}
		if feed.Metadata.FailedScrapes == nil {
			problems = append(problems, "metadata.failedScrapes is missing")
		}
	}

	if len(envelope.Properties) == 0 || string(envelope.Properties) == "null" {
		problems = append(problems, "missing properties array")
	} else if err := json.Unmarshal(envelope.Properties, &feed.Properties); err != nil {
		problems = append(problems, fmt.Sprintf("properties is not an array of listings: %v", err))
	} else {
		problems = append(problems, spotCheck(envelope.Properties)...)
	}

	if len(problems) > 0 {
		return nil, fmt.Errorf("invalid feed structure: %s", strings.Join(problems, "; "))
	}

	return feed, nil
}

// spotCheck verifies the shape of the first few listings: each must be an
// object carrying the required keys. Values may still be empty; emptiness
// is a per-listing validation concern, not a structural one.
func spotCheck(propertiesRaw json.RawMessage) []string {
	var entries []map[string]json.RawMessage
	if err := json.Unmarshal(propertiesRaw, &entries); err != nil {
		return []string{fmt.Sprintf("properties entries are not objects: %v", err)}
	}

	required := []string{"title", "price", "details"}

	var problems []string
	for i, entry := range entries {
		if i >= spotCheckCount {
			break
		}
		for _, key := range required {
			if _, ok := entry[key]; !ok {
				problems = append(problems, fmt.Sprintf("listing %d is missing %q", i, key))
			}
		}
	}
	return problems
}
