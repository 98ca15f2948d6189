// Package catalog resolves denormalized listing attributes to reference
// entities, creating them on first encounter.
package catalog

import "strings"

const (
	// UnknownCommunity substitutes for listings with no zone name.
	UnknownCommunity = "Unknown Community"

	// DefaultOfferingType and DefaultCity are fixed for this feed.
	DefaultOfferingType = "sale"
	DefaultCity         = "Dubai"

	// agentDomain is the fixed domain for derived agent emails.
	agentDomain = "trpe.ae"
)

// Entity is a reference row keyed by a natural name: a community,
// property type, offering type, or city.
type Entity struct {
	ID   int64
	Name string
	Slug string
}

// Agent is a reference row keyed by its derived email.
type Agent struct {
	ID    int64
	Name  string
	Email string
	Slug  string
}

// AgentEmail derives an agent's natural key from their display name:
// lower-cased, punctuation-stripped name tokens joined as
// "first.last@trpe.ae". A single-token name yields "first@trpe.ae".
func AgentEmail(name string) string {
	tokens := strings.Fields(strings.ToLower(name))
	cleaned := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		var b strings.Builder
		for _, r := range tok {
			if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
				b.WriteRune(r)
			}
		}
		if b.Len() > 0 {
			cleaned = append(cleaned, b.String())
		}
	}

	switch len(cleaned) {
	case 0:
		return "unknown@" + agentDomain
	case 1:
		return cleaned[0] + "@" + agentDomain
	default:
		return cleaned[0] + "." + cleaned[len(cleaned)-1] + "@" + agentDomain
	}
}
