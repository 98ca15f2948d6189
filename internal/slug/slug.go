// Package slug derives URL-safe unique identifiers for listings and
// reference entities.
package slug

import (
	"fmt"
	"strings"
	"time"
)

// maxProbes bounds the sequential collision probe before falling back to
// a timestamp suffix.
const maxProbes = 1000

// Make builds a kebab-case slug from the given parts: lower-cased,
// punctuation stripped, hyphen-delimited.
func Make(parts ...string) string {
	var b strings.Builder
	lastHyphen := true
	for _, part := range parts {
		for _, r := range strings.ToLower(part) {
			switch {
			case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
				b.WriteRune(r)
				lastHyphen = false
			default:
				if !lastHyphen {
					b.WriteByte('-')
					lastHyphen = true
				}
			}
		}
		if !lastHyphen {
			b.WriteByte('-')
			lastHyphen = true
		}
	}
	return strings.Trim(b.String(), "-")
}

// Store is the persistence probe the allocator uses to detect
// collisions.
type Store interface {
	SlugExists(slug string) (bool, error)
}

// Allocator hands out slugs that are unique within a Store.
type Allocator struct {
	store Store
}

// NewAllocator creates a slug allocator backed by the given store.
func NewAllocator(store Store) *Allocator {
	return &Allocator{store: store}
}

// Allocate builds a candidate slug from the title and reference number
// and probes the store until a free slug is found. Probing is sequential:
// each candidate depends on the previous miss. After maxProbes taken
// candidates the current timestamp is appended to guarantee termination.
func (a *Allocator) Allocate(title, reference string) (string, error) {
	base := Make(title, reference)

	candidate := base
	for i := 1; i <= maxProbes; i++ {
		taken, err := a.store.SlugExists(candidate)
		if err != nil {
			return "", fmt.Errorf("probing slug %q: %w", candidate, err)
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}

	return fmt.Sprintf("%s-%d", base, time.Now().Unix()), nil
}
