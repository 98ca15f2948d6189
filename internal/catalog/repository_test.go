package catalog

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/joshfom/trpe-import/internal/db"
	"github.com/joshfom/trpe-import/internal/listing"
)

func testRepo(t *testing.T) (*sql.DB, *Repository) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	d, err := db.Open(path)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		if err := d.Close(); err != nil {
			t.Errorf("close db: %v", err)
		}
	})
	return d, NewRepository(d)
}

func TestAgentEmail(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"two tokens", "Jane Smith", "jane.smith@trpe.ae"},
		{"middle name dropped", "Jane Q Smith", "jane.smith@trpe.ae"},
		{"punctuation stripped", "O'Brien, Pat", "obrien.pat@trpe.ae"},
		{"single token", "Cher", "cher@trpe.ae"},
		{"case folded", "JANE SMITH", "jane.smith@trpe.ae"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AgentEmail(tt.input); got != tt.want {
				t.Errorf("AgentEmail(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestFindOrCreateAgentIdempotent(t *testing.T) {
	d, repo := testRepo(t)

	first, err := repo.FindOrCreateAgent("Jane Smith")
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	if first.Email != "jane.smith@trpe.ae" {
		t.Errorf("email = %q", first.Email)
	}

	second, err := repo.FindOrCreateAgent("Jane Smith")
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("second lookup created a new row: %d vs %d", second.ID, first.ID)
	}

	var count int
	if err := d.QueryRow("SELECT COUNT(*) FROM agents").Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Errorf("agents = %d, want 1", count)
	}
}

func TestFindOrCreateCommunityCaseInsensitive(t *testing.T) {
	d, repo := testRepo(t)

	first, err := repo.FindOrCreateCommunity("Dubai Marina")
	if err != nil {
		t.Fatalf("first: %v", err)
	}

	second, err := repo.FindOrCreateCommunity("DUBAI MARINA")
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("case-variant lookup created a new row: %d vs %d", second.ID, first.ID)
	}
	// The first encounter's spelling wins.
	if second.Name != "Dubai Marina" {
		t.Errorf("name = %q, want original spelling", second.Name)
	}

	var count int
	if err := d.QueryRow("SELECT COUNT(*) FROM communities").Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Errorf("communities = %d, want 1", count)
	}
}

func TestFindOrCreateCommunityEmptySubstituted(t *testing.T) {
	_, repo := testRepo(t)

	e, err := repo.FindOrCreateCommunity("")
	if err != nil {
		t.Fatalf("find or create: %v", err)
	}
	if e.Name != UnknownCommunity {
		t.Errorf("name = %q, want %q", e.Name, UnknownCommunity)
	}
}

func TestResolve(t *testing.T) {
	_, repo := testRepo(t)

	l := &listing.Listing{
		Title:        "Nice Villa",
		AgentName:    "John Doe",
		Community:    "Palm Jumeirah",
		PropertyType: "Villa",
	}

	resolved, err := repo.Resolve(l)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	if resolved.Agent.Email != "john.doe@trpe.ae" {
		t.Errorf("agent email = %q", resolved.Agent.Email)
	}
	if resolved.Community.Name != "Palm Jumeirah" {
		t.Errorf("community = %q", resolved.Community.Name)
	}
	if resolved.PropertyType.Name != "Villa" {
		t.Errorf("type = %q", resolved.PropertyType.Name)
	}
	if resolved.OfferingType.Name != DefaultOfferingType {
		t.Errorf("offering type = %q, want %q", resolved.OfferingType.Name, DefaultOfferingType)
	}
	if resolved.City.Name != DefaultCity {
		t.Errorf("city = %q, want %q", resolved.City.Name, DefaultCity)
	}

	// Resolving again reuses every row.
	again, err := repo.Resolve(l)
	if err != nil {
		t.Fatalf("resolve again: %v", err)
	}
	if again.Agent.ID != resolved.Agent.ID ||
		again.Community.ID != resolved.Community.ID ||
		again.PropertyType.ID != resolved.PropertyType.ID {
		t.Error("re-resolution created new reference rows")
	}
}
