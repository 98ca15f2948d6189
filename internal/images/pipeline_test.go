package images

import (
	"bytes"
	"context"
	"database/sql"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/joshfom/trpe-import/internal/catalog"
	"github.com/joshfom/trpe-import/internal/db"
	"github.com/joshfom/trpe-import/internal/listing"
	"github.com/joshfom/trpe-import/internal/property"
)

// testPNG encodes a small image to serve from fake CDN handlers.
func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for x := 0; x < 8; x++ {
		for y := 0; y < 8; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 32), G: uint8(y * 32), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encoding png: %v", err)
	}
	return buf.Bytes()
}

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	d, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		if err := d.Close(); err != nil {
			t.Errorf("close db: %v", err)
		}
	})
	return d
}

// testPropertyID inserts a minimal property row and returns its ID.
func testPropertyID(t *testing.T, d *sql.DB, reference string) int64 {
	t.Helper()

	resolved, err := catalog.NewRepository(d).Resolve(&listing.Listing{
		AgentName:    "Jane Smith",
		Community:    "Dubai Marina",
		PropertyType: "Penthouse",
	})
	if err != nil {
		t.Fatalf("resolving entities: %v", err)
	}

	saved, err := property.NewRepository(d).Insert(&property.Property{
		Reference:      reference,
		Slug:           "img-test-" + reference,
		Title:          "Image Test",
		Description:    "x",
		Price:          25_000_000,
		Bedrooms:       4,
		Bathrooms:      5,
		AgentID:        resolved.Agent.ID,
		CommunityID:    resolved.Community.ID,
		TypeID:         resolved.PropertyType.ID,
		OfferingTypeID: resolved.OfferingType.ID,
		CityID:         resolved.City.ID,
		Luxury:         true,
		Imported:       true,
		Status:         property.StatusPublished,
	})
	if err != nil {
		t.Fatalf("inserting property: %v", err)
	}
	return saved.ID
}

func testPipeline(t *testing.T, d *sql.DB) (*Pipeline, *Repository, string) {
	t.Helper()
	repo := NewRepository(d)
	storeDir := t.TempDir()
	pipeline := NewPipeline(
		NewDownloader(nil),
		NewLocalStore(storeDir, "https://images.example.com"),
		repo,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		2,
	)
	return pipeline, repo, storeDir
}

func TestProcessStoresImages(t *testing.T) {
	png := testPNG(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		if _, err := w.Write(png); err != nil {
			t.Errorf("writing response: %v", err)
		}
	}))
	defer server.Close()

	d := testDB(t)
	propertyID := testPropertyID(t, d, "PF-IMG1")
	pipeline, repo, _ := testPipeline(t, d)

	urls := []string{server.URL + "/a.png", server.URL + "/b.png"}
	outcome := pipeline.Process(context.Background(), propertyID, "PF-IMG1", urls)

	if outcome.Processed != 2 {
		t.Errorf("processed = %d, want 2", outcome.Processed)
	}
	if outcome.Failed != 0 || outcome.Skipped != 0 {
		t.Errorf("failed/skipped = %d/%d, want 0/0", outcome.Failed, outcome.Skipped)
	}

	count, err := repo.CountForProperty(propertyID)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 2 {
		t.Errorf("rows = %d, want 2", count)
	}
}

func TestProcessToleratesBadURL(t *testing.T) {
	png := testPNG(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.png" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if _, err := w.Write(png); err != nil {
			t.Errorf("writing response: %v", err)
		}
	}))
	defer server.Close()

	d := testDB(t)
	propertyID := testPropertyID(t, d, "PF-IMG2")
	pipeline, repo, _ := testPipeline(t, d)

	urls := []string{
		server.URL + "/good.png",
		server.URL + "/missing.png",
		server.URL + "/also-good.png",
	}
	outcome := pipeline.Process(context.Background(), propertyID, "PF-IMG2", urls)

	if outcome.Processed != 2 {
		t.Errorf("processed = %d, want 2", outcome.Processed)
	}
	if outcome.Failed != 1 {
		t.Errorf("failed = %d, want 1", outcome.Failed)
	}

	count, err := repo.CountForProperty(propertyID)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 2 {
		t.Errorf("rows = %d, want 2 (the bad URL must not abort the rest)", count)
	}
}

func TestProcessToleratesNonImageBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("this is not an image")); err != nil {
			t.Errorf("writing response: %v", err)
		}
	}))
	defer server.Close()

	d := testDB(t)
	propertyID := testPropertyID(t, d, "PF-IMG3")
	pipeline, _, _ := testPipeline(t, d)

	outcome := pipeline.Process(context.Background(), propertyID, "PF-IMG3", []string{server.URL + "/fake.png"})

	if outcome.Processed != 0 {
		t.Errorf("processed = %d, want 0", outcome.Processed)
	}
	if outcome.Failed != 1 {
		t.Errorf("failed = %d, want 1", outcome.Failed)
	}
}

func TestProcessSkipsAlreadyStored(t *testing.T) {
	png := testPNG(t)
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if _, err := w.Write(png); err != nil {
			t.Errorf("writing response: %v", err)
		}
	}))
	defer server.Close()

	d := testDB(t)
	propertyID := testPropertyID(t, d, "PF-IMG4")
	pipeline, _, _ := testPipeline(t, d)

	url := server.URL + "/a.png"

	first := pipeline.Process(context.Background(), propertyID, "PF-IMG4", []string{url})
	if first.Processed != 1 {
		t.Fatalf("first run processed = %d, want 1", first.Processed)
	}

	second := pipeline.Process(context.Background(), propertyID, "PF-IMG4", []string{url})
	if second.Skipped != 1 {
		t.Errorf("second run skipped = %d, want 1", second.Skipped)
	}
	if second.Processed != 0 {
		t.Errorf("second run processed = %d, want 0", second.Processed)
	}
	if hits != 1 {
		t.Errorf("server hits = %d, want 1 (already-stored image must not be re-fetched)", hits)
	}
}

func TestTranscodeProducesJPEG(t *testing.T) {
	out, err := Transcode(testPNG(t))
	if err != nil {
		t.Fatalf("transcode: %v", err)
	}
	// JPEG SOI marker.
	if len(out) < 2 || out[0] != 0xFF || out[1] != 0xD8 {
		t.Errorf("output does not start with a JPEG marker: % x", out[:2])
	}
}

func TestLocalStorePut(t *testing.T) {
	dir := t.TempDir()
	store := NewLocalStore(dir, "https://images.example.com/")

	url, err := store.Put(context.Background(), "pf-1/0.jpg", []byte("data"))
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if url != "https://images.example.com/pf-1/0.jpg" {
		t.Errorf("url = %q", url)
	}
}
