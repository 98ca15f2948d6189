package images

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

// Category classifies what stage a per-image failure happened in.
type Category string

const (
	CategoryNetwork  Category = "network"
	CategoryFormat   Category = "format"
	CategoryStorage  Category = "storage"
	CategoryDatabase Category = "database"
)

// Outcome summarizes one listing's image processing.
type Outcome struct {
	Processed int
	Skipped   int
	Failed    int
}

// Pipeline drives download → transcode → store → record for a listing's
// images. Per-image failures are logged with a classified cause and do
// not abort the remaining images.
type Pipeline struct {
	downloader    *Downloader
	store         ObjectStore
	repo          *Repository
	logger        *slog.Logger
	maxConcurrent int
}

// NewPipeline creates an image pipeline. maxConcurrent bounds in-flight
// downloads (and therefore image buffers) per listing.
func NewPipeline(downloader *Downloader, store ObjectStore, repo *Repository, logger *slog.Logger, maxConcurrent int) *Pipeline {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		downloader:    downloader,
		store:         store,
		repo:          repo,
		logger:        logger,
		maxConcurrent: maxConcurrent,
	}
}

// Process runs the pipeline for every image URL of a property, in
// original order of ordinals, with bounded concurrency. It returns
// counts of processed, skipped (already recorded), and failed images.
func (p *Pipeline) Process(ctx context.Context, propertyID int64, reference string, urls []string) Outcome {
	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		sem     = make(chan struct{}, p.maxConcurrent)
		outcome Outcome
	)

	for i, url := range urls {
		wg.Add(1)
		sem <- struct{}{}

		go func(position int, url string) {
			defer wg.Done()
			defer func() { <-sem }()

			status := p.processOne(ctx, propertyID, reference, position, url)

			mu.Lock()
			switch status {
			case imageProcessed:
				outcome.Processed++
			case imageSkipped:
				outcome.Skipped++
			default:
				outcome.Failed++
			}
			mu.Unlock()
		}(i, url)
	}

	wg.Wait()
	return outcome
}

type imageStatus int

const (
	imageProcessed imageStatus = iota
	imageSkipped
	imageFailed
)

// processOne handles a single image end to end.
func (p *Pipeline) processOne(ctx context.Context, propertyID int64, reference string, position int, url string) imageStatus {
	exists, err := p.repo.Exists(propertyID, url)
	if err != nil {
		p.logFailure(reference, url, CategoryDatabase, err)
		return imageFailed
	}
	if exists {
		p.logger.Debug("image already stored, skipping",
			slog.String("reference", reference), slog.String("url", url))
		return imageSkipped
	}

	data, err := p.downloader.Fetch(ctx, url)
	if err != nil {
		p.logFailure(reference, url, CategoryNetwork, err)
		return imageFailed
	}

	transcoded, err := Transcode(data)
	if err != nil {
		p.logFailure(reference, url, CategoryFormat, err)
		return imageFailed
	}

	key := fmt.Sprintf("%s/%d.jpg", strings.ToLower(reference), position)
	storedURL, err := p.store.Put(ctx, key, transcoded)
	if err != nil {
		p.logFailure(reference, url, CategoryStorage, err)
		return imageFailed
	}

	img := &PropertyImage{
		PropertyID: propertyID,
		SourceURL:  url,
		StoredURL:  storedURL,
		Position:   position,
	}
	if err := p.repo.Insert(img); err != nil {
		p.logFailure(reference, url, CategoryDatabase, err)
		return imageFailed
	}

	return imageProcessed
}

func (p *Pipeline) logFailure(reference, url string, category Category, err error) {
	p.logger.Warn("image processing failed",
		slog.String("reference", reference),
		slog.String("url", url),
		slog.String("category", string(category)),
		slog.String("error", err.Error()),
		slog.Bool("recoverable", true),
	)
}
