package importer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/joshfom/trpe-import/internal/catalog"
	"github.com/joshfom/trpe-import/internal/feed"
	"github.com/joshfom/trpe-import/internal/images"
	"github.com/joshfom/trpe-import/internal/listing"
	"github.com/joshfom/trpe-import/internal/property"
	"github.com/joshfom/trpe-import/internal/slug"
)

// Options are the orchestrator's tunables, passed in explicitly so the
// core stays free of process-global lookups.
type Options struct {
	FeedPath  string
	BatchSize int
	// Parallel toggles bounded intra-batch concurrency. Batches never
	// overlap each other either way.
	Parallel bool
}

// DefaultBatchSize is used when Options.BatchSize is unset.
const DefaultBatchSize = 15

// Result is the pipeline's return value. JobID is always present, even
// on failure, because the job row is created before any processing.
type Result struct {
	Success bool        `json:"success"`
	JobID   string      `json:"job_id"`
	Stats   *Statistics `json:"stats,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Importer drives the whole listing set through validation, entity
// resolution, slug allocation, upsert, and image processing in
// bounded-size batches.
type Importer struct {
	opts       Options
	properties *property.Repository
	catalog    *catalog.Repository
	slugs      *slug.Allocator
	images     *images.Pipeline
	jobs       *JobRepository
	obs        Observer
	logger     *slog.Logger

	mu    sync.Mutex
	stats Statistics
}

// New creates an importer. A nil observer defaults to NopObserver and a
// nil logger to slog.Default().
func New(opts Options, properties *property.Repository, cat *catalog.Repository, slugs *slug.Allocator, imgs *images.Pipeline, jobs *JobRepository, obs Observer, logger *slog.Logger) *Importer {
	if opts.BatchSize < 1 {
		opts.BatchSize = DefaultBatchSize
	}
	if obs == nil {
		obs = NopObserver{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{
		opts:       opts,
		properties: properties,
		catalog:    cat,
		slugs:      slugs,
		images:     imgs,
		jobs:       jobs,
		obs:        obs,
		logger:     logger,
	}
}

// Run executes one import. The job record is created first and
// finalized exactly once at the end, success or failure; individual
// listing failures never fail the run.
func (imp *Importer) Run(ctx context.Context) Result {
	job, err := imp.jobs.Create()
	if err != nil {
		return Result{Success: false, Error: fmt.Sprintf("creating job record: %v", err)}
	}

	start := time.Now()

	fd, err := feed.Read(imp.opts.FeedPath)
	if err != nil {
		// Fatal: nothing was processed.
		return imp.finish(job.ID, start, err)
	}

	batches := splitBatches(fd.Properties, imp.opts.BatchSize)
	imp.obs.RunStarted(job.ID, len(fd.Properties), len(batches))

	var runErr error
	for i, batch := range batches {
		if err := ctx.Err(); err != nil {
			runErr = fmt.Errorf("import cancelled: %w", err)
			break
		}

		imp.obs.BatchStarted(i, len(batches), len(batch))
		if imp.opts.Parallel {
			imp.runBatchParallel(ctx, batch)
		} else {
			for j := range batch {
				imp.processListing(ctx, &batch[j])
			}
		}
	}

	return imp.finish(job.ID, start, runErr)
}

// finish computes derived statistics, writes the job's terminal state,
// and builds the result. This is the single externally-durable
// completion signal, reached with partial statistics even after a
// top-level error.
func (imp *Importer) finish(jobID string, start time.Time, runErr error) Result {
	imp.mu.Lock()
	stats := imp.stats
	imp.mu.Unlock()
	stats.finalize(time.Since(start))

	status := StatusCompleted
	errMsg := ""
	if runErr != nil {
		status = StatusFailed
		errMsg = runErr.Error()
	}

	if err := imp.jobs.Finish(jobID, status, errMsg, &stats); err != nil {
		imp.logger.Error("finalizing job record failed",
			slog.String("job_id", jobID), slog.String("error", err.Error()))
	}

	imp.obs.RunFinished(status, &stats)

	return Result{
		Success: runErr == nil,
		JobID:   jobID,
		Stats:   &stats,
		Error:   errMsg,
	}
}

// runBatchParallel processes one batch's listings concurrently. Each
// listing is wrapped so one failure cannot cancel siblings, and the next
// batch never starts before every listing here has settled.
func (imp *Importer) runBatchParallel(ctx context.Context, batch []feed.RawListing) {
	var wg sync.WaitGroup
	for j := range batch {
		wg.Add(1)
		go func(raw *feed.RawListing) {
			defer wg.Done()
			imp.processListing(ctx, raw)
		}(&batch[j])
	}
	wg.Wait()
}

// processListing drives one listing through the full pipeline and
// records its outcome. Statistics are only updated after everything,
// images included, has settled. Panics are converted to a failed count.
func (imp *Importer) processListing(ctx context.Context, raw *feed.RawListing) {
	reference := raw.Details.Reference

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("unexpected panic: %v", r)
			imp.obs.ListingFailed(reference, err)
			imp.record(func(s *Statistics) {
				s.TotalProcessed++
				s.Failed++
			})
		}
	}()

	l, rejection, err := listing.Normalize(raw)
	if err != nil {
		// Hard validation failure (empty reference): an unknown-error
		// skip, distinct from an ordinary rejection.
		imp.obs.ListingSkipped(reference, []string{err.Error()})
		imp.record(func(s *Statistics) {
			s.TotalProcessed++
			s.Skipped++
		})
		return
	}
	if rejection != nil {
		imp.obs.ListingSkipped(reference, rejection.Reasons)
		imp.record(func(s *Statistics) {
			s.TotalProcessed++
			s.Skipped++
		})
		return
	}

	for _, warning := range l.Warnings {
		imp.logger.Warn("listing warning",
			slog.String("reference", l.Reference), slog.String("warning", warning))
	}

	saved, created, err := imp.importListing(l)
	if err != nil {
		imp.obs.ListingFailed(l.Reference, err)
		imp.record(func(s *Statistics) {
			s.TotalProcessed++
			s.Failed++
		})
		return
	}
	imp.obs.ListingImported(l.Reference, created)

	outcome, luxuryWithImages := imp.processImages(ctx, saved, l)

	imp.record(func(s *Statistics) {
		s.TotalProcessed++
		if created {
			s.Created++
		} else {
			s.Updated++
		}
		if l.Luxury {
			if luxuryWithImages {
				s.LuxuryWithImages++
			} else {
				s.LuxuryWithoutImages++
			}
		}
		s.ImagesProcessed += outcome.Processed
		s.ImagesSkipped += outcome.Skipped
		s.ImagesFailed += outcome.Failed
	})
}

// importListing resolves entities, allocates a slug, and upserts the
// property row.
func (imp *Importer) importListing(l *listing.Listing) (*property.Property, bool, error) {
	resolved, err := imp.catalog.Resolve(l)
	if err != nil {
		return nil, false, err
	}

	l.Slug, err = imp.slugs.Allocate(l.Title, l.Reference)
	if err != nil {
		return nil, false, fmt.Errorf("allocating slug: %w", err)
	}

	p := &property.Property{
		Reference:      l.Reference,
		Slug:           l.Slug,
		Title:          l.Title,
		Description:    l.Description,
		Price:          l.Price,
		Bedrooms:       l.Bedrooms,
		Bathrooms:      l.Bathrooms,
		Size:           l.Size,
		PermitNumber:   l.PermitNumber,
		AgentID:        resolved.Agent.ID,
		CommunityID:    resolved.Community.ID,
		TypeID:         resolved.PropertyType.ID,
		OfferingTypeID: resolved.OfferingType.ID,
		CityID:         resolved.City.ID,
		Luxury:         l.Luxury,
		Imported:       true,
		Status:         property.StatusPublished,
	}

	saved, created, err := imp.properties.Upsert(p)
	if err != nil {
		return nil, false, err
	}
	return saved, created, nil
}

// processImages runs the image pipeline when the luxury predicate holds.
// A pipeline-level panic counts the remaining images as failed without
// failing the listing.
func (imp *Importer) processImages(ctx context.Context, saved *property.Property, l *listing.Listing) (outcome images.Outcome, luxuryWithImages bool) {
	if !l.Luxury || len(l.Images) == 0 {
		return images.Outcome{}, false
	}
	luxuryWithImages = true

	defer func() {
		if r := recover(); r != nil {
			imp.logger.Error("image pipeline panicked",
				slog.String("reference", l.Reference), slog.Any("panic", r))
			outcome.Failed = len(l.Images) - outcome.Processed - outcome.Skipped
		}
	}()

	outcome = imp.images.Process(ctx, saved.ID, l.Reference, l.Images)
	return outcome, true
}

// record applies a statistics mutation under the lock.
func (imp *Importer) record(mutate func(*Statistics)) {
	imp.mu.Lock()
	defer imp.mu.Unlock()
	mutate(&imp.stats)
}

// splitBatches slices listings into runs of at most size.
func splitBatches(listings []feed.RawListing, size int) [][]feed.RawListing {
	var batches [][]feed.RawListing
	for start := 0; start < len(listings); start += size {
		end := start + size
		if end > len(listings) {
			end = len(listings)
		}
		batches = append(batches, listings[start:end])
	}
	return batches
}
