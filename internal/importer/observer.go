package importer

import "log/slog"

// Observer receives progress notifications during a run. The statistics
// snapshot stays the authoritative machine-readable result; observers
// exist so progress reporting is injectable instead of printed ad hoc.
type Observer interface {
	RunStarted(jobID string, totalListings, batches int)
	BatchStarted(index, total, size int)
	ListingImported(reference string, created bool)
	ListingSkipped(reference string, reasons []string)
	ListingFailed(reference string, err error)
	RunFinished(status string, stats *Statistics)
}

// NopObserver ignores all notifications.
type NopObserver struct{}

func (NopObserver) RunStarted(string, int, int)     {}
func (NopObserver) BatchStarted(int, int, int)      {}
func (NopObserver) ListingImported(string, bool)    {}
func (NopObserver) ListingSkipped(string, []string) {}
func (NopObserver) ListingFailed(string, error)     {}
func (NopObserver) RunFinished(string, *Statistics) {}

// LogObserver reports progress through slog.
type LogObserver struct {
	Logger *slog.Logger
}

func (o LogObserver) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

func (o LogObserver) RunStarted(jobID string, totalListings, batches int) {
	o.logger().Info("import started",
		slog.String("job_id", jobID),
		slog.Int("listings", totalListings),
		slog.Int("batches", batches),
	)
}

func (o LogObserver) BatchStarted(index, total, size int) {
	o.logger().Info("batch started",
		slog.Int("batch", index+1),
		slog.Int("of", total),
		slog.Int("size", size),
	)
}

func (o LogObserver) ListingImported(reference string, created bool) {
	action := "updated"
	if created {
		action = "created"
	}
	o.logger().Debug("listing imported",
		slog.String("reference", reference),
		slog.String("action", action),
	)
}

func (o LogObserver) ListingSkipped(reference string, reasons []string) {
	o.logger().Warn("listing skipped",
		slog.String("reference", reference),
		slog.Any("reasons", reasons),
		slog.Bool("recoverable", true),
	)
}

func (o LogObserver) ListingFailed(reference string, err error) {
	o.logger().Error("listing failed",
		slog.String("reference", reference),
		slog.String("error", err.Error()),
		slog.Bool("recoverable", true),
	)
}

func (o LogObserver) RunFinished(status string, stats *Statistics) {
	o.logger().Info("import finished",
		slog.String("status", status),
		slog.Int("processed", stats.TotalProcessed),
		slog.Int("created", stats.Created),
		slog.Int("updated", stats.Updated),
		slog.Int("skipped", stats.Skipped),
		slog.Int("failed", stats.Failed),
	)
}
