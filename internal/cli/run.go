package cli

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/joshfom/trpe-import/internal/catalog"
	"github.com/joshfom/trpe-import/internal/config"
	"github.com/joshfom/trpe-import/internal/images"
	"github.com/joshfom/trpe-import/internal/importer"
	"github.com/joshfom/trpe-import/internal/logging"
	"github.com/joshfom/trpe-import/internal/property"
	"github.com/joshfom/trpe-import/internal/slug"
)

func newRunCmd() *cobra.Command {
	var feedPath string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one import of the scraped listing feed",
		Long:  "Read the scraped JSON feed, validate and normalize every listing, upsert against the database, and process images for luxury listings. A job record is written for every run.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, feedPath)
		},
	}

	cmd.Flags().StringVar(&feedPath, "feed", "", "feed file path (overrides config)")

	return cmd
}

func runImport(cmd *cobra.Command, feedPath string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}
	if feedPath != "" {
		cfg.FeedPath = feedPath
	}

	logging.Setup(cfg.Dev)

	database, err := openDB(cfg.DBPath)
	if err != nil {
		return err
	}
	defer closeDB(database)

	propertyRepo := property.NewRepository(database)
	pipeline := images.NewPipeline(
		images.NewDownloader(http.DefaultClient),
		images.NewLocalStore(cfg.ImageDir, cfg.ImageBaseURL),
		images.NewRepository(database),
		nil,
		cfg.MaxImageConcurrency,
	)

	var obs importer.Observer = importer.LogObserver{}
	if isJSON() {
		obs = importer.NopObserver{}
	}

	imp := importer.New(
		importer.Options{
			FeedPath:  cfg.FeedPath,
			BatchSize: cfg.BatchSize,
			Parallel:  cfg.Parallel,
		},
		propertyRepo,
		catalog.NewRepository(database),
		slug.NewAllocator(propertyRepo),
		pipeline,
		importer.NewJobRepository(database),
		obs,
		nil,
	)

	result := imp.Run(cmd.Context())

	if isJSON() {
		if err := printJSON(result); err != nil {
			return err
		}
	} else {
		printResult(result)
	}

	if !result.Success {
		return fmt.Errorf("import failed: %s", result.Error)
	}
	return nil
}

func printResult(r importer.Result) {
	status := "completed"
	if !r.Success {
		status = "failed"
	}
	fmt.Printf("Import %s (job %s)\n", status, r.JobID)
	if r.Error != "" {
		fmt.Printf("  error: %s\n", r.Error)
	}
	if s := r.Stats; s != nil {
		fmt.Printf("  processed: %d  created: %d  updated: %d  skipped: %d  failed: %d\n",
			s.TotalProcessed, s.Created, s.Updated, s.Skipped, s.Failed)
		fmt.Printf("  images processed: %d  skipped: %d  failed: %d\n",
			s.ImagesProcessed, s.ImagesSkipped, s.ImagesFailed)
		fmt.Printf("  duration: %dms (%.1f listings/s)\n",
			s.DurationMillis, s.ListingsPerSecond)
	}
}
