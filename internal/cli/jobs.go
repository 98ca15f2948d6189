package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshfom/trpe-import/internal/config"
	"github.com/joshfom/trpe-import/internal/importer"
)

func newJobsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "jobs",
		Short: "List past import jobs",
		Args:  cobra.NoArgs,
		RunE:  runJobs,
	}
}

func runJobs(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}

	database, err := openDB(cfg.DBPath)
	if err != nil {
		return err
	}
	defer closeDB(database)

	jobs, err := importer.NewJobRepository(database).List()
	if err != nil {
		return fmt.Errorf("listing jobs: %w", err)
	}

	if isJSON() {
		return printJSON(jobs)
	}

	if len(jobs) == 0 {
		fmt.Println("No import jobs yet.")
		return nil
	}

	for _, job := range jobs {
		fmt.Printf("%s  %-9s  started %s", job.ID, job.Status, job.StartedAt.Format("2006-01-02 15:04:05"))
		if s := job.Stats; s != nil {
			fmt.Printf("  processed=%d created=%d updated=%d skipped=%d failed=%d",
				s.TotalProcessed, s.Created, s.Updated, s.Skipped, s.Failed)
		}
		if job.Error != "" {
			fmt.Printf("  error=%q", job.Error)
		}
		fmt.Println()
	}
	return nil
}
