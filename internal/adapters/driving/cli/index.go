package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cadence-hq/cadence-cli/internal/core/domain"
	"github.com/cadence-hq/cadence-cli/internal/logger"
)

var (
	indexFull  bool
	indexWatch bool
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build or update the knowledge-base index",
	Long: `Indexes the knowledge corpus for retrieval. Incremental by default:
unchanged documents are skipped by content fingerprint, and documents
removed from the corpus are tombstoned.

With --watch, stays running and re-indexes paths as they change.`,
	RunE: runIndex,
}

var indexStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current index version and document count",
	RunE:  runIndexStatus,
}

func init() {
	indexCmd.Flags().BoolVar(&indexFull, "full", false, "clear the index and re-process everything")
	indexCmd.Flags().BoolVar(&indexWatch, "watch", false, "keep running and re-index changed files")
	indexCmd.AddCommand(indexStatusCmd)
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, _ []string) error {
	if indexerService == nil {
		return errors.New("indexer service not configured")
	}

	mode := domain.IndexModeIncremental
	if indexFull {
		mode = domain.IndexModeFull
	}

	ctx := cmd.Context()
	report, err := indexerService.Index(ctx, mode)
	if err != nil {
		if errors.Is(err, domain.ErrIndexInProgress) {
			return errors.New("an index run is already in progress")
		}
		return fmt.Errorf("index failed: %w", err)
	}

	printIndexReport(cmd, report)

	if indexWatch {
		return watchCorpus(ctx, cmd)
	}
	return nil
}

func printIndexReport(cmd *cobra.Command, report *domain.IndexReport) {
	cmd.Printf("Index %s complete in %s\n", report.Mode, report.Duration.Round(timePrecision))
	cmd.Printf("  Added:     %d\n", report.Added)
	cmd.Printf("  Updated:   %d\n", report.Updated)
	cmd.Printf("  Removed:   %d\n", report.Removed)
	cmd.Printf("  Unchanged: %d\n", report.Unchanged)
	if len(report.Skipped) > 0 {
		cmd.Printf("  Skipped:   %d\n", len(report.Skipped))
		for _, s := range report.Skipped {
			cmd.Printf("    %s: %s\n", s.Path, s.Reason)
		}
	}
}

// watchCorpus re-indexes paths as the watcher reports changes. Blocks
// until the context is cancelled.
func watchCorpus(ctx context.Context, cmd *cobra.Command) error {
	if corpusSource == nil {
		return errors.New("corpus source not configured")
	}

	changes, err := corpusSource.Watch(ctx)
	if err != nil {
		return fmt.Errorf("watch corpus: %w", err)
	}

	cmd.Println("Watching for corpus changes (ctrl-c to stop)...")
	for {
		select {
		case <-ctx.Done():
			return nil
		case path, ok := <-changes:
			if !ok {
				return nil
			}
			logger.Info("Change detected: %s", path)
			if err := indexerService.Reindex(ctx, path); err != nil {
				// Watch mode keeps going; the next change retries.
				logger.Warn("Re-index %s: %v", path, err)
			}
		}
	}
}

func runIndexStatus(cmd *cobra.Command, _ []string) error {
	if indexerService == nil {
		return errors.New("indexer service not configured")
	}

	status, err := indexerService.Status(cmd.Context())
	if err != nil {
		return fmt.Errorf("index status: %w", err)
	}

	if status.Version == "" {
		cmd.Println("Index has not been built yet. Run 'cadence index' first.")
		return nil
	}
	cmd.Printf("Version:   %s\n", status.Version)
	cmd.Printf("Documents: %d\n", status.DocumentCount)
	if status.Running {
		cmd.Println("A run is currently in progress.")
	}
	return nil
}
