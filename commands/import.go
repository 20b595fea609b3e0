package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/penwyp/go-mela-save-monitor/internal/application/backup"
	"github.com/penwyp/go-mela-save-monitor/internal/core/tailer"
	"github.com/penwyp/go-mela-save-monitor/internal/util"
	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import <file>...",
	Short: "Archive the save codes found in existing log files",
	Long: `Reads each file once from start to end and archives every save code that is
not archived yet. Useful to backfill from logs written while the monitor was
not running.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	store, err := openStore(archiveDir)
	if err != nil {
		return err
	}

	pipeline := backup.NewPipeline(store)
	added, err := importFiles(cmd.Context(), pipeline, args)

	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d new backups from %d files into %s\n",
		added, len(args), store.Dir())
	return err
}

// importFiles feeds every line of paths through pipeline and returns the
// number of records archived. Unreadable files are reported after the rest
// have been processed.
func importFiles(ctx context.Context, pipeline *backup.Pipeline, paths []string) (int64, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	before := pipeline.Stats().Accepted

	lines := make(chan tailer.Line)
	errc := make(chan error, 1)
	go func() {
		defer close(lines)
		var errs []error
		for _, path := range paths {
			if err := readLines(ctx, util.ExpandPath(path), lines); err != nil {
				util.LogWarn("Import failed", util.F("path", path), util.F("error", err))
				errs = append(errs, fmt.Errorf("%s: %w", path, err))
			}
		}
		errc <- errors.Join(errs...)
	}()

	if err := pipeline.Run(ctx, lines); err != nil {
		return 0, err
	}
	// Run returns early on cancel; drain so the reader can finish.
	for range lines {
	}
	err := <-errc
	return pipeline.Stats().Accepted - before, err
}

func readLines(ctx context.Context, path string, out chan<- tailer.Line) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := util.GetOpenFileInfo(f)
	if err != nil {
		return err
	}
	src := tailer.SourceOf(info)

	return tailer.ReadAll(f, func(text string) error {
		select {
		case out <- tailer.Line{Path: path, Text: text, Source: src}:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})
}
