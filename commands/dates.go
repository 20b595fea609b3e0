package commands

import (
	"github.com/penwyp/go-mela-save-monitor/internal/data/archive"
	"github.com/penwyp/go-mela-save-monitor/internal/presentation/formatter"
	"github.com/spf13/cobra"
)

var datesCmd = &cobra.Command{
	Use:   "dates",
	Short: "List archived days, most recent first",
	Args:  cobra.NoArgs,
	RunE:  runDates,
}

func init() {
	rootCmd.AddCommand(datesCmd)
}

func runDates(cmd *cobra.Command, args []string) error {
	store, err := openStore(archiveDir)
	if err != nil {
		return err
	}
	f, err := formatter.New(outputFormat, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	return f.FormatDates(summarizeDates(store))
}

// summarizeDates groups the archive by date part in one pass over the
// sequence. Days keep the order they first appear in, most recent first.
func summarizeDates(store *archive.Store) []formatter.DateSummary {
	summaries := []formatter.DateSummary{}
	index := make(map[string]int)
	for _, rec := range store.Records() {
		date := rec.DatePart()
		if i, ok := index[date]; ok {
			summaries[i].Count++
			continue
		}
		index[date] = len(summaries)
		summaries = append(summaries, formatter.DateSummary{
			Date:   date,
			Count:  1,
			Latest: rec.TimePart(),
			File:   store.FilePath(rec),
		})
	}
	return summaries
}
