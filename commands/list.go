package commands

import (
	"fmt"
	"strings"

	"github.com/penwyp/go-mela-save-monitor/internal/presentation/formatter"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list <date>",
	Short: "List the backups of one day, newest first",
	Example: `  go-mela-save-monitor list 2026-02-03
  go-mela-save-monitor list 2026.02.03 -o json`,
	Args: cobra.ExactArgs(1),
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	store, err := openStore(archiveDir)
	if err != nil {
		return err
	}

	records := store.RecordsForDate(args[0])
	if len(records) == 0 {
		records = store.RecordsForDate(normalizeDate(args[0]))
	}
	if len(records) == 0 {
		return fmt.Errorf("no backups for %s", args[0])
	}

	f, err := formatter.New(outputFormat, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	return f.FormatRecords(records)
}

// normalizeDate turns 2026.02.03 and 2026/02/03 into 2026-02-03.
func normalizeDate(date string) string {
	return strings.NewReplacer(".", "-", "/", "-", `\`, "-").Replace(strings.TrimSpace(date))
}
