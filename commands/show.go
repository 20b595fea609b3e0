package commands

import (
	"fmt"

	"github.com/penwyp/go-mela-save-monitor/internal/core/model"
	"github.com/penwyp/go-mela-save-monitor/internal/presentation/formatter"
	"github.com/spf13/cobra"
)

var showLatest bool

var showCmd = &cobra.Command{
	Use:   "show <date> <time>",
	Short: "Print one save code",
	Long: `Prints the payload of one backup exactly as archived, so it can be piped into
a clipboard tool. With --output json the timestamp is included.`,
	Example: `  go-mela-save-monitor show 2026-02-03 12:00:00
  go-mela-save-monitor show --latest`,
	Args: func(cmd *cobra.Command, args []string) error {
		if showLatest {
			return cobra.NoArgs(cmd, args)
		}
		return cobra.ExactArgs(2)(cmd, args)
	},
	RunE: runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().BoolVar(&showLatest, "latest", false,
		"Show the most recent backup")
}

func runShow(cmd *cobra.Command, args []string) error {
	store, err := openStore(archiveDir)
	if err != nil {
		return err
	}

	var rec model.Record
	if showLatest {
		var ok bool
		if rec, ok = store.Latest(); !ok {
			return fmt.Errorf("archive %s is empty", store.Dir())
		}
	} else if rec, err = findRecord(store, args[0], args[1]); err != nil {
		return err
	}

	f, err := formatter.New(outputFormat, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	return f.FormatRecord(rec)
}
