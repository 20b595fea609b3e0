package commands

import (
	"fmt"
	"path/filepath"

	"github.com/penwyp/go-mela-save-monitor/internal/config"
	"github.com/penwyp/go-mela-save-monitor/internal/core/model"
	"github.com/penwyp/go-mela-save-monitor/internal/data/archive"
	"github.com/penwyp/go-mela-save-monitor/internal/util"
	"github.com/spf13/cobra"
)

var (
	configFile string

	// Logging related
	debug     bool
	logFile   string
	logFormat string

	// Archive and output
	archiveDir   string
	outputFormat string
	timezone     string

	rootCmd = &cobra.Command{
		Use:   "go-mela-save-monitor [flags]",
		Short: "Back up MELA achievement save codes from VRChat logs",
		Long: `go-mela-save-monitor follows the newest VRChat output log and archives every
MELA achievements save code it prints, one file per day.

Without a subcommand it watches the log directory until interrupted.

Examples:
  go-mela-save-monitor                                  # Watch with default settings
  go-mela-save-monitor --log-dir /path/to/VRChat        # Watch another log directory
  go-mela-save-monitor dates                            # List archived days
  go-mela-save-monitor list 2026-02-03 -o json          # Backups of one day as JSON
  go-mela-save-monitor show --latest | pbcopy           # Copy the newest save code
  go-mela-save-monitor import old/output_log_*.txt      # Backfill from old logs`,
		Args:              cobra.NoArgs,
		SilenceUsage:      true,
		PersistentPreRunE: initRuntime,
		RunE:              runWatch,
	}
)

const (
	defaultLogFile    = "~/.go-mela-save-monitor/logs/app.log"
	defaultArchiveDir = "SaveCode"
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "",
		"Config file (default: "+config.DefaultPath+")")
	rootCmd.PersistentFlags().StringVar(&archiveDir, "archive-dir", "",
		"Archive directory (default: SaveCode next to the executable)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "table",
		"Output format (table, json, csv)")
	rootCmd.PersistentFlags().StringVar(&timezone, "timezone", "Local",
		"Timezone for backups whose log line carries no time (e.g., Asia/Tokyo, UTC)")

	// System and debugging
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false,
		"Enable debug mode")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", defaultLogFile,
		"Log file path")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text",
		"Log format (text, json)")

	addWatchFlags(rootCmd)
}

func initRuntime(cmd *cobra.Command, args []string) error {
	if err := applyConfigFile(cmd, configFile); err != nil {
		return err
	}

	// Determine log level based on debug flag
	logLevel := "info"
	if debug {
		logLevel = "debug"
	}

	format, err := util.ParseLogFormat(logFormat)
	if err != nil {
		return err
	}
	var file string
	if logFile != "" {
		file = util.ExpandPath(logFile)
	}
	if err := util.InitLogger(logLevel, file, debug, format); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}

	return util.InitializeTimeProvider(timezone)
}

// applyConfigFile fills every flag the user did not set from the config file.
func applyConfigFile(cmd *cobra.Command, path string) error {
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	for name, value := range cfg.Values() {
		flag := cmd.Flags().Lookup(name)
		if flag == nil || flag.Changed {
			continue
		}
		if err := cmd.Flags().Set(name, value); err != nil {
			return fmt.Errorf("config %s: %w", name, err)
		}
	}
	return nil
}

func Execute() error {
	defer util.CloseLogger()
	return rootCmd.Execute()
}

// resolveArchiveDir returns the configured archive directory, defaulting to
// SaveCode beside the executable.
func resolveArchiveDir(dir string) string {
	if dir == "" {
		return filepath.Join(util.ExecutableDir(), defaultArchiveDir)
	}
	return util.ExpandPath(dir)
}

// openStore loads the archive at dir.
func openStore(dir string) (*archive.Store, error) {
	store := archive.NewStore(resolveArchiveDir(dir))
	if err := store.LoadAll(); err != nil {
		return nil, fmt.Errorf("failed to load archive %s: %w", store.Dir(), err)
	}
	util.LogDebug("Archive loaded", util.F("dir", store.Dir()), util.F("records", store.Len()))
	return store, nil
}

// findRecord resolves a date and time typed by the user. The date may use
// slashes or dots in place of dashes.
func findRecord(store *archive.Store, date, timePart string) (model.Record, error) {
	if rec, ok := store.Find(date, timePart); ok {
		return rec, nil
	}
	normalized := normalizeDate(date)
	if rec, ok := store.Find(normalized, timePart); ok {
		return rec, nil
	}
	return model.Record{}, fmt.Errorf("no backup at %s %s", date, timePart)
}
