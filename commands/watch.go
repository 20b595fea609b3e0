package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/penwyp/go-mela-save-monitor/internal/application/backup"
	"github.com/penwyp/go-mela-save-monitor/internal/core/constants"
	"github.com/penwyp/go-mela-save-monitor/internal/core/model"
	"github.com/penwyp/go-mela-save-monitor/internal/core/tailer"
	"github.com/penwyp/go-mela-save-monitor/internal/presentation/layout"
	"github.com/penwyp/go-mela-save-monitor/internal/util"
	"github.com/spf13/cobra"
)

var (
	// Log source flags
	watchLogDir  string
	watchPattern string

	// Timing flags
	watchLineWait   time.Duration
	watchRescanWait time.Duration
	watchRetryWait  time.Duration

	// Behaviour flags
	watchNoNotify bool
	watchQuiet    bool
)

const defaultLogDir = "~/AppData/LocalLow/VRChat/VRChat"

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow the newest VRChat log and archive new save codes",
	Long: `Follows the most recently modified output_log_*.txt in the log directory,
switching to a newer file as soon as VRChat starts one. Every save code that is
not archived yet is appended to <archive-dir>/<date>.txt and printed.

Runs until interrupted (Ctrl+C).`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	addWatchFlags(watchCmd)
}

// addWatchFlags binds the watch flags to cmd. Root and watch share them so
// that running without a subcommand behaves like watch.
func addWatchFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&watchLogDir, "log-dir", defaultLogDir,
		"VRChat log directory")
	cmd.Flags().StringVar(&watchPattern, "pattern", model.DefaultLogPattern,
		"Log file name pattern")
	cmd.Flags().DurationVar(&watchLineWait, "line-wait", constants.LineWaitInterval,
		"Pause at end of file before reading again")
	cmd.Flags().DurationVar(&watchRescanWait, "rescan-wait", constants.RescanWaitInterval,
		"Pause between scans while no log file exists")
	cmd.Flags().DurationVar(&watchRetryWait, "retry-wait", constants.RetryWaitInterval,
		"Pause after a failed open or read")
	cmd.Flags().BoolVar(&watchNoNotify, "no-notify", false,
		"Disable file system notifications and rely on polling only")
	cmd.Flags().BoolVarP(&watchQuiet, "quiet", "q", false,
		"Do not print archived backups")
}

// WatchConfig holds everything the watch loop needs.
type WatchConfig struct {
	LogDir     string
	ArchiveDir string
	Pattern    string

	LineWait   time.Duration
	RescanWait time.Duration
	RetryWait  time.Duration

	Notify bool
	Quiet  bool
}

// Validate expands paths and fills defaults.
func (c *WatchConfig) Validate() error {
	if c.LogDir == "" {
		c.LogDir = defaultLogDir
	}
	c.LogDir = util.ExpandPath(c.LogDir)
	c.ArchiveDir = resolveArchiveDir(c.ArchiveDir)

	if c.LogDir == c.ArchiveDir {
		return fmt.Errorf("archive directory must differ from the log directory")
	}
	tc := c.tailerConfig()
	if err := tc.Validate(); err != nil {
		return err
	}
	c.Pattern = tc.Pattern
	c.LineWait, c.RescanWait, c.RetryWait = tc.LineWait, tc.RescanWait, tc.RetryWait
	return nil
}

func (c *WatchConfig) tailerConfig() *tailer.Config {
	return &tailer.Config{
		Dir:        c.LogDir,
		Pattern:    c.Pattern,
		LineWait:   c.LineWait,
		RescanWait: c.RescanWait,
		RetryWait:  c.RetryWait,
	}
}

func runWatch(cmd *cobra.Command, args []string) error {
	config := &WatchConfig{
		LogDir:     watchLogDir,
		ArchiveDir: archiveDir,
		Pattern:    watchPattern,
		LineWait:   watchLineWait,
		RescanWait: watchRescanWait,
		RetryWait:  watchRetryWait,
		Notify:     !watchNoNotify,
		Quiet:      watchQuiet,
	}
	if err := config.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return watch(ctx, config, cmd.OutOrStdout())
}

// watch archives backups until ctx is cancelled. config must be validated.
func watch(ctx context.Context, config *WatchConfig, out io.Writer) error {
	store, err := openStore(config.ArchiveDir)
	if err != nil {
		return err
	}

	tcfg := config.tailerConfig()
	if err := tcfg.Validate(); err != nil {
		return err
	}

	var opts []tailer.Option
	if config.Notify {
		watcher, err := tailer.NewFileWatcher(tcfg.Dir, tcfg.Pattern)
		if err != nil {
			util.LogWarn("File notifications unavailable, polling only", util.F("dir", tcfg.Dir), util.F("error", err))
		} else {
			defer watcher.Close()
			opts = append(opts, tailer.WithMonitor(watcher))
		}
	}

	pipeline := backup.NewPipeline(store)
	updates := pipeline.Updates(ctx, constants.UpdatesBuffer)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		pipeline.Run(ctx, tailer.New(*tcfg, opts...).Lines(ctx))
	}()

	colored := layout.NewSizer(out).IsTerminal()
	title := func(s string, style func(string) string) string {
		if colored {
			return style(s)
		}
		return s
	}

	if !config.Quiet {
		fmt.Fprintf(out, "%s %s (archive: %s, %d archived)\n",
			title("Watching", util.FormatHeaderTitle), tcfg.Dir, store.Dir(), store.Len())
	}
	util.LogInfo("Watch started", util.F("log_dir", tcfg.Dir), util.F("archive_dir", store.Dir()))

	for rec := range updates {
		if config.Quiet {
			continue
		}
		fmt.Fprintf(out, "%s %s -> %s\n",
			title("New backup", util.FormatDataTitle), rec.Timestamp, store.FilePath(rec))
	}

	wg.Wait()

	stats := pipeline.Stats()
	util.LogInfo("Watch stopped",
		util.F("lines", stats.Lines),
		util.F("accepted", stats.Accepted),
		util.F("duplicates", stats.Duplicates),
		util.F("failures", stats.Failures))
	if !config.Quiet {
		fmt.Fprintf(out, "Stopped. %d new backups archived this run.\n", stats.Accepted)
	}
	return nil
}
