package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/penwyp/go-mela-save-monitor/internal/util"
)

// DefaultPath is read when no --config flag is given. A missing default file
// is not an error.
const DefaultPath = "~/.go-mela-save-monitor/config.toml"

// Config holds the settings a config file may provide. Zero values mean
// "not set" so command line flags and built-in defaults still apply.
type Config struct {
	LogDir     string
	ArchiveDir string
	Pattern    string

	LineWait   time.Duration
	RescanWait time.Duration
	RetryWait  time.Duration

	Notify *bool

	LogFile   string
	LogFormat string
	Timezone  string
}

type rawConfig struct {
	LogDir     string `toml:"log_dir"`
	ArchiveDir string `toml:"archive_dir"`
	Pattern    string `toml:"pattern"`
	LineWait   string `toml:"line_wait"`
	RescanWait string `toml:"rescan_wait"`
	RetryWait  string `toml:"retry_wait"`
	Notify     *bool  `toml:"notify"`
	LogFile    string `toml:"log_file"`
	LogFormat  string `toml:"log_format"`
	Timezone   string `toml:"timezone"`
}

// Load parses the TOML file at path. An empty path means DefaultPath.
func Load(path string) (Config, error) {
	explicit := strings.TrimSpace(path) != ""
	if !explicit {
		path = DefaultPath
	}
	resolved := util.ExpandPath(path)

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(bytes)
}

// Parse decodes config file contents.
func Parse(data []byte) (Config, error) {
	var raw rawConfig
	if err := toml.Unmarshal(data, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	cfg := Config{
		LogDir:     strings.TrimSpace(raw.LogDir),
		ArchiveDir: strings.TrimSpace(raw.ArchiveDir),
		Pattern:    strings.TrimSpace(raw.Pattern),
		Notify:     raw.Notify,
		LogFile:    strings.TrimSpace(raw.LogFile),
		LogFormat:  strings.TrimSpace(raw.LogFormat),
		Timezone:   strings.TrimSpace(raw.Timezone),
	}

	var err error
	if cfg.LineWait, err = parseDuration("line_wait", raw.LineWait); err != nil {
		return Config{}, err
	}
	if cfg.RescanWait, err = parseDuration("rescan_wait", raw.RescanWait); err != nil {
		return Config{}, err
	}
	if cfg.RetryWait, err = parseDuration("retry_wait", raw.RetryWait); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func parseDuration(key, value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("parse config: %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("parse config: %s must be positive", key)
	}
	return d, nil
}

// Values returns the set entries keyed by command line flag name.
func (c Config) Values() map[string]string {
	values := make(map[string]string)
	put := func(name, value string) {
		if value != "" {
			values[name] = value
		}
	}
	putDuration := func(name string, d time.Duration) {
		if d > 0 {
			values[name] = d.String()
		}
	}

	put("log-dir", c.LogDir)
	put("archive-dir", c.ArchiveDir)
	put("pattern", c.Pattern)
	putDuration("line-wait", c.LineWait)
	putDuration("rescan-wait", c.RescanWait)
	putDuration("retry-wait", c.RetryWait)
	if c.Notify != nil {
		values["no-notify"] = fmt.Sprint(!*c.Notify)
	}
	put("log-file", c.LogFile)
	put("log-format", c.LogFormat)
	put("timezone", c.Timezone)
	return values
}
