package fixtures

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/penwyp/go-mela-save-monitor/internal/core/model"
)

// vrchatTimeLayout is the timestamp VRChat prefixes to every log line.
const vrchatTimeLayout = "2006.01.02 15:04:05"

// LogGenerator writes VRChat-style output logs for tests.
type LogGenerator struct {
	baseDir string
}

func NewLogGenerator(baseDir string) *LogGenerator {
	return &LogGenerator{baseDir: baseDir}
}

// LogLine formats an ordinary log line.
func LogLine(ts time.Time, level, msg string) string {
	return fmt.Sprintf("%s %-10s -  %s", ts.Format(vrchatTimeLayout), level, msg)
}

// BackupLine formats the line the world prints when it saves achievements.
func BackupLine(ts time.Time, payload string) string {
	return LogLine(ts, "Log", model.BackupStartMarker+payload+model.BackupEndMarker)
}

// FileName returns the name VRChat gives a log started at ts.
func FileName(ts time.Time) string {
	return "output_log_" + ts.Format("2006-01-02_15-04-05") + ".txt"
}

// WriteLog creates name with lines, each newline-terminated.
func (g *LogGenerator) WriteLog(name string, lines ...string) (string, error) {
	path := filepath.Join(g.baseDir, name)
	if err := os.MkdirAll(g.baseDir, 0755); err != nil {
		return "", err
	}
	return path, os.WriteFile(path, []byte(joinLines(lines)), 0644)
}

// AppendLog appends lines to name, creating it when missing.
func (g *LogGenerator) AppendLog(name string, lines ...string) error {
	f, err := os.OpenFile(filepath.Join(g.baseDir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(joinLines(lines)); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// GenerateSession writes a log started at start with one backup per payload,
// a minute apart, surrounded by unrelated chatter.
func (g *LogGenerator) GenerateSession(start time.Time, payloads ...string) (string, error) {
	lines := []string{
		LogLine(start, "Debug", "VRChat Build: 1234, Store: Steam"),
		LogLine(start, "Log", "[Behaviour] Joining wrld_mela:12345~region(jp)"),
	}
	for i, payload := range payloads {
		ts := start.Add(time.Duration(i+1) * time.Minute)
		lines = append(lines,
			LogLine(ts, "Log", "[UdonBehaviour] Saving achievements"),
			BackupLine(ts, payload),
		)
	}
	return g.WriteLog(FileName(start), lines...)
}

func joinLines(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}
