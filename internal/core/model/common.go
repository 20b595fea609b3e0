package model

// Backup markers emitted by the MELA world into the VRChat client log
const (
	BackupStartMarker = "$$MELA Achievements Backup:$$"
	BackupEndMarker   = "$$Backup Over$$"
)

// Archive file layout
const (
	// BlockDelimiter terminates every record block in an archive file.
	BlockDelimiter = "----------------------------------------"

	ArchiveExt      = ".txt"
	ArchivePattern  = "*" + ArchiveExt
	UnknownDate     = "Unknown Date"
	UnknownDateFile = "Unknown"
)

// Log discovery defaults
const (
	DefaultLogPattern = "output_log_*.txt"
)

// TimestampLayout is the canonical Go layout of Record.Timestamp (YYYY-MM-DD HH:mm:ss).
const TimestampLayout = "2006-01-02 15:04:05"

// TimestampLength is the rune length of a canonical timestamp.
const TimestampLength = 19
