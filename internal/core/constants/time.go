package constants

import "time"

const (
	// Tailer waits
	LineWaitInterval   = 1 * time.Second
	RescanWaitInterval = 3 * time.Second
	RetryWaitInterval  = 3 * time.Second

	// Pending multi-line payload bound
	MaxPendingLines = 4096

	// Subscriber channel buffer used by the watch command
	UpdatesBuffer = 64
)
