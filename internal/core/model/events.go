package model

// FileEvent represents a file system event
type FileEvent struct {
	Path      string
	Operation string
}

// PipelineStats counts what the backup pipeline has done since start
type PipelineStats struct {
	Lines      int64 `json:"lines"`
	Matches    int64 `json:"matches"`
	Accepted   int64 `json:"accepted"`
	Duplicates int64 `json:"duplicates"`
	Failures   int64 `json:"failures"`
}
