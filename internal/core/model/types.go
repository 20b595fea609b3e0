package model

import (
	"fmt"
	"strings"
)

// Record is one archived backup payload and the time it was seen
type Record struct {
	Timestamp string `json:"timestamp"`
	Payload   string `json:"payload"`
}

// DatePart returns the YYYY-MM-DD portion of the timestamp, or UnknownDate
// when the timestamp is too short to carry one.
func (r Record) DatePart() string {
	runes := []rune(r.Timestamp)
	if len(runes) >= 10 {
		return string(runes[:10])
	}
	return UnknownDate
}

// TimePart returns everything after "YYYY-MM-DD ", or the whole timestamp
// when it is not long enough.
func (r Record) TimePart() string {
	runes := []rune(r.Timestamp)
	if len(runes) > 11 {
		return string(runes[11:])
	}
	return r.Timestamp
}

// FileDate is the name (without extension) of the archive file holding r.
func (r Record) FileDate() string {
	runes := []rune(r.Timestamp)
	if len(runes) < 10 {
		return UnknownDateFile
	}
	date := string(runes[:10])
	return strings.NewReplacer("/", "-", "\\", "-").Replace(date)
}

// Block renders r in the archive block format.
func (r Record) Block() string {
	return fmt.Sprintf("[%s]\n%s\n%s\n", r.Timestamp, r.Payload, BlockDelimiter)
}

func (r Record) String() string {
	return fmt.Sprintf("[%s]", r.TimePart())
}
