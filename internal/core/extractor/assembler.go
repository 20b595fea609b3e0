package extractor

import (
	"strings"

	"github.com/penwyp/go-mela-save-monitor/internal/core/constants"
	"github.com/penwyp/go-mela-save-monitor/internal/core/model"
	"github.com/penwyp/go-mela-save-monitor/internal/util"
)

// Assembler joins consecutive log lines while a payload is open, so markers
// spanning several physical lines are matched against the accumulated text.
// It is not safe for concurrent use.
type Assembler struct {
	extractor *Extractor
	maxLines  int
	pending   []string
}

// NewAssembler creates an Assembler around ex. maxLines bounds how many lines
// an open payload may span; zero uses the default.
func NewAssembler(ex *Extractor, maxLines int) *Assembler {
	if ex == nil {
		ex = New()
	}
	if maxLines <= 0 {
		maxLines = constants.MaxPendingLines
	}
	return &Assembler{extractor: ex, maxLines: maxLines}
}

// Feed consumes one line and returns the records completed by it, in order.
func (a *Assembler) Feed(line string) []model.Record {
	if len(a.pending) >= a.maxLines {
		util.LogWarn("Dropping unterminated backup payload",
			util.F("lines", len(a.pending)))
		a.pending = nil
	}

	a.pending = append(a.pending, line)
	text := line
	if len(a.pending) > 1 {
		text = strings.Join(a.pending, "\n")
	}

	records := a.extractor.ExtractAll(text)
	switch {
	case !a.extractor.HasOpenPayload(text):
		a.pending = nil
	case len(records) > 0:
		a.pending = []string{a.openTail(text)}
	}
	return records
}

// Pending reports whether an open payload is being accumulated.
func (a *Assembler) Pending() bool {
	return len(a.pending) > 0
}

// Reset drops any partially accumulated payload.
func (a *Assembler) Reset() {
	if len(a.pending) > 0 {
		util.LogDebug("Discarding partial backup payload", util.F("lines", len(a.pending)))
	}
	a.pending = nil
}

// openTail keeps the timestamp prefix of text and the still-open payload,
// dropping payloads already completed before it.
func (a *Assembler) openTail(text string) string {
	start := a.lastOpenStart(text)
	if start <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) < model.TimestampLength {
		return text
	}
	prefix := string(runes[:model.TimestampLength])
	if len(prefix) > start {
		return text
	}
	return prefix + text[start:]
}

func (a *Assembler) lastOpenStart(text string) int {
	ex := a.extractor
	offset := 0
	rest := text
	for {
		start := strings.Index(rest, ex.startMarker)
		if start < 0 {
			return -1
		}
		body := rest[start+len(ex.startMarker):]
		end := strings.Index(body, ex.endMarker)
		if end < 0 {
			return offset + start
		}
		consumed := start + len(ex.startMarker) + end + len(ex.endMarker)
		offset += consumed
		rest = rest[consumed:]
	}
}
