package extractor

import (
	"strings"
	"time"

	"github.com/penwyp/go-mela-save-monitor/internal/core/model"
	"github.com/penwyp/go-mela-save-monitor/internal/util"
)

// Extractor finds backup payloads between two literal markers and derives
// the record timestamp from the text they were found in. It holds no state
// between calls.
type Extractor struct {
	startMarker string
	endMarker   string
	now         func() time.Time
}

// Option configures an Extractor
type Option func(*Extractor)

// WithMarkers overrides the start and end markers.
func WithMarkers(start, end string) Option {
	return func(e *Extractor) {
		e.startMarker = start
		e.endMarker = end
	}
}

// WithClock sets the clock used when the text is too short to carry a timestamp.
func WithClock(now func() time.Time) Option {
	return func(e *Extractor) {
		e.now = now
	}
}

// New creates a new Extractor instance
func New(opts ...Option) *Extractor {
	e := &Extractor{
		startMarker: model.BackupStartMarker,
		endMarker:   model.BackupEndMarker,
		now:         func() time.Time { return util.GetTimeProvider().Now() },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract returns the first payload found in text. ok is false when text
// holds no complete start/end marker pair.
func (e *Extractor) Extract(text string) (rec model.Record, ok bool) {
	payload, _, found := e.next(text)
	if !found {
		return model.Record{}, false
	}
	return model.Record{Timestamp: e.Timestamp(text), Payload: payload}, true
}

// ExtractAll returns every non-overlapping payload in text, in order. All
// records share the timestamp derived from text.
func (e *Extractor) ExtractAll(text string) []model.Record {
	var records []model.Record
	var ts string
	rest := text
	for {
		payload, after, found := e.next(rest)
		if !found {
			return records
		}
		if ts == "" {
			ts = e.Timestamp(text)
		}
		records = append(records, model.Record{Timestamp: ts, Payload: payload})
		rest = after
	}
}

// HasOpenPayload reports whether text contains a start marker that is not
// yet followed by an end marker.
func (e *Extractor) HasOpenPayload(text string) bool {
	rest := text
	for {
		start := strings.Index(rest, e.startMarker)
		if start < 0 {
			return false
		}
		rest = rest[start+len(e.startMarker):]
		end := strings.Index(rest, e.endMarker)
		if end < 0 {
			return true
		}
		rest = rest[end+len(e.endMarker):]
	}
}

// Timestamp derives the canonical timestamp from the leading 19 characters
// of text, replacing "." with "-". Shorter text yields the current time.
func (e *Extractor) Timestamp(text string) string {
	runes := []rune(text)
	if len(runes) < model.TimestampLength {
		return e.now().Format(model.TimestampLayout)
	}
	return strings.ReplaceAll(string(runes[:model.TimestampLength]), ".", "-")
}

// next locates the first start marker and the first end marker after it.
func (e *Extractor) next(text string) (payload, rest string, ok bool) {
	start := strings.Index(text, e.startMarker)
	if start < 0 {
		return "", text, false
	}
	body := text[start+len(e.startMarker):]
	end := strings.Index(body, e.endMarker)
	if end < 0 {
		return "", text, false
	}
	return body[:end], body[end+len(e.endMarker):], true
}
