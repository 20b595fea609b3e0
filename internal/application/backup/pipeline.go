package backup

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/penwyp/go-mela-save-monitor/internal/core/constants"
	"github.com/penwyp/go-mela-save-monitor/internal/core/extractor"
	"github.com/penwyp/go-mela-save-monitor/internal/core/model"
	"github.com/penwyp/go-mela-save-monitor/internal/core/tailer"
	"github.com/penwyp/go-mela-save-monitor/internal/util"
)

// Store is the archive the pipeline deduplicates against and appends to.
type Store interface {
	Exists(payload string) bool
	Append(rec model.Record) error
}

// Pipeline turns log lines into archived records and notifies subscribers of
// every record that was new.
type Pipeline struct {
	store     Store
	extractor *extractor.Extractor
	maxLines  int

	feedMu    sync.Mutex
	assembler *extractor.Assembler

	// acceptMu serializes dedup, append and notification.
	acceptMu sync.Mutex

	subsMu      sync.Mutex
	subscribers []*subscriber
	nextID      int

	lines      atomic.Int64
	matches    atomic.Int64
	accepted   atomic.Int64
	duplicates atomic.Int64
	failures   atomic.Int64
}

type subscriber struct {
	id int
	fn func(model.Record)
}

// Option configures a Pipeline
type Option func(*Pipeline)

func WithExtractor(ex *extractor.Extractor) Option {
	return func(p *Pipeline) {
		p.extractor = ex
	}
}

// WithMaxPendingLines bounds how many lines an unterminated backup may span.
func WithMaxPendingLines(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.maxLines = n
		}
	}
}

func NewPipeline(store Store, opts ...Option) *Pipeline {
	p := &Pipeline{
		store:    store,
		maxLines: constants.MaxPendingLines,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.extractor == nil {
		p.extractor = extractor.New()
	}
	p.assembler = extractor.NewAssembler(p.extractor, p.maxLines)
	return p
}

// Process feeds one line and returns the records that were newly archived.
func (p *Pipeline) Process(line string) []model.Record {
	p.lines.Add(1)

	p.feedMu.Lock()
	found := p.assembler.Feed(line)
	p.feedMu.Unlock()

	var added []model.Record
	for _, rec := range found {
		p.matches.Add(1)
		ok, err := p.Accept(rec)
		if err != nil {
			continue
		}
		if ok {
			added = append(added, rec)
		}
	}
	return added
}

// Accept archives rec unless its payload is already known. It reports whether
// the record was added. Subscribers run before Accept returns, in
// registration order.
func (p *Pipeline) Accept(rec model.Record) (bool, error) {
	p.acceptMu.Lock()
	defer p.acceptMu.Unlock()

	if p.store.Exists(rec.Payload) {
		p.duplicates.Add(1)
		util.LogDebug("Duplicate backup skipped", util.F("timestamp", rec.Timestamp))
		return false, nil
	}

	if err := p.store.Append(rec); err != nil {
		p.failures.Add(1)
		util.LogError("Failed to archive backup", util.F("timestamp", rec.Timestamp), util.F("error", err))
		return false, err
	}

	p.accepted.Add(1)
	util.LogInfo("Backup archived", util.F("timestamp", rec.Timestamp), util.F("size", len(rec.Payload)))

	for _, sub := range p.snapshotSubscribers() {
		sub.fn(rec)
	}
	return true, nil
}

func (p *Pipeline) snapshotSubscribers() []*subscriber {
	p.subsMu.Lock()
	defer p.subsMu.Unlock()
	subs := make([]*subscriber, len(p.subscribers))
	copy(subs, p.subscribers)
	return subs
}

// Subscribe registers fn for every newly archived record. The returned func
// removes it; calling it more than once is harmless.
func (p *Pipeline) Subscribe(fn func(model.Record)) func() {
	p.subsMu.Lock()
	defer p.subsMu.Unlock()

	p.nextID++
	id := p.nextID
	p.subscribers = append(p.subscribers, &subscriber{id: id, fn: fn})

	return func() {
		p.subsMu.Lock()
		defer p.subsMu.Unlock()
		for i, sub := range p.subscribers {
			if sub.id == id {
				p.subscribers = append(p.subscribers[:i:i], p.subscribers[i+1:]...)
				return
			}
		}
	}
}

// Updates delivers newly archived records on a channel. Delivery blocks the
// pipeline when the buffer is full, so nothing is dropped. The channel is
// closed after ctx is done.
func (p *Pipeline) Updates(ctx context.Context, buffer int) <-chan model.Record {
	if buffer < 0 {
		buffer = constants.UpdatesBuffer
	}
	ch := make(chan model.Record, buffer)

	unsubscribe := p.Subscribe(func(rec model.Record) {
		select {
		case ch <- rec:
		case <-ctx.Done():
		}
	})

	go func() {
		<-ctx.Done()
		unsubscribe()
		// No Accept is delivering once acceptMu is held.
		p.acceptMu.Lock()
		close(ch)
		p.acceptMu.Unlock()
	}()

	return ch
}

// Run consumes lines until the channel closes or ctx is done. A line from a
// different file discards any half-read backup.
func (p *Pipeline) Run(ctx context.Context, lines <-chan tailer.Line) error {
	var src tailer.Source
	started := false
	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				p.dropPartial("input closed", src)
				return nil
			}
			if !started || line.Source != src {
				if started {
					util.LogDebug("Source file changed", util.F("from", src.Path), util.F("to", line.Source.Path))
					p.dropPartial("source changed", src)
				}
				started = true
				src = line.Source
			}
			p.Process(line.Text)
		}
	}
}

// dropPartial discards a backup whose end marker never arrived from src.
func (p *Pipeline) dropPartial(reason string, src tailer.Source) {
	p.feedMu.Lock()
	defer p.feedMu.Unlock()
	if p.assembler.Pending() {
		util.LogWarn("Unterminated backup discarded", util.F("reason", reason), util.F("path", src.Path))
	}
	p.assembler.Reset()
}

func (p *Pipeline) Stats() model.PipelineStats {
	return model.PipelineStats{
		Lines:      p.lines.Load(),
		Matches:    p.matches.Load(),
		Accepted:   p.accepted.Load(),
		Duplicates: p.duplicates.Load(),
		Failures:   p.failures.Load(),
	}
}
