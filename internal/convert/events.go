package convert

import (
	"log/slog"
	"sync/atomic"
	"time"
)

type EventKind int

const (
	EventBatchStarted EventKind = iota
	EventFileConverted
	EventFileFailed
	EventBatchFinished
	EventAbandoned
)

// Event is emitted by the engine as a batch progresses.
type Event struct {
	Kind    EventKind
	BatchID string
	Source  string
	Dest    string
	// Failure is set for EventFileFailed.
	Failure Kind
	Err     error
	// Files is the eligible file count on start and the processed count
	// on finish.
	Files     int
	Succeeded int
	Failed    int
	Elapsed   time.Duration
}

// Sink receives engine events. Within one batch events are recorded from a
// single goroutine.
type Sink interface {
	Record(Event)
}

type discard struct{}

func (discard) Record(Event) {}

// Discard drops every event.
var Discard Sink = discard{}

// MultiSink forwards each event to every sink in order.
type MultiSink []Sink

func (m MultiSink) Record(ev Event) {
	for _, s := range m {
		s.Record(ev)
	}
}

// SlogSink writes events to a structured logger.
type SlogSink struct {
	Logger *slog.Logger
}

func (s SlogSink) Record(ev Event) {
	log := s.Logger.With("batch", ev.BatchID)
	switch ev.Kind {
	case EventBatchStarted:
		log.Info("batch started", "files", ev.Files)
	case EventFileConverted:
		log.Debug("file converted", "source", ev.Source, "dest", ev.Dest)
	case EventFileFailed:
		log.Error("file failed",
			"kind", ev.Failure.String(),
			"source", ev.Source,
			"dest", ev.Dest,
			"error", ev.Err,
		)
	case EventBatchFinished:
		attrs := []any{
			"processed", ev.Files,
			"succeeded", ev.Succeeded,
			"failed", ev.Failed,
			"elapsed", ev.Elapsed,
		}
		if ev.Err != nil {
			log.Error("batch rejected", append(attrs, "error", ev.Err)...)
			return
		}
		log.Info("batch finished", attrs...)
	case EventAbandoned:
		log.Error("batch abandoned", "error", ev.Err)
	}
}

// Progress counts events so another goroutine can render them.
type Progress struct {
	total     atomic.Int64
	done      atomic.Int64
	failed    atomic.Int64
	finished  atomic.Bool
	abandoned atomic.Bool
}

type ProgressSnapshot struct {
	Total     int
	Done      int
	Failed    int
	Finished  bool
	Abandoned bool
}

func (p *Progress) Record(ev Event) {
	switch ev.Kind {
	case EventBatchStarted:
		p.total.Store(int64(ev.Files))
	case EventFileConverted:
		p.done.Add(1)
	case EventFileFailed:
		p.done.Add(1)
		p.failed.Add(1)
	case EventBatchFinished:
		p.finished.Store(true)
	case EventAbandoned:
		p.abandoned.Store(true)
		p.finished.Store(true)
	}
}

func (p *Progress) Snapshot() ProgressSnapshot {
	return ProgressSnapshot{
		Total:     int(p.total.Load()),
		Done:      int(p.done.Load()),
		Failed:    int(p.failed.Load()),
		Finished:  p.finished.Load(),
		Abandoned: p.abandoned.Load(),
	}
}
