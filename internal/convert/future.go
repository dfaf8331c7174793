package convert

import (
	"context"
	"fmt"
	"sync/atomic"
)

// Future delivers the report of a batch started with Start. It is resolved
// exactly once and may be read any number of times after that.
type Future struct {
	done     chan struct{}
	resolved atomic.Bool
	report   Report
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

func (f *Future) resolve(r Report) {
	if !f.resolved.CompareAndSwap(false, true) {
		panic("convert: future resolved twice")
	}
	f.report = r
	close(f.done)
}

// Done is closed once the report is available.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// TryGet returns the report without blocking.
func (f *Future) TryGet() (Report, bool) {
	select {
	case <-f.done:
		return f.report, true
	default:
		return Report{}, false
	}
}

// Wait blocks until the report is available or ctx ends.
func (f *Future) Wait(ctx context.Context) (Report, error) {
	select {
	case <-f.done:
		return f.report, nil
	case <-ctx.Done():
		return Report{}, ctx.Err()
	}
}

// Start runs req on a new goroutine. If the batch dies without a report the
// future still resolves, with a Failure report carrying ErrAbandoned.
func (e *Engine) Start(ctx context.Context, req Request) *Future {
	fut := newFuture()
	go func() {
		completed := false
		defer func() {
			if completed {
				return
			}
			r := recover()
			e.sink.Record(Event{Kind: EventAbandoned, Err: fmt.Errorf("%w: %v", ErrAbandoned, r)})
			fut.resolve(Report{Total: len(req.Files), Err: ErrAbandoned})
		}()

		report := e.Convert(ctx, req)
		completed = true
		fut.resolve(report)
	}()
	return fut
}
