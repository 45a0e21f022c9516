package lifecycle

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/vinayprograms/hostkit/report"
)

// Aggregator resolves the objections of one broadcast into a single
// decision: true vetoes the shutdown, false lets it proceed. Failures of
// deferred objections are absorbed here, converted to vetoes, and surfaced
// through the injected reporter; they never propagate to the caller.
type Aggregator struct {
	reporter report.Reporter
}

// NewAggregator creates an aggregator reporting absorbed failures to the
// given reporter. A nil reporter discards them.
func NewAggregator(reporter report.Reporter) *Aggregator {
	if reporter == nil {
		reporter = report.Discard()
	}
	return &Aggregator{reporter: reporter}
}

// Resolve resolves an objection set.
//
// An empty set proceeds immediately. Immediate objections are scanned in
// submission order before any deferred work starts; the first true
// short-circuits the whole resolution and pending deferred handles are
// discarded unevaluated. Otherwise every deferred objection is awaited
// jointly, and the decision is not emitted until all have settled, so that
// every failure is surfaced exactly once. A deferred true or failure does
// not short-circuit the remaining deferreds.
func (a *Aggregator) Resolve(ctx context.Context, set *ObjectionSet) bool {
	if set == nil {
		return false
	}

	objections := set.snapshot()
	if len(objections) == 0 {
		return false
	}

	var deferred []DeferredObjection
	for _, o := range objections {
		if o.deferred == nil {
			if o.value {
				return true
			}
			continue
		}
		deferred = append(deferred, o.deferred)
	}

	if len(deferred) == 0 {
		return false
	}

	var wg sync.WaitGroup
	var vetoed atomic.Bool

	for _, fn := range deferred {
		wg.Add(1)
		go func(fn DeferredObjection) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					vetoed.Store(true)
					a.reporter.Report(report.SeverityError,
						fmt.Sprintf("deferred shutdown objection panicked: %v", r))
				}
			}()

			value, err := fn(ctx)
			if err != nil {
				vetoed.Store(true)
				a.reporter.Report(report.SeverityError,
					fmt.Sprintf("deferred shutdown objection failed: %v", err))
				return
			}
			if value {
				vetoed.Store(true)
			}
		}(fn)
	}

	wg.Wait()
	return vetoed.Load()
}
