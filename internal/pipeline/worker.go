package pipeline

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

const (
	defaultWorkers   = 4
	defaultQueueSize = 64
)

// Processor handles one event. Satisfied by Pipeline.
type Processor interface {
	Process(ctx context.Context, ev Event) error
}

// Dispatcher fans events out to a fixed pool of workers over a bounded
// queue, so the webhook acceptor can acknowledge immediately while a burst
// of tags cannot spawn unbounded work. Runs for the same ticket id are not
// serialized against each other.
type Dispatcher struct {
	proc    Processor
	queue   chan Event
	workers int
	logger  *slog.Logger
}

// NewDispatcher creates a Dispatcher. Non-positive workers or queueSize
// select the defaults (4 workers, 64 queued events).
func NewDispatcher(proc Processor, workers, queueSize int) *Dispatcher {
	if workers <= 0 {
		workers = defaultWorkers
	}
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	return &Dispatcher{
		proc:    proc,
		queue:   make(chan Event, queueSize),
		workers: workers,
		logger:  slog.Default(),
	}
}

// Submit enqueues an event without blocking. Returns false when the queue is
// full; the caller decides how to report the backpressure.
func (d *Dispatcher) Submit(ev Event) bool {
	select {
	case d.queue <- ev:
		return true
	default:
		return false
	}
}

// Run processes events until ctx is cancelled, then returns once every
// worker has stopped. Events still queued at shutdown are dropped; the
// ticket can simply be tagged again.
func (d *Dispatcher) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < d.workers; i++ {
		g.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					return nil
				case ev := <-d.queue:
					d.logger.Info("processing event", "event_id", ev.ID, "ticket_id", ev.TicketID)
					if err := d.proc.Process(ctx, ev); err != nil {
						d.logger.Error("pipeline failed", "event_id", ev.ID, "ticket_id", ev.TicketID, "error", err)
					}
				}
			}
		})
	}
	return g.Wait()
}
