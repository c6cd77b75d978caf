package runtime

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"chat-sync/contract"
	"chat-sync/domain/event"
)

// Fanout broadcasts engine events to the registered in-process sinks
// (change notifier, disk cache, search index).
//
// It is best-effort: a slow or failing sink is logged and skipped, it never
// stalls the sync loop. Emission is synchronous so sinks observe events of
// one room in merge order. Fanout is not a message broker.
type Fanout struct {
	log         *slog.Logger
	sinkTimeout time.Duration

	mu    sync.RWMutex
	sinks []contract.EventSink
}

func NewFanout(log *slog.Logger, sinkTimeout time.Duration) *Fanout {
	return &Fanout{log: log, sinkTimeout: sinkTimeout}
}

func (f *Fanout) Add(sinks ...contract.EventSink) *Fanout {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sinks = append(f.sinks, sinks...)
	return f
}

// Emit delivers the event to every sink, each under its own timeout.
func (f *Fanout) Emit(ctx context.Context, e event.DomainEvent) {
	f.mu.RLock()
	sinks := f.sinks
	f.mu.RUnlock()

	for _, sink := range sinks {
		sinkCtx, cancel := context.WithTimeout(ctx, f.sinkTimeout)
		if err := sink.Consume(sinkCtx, e); err != nil {
			f.log.Warn("Sink rejected event", "room", e.RoomID(), "error", err)
		}
		cancel()
	}
}
