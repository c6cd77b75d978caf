package sink

import (
	"context"
	"log/slog"

	"chat-sync/domain/event"
	"chat-sync/repositories"
)

// DiskSink mirrors every merged message into the local BadgerDB cache.
// Failures are logged, never propagated: the cache is tooling comfort,
// not part of the sync contract.
type DiskSink struct {
	cache *repositories.CacheRepository
	log   *slog.Logger
}

func NewDiskSink(cache *repositories.CacheRepository, log *slog.Logger) *DiskSink {
	return &DiskSink{cache: cache, log: log}
}

func (d *DiskSink) Consume(_ context.Context, e event.DomainEvent) error {
	if merged, ok := e.(event.MessageMerged); ok {
		if err := d.cache.StoreMessage(merged.Message); err != nil {
			d.log.Error("Cache write failed", "room", merged.Message.Room, "error", err)
		}
	}
	return nil
}
