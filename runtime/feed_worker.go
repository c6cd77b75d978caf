package runtime

import (
	"context"
	"fmt"
	"log/slog"

	"chat-sync/contract"
	"chat-sync/domain/event"
	"chat-sync/errors"
	"chat-sync/projection"
)

// RoomFeedWorker keeps one room in sync with the remote log for the lifetime
// of an activation. Run is restartable: each (re)start re-enters Loading, so
// a dropped feed reconciles any gap by refetching history, and the merge
// semantics of the store make the replay harmless.
type RoomFeedWorker struct {
	log          *slog.Logger
	room         string
	remote       contract.IRemoteLog
	store        *projection.Store
	fanout       *Fanout
	historyLimit int
	setState     func(Status)
}

func (w *RoomFeedWorker) Run(ctx context.Context) error {
	w.setState(StatusLoading)

	// The feed is opened before the history fetch so that messages written
	// while history is in flight are not lost; they are merged by id after
	// the initial load, overlapping entries collapse.
	feed, err := w.remote.Subscribe(ctx, w.room)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return err
	}
	// Released exactly once per activation; Close is idempotent.
	defer feed.Close()

	history, err := w.remote.FetchHistory(ctx, w.room, w.historyLimit)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		// FetchError is non-fatal: the room simply starts empty.
		w.log.Warn("History unavailable, starting with an empty room",
			"room", w.room, "error", err)
		history = nil
	}

	// A late history response for a deactivated room must not be applied.
	if ctx.Err() != nil {
		return nil
	}
	inserted := w.store.LoadInitial(w.room, history)
	w.fanout.Emit(ctx, event.HistoryLoaded{Room: w.room, Count: len(inserted)})
	for _, msg := range inserted {
		w.fanout.Emit(ctx, event.MessageMerged{Message: msg})
	}

	w.setState(StatusLive)
	w.log.Info("Room is live", "room", w.room, "history", len(inserted))

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-feed.Deliveries():
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				w.setState(StatusLoading)
				w.fanout.Emit(ctx, event.FeedDropped{Room: w.room, Reason: "feed closed"})
				// The supervisor restarts Run, which reconciles the gap.
				return fmt.Errorf("%w: room %s", errors.ErrFeedDropped, w.room)
			}
			if w.store.AppendOrMerge(w.room, msg) == projection.Inserted {
				w.fanout.Emit(ctx, event.MessageMerged{Message: msg})
			}
		}
	}
}
