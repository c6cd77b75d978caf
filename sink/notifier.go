// Package sink hosts the event consumers fed by the engine fan-out:
// presentation notifications, the disk cache, anything observing merges.
package sink

import (
	"context"

	"chat-sync/domain/event"
)

// Notifier converts engine events into change notifications for the
// presentation layer: one token per room whose merged snapshot changed.
// Delivery is best-effort and non-blocking; a full channel drops the
// notification, and the next snapshot read catches up anyway.
type Notifier struct {
	changes chan string
}

func NewNotifier(buffer int) *Notifier {
	return &Notifier{changes: make(chan string, buffer)}
}

// Changes carries the ids of rooms whose snapshot changed.
func (n *Notifier) Changes() <-chan string {
	return n.changes
}

func (n *Notifier) Consume(_ context.Context, e event.DomainEvent) error {
	switch e.(type) {
	case event.MessageMerged, event.HistoryLoaded:
		select {
		case n.changes <- e.RoomID():
		default:
		}
	}
	return nil
}
