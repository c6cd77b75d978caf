// Package observability tracks engine counters and periodic self stats.
package observability

import (
	"context"
	"sync/atomic"

	"chat-sync/domain/event"
)

// EngineStats is a point-in-time copy of the engine counters.
type EngineStats struct {
	MessagesMerged uint64 `json:"messages_merged"`
	HistoryLoads   uint64 `json:"history_loads"`
	FeedDrops      uint64 `json:"feed_drops"`
	RepliesSkipped uint64 `json:"replies_skipped"`
	RoomsActivated uint64 `json:"rooms_activated"`
}

// Monitor counts engine events. It sits on the fanout next to the other
// sinks and is read by the heartbeat worker.
type Monitor struct {
	messagesMerged atomic.Uint64
	historyLoads   atomic.Uint64
	feedDrops      atomic.Uint64
	repliesSkipped atomic.Uint64
	roomsActivated atomic.Uint64
}

func NewMonitor() *Monitor {
	return &Monitor{}
}

func (m *Monitor) Consume(_ context.Context, e event.DomainEvent) error {
	switch e.(type) {
	case event.MessageMerged:
		m.messagesMerged.Add(1)
	case event.HistoryLoaded:
		m.historyLoads.Add(1)
	case event.FeedDropped:
		m.feedDrops.Add(1)
	case event.ReplySkipped:
		m.repliesSkipped.Add(1)
	case event.RoomActivated:
		m.roomsActivated.Add(1)
	}
	return nil
}

func (m *Monitor) GetLatest() EngineStats {
	return EngineStats{
		MessagesMerged: m.messagesMerged.Load(),
		HistoryLoads:   m.historyLoads.Load(),
		FeedDrops:      m.feedDrops.Load(),
		RepliesSkipped: m.repliesSkipped.Load(),
		RoomsActivated: m.roomsActivated.Load(),
	}
}
