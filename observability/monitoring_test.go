package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"chat-sync/domain"
	"chat-sync/domain/event"
)

func TestMonitor_Counts_Events_By_Kind(t *testing.T) {
	req := require.New(t)
	monitor := NewMonitor()
	ctx := context.Background()

	msg := domain.Message{ID: "m1", Room: "lounge", Role: domain.RoleUser}
	req.NoError(monitor.Consume(ctx, event.MessageMerged{Message: msg}))
	req.NoError(monitor.Consume(ctx, event.MessageMerged{Message: msg}))
	req.NoError(monitor.Consume(ctx, event.HistoryLoaded{Room: "lounge", Count: 5}))
	req.NoError(monitor.Consume(ctx, event.FeedDropped{Room: "lounge", Reason: "closed"}))
	req.NoError(monitor.Consume(ctx, event.RoomActivated{Room: "lounge"}))

	stats := monitor.GetLatest()
	req.Equal(uint64(2), stats.MessagesMerged)
	req.Equal(uint64(1), stats.HistoryLoads)
	req.Equal(uint64(1), stats.FeedDrops)
	req.Equal(uint64(0), stats.RepliesSkipped)
	req.Equal(uint64(1), stats.RoomsActivated)
}
