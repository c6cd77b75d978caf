package test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"

	"chat-sync/domain"
	"chat-sync/moderation"
	"chat-sync/projection"
	"chat-sync/repositories"
	"chat-sync/runtime"
	"chat-sync/runtime/workers"
	"chat-sync/search"
	"chat-sync/services"
	"chat-sync/sink"
)

// Full stack over the in-memory remote log: service, controller, fanout
// with every sink, disk cache, search index. Verifies one send flows
// through the whole pipeline.
func Test_Scenario(t *testing.T) {
	ctx := context.Background()
	req := require.New(t)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	// Reduced value log size for testing
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).
		WithLoggingLevel(badger.ERROR).
		WithValueLogFileSize(16 << 20))
	req.NoError(err)
	t.Cleanup(func() { _ = db.Close() })

	index, err := search.NewIndex(t.TempDir(), log)
	req.NoError(err)
	t.Cleanup(func() { _ = index.Close() })

	remote := repositories.NewMemoryRemoteLog()
	store := projection.NewStore()
	cache := repositories.NewCacheRepository(db, log, lo.ToPtr(100))
	notifier := sink.NewNotifier(16)
	fanout := runtime.NewFanout(log, time.Second).
		Add(notifier, sink.NewDiskSink(cache, log), index)

	supervisor := workers.NewSupervisor(log, 50*time.Millisecond)
	controller := runtime.NewController(log, remote, store, fanout, supervisor, nil, 50)
	t.Cleanup(controller.Shutdown)

	guard, err := moderation.NewGuard([]string{"secret"}, '*')
	req.NoError(err)
	registry := runtime.NewRegistry(runtime.DefaultCatalog())
	profiles := repositories.NewProfileRepository(db)
	service := services.NewChatService(log, controller, registry, profiles, guard)

	// 1. Join and activate
	req.NoError(service.Join(domain.Profile{Name: "alice"}))
	req.NoError(service.Activate(ctx, "lounge"))
	req.Eventually(func() bool {
		state, err := service.State("lounge")
		return err == nil && state == runtime.StatusLive
	}, 3*time.Second, 10*time.Millisecond)

	// 2. Send a message containing a blocked word
	msg, err := service.Send(ctx, "the secret plan is badgers", "")
	req.NoError(err)
	req.Equal("the ****** plan is badgers", msg.Text)

	// 3. The notifier signals the snapshot change
	select {
	case roomID := <-notifier.Changes():
		req.Equal("lounge", roomID)
	case <-time.After(3 * time.Second):
		req.FailNow("no change notification")
	}

	// 4. The disk cache mirrors the masked message
	req.Eventually(func() bool {
		cached, err := cache.GetMessages("lounge")
		return err == nil && len(cached) == 1 && cached[0].Text == msg.Text
	}, 3*time.Second, 10*time.Millisecond)

	// 5. The search index finds it
	req.Eventually(func() bool {
		hits, err := index.Search(ctx, "lounge", "badgers", 10)
		return err == nil && len(hits) == 1 && hits[0].MessageID == msg.ID
	}, 3*time.Second, 10*time.Millisecond)

	// 6. A second client sharing the log converges on the same snapshot
	otherStore := projection.NewStore()
	otherFanout := runtime.NewFanout(log, time.Second)
	otherSupervisor := workers.NewSupervisor(log, 50*time.Millisecond)
	other := runtime.NewController(log, remote, otherStore, otherFanout, otherSupervisor, nil, 50)
	t.Cleanup(other.Shutdown)

	other.Activate(ctx, "lounge")
	req.Eventually(func() bool {
		snapshot := other.Snapshot("lounge")
		return len(snapshot) == 1 && snapshot[0].ID == msg.ID
	}, 3*time.Second, 10*time.Millisecond)
}
