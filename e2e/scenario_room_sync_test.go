package e2e

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/suite"

	"chat-sync/ai"
	"chat-sync/domain"
	"chat-sync/runtime"
)

type testRoomSyncSuite struct {
	BaseSuite
	completions *httptest.Server
	generations atomic.Int32
	cannedReply string
}

func TestRoomSyncSuite(t *testing.T) {
	suite.Run(t, &testRoomSyncSuite{})
}

func (s *testRoomSyncSuite) SetupSuite() {
	s.BaseSuite.SetupSuite()
	s.cannedReply = "acknowledged"
	s.completions = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		s.generations.Add(1)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": s.cannedReply}},
			},
		})
	}))
}

func (s *testRoomSyncSuite) TearDownSuite() {
	if s.completions != nil {
		s.completions.Close()
	}
}

func (s *testRoomSyncSuite) generator() *ai.Generator {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return ai.NewGenerator("e2e-key", s.completions.URL, "e2e-model", log)
}

func (s *testRoomSyncSuite) TestTwoClientsConverge() {
	ctx := context.Background()
	room := domain.Room{ID: s.RoomID, DisplayName: "E2E Agent", Personality: "You are terse."}
	profile := domain.Profile{Name: "alice"}

	s.Step("Start two independent clients on the same room")
	sender, stopSender := s.NewController(s.generator())
	defer stopSender()
	watcher, stopWatcher := s.NewController(nil)
	defer stopWatcher()

	sender.Activate(ctx, room.ID)
	watcher.Activate(ctx, room.ID)
	s.Require().Eventually(func() bool {
		return sender.State(room.ID) == runtime.StatusLive &&
			watcher.State(room.ID) == runtime.StatusLive
	}, 15*time.Second, 100*time.Millisecond, "both clients should reach live state")

	s.Step("Send a message from the first client")
	msg, err := sender.Send(ctx, room, profile, "hello from e2e", "")
	s.Require().NoError(err)

	s.Step("Both snapshots converge on the message and the agent reply")
	hasBoth := func(snapshot []domain.Message) bool {
		ids := lo.Map(snapshot, func(m domain.Message, _ int) string { return m.ID })
		replies := lo.Filter(snapshot, func(m domain.Message, _ int) bool {
			return m.Role == domain.RoleAgent && m.Text == s.cannedReply
		})
		return lo.Contains(ids, msg.ID) && len(replies) == 1
	}
	s.Require().Eventually(func() bool {
		return hasBoth(sender.Snapshot(room.ID))
	}, 15*time.Second, 100*time.Millisecond, "sender snapshot should converge")
	s.Require().Eventually(func() bool {
		return hasBoth(watcher.Snapshot(room.ID))
	}, 15*time.Second, 100*time.Millisecond, "watcher snapshot should converge")

	s.Step("Only the sending client requested a generation")
	s.Require().Equal(int32(1), s.generations.Load())

	s.Step("Snapshots are identical across clients")
	s.Require().Eventually(func() bool {
		a := sender.Snapshot(room.ID)
		b := watcher.Snapshot(room.ID)
		if len(a) != len(b) {
			return false
		}
		for i := range a {
			if a[i].ID != b[i].ID {
				return false
			}
		}
		return true
	}, 15*time.Second, 100*time.Millisecond)
}

func (s *testRoomSyncSuite) TestReactivationReplaysHistory() {
	ctx := context.Background()
	room := domain.Room{ID: s.RoomID + "-replay", DisplayName: "E2E Agent"}
	profile := domain.Profile{Name: "bob"}

	client, stop := s.NewController(nil)
	defer stop()

	s.Step("Write a message during a first activation")
	client.Activate(ctx, room.ID)
	s.Require().Eventually(func() bool {
		return client.State(room.ID) == runtime.StatusLive
	}, 15*time.Second, 100*time.Millisecond)
	msg, err := client.Send(ctx, room, profile, "before deactivation", "")
	s.Require().NoError(err)

	s.Step("Deactivate, then activate again")
	client.Deactivate(room.ID)
	s.Require().Equal(runtime.StatusIdle, client.State(room.ID))
	client.Activate(ctx, room.ID)

	s.Step("The refetched history contains the earlier message exactly once")
	s.Require().Eventually(func() bool {
		snapshot := client.Snapshot(room.ID)
		count := lo.CountBy(snapshot, func(m domain.Message) bool { return m.ID == msg.ID })
		return client.State(room.ID) == runtime.StatusLive && count == 1
	}, 15*time.Second, 100*time.Millisecond)
}
