// Package runtime drives message synchronization: room activation
// lifecycles, feed consumption, send-path writes, and reply coordination.
// It orchestrates the system without containing domain rules.
package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"chat-sync/contract"
	"chat-sync/domain"
	"chat-sync/domain/event"
	"chat-sync/projection"
	"chat-sync/runtime/workers"
)

// Status is the per-room synchronization state.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusLive
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusLive:
		return "live"
	default:
		return "idle"
	}
}

// Controller owns every room activation of this client process. It holds
// the merged store, guarantees at most one live subscription per room, and
// is the single writer of the message sequences.
type Controller struct {
	mu           sync.Mutex
	log          *slog.Logger
	remote       contract.IRemoteLog
	store        *projection.Store
	fanout       *Fanout
	supervisor   *workers.Supervisor
	coordinator  *Coordinator
	historyLimit int

	activations map[string]context.CancelFunc
	states      map[string]Status
}

func NewController(log *slog.Logger, remote contract.IRemoteLog, store *projection.Store,
	fanout *Fanout, supervisor *workers.Supervisor, coordinator *Coordinator,
	historyLimit int) *Controller {
	return &Controller{
		log:          log,
		remote:       remote,
		store:        store,
		fanout:       fanout,
		supervisor:   supervisor,
		coordinator:  coordinator,
		historyLimit: historyLimit,
		activations:  make(map[string]context.CancelFunc),
		states:       make(map[string]Status),
	}
}

// Activate starts syncing a room: fetch history, merge, go live. Idempotent
// while the room is already active. The worker runs under supervision, so a
// dropped feed re-enters Loading on its own.
func (c *Controller) Activate(ctx context.Context, roomID string) {
	c.mu.Lock()
	if _, ok := c.activations[roomID]; ok {
		c.mu.Unlock()
		c.log.Info("Room already active", "room", roomID)
		return
	}

	roomCtx, cancel := context.WithCancel(ctx)
	c.activations[roomID] = cancel
	c.states[roomID] = StatusLoading
	c.mu.Unlock()

	worker := &RoomFeedWorker{
		log:          c.log,
		room:         roomID,
		remote:       c.remote,
		store:        c.store,
		fanout:       c.fanout,
		historyLimit: c.historyLimit,
		setState:     func(s Status) { c.setState(roomID, s) },
	}
	c.supervisor.Start(roomCtx, worker)
	c.fanout.Emit(ctx, event.RoomActivated{Room: roomID})
}

// Deactivate releases the room's subscription by canceling the activation
// context. Merged messages stay in the store, so reactivating the room
// rebuilds an identical snapshot without flicker or loss.
func (c *Controller) Deactivate(roomID string) {
	c.mu.Lock()
	cancel, ok := c.activations[roomID]
	if ok {
		delete(c.activations, roomID)
		c.states[roomID] = StatusIdle
	}
	c.mu.Unlock()

	if !ok {
		return
	}
	cancel()
	c.fanout.Emit(context.Background(), event.RoomDeactivated{Room: roomID})
}

// Shutdown deactivates every room and waits for the workers to drain.
func (c *Controller) Shutdown() {
	c.mu.Lock()
	for roomID, cancel := range c.activations {
		cancel()
		delete(c.activations, roomID)
		c.states[roomID] = StatusIdle
	}
	c.mu.Unlock()
	c.supervisor.Wait()
}

func (c *Controller) setState(roomID string, s Status) {
	c.mu.Lock()
	defer c.mu.Unlock()
	// A worker resuming after Deactivate must not resurrect the room.
	if _, active := c.activations[roomID]; !active {
		return
	}
	c.states[roomID] = s
}

// State reports the room's synchronization status.
func (c *Controller) State(roomID string) Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.states[roomID]
}

// Snapshot returns the room's merged messages, ascending by timestamp.
func (c *Controller) Snapshot(roomID string) []domain.Message {
	return c.store.Snapshot(roomID)
}

// Send builds a user message from the profile, commits it to the remote log,
// and returns it. On write failure the message is returned alongside the
// error so the caller can Resend it under the same id without risking a
// duplicate. The agent reply is requested as a detached continuation; the
// send path never waits for generation.
func (c *Controller) Send(ctx context.Context, room domain.Room, profile domain.Profile,
	text, image string) (domain.Message, error) {
	msg := domain.Message{
		ID:           uuid.NewString(),
		Room:         room.ID,
		Role:         domain.RoleUser,
		Text:         text,
		At:           time.Now().UnixMilli(),
		Image:        image,
		AuthorName:   profile.Name,
		AuthorAvatar: profile.Avatar,
	}
	return msg, c.commit(ctx, room, msg)
}

// Resend retries a message whose Write previously failed. The id is reused,
// so a retry racing a late-applied first attempt still collapses to one copy.
func (c *Controller) Resend(ctx context.Context, room domain.Room, msg domain.Message) error {
	return c.commit(ctx, room, msg)
}

func (c *Controller) commit(ctx context.Context, room domain.Room, msg domain.Message) error {
	if err := c.remote.Write(ctx, msg); err != nil {
		// The optimistic copy is only merged after confirmation, so a
		// failed send never shows up as falsely "sent".
		return fmt.Errorf("send %s: %w", msg.ID, err)
	}

	// Optimistic local merge; the feed echo of the same id is a duplicate.
	if c.store.AppendOrMerge(room.ID, msg) == projection.Inserted {
		c.fanout.Emit(ctx, event.MessageMerged{Message: msg})
	}

	// Whoever sends requests the reply: scoping the trigger to the
	// originating process keeps the reply single-flight without any
	// cross-process coordination.
	if c.coordinator != nil && msg.Role == domain.RoleUser {
		go c.coordinator.RequestReply(context.WithoutCancel(ctx), room, msg)
	}
	return nil
}
