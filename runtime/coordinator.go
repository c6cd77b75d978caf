package runtime

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"chat-sync/contract"
	"chat-sync/domain"
	"chat-sync/domain/event"
	"chat-sync/errors"
	"chat-sync/projection"
)

// Coordinator requests one agent reply per locally-originated user message.
// It runs after the send is committed, off the send path. A failed or empty
// generation is logged and swallowed: the room simply receives no reply for
// that turn. The agent message is written through the remote log like any
// other send; the local copy arrives via the feed echo.
type Coordinator struct {
	log           *slog.Logger
	generator     contract.IGenerator
	remote        contract.IRemoteLog
	store         *projection.Store
	fanout        *Fanout
	contextWindow int
	timeout       time.Duration
}

func NewCoordinator(log *slog.Logger, generator contract.IGenerator, remote contract.IRemoteLog,
	store *projection.Store, fanout *Fanout, contextWindow int, timeout time.Duration) *Coordinator {
	return &Coordinator{
		log:           log,
		generator:     generator,
		remote:        remote,
		store:         store,
		fanout:        fanout,
		contextWindow: contextWindow,
		timeout:       timeout,
	}
}

// RequestReply generates and publishes the agent's reply to userMsg.
func (c *Coordinator) RequestReply(ctx context.Context, room domain.Room, userMsg domain.Message) {
	genCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	text, err := c.generator.Generate(genCtx, contract.GenerationRequest{
		Prompt:      userMsg.Text,
		Context:     c.trailingWindow(room.ID, userMsg.ID),
		Personality: room.Personality,
		Image:       userMsg.Image,
	})
	if err != nil {
		c.log.Warn("Reply generation failed", "room", room.ID, "message", userMsg.ID, "error", err)
		c.fanout.Emit(ctx, event.ReplySkipped{Room: room.ID, MessageID: userMsg.ID, Reason: err.Error()})
		return
	}
	if strings.TrimSpace(text) == "" {
		c.log.Warn("Generator returned an empty reply", "room", room.ID, "message", userMsg.ID)
		c.fanout.Emit(ctx, event.ReplySkipped{Room: room.ID, MessageID: userMsg.ID,
			Reason: errors.ErrEmptyReply.Error()})
		return
	}

	reply := domain.Message{
		ID:           uuid.NewString(),
		Room:         room.ID,
		Role:         domain.RoleAgent,
		Text:         text,
		At:           time.Now().UnixMilli(),
		AuthorName:   room.DisplayName,
		AuthorAvatar: room.Avatar,
	}
	if err := c.remote.Write(genCtx, reply); err != nil {
		c.log.Error("Agent reply write failed", "room", room.ID, "message", userMsg.ID, "error", err)
	}
}

// trailingWindow returns the last contextWindow merged messages of the room,
// oldest first, excluding the message being replied to (it travels as the
// prompt itself).
func (c *Coordinator) trailingWindow(roomID, excludeID string) []domain.Message {
	snapshot := c.store.Snapshot(roomID)
	window := make([]domain.Message, 0, len(snapshot))
	for _, msg := range snapshot {
		if msg.ID == excludeID {
			continue
		}
		window = append(window, msg)
	}
	if len(window) > c.contextWindow {
		window = window[len(window)-c.contextWindow:]
	}
	return window
}
