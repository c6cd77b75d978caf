package event

import "chat-sync/domain"

// DomainEvent is anything the sync engine reports to its sinks.
type DomainEvent interface {
	RoomID() string
}

// MessageMerged is emitted when a delivered or sent message was Inserted
// into the room's merged sequence. Duplicates never produce this event.
type MessageMerged struct {
	Message domain.Message
}

func (e MessageMerged) RoomID() string { return e.Message.Room }

// HistoryLoaded is emitted once per room activation, after the fetched
// history has been merged into the store.
type HistoryLoaded struct {
	Room  string
	Count int
}

func (e HistoryLoaded) RoomID() string { return e.Room }

type RoomActivated struct {
	Room string
}

func (e RoomActivated) RoomID() string { return e.Room }

type RoomDeactivated struct {
	Room string
}

func (e RoomDeactivated) RoomID() string { return e.Room }

// FeedDropped signals that the live subscription for a room terminated
// unexpectedly. The supervisor reacts by re-entering Loading for the room.
type FeedDropped struct {
	Room   string
	Reason string
}

func (e FeedDropped) RoomID() string { return e.Room }

// ReplySkipped is emitted when a user message produced no agent reply
// (generation failure or empty result). Logged only, never user-facing.
type ReplySkipped struct {
	Room      string
	MessageID string
	Reason    string
}

func (e ReplySkipped) RoomID() string { return e.Room }
