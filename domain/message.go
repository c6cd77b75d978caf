// Package domain contains core concepts of the chat system.
// This file defines Message entities and related invariants.
// No runtime, network, or UI logic should be added here.
package domain

// Role identifies the author kind of a message.
type Role string

const (
	RoleUser  Role = "user"
	RoleAgent Role = "agent"
)

// Message is an immutable chat entry. The ID is assigned by the producer
// before the remote write, so the local optimistic copy and the live-feed
// echo of the same send carry the same ID and collapse to one entry.
type Message struct {
	ID           string `json:"id"`
	Room         string `json:"room_id"`
	Role         Role   `json:"role"`
	Text         string `json:"text"`
	At           int64  `json:"at"` // unix milliseconds, producer-assigned
	Image        string `json:"image,omitempty"`
	AuthorName   string `json:"author_name,omitempty"`
	AuthorAvatar string `json:"author_avatar,omitempty"`

	// IsStreaming is a display hint for in-progress agent output.
	// It is not part of the merge contract and is never persisted.
	IsStreaming bool `json:"-"`
}
