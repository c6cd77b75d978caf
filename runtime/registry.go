package runtime

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"chat-sync/domain"
	"chat-sync/errors"
)

// Registry holds the room catalog and the currently active room id.
// The catalog is fixed at construction; only the active selection mutates,
// and only through explicit activation calls.
type Registry struct {
	mu     sync.RWMutex
	rooms  map[string]domain.Room
	order  []string
	active string
}

func NewRegistry(rooms []domain.Room) *Registry {
	r := &Registry{rooms: make(map[string]domain.Room)}
	for _, room := range rooms {
		if _, ok := r.rooms[room.ID]; ok {
			continue
		}
		r.rooms[room.ID] = room
		r.order = append(r.order, room.ID)
	}
	return r
}

// DefaultCatalog is the built-in room list used when no catalog file is
// configured.
func DefaultCatalog() []domain.Room {
	return []domain.Room{
		{
			ID:          "lounge",
			DisplayName: "Nova",
			Avatar:      "https://chat-sync.dev/avatars/nova.png",
			Personality: "You are Nova, a warm and curious companion. Keep replies short and conversational.",
		},
		{
			ID:          "workshop",
			DisplayName: "Sage",
			Avatar:      "https://chat-sync.dev/avatars/sage.png",
			Personality: "You are Sage, a pragmatic engineering mentor. Answer precisely, with examples when useful.",
		},
		{
			ID:          "arcade",
			DisplayName: "Pixel",
			Avatar:      "https://chat-sync.dev/avatars/pixel.png",
			Personality: "You are Pixel, a playful gaming buddy. Be enthusiastic and a little competitive.",
		},
	}
}

// LoadCatalog reads a room catalog from a JSON file.
func LoadCatalog(path string) ([]domain.Room, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var rooms []domain.Room
	if err := json.Unmarshal(data, &rooms); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	return rooms, nil
}

// Rooms returns the catalog in its declared order.
func (r *Registry) Rooms() []domain.Room {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rooms := make([]domain.Room, 0, len(r.order))
	for _, id := range r.order {
		rooms = append(rooms, r.rooms[id])
	}
	return rooms
}

// Get resolves a room id against the catalog.
func (r *Registry) Get(roomID string) (domain.Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	room, ok := r.rooms[roomID]
	if !ok {
		return domain.Room{}, fmt.Errorf("%w: %s", errors.ErrRoomUnknown, roomID)
	}
	return room, nil
}

// SetActive records the active room selection.
func (r *Registry) SetActive(roomID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rooms[roomID]; !ok {
		return fmt.Errorf("%w: %s", errors.ErrRoomUnknown, roomID)
	}
	r.active = roomID
	return nil
}

// ClearActive resets the selection, leaving no active room.
func (r *Registry) ClearActive() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.active = ""
}

// Active returns the active room, if any.
func (r *Registry) Active() (domain.Room, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	room, ok := r.rooms[r.active]
	return room, ok
}
