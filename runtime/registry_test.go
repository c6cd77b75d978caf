package runtime

import (
	"testing"

	"github.com/stretchr/testify/require"

	"chat-sync/domain"
	"chat-sync/errors"
)

func catalog() []domain.Room {
	return []domain.Room{
		{ID: "r1", DisplayName: "Nova"},
		{ID: "r2", DisplayName: "Sage"},
	}
}

func TestRegistry_Rooms_Keep_Catalog_Order(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry(catalog())

	rooms := registry.Rooms()
	req.Len(rooms, 2)
	req.Equal("r1", rooms[0].ID)
	req.Equal("r2", rooms[1].ID)
}

func TestRegistry_Get_Unknown_Room(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry(catalog())

	_, err := registry.Get("nope")
	req.ErrorIs(err, errors.ErrRoomUnknown)
}

func TestRegistry_Active_Room_Lifecycle(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry(catalog())

	// Given no selection
	_, ok := registry.Active()
	req.False(ok)

	// When a room is selected
	req.NoError(registry.SetActive("r1"))
	active, ok := registry.Active()
	req.True(ok)
	req.Equal("r1", active.ID)

	// When switching
	req.NoError(registry.SetActive("r2"))
	active, _ = registry.Active()
	req.Equal("r2", active.ID)

	// And clearing
	registry.ClearActive()
	_, ok = registry.Active()
	req.False(ok)
}

func TestRegistry_SetActive_Rejects_Unknown_Room(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry(catalog())

	req.ErrorIs(registry.SetActive("nope"), errors.ErrRoomUnknown)
}

func TestRegistry_Duplicate_Catalog_Entries_Are_Ignored(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry([]domain.Room{
		{ID: "r1", DisplayName: "Nova"},
		{ID: "r1", DisplayName: "Impostor"},
	})

	rooms := registry.Rooms()
	req.Len(rooms, 1)
	req.Equal("Nova", rooms[0].DisplayName)
}
