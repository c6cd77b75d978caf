package repositories

import (
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"

	"chat-sync/domain"
	"chat-sync/errors"
)

func openTestDB(t *testing.T) *badger.DB {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestProfileRepository_Save_And_Load(t *testing.T) {
	req := require.New(t)
	repository := NewProfileRepository(openTestDB(t))

	profile := domain.Profile{Name: "Alice", Avatar: "https://example.com/alice.png"}
	req.NoError(repository.Save(profile))

	loaded, err := repository.Load()
	req.NoError(err)
	req.Equal(profile, loaded)
}

func TestProfileRepository_Load_Without_Join(t *testing.T) {
	req := require.New(t)
	repository := NewProfileRepository(openTestDB(t))

	_, err := repository.Load()
	req.ErrorIs(err, errors.ErrNoProfile)
}

func TestProfileRepository_Rejoin_Overwrites(t *testing.T) {
	req := require.New(t)
	repository := NewProfileRepository(openTestDB(t))

	req.NoError(repository.Save(domain.Profile{Name: "Alice"}))
	req.NoError(repository.Save(domain.Profile{Name: "Alicia"}))

	loaded, err := repository.Load()
	req.NoError(err)
	req.Equal("Alicia", loaded.Name)
}
