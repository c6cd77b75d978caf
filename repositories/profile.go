package repositories

import (
	"encoding/json"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"chat-sync/domain"
	"chat-sync/errors"
)

const profileKey = "profile:self"

// ProfileRepository persists the local participant's profile in BadgerDB so
// it survives process restarts. One record per client installation.
type ProfileRepository struct {
	db *badger.DB
}

func NewProfileRepository(db *badger.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// Save overwrites the stored profile. Only an explicit re-join calls this.
func (p *ProfileRepository) Save(profile domain.Profile) error {
	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("marshal failed: %w", err)
	}
	return p.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(profileKey), data)
	})
}

// Load retrieves the stored profile, or errors.ErrNoProfile when the
// participant never joined on this installation.
func (p *ProfileRepository) Load() (domain.Profile, error) {
	var profile domain.Profile
	err := p.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(profileKey))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &profile)
		})
	})
	if err == badger.ErrKeyNotFound {
		return domain.Profile{}, errors.ErrNoProfile
	}
	if err != nil {
		return domain.Profile{}, err
	}
	return profile, nil
}
