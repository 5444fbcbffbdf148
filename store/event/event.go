package event

import (
	"context"

	"stablevault/core"

	"github.com/fox-one/pkg/store/db"
)

const defaultLimit = 500

type eventStore struct {
	db *db.DB
}

// New new event store
func New(db *db.DB) core.IEventStore {
	return &eventStore{
		db: db,
	}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(core.Event{})

		if err := tx.AutoMigrate(core.Event{}).Error; err != nil {
			return err
		}

		return nil
	})
}

func (s *eventStore) Append(ctx context.Context, events []*core.Event) error {
	return s.db.Tx(func(tx *db.DB) error {
		for _, ev := range events {
			if err := tx.Update().Create(ev).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

func (s *eventStore) List(ctx context.Context, fromID int64, limit int) ([]*core.Event, error) {
	if limit <= 0 {
		limit = defaultLimit
	}

	var events []*core.Event
	if err := s.db.View().Where("id > ?", fromID).Order("id ASC").Limit(limit).Find(&events).Error; err != nil {
		return nil, err
	}

	return events, nil
}

func (s *eventStore) ListByVault(ctx context.Context, vault core.Address, fromID int64, limit int) ([]*core.Event, error) {
	if limit <= 0 {
		limit = defaultLimit
	}

	var events []*core.Event
	if err := s.db.View().Where("vault = ? AND id > ?", vault, fromID).Order("id ASC").Limit(limit).Find(&events).Error; err != nil {
		return nil, err
	}

	return events, nil
}
