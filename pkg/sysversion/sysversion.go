// Package sysversion tracks the schema version a database was migrated to.
package sysversion

import (
	"context"

	"github.com/fox-one/pkg/property"
)

const (
	// Key property key holding the schema version
	Key = "sysversion"
	// Current schema version written by migrate
	Current int64 = 1
)

// Store the property operations used, satisfied by property.Store
type Store interface {
	Get(ctx context.Context, key string) (property.Value, error)
	Save(ctx context.Context, key string, value interface{}) error
}

// Read returns 0 when the database was never migrated
func Read(ctx context.Context, store Store) (int64, error) {
	v, err := store.Get(ctx, Key)
	if err != nil {
		return 0, err
	}

	return v.Int64(), nil
}

func Save(ctx context.Context, store Store) error {
	return store.Save(ctx, Key, Current)
}

// Outdated reports whether the database needs migrate before serving
func Outdated(ctx context.Context, store Store) (bool, error) {
	v, err := Read(ctx, store)
	if err != nil {
		return false, err
	}

	return v < Current, nil
}
