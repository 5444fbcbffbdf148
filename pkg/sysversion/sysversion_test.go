package sysversion

import (
	"context"
	"errors"
	"testing"

	"github.com/fox-one/pkg/property"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	saved map[string]interface{}
	err   error
}

func (s *memStore) Get(_ context.Context, _ string) (property.Value, error) {
	var v property.Value
	return v, s.err
}

func (s *memStore) Save(_ context.Context, key string, value interface{}) error {
	s.saved[key] = value
	return nil
}

func TestOutdated(t *testing.T) {
	ctx := context.Background()
	store := &memStore{saved: map[string]interface{}{}}

	outdated, err := Outdated(ctx, store)
	require.Nil(t, err)
	assert.True(t, outdated)

	require.Nil(t, Save(ctx, store))
	assert.Equal(t, Current, store.saved[Key])
}

func TestOutdatedPropagatesError(t *testing.T) {
	store := &memStore{err: errors.New("db down")}

	_, err := Outdated(context.Background(), store)
	assert.EqualError(t, err, "db down")
}
