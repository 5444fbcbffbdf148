package event

import (
	"context"
	"testing"

	"stablevault/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	require.NoError(t, s.Append(ctx, []*core.Event{
		core.NewEvent(core.EventCollateralDeposited, "alice", "alice", nil, nil),
		core.NewEvent(core.EventBorrowed, "alice", "alice", nil, nil),
		core.NewEvent(core.EventPoolDeposited, "", "bob", nil, nil),
	}))
	require.NoError(t, s.Append(ctx, []*core.Event{
		core.NewEvent(core.EventBadDebtRecorded, "alice", "module:liquidation", nil, nil),
	}))

	all, err := s.List(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, all, 4)
	for i, ev := range all {
		assert.Equal(t, int64(i+1), ev.ID)
	}

	page, err := s.List(ctx, 2, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, core.EventPoolDeposited, page[0].Kind)

	vault, err := s.ListByVault(ctx, "alice", 1, 10)
	require.NoError(t, err)
	require.Len(t, vault, 2)
	assert.Equal(t, core.EventBorrowed, vault[0].Kind)
	assert.Equal(t, core.EventCategoryBackstop, vault[1].Category)

	none, err := s.List(ctx, 10, 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}
