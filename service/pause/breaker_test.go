package pause

import (
	"context"
	"testing"

	"stablevault/core"
	"stablevault/pkg/wad"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBreaker(t *testing.T) {
	ctx := context.Background()
	b := New("owner")

	assert.False(t, core.Halted(ctx, b))
	assert.ErrorIs(t, b.SetPaused(ctx, "mallory", true), core.ErrNotOwner)

	require.NoError(t, b.SetPaused(ctx, "owner", true))
	assert.True(t, b.IsPaused(ctx))
	assert.True(t, core.Halted(ctx, b))
	require.NoError(t, b.SetPaused(ctx, "owner", false))

	require.NoError(t, b.ReportSlashing(ctx, "wstETH", wad.WAD, wad.Percent(90)))
	assert.True(t, b.IsCircuitBreakerActive(ctx))
	assert.Equal(t, "slashing:wstETH", b.Reason())
	assert.True(t, core.Halted(ctx, b))

	restore := b.Checkpoint()
	require.NoError(t, b.Reset(ctx, "owner"))
	assert.False(t, core.Halted(ctx, b))
	restore()
	assert.True(t, b.IsCircuitBreakerActive(ctx))

	assert.False(t, core.Halted(ctx, nil))
}
