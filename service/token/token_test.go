package token

import (
	"context"
	"testing"

	"stablevault/core"
	"stablevault/pkg/wad"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerTransfer(t *testing.T) {
	ctx := context.Background()
	l := NewLedger("wstETH")
	require.NoError(t, l.Mint(ctx, "alice", wad.New(100)))

	require.NoError(t, l.Transfer(ctx, "alice", "bob", wad.New(40)))
	assert.Equal(t, uint64(60), l.BalanceOf(ctx, "alice").Uint64())
	assert.Equal(t, uint64(40), l.BalanceOf(ctx, "bob").Uint64())
	assert.Equal(t, uint64(100), l.TotalSupply(ctx).Uint64())

	err := l.Transfer(ctx, "alice", "bob", wad.New(61))
	assert.ErrorIs(t, err, core.ErrInsufficientBalance)
}

func TestLedgerTransferFrom(t *testing.T) {
	ctx := context.Background()
	l := NewLedger("svUSD")
	require.NoError(t, l.Mint(ctx, "alice", wad.New(100)))

	err := l.TransferFrom(ctx, "engine", "alice", "engine", wad.New(10))
	assert.ErrorIs(t, err, core.ErrInsufficientAllowance)

	require.NoError(t, l.Approve(ctx, "alice", "engine", wad.New(30)))
	require.NoError(t, l.TransferFrom(ctx, "engine", "alice", "engine", wad.New(10)))
	assert.Equal(t, uint64(20), l.Allowance(ctx, "alice", "engine").Uint64())

	require.NoError(t, l.Approve(ctx, "alice", "engine", wad.Max()))
	require.NoError(t, l.TransferFrom(ctx, "engine", "alice", "engine", wad.New(10)))
	assert.True(t, l.Allowance(ctx, "alice", "engine").Eq(wad.Max()))
}

func TestLedgerCheckpoint(t *testing.T) {
	ctx := context.Background()
	l := NewLedger("wstETH")
	require.NoError(t, l.Mint(ctx, "alice", wad.New(100)))

	restore := l.Checkpoint()
	require.NoError(t, l.Transfer(ctx, "alice", "bob", wad.New(40)))
	require.NoError(t, l.Approve(ctx, "alice", "bob", wad.New(1)))
	restore()

	assert.Equal(t, uint64(100), l.BalanceOf(ctx, "alice").Uint64())
	assert.True(t, l.BalanceOf(ctx, "bob").IsZero())
	assert.True(t, l.Allowance(ctx, "alice", "bob").IsZero())
}

func TestStablecoinMinters(t *testing.T) {
	ctx := context.Background()
	s := NewStablecoin("svUSD", "owner")

	assert.ErrorIs(t, s.Mint(ctx, "vault", "alice", wad.New(1)), core.ErrNotMinter)
	assert.ErrorIs(t, s.SetMinter(ctx, "mallory", "vault", true), core.ErrNotOwner)

	require.NoError(t, s.SetMinter(ctx, "owner", "vault", true))
	require.NoError(t, s.Mint(ctx, "vault", "alice", wad.New(10)))
	assert.Equal(t, uint64(10), s.TotalSupply(ctx).Uint64())

	assert.ErrorIs(t, s.Burn(ctx, "vault", "alice", wad.New(11)), core.ErrInsufficientBalance)
	require.NoError(t, s.Burn(ctx, "vault", "alice", wad.New(4)))
	assert.Equal(t, uint64(6), s.TotalSupply(ctx).Uint64())

	restore := s.Checkpoint()
	require.NoError(t, s.SetMinter(ctx, "owner", "vault", false))
	assert.False(t, s.IsMinter("vault"))
	restore()
	assert.True(t, s.IsMinter("vault"))
}
