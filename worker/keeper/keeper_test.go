package keeper

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"stablevault/core"
	"stablevault/pkg/wad"
	"stablevault/service/feed"
	"stablevault/service/liquidation"
	"stablevault/service/protocol"
	"stablevault/store/event"

	"github.com/fox-one/pkg/property"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	asset core.Asset   = "wstETH"
	owner core.Address = "owner"
	alice core.Address = "alice"
	bob   core.Address = "bob"
)

type clock struct {
	now int64
}

func (c *clock) Now() time.Time {
	return time.Unix(atomic.LoadInt64(&c.now), 0)
}

func (c *clock) advance(seconds int64) {
	atomic.AddInt64(&c.now, seconds)
}

type memCheckpoints struct {
	saved map[string]interface{}
	err   error
}

func (m *memCheckpoints) Get(_ context.Context, _ string) (property.Value, error) {
	var v property.Value
	return v, m.err
}

func (m *memCheckpoints) Save(_ context.Context, key string, value interface{}) error {
	m.saved[key] = value
	return nil
}

func units(n uint64) *uint256.Int {
	return wad.Units(n, 18)
}

func setup(t *testing.T) (*protocol.Protocol, *clock, *feed.StaticFeed) {
	ctx := context.Background()
	clk := &clock{now: 1_700_000_000}
	prices := feed.NewStatic()

	opt := protocol.DefaultOptions(owner, asset)
	opt.Vault.BorrowAPR = wad.Zero()
	opt.Clock = clk
	opt.Events = event.NewMemory()

	p, err := protocol.New(ctx, opt)
	require.NoError(t, err)

	prices.SetPrice(asset, 2000_00000000)
	require.NoError(t, p.SetPriceFeed(ctx, owner, asset, prices))
	for i := 0; i < 2; i++ {
		require.NoError(t, p.UpdatePriceObservation(ctx, asset))
		clk.advance(300)
	}

	addrs := p.Addresses()
	open := func(who core.Address, collateral, debt *uint256.Int) {
		require.NoError(t, p.Faucet(ctx, owner, who, asset, collateral))
		require.NoError(t, p.Approve(ctx, who, addrs.Vault, asset, collateral))
		require.NoError(t, p.DepositCollateral(ctx, who, collateral))
		require.NoError(t, p.Borrow(ctx, who, debt))
	}

	open(alice, units(10), units(10000))
	open(bob, units(100), units(6000))
	require.NoError(t, p.Approve(ctx, bob, addrs.Engine, "svUSD", wad.Max()))
	require.NoError(t, p.Faucet(ctx, owner, bob, "ETH", units(1)))

	prices.SetPrice(asset, 1100_00000000)
	for i := 0; i < 8; i++ {
		clk.advance(300)
		require.NoError(t, p.UpdatePriceObservation(ctx, asset))
	}

	return p, clk, prices
}

func TestKeeperSettlesAuctions(t *testing.T) {
	ctx := context.Background()
	p, clk, _ := setup(t)

	var salt [32]byte
	salt[0] = 7
	deposit := p.RequiredDeposit(ctx, alice)
	require.NoError(t, p.CommitLiquidation(ctx, bob, alice, liquidation.CommitHash(alice, bob, units(5000), units(4), salt), deposit))
	clk.advance(120)
	require.NoError(t, p.RevealLiquidation(ctx, bob, alice, units(5000), units(4), salt))

	checkpoints := &memCheckpoints{saved: map[string]interface{}{}}
	k := New(p, checkpoints, "@every 10s", time.Hour)

	// still revealing, nothing to settle
	require.NoError(t, k.Tick(ctx))
	a, ok := p.GetAuction(ctx, alice)
	require.True(t, ok)
	assert.Equal(t, core.AuctionRevealing, a.Phase)
	assert.Equal(t, clk.Now(), checkpoints.saved[checkpointKey])

	clk.advance(15 * 60)
	require.NoError(t, k.Tick(ctx))

	a, _ = p.GetAuction(ctx, alice)
	assert.Equal(t, core.AuctionExecuted, a.Phase)
	assert.Equal(t, bob, a.Winner)
	assert.Equal(t, units(5000).Dec(), p.GetVault(ctx, alice).Debt.Dec())
	assert.Len(t, p.GetVaultBids(ctx, alice), 1)

	require.NoError(t, k.Tick(ctx))
	assert.Empty(t, p.GetVaultBids(ctx, alice))
}

func TestKeeperCheckpointFailure(t *testing.T) {
	p, _, _ := setup(t)

	boom := errors.New("db down")
	k := New(p, &memCheckpoints{saved: map[string]interface{}{}, err: boom}, "@every 10s", time.Hour)
	assert.ErrorIs(t, k.Tick(context.Background()), boom)
}
