package protocol

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"stablevault/core"
	"stablevault/pkg/wad"
	"stablevault/service/feed"
	"stablevault/service/liquidation"
	"stablevault/store/event"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	asset core.Asset   = "wstETH"
	owner core.Address = "owner"
	alice core.Address = "alice"
	bob   core.Address = "bob"
	carol core.Address = "carol"
	dave  core.Address = "dave"
	t0    int64        = 1_700_000_000
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

type env struct {
	t      *testing.T
	ctx    context.Context
	clock  *clock
	feed   *feed.StaticFeed
	events core.IEventStore
	p      *Protocol
	addrs  Addresses
}

func newEnv(t *testing.T, opts ...func(*Options)) *env {
	e := &env{
		t:      t,
		ctx:    context.Background(),
		clock:  &clock{now: t0 - 600},
		feed:   feed.NewStatic(),
		events: event.NewMemory(),
	}

	opt := DefaultOptions(owner, asset)
	opt.Vault.BorrowAPR = wad.Zero()
	opt.Clock = e.clock
	opt.Events = e.events
	for _, fn := range opts {
		fn(&opt)
	}

	p, err := New(e.ctx, opt)
	require.NoError(t, err)
	e.p = p
	e.addrs = p.Addresses()

	e.feed.SetPrice(asset, 2000_00000000)
	require.NoError(t, p.SetPriceFeed(e.ctx, owner, asset, e.feed))
	require.NoError(t, p.UpdatePriceObservation(e.ctx, asset))
	e.clock.advance(300)
	require.NoError(t, p.UpdatePriceObservation(e.ctx, asset))
	e.clock.advance(300)
	return e
}

func (e *env) movePrice(price int64) {
	e.feed.SetPrice(asset, price)
	for i := 0; i < 8; i++ {
		e.clock.advance(300)
		require.NoError(e.t, e.p.UpdatePriceObservation(e.ctx, asset))
	}
}

func (e *env) open(who core.Address, collateral, debt *uint256.Int) {
	require.NoError(e.t, e.p.Faucet(e.ctx, owner, who, asset, collateral))
	require.NoError(e.t, e.p.Approve(e.ctx, who, e.addrs.Vault, asset, collateral))
	require.NoError(e.t, e.p.DepositCollateral(e.ctx, who, collateral))
	if !debt.IsZero() {
		require.NoError(e.t, e.p.Borrow(e.ctx, who, debt))
	}
}

// bidder opens a vault for stablecoin, approves the engine and takes bond for deposits
func (e *env) bidder(who core.Address, stable *uint256.Int) {
	e.open(who, units(100), stable)
	require.NoError(e.t, e.p.Approve(e.ctx, who, e.addrs.Engine, "svUSD", wad.Max()))
	require.NoError(e.t, e.p.Faucet(e.ctx, owner, who, "ETH", units(1)))
}

func (e *env) stake(who core.Address, amount *uint256.Int) {
	e.open(who, units(100), amount)
	require.NoError(e.t, e.p.Approve(e.ctx, who, e.addrs.Pool, "svUSD", amount))
	require.NoError(e.t, e.p.PoolDeposit(e.ctx, who, amount))
}

func (e *env) balance(who core.Address, asset core.Asset) string {
	b, err := e.p.BalanceOf(e.ctx, who, asset)
	require.NoError(e.t, err)
	return b.Dec()
}

// invariants that hold after every operation when no interest accrues
func (e *env) invariants() {
	total := wad.Zero()
	for _, owner := range e.p.Owners(e.ctx) {
		total = wad.Add(total, e.p.GetVault(e.ctx, owner).Debt)
	}

	h := e.p.SystemHealth(e.ctx)
	assert.Equal(e.t, h.TotalDebt.Dec(), total.Dec(), "total debt is the sum of vault debts")
	assert.Equal(e.t, h.TotalDebt.Dec(), h.StableSupply.Dec(), "stablecoin supply backs the debt")
}

func (e *env) kinds() []core.EventKind {
	events, err := e.events.List(e.ctx, 0, 1000)
	require.NoError(e.t, err)

	kinds := make([]core.EventKind, 0, len(events))
	for _, ev := range events {
		kinds = append(kinds, ev.Kind)
	}

	return kinds
}

func units(n uint64) *uint256.Int {
	return wad.Units(n, 18)
}

func salt(b byte) [32]byte {
	var s [32]byte
	s[0] = b
	return s
}

func TestBorrowAgainstCollateral(t *testing.T) {
	e := newEnv(t)
	e.open(alice, units(10), units(10000))

	h, err := e.p.GetHealthRatio(e.ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, units(2).Dec(), h.Value.Dec())
	assert.Equal(t, core.PriceSourceTWAP, h.Source)

	e.clock.advance(12)
	err = e.p.Borrow(e.ctx, alice, units(8001))
	assert.ErrorIs(t, err, core.ErrInsufficientCollateralRatio)
	assert.False(t, core.IsRetryable(err))

	e.invariants()
}

func TestFailedOperationLeavesNoTrace(t *testing.T) {
	e := newEnv(t)
	e.open(alice, units(10), units(10000))
	e.clock.advance(600)

	observations := len(e.p.Observations(e.ctx, asset))
	before := len(e.kinds())

	// the borrow records an observation and accrues before it fails
	err := e.p.Borrow(e.ctx, alice, units(8001))
	require.ErrorIs(t, err, core.ErrInsufficientCollateralRatio)

	assert.Len(t, e.p.Observations(e.ctx, asset), observations)
	assert.Len(t, e.kinds(), before)
	assert.Equal(t, units(10000).Dec(), e.p.GetVault(e.ctx, alice).Debt.Dec())
	assert.Equal(t, units(10000).Dec(), e.balance(alice, "svUSD"))
}

func TestWithdrawBoundaries(t *testing.T) {
	e := newEnv(t)
	e.open(alice, units(10), wad.Zero())

	err := e.p.WithdrawCollateral(e.ctx, alice, wad.Add(units(10), wad.New(1)))
	assert.ErrorIs(t, err, core.ErrExcessiveWithdrawal)

	require.NoError(t, e.p.WithdrawCollateral(e.ctx, alice, units(10)))
	assert.Equal(t, units(10).Dec(), e.balance(alice, asset))
}

func TestInterestAccrual(t *testing.T) {
	e := newEnv(t, func(opt *Options) { opt.Vault.BorrowAPR = wad.Percent(5) })
	e.open(alice, units(10), units(10000))

	e.clock.advance(365 * 24 * 3600)
	require.NoError(t, e.p.AccrueYield(e.ctx, alice))

	assert.Equal(t, units(10450).Dec(), e.p.GetVault(e.ctx, alice).Debt.Dec())
	h := e.p.SystemHealth(e.ctx)
	assert.Equal(t, units(50).Dec(), h.StableReserves.Dec())
	assert.Equal(t, units(10450).Dec(), h.TotalDebt.Dec())
	assert.Equal(t, wad.WAD.Dec(), h.Solvency.Dec())
	assert.Contains(t, e.kinds(), core.EventInterestAccrued)
}

func TestSealedBidAuction(t *testing.T) {
	e := newEnv(t)
	e.open(alice, units(10), units(10000))
	e.bidder(bob, units(6000))
	e.bidder(carol, units(6000))
	e.bidder(dave, wad.Zero())
	e.movePrice(1100_00000000)

	debt, err := e.p.CheckLiquidatable(e.ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, units(10000).Dec(), debt.Dec())

	deposit := e.p.RequiredDeposit(e.ctx, alice)
	assert.Equal(t, wad.Units(1, 17).Dec(), deposit.Dec())

	high, low := units(4), wad.Units(38, 17)
	require.NoError(t, e.p.CommitLiquidation(e.ctx, bob, alice, liquidation.CommitHash(alice, bob, units(5000), high, salt(1)), deposit))
	require.NoError(t, e.p.CommitLiquidation(e.ctx, carol, alice, liquidation.CommitHash(alice, carol, units(5000), low, salt(2)), deposit))
	require.NoError(t, e.p.CommitLiquidation(e.ctx, dave, alice, liquidation.CommitHash(alice, dave, units(5000), low, salt(3)), deposit))

	e.clock.advance(119)
	err = e.p.RevealLiquidation(e.ctx, carol, alice, units(5000), low, salt(2))
	assert.ErrorIs(t, err, core.ErrRevealTooEarly)

	e.clock.advance(1)
	require.NoError(t, e.p.RevealLiquidation(e.ctx, carol, alice, units(5000), low, salt(2)))
	require.NoError(t, e.p.RevealLiquidation(e.ctx, bob, alice, units(5000), high, salt(1)))
	assert.Len(t, e.p.GetVaultBids(e.ctx, alice), 2)

	e.clock.advance(15*60 - 120 + 1)
	require.NoError(t, e.p.FinalizeAuction(e.ctx, alice))
	assert.ErrorIs(t, e.p.FinalizeAuction(e.ctx, alice), core.ErrAuctionAlreadyExecuted)

	a, ok := e.p.GetAuction(e.ctx, alice)
	require.True(t, ok)
	assert.Equal(t, carol, a.Winner)
	assert.Equal(t, low.Dec(), e.balance(carol, asset))
	assert.Equal(t, units(5000).Dec(), e.p.GetVault(e.ctx, alice).Debt.Dec())
	e.invariants()

	// dave never revealed: his deposit is forfeited once the commitment expires
	require.NoError(t, e.p.ClaimRefund(e.ctx, dave, alice))
	assert.Equal(t, wad.Units(9, 17).Dec(), e.balance(dave, "ETH"))
	assert.True(t, e.p.PendingRefund(e.ctx, dave).IsZero())
	assert.Equal(t, deposit.Dec(), e.p.SystemHealth(e.ctx).SlashedRevenue.Dec())

	require.NoError(t, e.p.ClaimRefund(e.ctx, bob, alice))
	_, err = e.p.WithdrawRefund(e.ctx, bob)
	require.NoError(t, err)
	_, err = e.p.WithdrawRefund(e.ctx, carol)
	require.NoError(t, err)
	assert.Equal(t, units(1).Dec(), e.balance(bob, "ETH"))
	assert.Equal(t, units(1).Dec(), e.balance(carol, "ETH"))

	events, err := e.events.ListByVault(e.ctx, alice, 0, 100)
	require.NoError(t, err)
	var finalized *core.Event
	for _, ev := range events {
		if ev.Kind == core.EventAuctionFinalized {
			finalized = ev
		}
	}

	require.NotNil(t, finalized)
	assert.Equal(t, "auction.finalize", finalized.Op)
	assert.NotEmpty(t, finalized.TraceID)
	assert.Contains(t, e.kinds(), core.EventDepositSlashed)
}

func TestTimedOutAuctionFallsBackToPool(t *testing.T) {
	e := newEnv(t)
	e.open(alice, units(10), units(10000))
	e.stake(carol, units(7500))
	e.stake(dave, units(2500))
	e.bidder(bob, wad.Zero())
	e.movePrice(1100_00000000)

	deposit := e.p.RequiredDeposit(e.ctx, alice)
	require.NoError(t, e.p.CommitLiquidation(e.ctx, bob, alice, liquidation.CommitHash(alice, bob, units(5000), units(4), salt(1)), deposit))

	e.clock.advance(3601)
	require.NoError(t, e.p.FinalizeAuction(e.ctx, alice))

	a, _ := e.p.GetAuction(e.ctx, alice)
	assert.Equal(t, core.AuctionFallbackExecuted, a.Phase)
	assert.Equal(t, units(5000).Dec(), e.p.PoolTotalDeposits(e.ctx).Dec())
	assert.Equal(t, units(5000).Dec(), e.p.GetVault(e.ctx, alice).Debt.Dec())

	// gains split 75/25
	assert.Equal(t, "3579545454545454544", e.p.GetDeposit(e.ctx, carol).PendingGain.Dec())
	assert.Equal(t, "1193181818181818181", e.p.GetDeposit(e.ctx, dave).PendingGain.Dec())
	assert.Equal(t, units(3750).Dec(), e.p.GetDeposit(e.ctx, carol).Compounded.Dec())

	gain, err := e.p.ClaimCollateralGains(e.ctx, carol)
	require.NoError(t, err)
	assert.Equal(t, "3579545454545454544", gain.Dec())

	require.NoError(t, e.p.PoolWithdraw(e.ctx, carol, units(3750)))
	assert.ErrorIs(t, e.p.PoolWithdraw(e.ctx, dave, units(1251)), core.ErrInsufficientBalance)

	e.invariants()

	kinds := e.kinds()
	assert.Contains(t, kinds, core.EventAuctionFallback)
	assert.Contains(t, kinds, core.EventLiquidationAbsorbed)
	assert.Equal(t, core.EventCategoryBackstop, core.EventAuctionFallback.Category())

	// unrevealed after a fallback is still forfeited
	require.NoError(t, e.p.ClaimRefund(e.ctx, bob, alice))
	assert.Equal(t, deposit.Dec(), e.p.SystemHealth(e.ctx).SlashedRevenue.Dec())
}

func TestEmergencyPause(t *testing.T) {
	e := newEnv(t)
	e.open(alice, units(10), wad.Zero())

	assert.ErrorIs(t, e.p.SetEmergencyPause(e.ctx, alice, true), core.ErrNotOwner)
	require.NoError(t, e.p.SetEmergencyPause(e.ctx, owner, true))

	assert.ErrorIs(t, e.p.Borrow(e.ctx, alice, units(1000)), core.ErrPaused)
	assert.Equal(t, core.KindPrecondition, core.KindOf(core.ErrPaused))

	// repaying and depositing stay open
	require.NoError(t, e.p.Faucet(e.ctx, owner, alice, asset, units(1)))
	require.NoError(t, e.p.Approve(e.ctx, alice, e.addrs.Vault, asset, units(1)))
	require.NoError(t, e.p.DepositCollateral(e.ctx, alice, units(1)))

	require.NoError(t, e.p.SetEmergencyPause(e.ctx, owner, false))
	require.NoError(t, e.p.Borrow(e.ctx, alice, units(1000)))
	assert.Contains(t, e.kinds(), core.EventPaused)
}

func TestSlashingTripsBreaker(t *testing.T) {
	rate := &rateSource{rate: wad.WAD.Clone()}
	e := newEnv(t, func(opt *Options) { opt.Yield = rate })
	e.open(alice, units(10), units(1000))

	rate.rate = wad.Percent(90)
	e.clock.advance(60)
	require.NoError(t, e.p.AccrueYield(e.ctx, alice))

	assert.True(t, e.p.Breaker.IsCircuitBreakerActive(e.ctx))
	assert.Contains(t, e.kinds(), core.EventSlashingReported)

	e.clock.advance(12)
	assert.ErrorIs(t, e.p.Borrow(e.ctx, alice, units(100)), core.ErrPaused)

	require.NoError(t, e.p.ResetCircuitBreaker(e.ctx, owner))
	require.NoError(t, e.p.Borrow(e.ctx, alice, units(100)))
}

func TestConcurrentOperationsAreSerialized(t *testing.T) {
	e := newEnv(t)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		who := core.Address(fmt.Sprintf("user-%02d", i))
		wg.Add(1)
		go func() {
			defer wg.Done()

			ctx := e.ctx
			if err := e.p.Faucet(ctx, owner, who, asset, units(10)); err != nil {
				t.Error(err)
				return
			}

			if err := e.p.Approve(ctx, who, e.addrs.Vault, asset, units(10)); err != nil {
				t.Error(err)
				return
			}

			if err := e.p.DepositCollateral(ctx, who, units(10)); err != nil {
				t.Error(err)
				return
			}

			if err := e.p.Borrow(ctx, who, units(5000)); err != nil {
				t.Error(err)
				return
			}

			if _, err := e.p.Repay(ctx, who, units(1000)); err != nil {
				t.Error(err)
			}
		}()
	}

	wg.Wait()

	assert.Len(t, e.p.Owners(e.ctx), 16)
	assert.Equal(t, units(16*4000).Dec(), e.p.SystemHealth(e.ctx).TotalDebt.Dec())
	e.invariants()
}

type rateSource struct {
	rate *uint256.Int
}

func (r *rateSource) GetExchangeRate(_ context.Context) (*uint256.Int, error) {
	return r.rate.Clone(), nil
}

func (r *rateSource) GetUnderlyingAmount(_ context.Context, amount *uint256.Int) (*uint256.Int, error) {
	return wad.Mul(amount, r.rate), nil
}

func (r *rateSource) GetWrapperAmount(_ context.Context, amount *uint256.Int) (*uint256.Int, error) {
	return wad.Div(amount, r.rate), nil
}
