package vault

import (
	"testing"

	"stablevault/core"
	"stablevault/pkg/wad"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeizureFor(t *testing.T) {
	bonus, penalty := wad.Percent(5), wad.Percent(5)

	s := SeizureFor(units(1000), wad.New(100_00000000), units(20), bonus, penalty)
	assert.Equal(t, units(10).Dec(), s.Base.Dec())
	assert.Equal(t, wad.Units(5, 17).Dec(), s.Bonus.Dec())
	assert.Equal(t, wad.Units(5, 17).Dec(), s.Penalty.Dec())
	assert.Equal(t, wad.Units(105, 17).Dec(), s.Seized().Dec())

	// bonus and penalty shrink together to fit the vault
	s = SeizureFor(units(1000), wad.New(100_00000000), wad.Units(105, 17), bonus, penalty)
	assert.Equal(t, units(10).Dec(), s.Base.Dec())
	assert.Equal(t, wad.Units(25, 16).Dec(), s.Bonus.Dec())
	assert.Equal(t, wad.Units(25, 16).Dec(), s.Penalty.Dec())
	assert.Equal(t, wad.Units(105, 17).Dec(), s.Total().Dec())

	s = SeizureFor(units(1000), wad.New(100_00000000), units(8), bonus, penalty)
	assert.Equal(t, units(8).Dec(), s.Base.Dec())
	assert.True(t, s.Bonus.IsZero())
	assert.True(t, s.Penalty.IsZero())
}

func TestLiquidate(t *testing.T) {
	e := newEnv(t)
	e.open(alice, units(10), units(10000))

	_, _, err := e.m.Liquidate(e.ctx(), alice, alice, units(10000))
	assert.ErrorIs(t, err, core.ErrNotLiquidationEngine)
	assert.Equal(t, core.KindAuthorization, core.KindOf(err))

	_, _, err = e.m.Liquidate(e.ctx(), engine, alice, units(10000))
	assert.ErrorIs(t, err, core.ErrVaultNotLiquidatable)

	e.movePrice(1100_00000000)
	debt, err := e.m.CheckLiquidatable(e.ctx(), alice)
	require.NoError(t, err)
	assert.Equal(t, units(10000).Dec(), debt.Dec())

	buf := &core.EventBuffer{}
	ctx := core.WithEventSink(e.ctx(), buf)
	repaid, seized, err := e.m.Liquidate(ctx, engine, alice, units(10000))
	require.NoError(t, err)

	// capped at half the debt
	assert.Equal(t, units(5000).Dec(), repaid.Dec())
	assert.Equal(t, "4772727272727272726", seized.Dec())
	assert.Equal(t, seized.Dec(), e.coll.BalanceOf(ctx, engine).Dec())

	v := e.m.GetVault(ctx, alice)
	assert.Equal(t, units(5000).Dec(), v.Debt.Dec())
	assert.Equal(t, "5000000000000000002", v.Collateral.Dec())
	assert.Equal(t, e.now, v.LastLiquidation)

	sys := e.m.SystemHealth(ctx)
	assert.Equal(t, units(5000).Dec(), sys.TotalDebt.Dec())
	assert.Equal(t, "227272727272727272", sys.CollateralReserves.Dec())
	assert.True(t, buf.Has(core.EventVaultLiquidated))
	assert.False(t, buf.Has(core.EventBadDebtRecorded))

	_, _, err = e.m.Liquidate(e.ctx(), engine, alice, units(1000))
	assert.ErrorIs(t, err, core.ErrLiquidationCooldown)

	e.advance(600)
	_, _, err = e.m.Liquidate(e.ctx(), engine, alice, units(1000))
	assert.NoError(t, err)
}

func TestLiquidateRecordsBadDebt(t *testing.T) {
	e := newEnv(t)
	e.open(alice, units(10), units(10000))
	e.movePrice(500_00000000)

	buf := &core.EventBuffer{}
	ctx := core.WithEventSink(e.ctx(), buf)
	repaid, seized, err := e.m.Liquidate(ctx, engine, alice, units(10000))
	require.NoError(t, err)
	assert.Equal(t, units(5000).Dec(), repaid.Dec())
	assert.Equal(t, units(10).Dec(), seized.Dec())

	v := e.m.GetVault(ctx, alice)
	assert.True(t, v.Debt.IsZero())
	assert.True(t, v.Collateral.IsZero())

	sys := e.m.SystemHealth(ctx)
	assert.True(t, sys.TotalDebt.IsZero())
	assert.Equal(t, units(5000).Dec(), sys.BadDebt.Dec())
	assert.True(t, sys.Solvency.IsZero())

	require.True(t, buf.Has(core.EventBadDebtRecorded))
	for _, ev := range buf.Events {
		if ev.Kind == core.EventBadDebtRecorded {
			assert.Equal(t, core.EventCategoryBackstop, ev.Category)
			assert.Equal(t, units(5000).Dec(), ev.Amount)
		}
	}
}

func TestDustThresholdIsConfigurable(t *testing.T) {
	e := newEnv(t, func(cfg *Config) { cfg.DustThreshold = units(6) })
	e.open(alice, units(10), units(10000))
	e.movePrice(1100_00000000)

	_, _, err := e.m.Liquidate(e.ctx(), engine, alice, units(5000))
	require.NoError(t, err)

	// about 5 units remain, under the raised threshold
	sys := e.m.SystemHealth(e.ctx())
	assert.Equal(t, units(5000).Dec(), sys.BadDebt.Dec())
	assert.True(t, e.m.GetVault(e.ctx(), alice).Debt.IsZero())
}

func TestGraceNeverArmsForSmallPostings(t *testing.T) {
	e := newEnv(t, func(cfg *Config) { cfg.BorrowAPR = wad.Percent(5) })
	e.open(alice, units(10), units(10000))
	e.movePrice(1100_00000000)

	// 40 minutes of 5% interest is far below 0.01% of the debt, so no grace applies
	_, _, err := e.m.Liquidate(e.ctx(), engine, alice, units(1000))
	require.NoError(t, err)
	assert.Zero(t, e.m.GetVault(e.ctx(), alice).LastInterestPosted)
}

func TestGraceArmsAfterLargePosting(t *testing.T) {
	e := newEnv(t, func(cfg *Config) { cfg.BorrowAPR = wad.Percent(5) })
	e.open(alice, units(10), units(10000))

	e.advance(24 * 3600)
	e.movePrice(1100_00000000)
	require.NoError(t, e.m.AccrueYield(e.ctx(), alice))
	assert.Equal(t, e.now, e.m.GetVault(e.ctx(), alice).LastInterestPosted)

	_, _, err := e.m.Liquidate(e.ctx(), engine, alice, units(1000))
	assert.ErrorIs(t, err, core.ErrInterestGracePeriod)

	e.advance(3599)
	_, _, err = e.m.Liquidate(e.ctx(), engine, alice, units(1000))
	assert.ErrorIs(t, err, core.ErrInterestGracePeriod)

	e.advance(1)
	_, _, err = e.m.Liquidate(e.ctx(), engine, alice, units(1000))
	assert.NoError(t, err)
}

func TestWithdrawReserves(t *testing.T) {
	e := newEnv(t, func(cfg *Config) { cfg.BorrowAPR = wad.Percent(5) })
	e.open(alice, units(10), units(10000))
	e.advance(secondsPerYear)
	require.NoError(t, e.m.AccrueYield(e.ctx(), alice))

	assert.ErrorIs(t, e.m.WithdrawReserves(e.ctx(), alice, alice, units(1), wad.Zero()), core.ErrNotOwner)
	assert.ErrorIs(t, e.m.WithdrawReserves(e.ctx(), owner, "treasury", units(51), wad.Zero()), core.ErrInsufficientBalance)
	assert.ErrorIs(t, e.m.WithdrawReserves(e.ctx(), owner, "treasury", wad.Zero(), wad.Zero()), core.ErrInvalidParameter)

	require.NoError(t, e.m.WithdrawReserves(e.ctx(), owner, "treasury", units(20), wad.Zero()))
	assert.Equal(t, units(20).Dec(), e.stable.BalanceOf(e.ctx(), "treasury").Dec())
	assert.Equal(t, units(30).Dec(), e.m.SystemHealth(e.ctx()).StableReserves.Dec())
}

func TestWriteOffBadDebt(t *testing.T) {
	e := newEnv(t, func(cfg *Config) { cfg.BorrowAPR = wad.Percent(5) })
	e.open(alice, units(10), units(10000))

	e.advance(secondsPerYear)
	e.movePrice(500_00000000)
	require.NoError(t, e.m.AccrueYield(e.ctx(), alice))
	assert.Equal(t, units(10450).Dec(), e.m.GetVault(e.ctx(), alice).Debt.Dec())

	e.advance(3600)
	_, seized, err := e.m.Liquidate(e.ctx(), engine, alice, units(20000))
	require.NoError(t, err)
	assert.Equal(t, units(10).Dec(), seized.Dec())

	before := e.m.SystemHealth(e.ctx())
	require.False(t, before.BadDebt.IsZero())
	assert.True(t, before.StableReserves.Gt(units(50)))

	assert.ErrorIs(t, e.m.WriteOffBadDebt(e.ctx(), alice, units(50)), core.ErrNotOwner)
	require.NoError(t, e.m.WriteOffBadDebt(e.ctx(), owner, units(50)))

	after := e.m.SystemHealth(e.ctx())
	assert.Equal(t, wad.Sub(before.BadDebt, units(50)).Dec(), after.BadDebt.Dec())
	assert.ErrorIs(t, e.m.WriteOffBadDebt(e.ctx(), owner, units(1)), core.ErrInsufficientBalance)
}
