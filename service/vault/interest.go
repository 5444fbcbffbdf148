package vault

import (
	"context"

	"stablevault/core"
	"stablevault/pkg/wad"

	"github.com/fox-one/pkg/logger"
	"github.com/holiman/uint256"
)

type interestSplit struct {
	Interest *uint256.Int
	Fee      *uint256.Int
	User     *uint256.Int
	Elapsed  int64
}

// interestSince debt * APR * elapsed / year rounded down, elapsed capped at the accrual window
func (m *Manager) interestSince(v *core.Vault, now int64) *interestSplit {
	split := &interestSplit{Interest: wad.Zero(), Fee: wad.Zero(), User: wad.Zero()}
	if v.Debt.IsZero() || v.LastAccrual == 0 || now <= v.LastAccrual {
		return split
	}

	elapsed := now - v.LastAccrual
	if elapsed > m.cfg.MaxAccrualWindow {
		elapsed = m.cfg.MaxAccrualWindow
	}

	split.Elapsed = elapsed
	split.Interest = wad.MulDivDown(wad.Mul(v.Debt, m.apr), uint256.NewInt(uint64(elapsed)), uint256.NewInt(uint64(m.cfg.SecondsPerYear)))
	split.Fee = wad.Min(wad.MulUp(split.Interest, m.cfg.ProtocolFee), split.Interest)
	split.User = wad.Sub(split.Interest, split.Fee)
	return split
}

// accrueInterest posts pending interest, returns the interest added to the vault
func (m *Manager) accrueInterest(ctx context.Context, v *core.Vault) *uint256.Int {
	now := m.now(ctx)
	split := m.interestSince(v, now)
	debtBefore := v.Debt.Clone()
	v.LastAccrual = now

	if split.Interest.IsZero() {
		return split.User
	}

	v.Debt = wad.Add(v.Debt, split.User)
	m.totalDebt = wad.Add(m.totalDebt, split.User)
	m.stableReserves = wad.Add(m.stableReserves, split.Fee)

	// small postings never arm the grace period
	if split.Interest.Gt(wad.Mul(debtBefore, m.cfg.GraceThreshold)) {
		v.LastInterestPosted = now
	}

	logger.FromContext(ctx).WithField("vault", v.Owner).Debugf("vault: interest %s fee %s over %ds", split.User.Dec(), split.Fee.Dec(), split.Elapsed)
	core.Emit(ctx, core.NewEvent(core.EventInterestAccrued, v.Owner, "", split.User, core.NewEventData().
		Put("fee", split.Fee).
		Put("elapsed", split.Elapsed)))
	return split.User
}

// accrueYield records the current wrapper exchange rate
func (m *Manager) accrueYield(ctx context.Context, v *core.Vault) error {
	if m.yield == nil {
		return nil
	}

	rate, err := m.yield.GetExchangeRate(ctx)
	if err != nil {
		return err
	}

	if rate.Eq(v.LastExchangeRate) {
		return nil
	}

	previous := v.LastExchangeRate
	v.LastExchangeRate = rate
	core.Emit(ctx, core.NewEvent(core.EventYieldAccrued, v.Owner, "", rate, core.NewEventData().Put("previous", previous)))
	return nil
}

// accrue interest first, since it depends on the timestamp yield tracking does not touch
func (m *Manager) accrue(ctx context.Context, v *core.Vault) (*uint256.Int, error) {
	interest := m.accrueInterest(ctx, v)
	if err := m.accrueYield(ctx, v); err != nil {
		return nil, err
	}

	return interest, nil
}

// AccrueYield accrues interest and yield of owner's vault, anyone may call it
func (m *Manager) AccrueYield(ctx context.Context, owner core.Address) error {
	v, ok := m.vaults[owner]
	if !ok {
		return nil
	}

	_, err := m.accrue(ctx, v)
	return err
}
