package vault

import (
	"context"

	"stablevault/core"
	"stablevault/pkg/wad"

	"github.com/fox-one/pkg/logger"
	"github.com/holiman/uint256"
)

// DepositCollateral pulls amount of collateral from caller, requires an allowance for the manager.
// Not gated by the pause, it only makes a vault safer.
func (m *Manager) DepositCollateral(ctx context.Context, caller core.Address, amount *uint256.Int) error {
	if amount.IsZero() {
		return core.ErrZeroAmount
	}

	v := m.vault(caller)
	if _, err := m.accrue(ctx, v); err != nil {
		return err
	}

	v.Collateral = wad.Add(v.Collateral, amount)
	core.Emit(ctx, core.NewEvent(core.EventCollateralDeposited, caller, caller, amount, nil))

	return m.collateral.TransferFrom(ctx, m.self, caller, m.self, amount)
}

// WithdrawCollateral returns collateral to caller, the vault must stay above the minimum ratio
func (m *Manager) WithdrawCollateral(ctx context.Context, caller core.Address, amount *uint256.Int) error {
	if amount.IsZero() {
		return core.ErrZeroAmount
	}

	v, ok := m.vaults[caller]
	if !ok || amount.Gt(v.Collateral) {
		return core.ErrExcessiveWithdrawal
	}

	if m.halted(ctx) {
		return core.ErrPaused
	}

	if _, err := m.accrue(ctx, v); err != nil {
		return err
	}

	remaining := wad.Sub(v.Collateral, amount)
	if !v.Debt.IsZero() {
		price, err := m.twap(ctx)
		if err != nil {
			return err
		}

		if HealthOf(remaining, v.Debt, price).Lt(m.cfg.MinCollateralRatio) {
			return core.ErrInsufficientCollateralRatio
		}
	}

	v.Collateral = remaining
	core.Emit(ctx, core.NewEvent(core.EventCollateralWithdrawn, caller, caller, amount, nil))
	return m.collateral.Transfer(ctx, m.self, caller, amount)
}

// Borrow mints amount of stablecoin against caller's vault
func (m *Manager) Borrow(ctx context.Context, caller core.Address, amount *uint256.Int) error {
	if amount.IsZero() {
		return core.ErrZeroAmount
	}

	if m.halted(ctx) {
		return core.ErrPaused
	}

	v := m.vault(caller)
	current := m.blocks.At(m.now(ctx))
	if v.HasBorrowed && current <= v.LastBorrowBlock {
		return core.ErrBorrowTooSoon
	}

	if _, err := m.accrue(ctx, v); err != nil {
		return err
	}

	debt := wad.Add(v.Debt, amount)
	if debt.Lt(m.cfg.MinDebt) {
		return core.ErrDebtBelowMinimum
	}

	price, err := m.twap(ctx)
	if err != nil {
		return err
	}

	health := HealthOf(v.Collateral, debt, price)
	if health.Lt(m.cfg.MinCollateralRatio) {
		logger.FromContext(ctx).WithField("vault", caller).Debugf("vault: borrow rejected at health %s", health.Dec())
		return core.ErrInsufficientCollateralRatio
	}

	v.Debt = debt
	v.LastBorrowBlock = current
	v.HasBorrowed = true
	m.totalDebt = wad.Add(m.totalDebt, amount)

	core.Emit(ctx, core.NewEvent(core.EventBorrowed, caller, caller, amount, core.NewEventData().
		Put("health", health).
		Put("block", current)))

	return m.stable.Mint(ctx, m.self, caller, amount)
}

// Repay burns up to amount of caller's stablecoin against the vault debt, returns the amount repaid.
// Open while paused, like DepositCollateral.
func (m *Manager) Repay(ctx context.Context, caller core.Address, amount *uint256.Int) (*uint256.Int, error) {
	if amount.IsZero() {
		return nil, core.ErrZeroAmount
	}

	v, ok := m.vaults[caller]
	if !ok {
		return nil, core.ErrNoDebt
	}

	if _, err := m.accrue(ctx, v); err != nil {
		return nil, err
	}

	if v.Debt.IsZero() {
		return nil, core.ErrNoDebt
	}

	paid := wad.Min(amount, v.Debt)
	remaining := wad.Sub(v.Debt, paid)
	if !remaining.IsZero() && remaining.Lt(m.cfg.MinDebt) {
		return nil, core.ErrDebtBelowMinimum
	}

	v.Debt = remaining
	m.totalDebt = wad.SubFloor(m.totalDebt, paid)

	core.Emit(ctx, core.NewEvent(core.EventRepaid, caller, caller, paid, nil))

	if err := m.stable.Burn(ctx, m.self, caller, paid); err != nil {
		return nil, err
	}

	return paid, nil
}
