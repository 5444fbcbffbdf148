package vault

import (
	"context"
	"fmt"

	"stablevault/core"
	"stablevault/pkg/wad"

	"github.com/holiman/uint256"
)

func (m *Manager) onlyOwner(caller core.Address) error {
	if caller != m.owner {
		return core.ErrNotOwner
	}

	return nil
}

// SetLiquidationEngine registers the only account allowed to liquidate
func (m *Manager) SetLiquidationEngine(ctx context.Context, caller, engine core.Address) error {
	if err := m.onlyOwner(caller); err != nil {
		return err
	}

	if engine.IsZero() {
		return fmt.Errorf("liquidation engine: %w", core.ErrInvalidParameter)
	}

	m.engine = engine
	core.Emit(ctx, core.NewEvent(core.EventLiquidationEngine, "", caller, nil, core.NewEventData().Put("engine", engine.String())))
	return nil
}

// LiquidationEngine registered engine
func (m *Manager) LiquidationEngine() core.Address {
	return m.engine
}

// SetPauseGuard sets the emergency pause collaborator, nil removes it
func (m *Manager) SetPauseGuard(ctx context.Context, caller core.Address, guard core.PauseGuard) error {
	if err := m.onlyOwner(caller); err != nil {
		return err
	}

	m.guard = guard
	core.Emit(ctx, core.NewEvent(core.EventPauseGuardSet, "", caller, nil, nil))
	return nil
}

// SetPaused pause or unpause borrowing and withdrawals
func (m *Manager) SetPaused(ctx context.Context, caller core.Address, paused bool) error {
	if err := m.onlyOwner(caller); err != nil {
		return err
	}

	m.paused = paused
	kind := core.EventUnpaused
	if paused {
		kind = core.EventPaused
	}

	core.Emit(ctx, core.NewEvent(kind, "", caller, nil, core.NewEventData().Put("module", "vault")))
	return nil
}

// Paused true when paused locally or by the guard
func (m *Manager) Paused(ctx context.Context) bool {
	return m.halted(ctx)
}

// SetBorrowRate changes the APR within bounds and by at most the max delta per update
func (m *Manager) SetBorrowRate(ctx context.Context, caller core.Address, apr *uint256.Int) error {
	if err := m.onlyOwner(caller); err != nil {
		return err
	}

	if apr.Lt(m.cfg.MinBorrowAPR) || apr.Gt(m.cfg.MaxBorrowAPR) {
		return fmt.Errorf("apr out of range: %w", core.ErrInvalidParameter)
	}

	delta := wad.SubFloor(apr, m.apr)
	if apr.Lt(m.apr) {
		delta = wad.Sub(m.apr, apr)
	}

	if delta.Gt(m.cfg.MaxBorrowAPRDelta) {
		return fmt.Errorf("apr delta too large: %w", core.ErrInvalidParameter)
	}

	previous := m.apr
	m.apr = apr.Clone()
	core.Emit(ctx, core.NewEvent(core.EventBorrowRateUpdated, "", caller, apr, core.NewEventData().Put("previous", previous)))
	return nil
}

// WithdrawReserves pays protocol reserves to to, stablecoin reserves are minted on withdrawal
func (m *Manager) WithdrawReserves(ctx context.Context, caller, to core.Address, stableAmount, collateralAmount *uint256.Int) error {
	if err := m.onlyOwner(caller); err != nil {
		return err
	}

	if to.IsZero() || (stableAmount.IsZero() && collateralAmount.IsZero()) {
		return fmt.Errorf("withdraw reserves: %w", core.ErrInvalidParameter)
	}

	if stableAmount.Gt(m.stableReserves) || collateralAmount.Gt(m.collateralReserves) {
		return core.ErrInsufficientBalance
	}

	m.stableReserves = wad.Sub(m.stableReserves, stableAmount)
	m.collateralReserves = wad.Sub(m.collateralReserves, collateralAmount)

	core.Emit(ctx, core.NewEvent(core.EventReservesWithdrawn, "", caller, stableAmount, core.NewEventData().
		Put("to", to.String()).
		Put("collateral", collateralAmount)))

	if !stableAmount.IsZero() {
		if err := m.stable.Mint(ctx, m.self, to, stableAmount); err != nil {
			return err
		}
	}

	if !collateralAmount.IsZero() {
		return m.collateral.Transfer(ctx, m.self, to, collateralAmount)
	}

	return nil
}

// WriteOffBadDebt covers recorded bad debt with stablecoin reserves
func (m *Manager) WriteOffBadDebt(ctx context.Context, caller core.Address, amount *uint256.Int) error {
	if err := m.onlyOwner(caller); err != nil {
		return err
	}

	if amount.IsZero() {
		return core.ErrZeroAmount
	}

	if amount.Gt(m.badDebt) || amount.Gt(m.stableReserves) {
		return core.ErrInsufficientBalance
	}

	m.badDebt = wad.Sub(m.badDebt, amount)
	m.stableReserves = wad.Sub(m.stableReserves, amount)

	core.Emit(ctx, core.NewEvent(core.EventBadDebtWrittenOff, "", caller, amount, core.NewEventData().Put("remaining", m.badDebt)))
	return nil
}
