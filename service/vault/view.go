package vault

import (
	"context"
	"fmt"
	"time"

	"stablevault/core"
	"stablevault/pkg/wad"

	"github.com/holiman/uint256"
)

// GetVault copy of owner's vault with pending interest folded into the debt
func (m *Manager) GetVault(ctx context.Context, owner core.Address) *core.Vault {
	v, ok := m.vaults[owner]
	if !ok {
		return core.NewVault(owner)
	}

	c := v.Clone()
	split := m.interestSince(v, m.now(ctx))
	c.Debt = wad.Add(c.Debt, split.User)
	return c
}

// GetHealthRatio health at the TWAP, degrading to the spot price when the TWAP is unavailable
func (m *Manager) GetHealthRatio(ctx context.Context, owner core.Address) (*core.HealthRatio, error) {
	v := m.GetVault(ctx, owner)
	if v.Debt.IsZero() {
		return &core.HealthRatio{Value: wad.Max(), Source: core.PriceSourceNone}, nil
	}

	period := time.Duration(m.cfg.TWAPPeriod) * time.Second
	if price, err := m.oracle.GetTWAP(ctx, m.cfg.CollateralAsset, period); err == nil {
		return &core.HealthRatio{
			Value:  HealthOf(v.Collateral, v.Debt, price),
			Source: core.PriceSourceTWAP,
			Price:  price,
		}, nil
	}

	price, err := m.oracle.GetPriceView(ctx, m.cfg.CollateralAsset)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrTWAPUnavailable, err)
	}

	return &core.HealthRatio{
		Value:  HealthOf(v.Collateral, v.Debt, price),
		Source: core.PriceSourceSpot,
		Price:  price,
	}, nil
}

// CheckLiquidatable debt of owner's vault when it sits below the liquidation threshold at the TWAP
func (m *Manager) CheckLiquidatable(ctx context.Context, owner core.Address) (*uint256.Int, error) {
	v := m.GetVault(ctx, owner)
	if v.Debt.IsZero() {
		return nil, core.ErrVaultNotLiquidatable
	}

	period := time.Duration(m.cfg.TWAPPeriod) * time.Second
	price, err := m.oracle.GetTWAP(ctx, m.cfg.CollateralAsset, period)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrTWAPUnavailable, err)
	}

	if !HealthOf(v.Collateral, v.Debt, price).Lt(m.cfg.LiquidationThreshold) {
		return nil, core.ErrVaultNotLiquidatable
	}

	return v.Debt, nil
}

// UnderlyingCollateral collateral of owner in underlying units at the last recorded exchange rate
func (m *Manager) UnderlyingCollateral(ctx context.Context, owner core.Address) *uint256.Int {
	v := m.GetVault(ctx, owner)
	if v.LastExchangeRate.IsZero() {
		return v.Collateral
	}

	return wad.Mul(v.Collateral, v.LastExchangeRate)
}

// TotalDebt system wide debt
func (m *Manager) TotalDebt() *uint256.Int {
	return m.totalDebt.Clone()
}

// SystemHealth reserves, bad debt and solvency, written off debt still counts towards the solvency base
func (m *Manager) SystemHealth(_ context.Context) *core.SystemHealth {
	return &core.SystemHealth{
		TotalDebt:          m.totalDebt.Clone(),
		StableReserves:     m.stableReserves.Clone(),
		CollateralReserves: m.collateralReserves.Clone(),
		BadDebt:            m.badDebt.Clone(),
		Solvency:           Solvency(wad.Add(m.totalDebt, m.badDebt), m.badDebt),
	}
}

// Solvency (total - bad) / total in WAD, 100% without debt and 0% once bad debt covers it all
func Solvency(total, bad *uint256.Int) *uint256.Int {
	if total.IsZero() {
		return wad.WAD.Clone()
	}

	if !bad.Lt(total) {
		return wad.Zero()
	}

	return wad.Div(wad.Sub(total, bad), total)
}
