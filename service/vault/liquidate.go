package vault

import (
	"context"

	"stablevault/core"
	"stablevault/pkg/wad"

	"github.com/fox-one/pkg/logger"
	"github.com/holiman/uint256"
)

type liquidation struct {
	Repaid   string `json:"repaid"`
	Seized   string `json:"seized"`
	Base     string `json:"base"`
	Bonus    string `json:"bonus"`
	Penalty  string `json:"penalty"`
	Price    string `json:"price"`
	Health   string `json:"health"`
	Interest string `json:"interest"`
}

// Seizure collateral split of one liquidation
type Seizure struct {
	Base    *uint256.Int
	Bonus   *uint256.Int
	Penalty *uint256.Int
}

// Total base + bonus + penalty
func (s *Seizure) Total() *uint256.Int {
	return wad.Add(wad.Add(s.Base, s.Bonus), s.Penalty)
}

// Seized collateral handed to the liquidator
func (s *Seizure) Seized() *uint256.Int {
	return wad.Add(s.Base, s.Bonus)
}

// SeizureFor collateral equivalent of repaid at price plus bonus and penalty, scaled down to fit available
func SeizureFor(repaid, price, available, bonusRatio, penaltyRatio *uint256.Int) *Seizure {
	base := wad.PriceDiv(repaid, price)
	if !base.Lt(available) {
		return &Seizure{Base: available.Clone(), Bonus: wad.Zero(), Penalty: wad.Zero()}
	}

	s := &Seizure{
		Base:    base,
		Bonus:   wad.Mul(base, bonusRatio),
		Penalty: wad.Mul(base, penaltyRatio),
	}

	if s.Total().Gt(available) {
		room := wad.Sub(available, base)
		extra := wad.Add(s.Bonus, s.Penalty)
		s.Bonus = wad.MulDivDown(s.Bonus, room, extra)
		s.Penalty = wad.MulDivDown(s.Penalty, room, extra)
	}

	return s
}

// Liquidate repays up to debtToRepay of owner's debt and hands the seized collateral to the engine
func (m *Manager) Liquidate(ctx context.Context, caller, owner core.Address, debtToRepay *uint256.Int) (*uint256.Int, *uint256.Int, error) {
	if m.engine.IsZero() || caller != m.engine {
		return nil, nil, core.ErrNotLiquidationEngine
	}

	v, ok := m.vaults[owner]
	if !ok {
		return nil, nil, core.ErrVaultNotLiquidatable
	}

	now := m.now(ctx)
	if v.LastLiquidation > 0 && now-v.LastLiquidation < m.cfg.LiquidationCooldown {
		return nil, nil, core.ErrLiquidationCooldown
	}

	if v.LastInterestPosted > 0 && now-v.LastInterestPosted < m.cfg.InterestGracePeriod {
		return nil, nil, core.ErrInterestGracePeriod
	}

	interest, err := m.accrue(ctx, v)
	if err != nil {
		return nil, nil, err
	}

	if v.Debt.IsZero() {
		return nil, nil, core.ErrVaultNotLiquidatable
	}

	price, err := m.twap(ctx)
	if err != nil {
		return nil, nil, err
	}

	health := HealthOf(v.Collateral, v.Debt, price)
	if !health.Lt(m.cfg.LiquidationThreshold) {
		return nil, nil, core.ErrVaultNotLiquidatable
	}

	if debtToRepay.IsZero() {
		return nil, nil, core.ErrZeroAmount
	}

	repaid := wad.Min(debtToRepay, wad.Mul(v.Debt, m.cfg.MaxLiquidationRatio))
	seizure := SeizureFor(repaid, price, v.Collateral, m.cfg.LiquidatorBonus, m.cfg.LiquidationPenalty)
	seized := seizure.Seized()

	v.Collateral = wad.Sub(v.Collateral, seizure.Total())
	v.Debt = wad.Sub(v.Debt, repaid)
	m.totalDebt = wad.SubFloor(m.totalDebt, repaid)
	m.collateralReserves = wad.Add(m.collateralReserves, seizure.Penalty)
	v.LastLiquidation = now

	log := logger.FromContext(ctx).WithField("vault", owner)
	log.Infof("vault: liquidated %s debt for %s collateral at health %s", repaid.Dec(), seized.Dec(), health.Dec())

	core.Emit(ctx, core.NewEvent(core.EventVaultLiquidated, owner, caller, repaid, core.EventDataFrom(liquidation{
		Repaid:   repaid.Dec(),
		Seized:   seized.Dec(),
		Base:     seizure.Base.Dec(),
		Bonus:    seizure.Bonus.Dec(),
		Penalty:  seizure.Penalty.Dec(),
		Price:    price.Dec(),
		Health:   health.Dec(),
		Interest: interest.Dec(),
	})))

	if v.Collateral.Lt(m.cfg.DustThreshold) && !v.Debt.IsZero() {
		bad := v.Debt
		v.Debt = wad.Zero()
		m.totalDebt = wad.SubFloor(m.totalDebt, bad)
		m.badDebt = wad.Add(m.badDebt, bad)

		log.Warnf("vault: %s debt written off as bad debt", bad.Dec())
		core.Emit(ctx, core.NewEvent(core.EventBadDebtRecorded, owner, caller, bad, core.NewEventData().
			Put("remaining_collateral", v.Collateral).
			Put("total_bad_debt", m.badDebt)))
	}

	if err := m.collateral.Transfer(ctx, m.self, caller, seized); err != nil {
		return nil, nil, err
	}

	return repaid, seized, nil
}
