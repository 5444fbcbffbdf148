// Package pool implements the stability pool.
//
// Depositor positions are never iterated. Two global accumulators carry every
// liquidation: P, the product of survival factors (1 - offset/total), and G,
// the sum of collateral/total scaled by P at the time of each liquidation.
// A position snapshots both on every interaction, so
//
//	compounded = amount * P / snapshotP
//	gain       = amount * (G - snapshotG) / snapshotP
//
// P only shrinks. Whenever it would fall under scaleFactor it is multiplied by
// scaleFactor and the scale advances; G is kept per (epoch, scale) so gains
// earned across one scale change are still reachable. A deposit two or more
// scales behind has compounded to less than a billionth of itself and counts
// as zero.
//
// When a liquidation consumes the whole pool, P would reach zero; the epoch
// ends instead and P restarts at one.
package pool

import (
	"context"

	"stablevault/core"
	"stablevault/pkg/wad"

	"github.com/fox-one/pkg/logger"
	"github.com/holiman/uint256"
)

// scaleFactor P is rescaled by this factor once it drops below it
var scaleFactor = wad.Pow10(9)

// maxRescale a single absorption shrinking P past this many scales counts as a full absorption
const maxRescale = 4

type epochScale struct {
	epoch uint64
	scale uint64
}

// Pool stability pool
type Pool struct {
	self       core.Address
	owner      core.Address
	engine     core.Address
	clock      core.Clock
	stable     core.Stablecoin
	collateral core.Token

	p        *uint256.Int
	epoch    uint64
	scale    uint64
	sums     map[epochScale]*uint256.Int
	total    *uint256.Int
	deposits map[core.Address]*core.PoolDeposit
}

// New pool holding funds under self
func New(self, owner core.Address, stable core.Stablecoin, collateral core.Token, clock core.Clock) *Pool {
	return &Pool{
		self:       self,
		owner:      owner,
		clock:      clock,
		stable:     stable,
		collateral: collateral,
		p:          wad.RAY.Clone(),
		sums:       map[epochScale]*uint256.Int{},
		total:      wad.Zero(),
		deposits:   map[core.Address]*core.PoolDeposit{},
	}
}

// Address account holding pool funds
func (p *Pool) Address() core.Address {
	return p.self
}

// SetLiquidationEngine registers the only account allowed to distribute liquidations
func (p *Pool) SetLiquidationEngine(_ context.Context, caller, engine core.Address) error {
	if caller != p.owner {
		return core.ErrNotOwner
	}

	if engine.IsZero() {
		return core.ErrInvalidParameter
	}

	p.engine = engine
	return nil
}

// P current survival factor at RAY scale
func (p *Pool) P() *uint256.Int {
	return p.p.Clone()
}

// G current gain accumulator of the epoch and scale at RAY scale
func (p *Pool) G() *uint256.Int {
	return p.sum(p.epoch, p.scale)
}

// Epoch current epoch
func (p *Pool) Epoch() uint64 {
	return p.epoch
}

// Scale number of times P was rescaled in the current epoch
func (p *Pool) Scale() uint64 {
	return p.scale
}

func (p *Pool) sum(epoch, scale uint64) *uint256.Int {
	return wad.OrZero(p.sums[epochScale{epoch, scale}]).Clone()
}

func (p *Pool) TotalDeposits(_ context.Context) *uint256.Int {
	return p.total.Clone()
}

// position compounded amount and pending gain of d at current accumulators
func (p *Pool) position(d *core.PoolDeposit) (compounded, gain *uint256.Int) {
	if d.Amount.IsZero() || d.SnapshotP.IsZero() {
		return wad.Zero(), wad.Zero()
	}

	// gains of the snapshot scale plus the next one, the latter a scaleFactor finer
	g := wad.SubFloor(p.sum(d.SnapshotEpoch, d.SnapshotScale), d.SnapshotG)
	g = wad.Add(g, new(uint256.Int).Div(p.sum(d.SnapshotEpoch, d.SnapshotScale+1), scaleFactor))
	gain = wad.MulDivDown(d.Amount, g, d.SnapshotP)

	switch {
	case d.SnapshotEpoch != p.epoch:
		compounded = wad.Zero()
	case p.scale == d.SnapshotScale:
		compounded = wad.MulDivDown(d.Amount, p.p, d.SnapshotP)
	case p.scale == d.SnapshotScale+1:
		compounded = new(uint256.Int).Div(wad.MulDivDown(d.Amount, p.p, d.SnapshotP), scaleFactor)
	default:
		compounded = wad.Zero()
	}

	return compounded, gain
}

func (p *Pool) refresh(ctx context.Context, depositor core.Address) *core.PoolDeposit {
	d, ok := p.deposits[depositor]
	if !ok {
		d = &core.PoolDeposit{
			Depositor:      depositor,
			Amount:         wad.Zero(),
			CollateralGain: wad.Zero(),
			SnapshotP:      p.p.Clone(),
			SnapshotG:      p.G(),
			SnapshotEpoch:  p.epoch,
			SnapshotScale:  p.scale,
		}
		p.deposits[depositor] = d
	}

	compounded, gain := p.position(d)
	d.Amount = compounded
	d.CollateralGain = wad.Add(d.CollateralGain, gain)
	d.SnapshotP = p.p.Clone()
	d.SnapshotG = p.G()
	d.SnapshotEpoch = p.epoch
	d.SnapshotScale = p.scale
	d.Timestamp = core.BlockTime(ctx, p.clock)
	return d
}

func (p *Pool) Deposit(ctx context.Context, depositor core.Address, amount *uint256.Int) error {
	if amount.IsZero() {
		return core.ErrZeroAmount
	}

	d := p.refresh(ctx, depositor)
	d.Amount = wad.Add(d.Amount, amount)
	p.total = wad.Add(p.total, amount)

	core.Emit(ctx, core.NewEvent(core.EventPoolDeposited, "", depositor, amount, core.NewEventData().Put("balance", d.Amount)))
	return p.stable.TransferFrom(ctx, p.self, depositor, p.self, amount)
}

func (p *Pool) Withdraw(ctx context.Context, depositor core.Address, amount *uint256.Int) error {
	if amount.IsZero() {
		return core.ErrZeroAmount
	}

	d := p.refresh(ctx, depositor)
	if amount.Gt(d.Amount) {
		return core.ErrInsufficientBalance
	}

	d.Amount = wad.Sub(d.Amount, amount)
	p.total = wad.SubFloor(p.total, amount)

	core.Emit(ctx, core.NewEvent(core.EventPoolWithdrawn, "", depositor, amount, core.NewEventData().Put("balance", d.Amount)))
	return p.stable.Transfer(ctx, p.self, depositor, amount)
}

func (p *Pool) ClaimCollateralGains(ctx context.Context, depositor core.Address) (*uint256.Int, error) {
	d := p.refresh(ctx, depositor)
	if d.CollateralGain.IsZero() {
		return nil, core.ErrZeroAmount
	}

	gain := d.CollateralGain
	d.CollateralGain = wad.Zero()

	core.Emit(ctx, core.NewEvent(core.EventCollateralGainClaimed, "", depositor, gain, nil))
	if err := p.collateral.Transfer(ctx, p.self, depositor, gain); err != nil {
		return nil, err
	}

	return gain, nil
}

// DistributeLiquidation absorbs debtToOffset from the pool and credits collateralToDistribute, which the engine transferred in beforehand
func (p *Pool) DistributeLiquidation(ctx context.Context, caller core.Address, debtToOffset, collateralToDistribute *uint256.Int) error {
	if p.engine.IsZero() || caller != p.engine {
		return core.ErrNotLiquidationEngine
	}

	if p.total.IsZero() {
		return core.ErrNoDeposits
	}

	offset := wad.Min(debtToOffset, p.total)

	// gains and survival factor both read the total before it shrinks
	key := epochScale{p.epoch, p.scale}
	p.sums[key] = wad.Add(p.sum(p.epoch, p.scale), wad.MulDivDown(collateralToDistribute, p.p, p.total))

	newP, rescaled := p.survival(wad.Sub(p.total, offset))
	if newP.IsZero() {
		p.epoch++
		p.scale = 0
		p.p = wad.RAY.Clone()
		p.total = wad.Zero()

		logger.FromContext(ctx).Warnf("pool: epoch %d ended, pool fully absorbed", p.epoch-1)
		core.Emit(ctx, core.NewEvent(core.EventPoolEpochReset, "", caller, offset, core.NewEventData().Put("epoch", p.epoch)))
	} else {
		p.p = newP
		p.scale += rescaled
		p.total = wad.Sub(p.total, offset)

		if rescaled > 0 {
			logger.FromContext(ctx).Debugf("pool: P rescaled to scale %d", p.scale)
		}
	}

	core.Emit(ctx, core.NewEvent(core.EventLiquidationAbsorbed, "", caller, offset, core.NewEventData().
		Put("collateral", collateralToDistribute).
		Put("p", p.p).
		Put("scale", p.scale).
		Put("total", p.total)))

	return p.stable.Burn(ctx, p.self, p.self, offset)
}

// survival P after the pool shrinks to remaining, rescaled until it is at least scaleFactor.
// Zero means the pool is treated as fully absorbed.
func (p *Pool) survival(remaining *uint256.Int) (*uint256.Int, uint64) {
	if remaining.IsZero() {
		return wad.Zero(), 0
	}

	scaled := p.p.Clone()
	for n := uint64(0); n <= maxRescale; n++ {
		newP := wad.MulDivDown(scaled, remaining, p.total)
		if !newP.Lt(scaleFactor) {
			return newP, n
		}

		scaled = new(uint256.Int).Mul(scaled, scaleFactor)
	}

	return wad.Zero(), 0
}

func (p *Pool) GetDeposit(ctx context.Context, depositor core.Address) *core.PoolPosition {
	pos := &core.PoolPosition{
		Depositor:   depositor,
		Compounded:  wad.Zero(),
		PendingGain: wad.Zero(),
	}

	d, ok := p.deposits[depositor]
	if !ok {
		return pos
	}

	compounded, gain := p.position(d)
	pos.Compounded = compounded
	pos.PendingGain = wad.Add(d.CollateralGain, gain)
	pos.LastUpdatedAt = d.Timestamp
	return pos
}

// Checkpoint implements txn.Participant
func (p *Pool) Checkpoint() func() {
	engine, epoch, scale := p.engine, p.epoch, p.scale
	pp, total := p.p.Clone(), p.total.Clone()

	sums := make(map[epochScale]*uint256.Int, len(p.sums))
	for k, v := range p.sums {
		sums[k] = v.Clone()
	}

	deposits := make(map[core.Address]*core.PoolDeposit, len(p.deposits))
	for k, v := range p.deposits {
		deposits[k] = v.Clone()
	}

	return func() {
		p.engine, p.epoch, p.scale = engine, epoch, scale
		p.p, p.total = pp, total
		p.sums = sums
		p.deposits = deposits
	}
}
