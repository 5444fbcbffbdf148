// Package liquidation runs a sealed-bid auction per undercollateralized vault.
//
// Liquidators commit to a hidden bid with a bonded deposit, reveal it once the
// commit has aged past MinCommitPeriod, and anyone may finalize after the
// auction ends. The bid asking for the least collateral wins. Auctions that
// end without a usable bid, or that outlive TotalAuctionTimeout, fall back to
// the stability pool.
package liquidation

import (
	"context"
	"sort"

	"stablevault/core"
	"stablevault/pkg/wad"

	"github.com/holiman/uint256"
)

// StabilityPool pool that absorbs fallback liquidations
type StabilityPool interface {
	core.IStabilityPool
	Address() core.Address
}

type commitKey struct {
	liquidator core.Address
	vault      core.Address
}

// Engine liquidation engine
type Engine struct {
	cfg        Config
	self       core.Address
	owner      core.Address
	clock      core.Clock
	vaults     core.IVaultService
	stable     core.Stablecoin
	collateral core.Token
	bond       core.Token

	pool  StabilityPool
	guard core.PauseGuard

	auctions       map[core.Address]*core.Auction
	commits        map[commitKey]*core.LiquidationCommit
	bids           map[core.Address][]*core.LiquidationBid
	refunds        map[core.Address]*uint256.Int
	slashedRevenue *uint256.Int
}

// Deps collaborators of the engine
type Deps struct {
	Vaults     core.IVaultService
	Stable     core.Stablecoin
	Collateral core.Token
	// Bond token deposits are posted in
	Bond  core.Token
	Clock core.Clock
}

// New engine holding deposits and in-flight collateral under self
func New(self, owner core.Address, cfg Config, deps Deps) *Engine {
	return &Engine{
		cfg:            cfg,
		self:           self,
		owner:          owner,
		clock:          deps.Clock,
		vaults:         deps.Vaults,
		stable:         deps.Stable,
		collateral:     deps.Collateral,
		bond:           deps.Bond,
		auctions:       map[core.Address]*core.Auction{},
		commits:        map[commitKey]*core.LiquidationCommit{},
		bids:           map[core.Address][]*core.LiquidationBid{},
		refunds:        map[core.Address]*uint256.Int{},
		slashedRevenue: wad.Zero(),
	}
}

// Address account holding deposits
func (e *Engine) Address() core.Address {
	return e.self
}

func (e *Engine) now(ctx context.Context) int64 {
	return core.BlockTime(ctx, e.clock)
}

func (e *Engine) onlyOwner(caller core.Address) error {
	if caller != e.owner {
		return core.ErrNotOwner
	}

	return nil
}

// SetStabilityPool registers the fallback pool
func (e *Engine) SetStabilityPool(ctx context.Context, caller core.Address, pool StabilityPool) error {
	if err := e.onlyOwner(caller); err != nil {
		return err
	}

	if pool == nil {
		return core.ErrInvalidParameter
	}

	e.pool = pool
	core.Emit(ctx, core.NewEvent(core.EventStabilityPoolSet, "", caller, nil, core.NewEventData().Put("pool", pool.Address())))
	return nil
}

// SetPauseGuard installs the emergency pause collaborator, nil removes it
func (e *Engine) SetPauseGuard(ctx context.Context, caller core.Address, guard core.PauseGuard) error {
	if err := e.onlyOwner(caller); err != nil {
		return err
	}

	e.guard = guard
	core.Emit(ctx, core.NewEvent(core.EventPauseGuardSet, "", caller, nil, core.NewEventData().Put("set", guard != nil)))
	return nil
}

// SlashedRevenue forfeited deposits not yet withdrawn
func (e *Engine) SlashedRevenue() *uint256.Int {
	return e.slashedRevenue.Clone()
}

// WithdrawSlashedRevenue moves forfeited deposits to the treasury
func (e *Engine) WithdrawSlashedRevenue(ctx context.Context, caller, to core.Address, amount *uint256.Int) error {
	if err := e.onlyOwner(caller); err != nil {
		return err
	}

	if to.IsZero() {
		return core.ErrInvalidParameter
	}

	if amount.IsZero() {
		return core.ErrZeroAmount
	}

	if amount.Gt(e.slashedRevenue) {
		return core.ErrInsufficientBalance
	}

	e.slashedRevenue = wad.Sub(e.slashedRevenue, amount)
	core.Emit(ctx, core.NewEvent(core.EventSlashedRevenueTaken, "", caller, amount, core.NewEventData().Put("to", to)))
	return e.bond.Transfer(ctx, e.self, to, amount)
}

func (e *Engine) Params() *core.LiquidationParams {
	return &core.LiquidationParams{
		MinCommitPeriod:      e.cfg.MinCommitPeriod,
		MaxCommitPeriod:      e.cfg.MaxCommitPeriod,
		AuctionDuration:      e.cfg.AuctionDuration,
		TotalAuctionTimeout:  e.cfg.TotalAuctionTimeout,
		FinalizeGracePeriod:  e.cfg.FinalizeGracePeriod,
		MinDeposit:           e.cfg.MinDeposit.Clone(),
		DepositRatio:         e.cfg.DepositRatio.Clone(),
		MaxBidsPerAuction:    e.cfg.MaxBidsPerAuction,
		LiquidationThreshold: e.cfg.LiquidationThreshold.Clone(),
		MaxLiquidationRatio:  e.cfg.MaxLiquidationRatio.Clone(),
		LiquidatorBonus:      e.cfg.LiquidatorBonus.Clone(),
		LiquidationPenalty:   e.cfg.LiquidationPenalty.Clone(),
	}
}

// Checkpoint implements txn.Participant
func (e *Engine) Checkpoint() func() {
	pool, guard := e.pool, e.guard
	slashed := e.slashedRevenue.Clone()

	auctions := make(map[core.Address]*core.Auction, len(e.auctions))
	for k, v := range e.auctions {
		a := *v
		auctions[k] = &a
	}

	commits := make(map[commitKey]*core.LiquidationCommit, len(e.commits))
	for k, v := range e.commits {
		c := *v
		c.Deposit = v.Deposit.Clone()
		commits[k] = &c
	}

	// bids are never mutated once appended
	bids := make(map[core.Address][]*core.LiquidationBid, len(e.bids))
	for k, v := range e.bids {
		bids[k] = append([]*core.LiquidationBid(nil), v...)
	}

	refunds := make(map[core.Address]*uint256.Int, len(e.refunds))
	for k, v := range e.refunds {
		refunds[k] = v.Clone()
	}

	return func() {
		e.pool, e.guard = pool, guard
		e.slashedRevenue = slashed
		e.auctions = auctions
		e.commits = commits
		e.bids = bids
		e.refunds = refunds
	}
}

func sortedVaults(auctions map[core.Address]*core.Auction) []core.Address {
	vaults := make([]core.Address, 0, len(auctions))
	for k := range auctions {
		vaults = append(vaults, k)
	}

	sort.Slice(vaults, func(i, j int) bool { return vaults[i] < vaults[j] })
	return vaults
}
