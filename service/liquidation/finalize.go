package liquidation

import (
	"context"
	"errors"

	"stablevault/core"
	"stablevault/pkg/wad"

	"github.com/fox-one/pkg/logger"
)

// fallback reasons
const (
	reasonTimeout         = "timeout"
	reasonNoBids          = "no_valid_bids"
	reasonNoPool          = "no_pool"
	reasonNoDebt          = "no_debt"
	reasonNotLiquidatable = "not_liquidatable"
	reasonPoolEmpty       = "pool_empty"
)

type settlement struct {
	Round     uint64 `json:"round"`
	Winner    string `json:"winner"`
	Bids      int    `json:"bids"`
	Repaid    string `json:"repaid"`
	Seized    string `json:"seized"`
	Delivered string `json:"delivered"`
	Surplus   string `json:"surplus"`
}

// selectWinner lowest collateral requested among bids whose bidder can still pay, earliest wins ties
func (e *Engine) selectWinner(ctx context.Context, bids []*core.LiquidationBid) (*core.LiquidationBid, int) {
	var winner *core.LiquidationBid
	lapsed := 0

	for _, bid := range bids {
		if err := e.payable(ctx, bid.Liquidator, bid.BidAmount); err != nil {
			lapsed++
			continue
		}

		if winner == nil || bid.CollateralRequested.Lt(winner.CollateralRequested) {
			winner = bid
		}
	}

	return winner, lapsed
}

// FinalizeAuction settles an ended auction with its best bid, or hands the vault to the stability pool
func (e *Engine) FinalizeAuction(ctx context.Context, vault core.Address) error {
	a, ok := e.auctions[vault]
	if !ok {
		return core.ErrAuctionNotActive
	}

	if a.Executed {
		return core.ErrAuctionAlreadyExecuted
	}

	now := e.now(ctx)
	if now <= a.AuctionEndTime {
		return core.ErrAuctionStillOngoing
	}

	if core.Halted(ctx, e.guard) {
		return core.ErrPaused
	}

	if now > a.StartTime+e.cfg.TotalAuctionTimeout {
		return e.fallback(ctx, a, reasonTimeout)
	}

	bids := e.bids[vault]
	winner, lapsed := e.selectWinner(ctx, bids)
	log := logger.FromContext(ctx).WithField("vault", vault)
	if lapsed > 0 {
		log.Warnf("liquidation: %d of %d bids can no longer pay", lapsed, len(bids))
	}

	if winner == nil {
		return e.fallback(ctx, a, reasonNoBids)
	}

	repaid, seized, err := e.vaults.Liquidate(ctx, e.self, vault, winner.BidAmount)
	if err != nil {
		return err
	}

	a.Executed = true
	a.Winner = winner.Liquidator
	if c, ok := e.commits[commitKey{liquidator: winner.Liquidator, vault: vault}]; ok && !c.Deposit.IsZero() {
		e.credit(ctx, c)
	}

	delivered := wad.Min(seized, winner.CollateralRequested)
	surplus := wad.Sub(seized, delivered)

	log.Infof("liquidation: round %d won by %s, repaid %s for %s collateral", a.Round, winner.Liquidator, repaid.Dec(), delivered.Dec())
	core.Emit(ctx, core.NewEvent(core.EventAuctionFinalized, vault, winner.Liquidator, repaid, core.EventDataFrom(settlement{
		Round:     a.Round,
		Winner:    winner.Liquidator.String(),
		Bids:      len(bids),
		Repaid:    repaid.Dec(),
		Seized:    seized.Dec(),
		Delivered: delivered.Dec(),
		Surplus:   surplus.Dec(),
	})))

	if err := e.stable.TransferFrom(ctx, e.self, winner.Liquidator, e.self, repaid); err != nil {
		return err
	}

	if err := e.stable.Burn(ctx, e.self, e.self, repaid); err != nil {
		return err
	}

	if !surplus.IsZero() {
		if err := e.collateral.Transfer(ctx, e.self, vault, surplus); err != nil {
			return err
		}
	}

	return e.collateral.Transfer(ctx, e.self, winner.Liquidator, delivered)
}

func (e *Engine) skip(ctx context.Context, a *core.Auction, reason string) error {
	logger.FromContext(ctx).WithField("vault", a.Vault).Warnf("liquidation: fallback skipped, %s", reason)
	core.Emit(ctx, core.NewEvent(core.EventFallbackSkipped, a.Vault, e.self, nil, core.NewEventData().
		Put("round", a.Round).
		Put("reason", reason)))
	return nil
}

// fallback resolves a, offsetting debt against the stability pool when it can; it never fails on vault or pool state
func (e *Engine) fallback(ctx context.Context, a *core.Auction, reason string) error {
	a.Executed = true
	a.Fallback = true

	logger.FromContext(ctx).WithField("vault", a.Vault).Warnf("liquidation: round %d falls back to the stability pool, %s", a.Round, reason)
	core.Emit(ctx, core.NewEvent(core.EventAuctionFallback, a.Vault, e.self, nil, core.NewEventData().
		Put("round", a.Round).
		Put("reason", reason)))

	if e.pool == nil {
		return e.skip(ctx, a, reasonNoPool)
	}

	if e.vaults.GetVault(ctx, a.Vault).Debt.IsZero() {
		return e.skip(ctx, a, reasonNoDebt)
	}

	debt, err := e.vaults.CheckLiquidatable(ctx, a.Vault)
	if err != nil {
		return e.skip(ctx, a, reasonNotLiquidatable)
	}

	total := e.pool.TotalDeposits(ctx)
	if total.IsZero() {
		return e.skip(ctx, a, reasonPoolEmpty)
	}

	offset := wad.Min(wad.Mul(debt, e.cfg.MaxLiquidationRatio), total)
	repaid, seized, err := e.vaults.Liquidate(ctx, e.self, a.Vault, offset)
	if err != nil {
		if recoverable(err) {
			return e.skip(ctx, a, err.Error())
		}

		return err
	}

	if err := e.collateral.Transfer(ctx, e.self, e.pool.Address(), seized); err != nil {
		return err
	}

	return e.pool.DistributeLiquidation(ctx, e.self, repaid, seized)
}

// recoverable vault side refusals a later liquidation attempt can retry
func recoverable(err error) bool {
	var e *core.Error
	if !errors.As(err, &e) {
		return false
	}

	return e.Kind == core.KindPrecondition || e.Kind == core.KindEnvironmental || errors.Is(err, core.ErrZeroAmount)
}
