package liquidation

import (
	"context"

	"stablevault/core"
	"stablevault/pkg/wad"

	"github.com/holiman/uint256"
)

// Phase of a at now
func (e *Engine) Phase(a *core.Auction, now int64) core.AuctionPhase {
	switch {
	case a == nil:
		return core.AuctionInactive
	case a.Executed && a.Fallback:
		return core.AuctionFallbackExecuted
	case a.Executed:
		return core.AuctionExecuted
	case now > a.AuctionEndTime:
		return core.AuctionFinalizable
	case now < a.StartTime+e.cfg.MinCommitPeriod:
		return core.AuctionCommitting
	default:
		return core.AuctionRevealing
	}
}

func (e *Engine) GetAuction(ctx context.Context, vault core.Address) (*core.Auction, bool) {
	a, ok := e.auctions[vault]
	if !ok {
		return nil, false
	}

	c := *a
	c.Phase = e.Phase(a, e.now(ctx))
	return &c, true
}

func (e *Engine) Auctions(ctx context.Context) []*core.Auction {
	auctions := make([]*core.Auction, 0, len(e.auctions))
	for _, vault := range sortedVaults(e.auctions) {
		a, _ := e.GetAuction(ctx, vault)
		auctions = append(auctions, a)
	}

	return auctions
}

func (e *Engine) GetCommitment(_ context.Context, liquidator, vault core.Address) (*core.LiquidationCommit, bool) {
	c, ok := e.commits[commitKey{liquidator: liquidator, vault: vault}]
	if !ok {
		return nil, false
	}

	cp := *c
	cp.Deposit = c.Deposit.Clone()
	return &cp, true
}

func (e *Engine) GetVaultBids(_ context.Context, vault core.Address) []*core.LiquidationBid {
	bids := make([]*core.LiquidationBid, 0, len(e.bids[vault]))
	for _, b := range e.bids[vault] {
		cp := *b
		bids = append(bids, &cp)
	}

	return bids
}

func (e *Engine) PendingRefund(_ context.Context, liquidator core.Address) *uint256.Int {
	return wad.OrZero(e.refunds[liquidator])
}

var _ core.ILiquidationEngine = (*Engine)(nil)
