package liquidation

import (
	"context"

	"stablevault/core"
	"stablevault/pkg/wad"

	"github.com/holiman/uint256"
)

// ClaimRefund resolves liquidator's deposit on vault: expired unrevealed deposits are slashed,
// deposits of losing or abandoned auctions move to the refund balance
func (e *Engine) ClaimRefund(ctx context.Context, liquidator, vault core.Address) error {
	c, ok := e.commits[commitKey{liquidator: liquidator, vault: vault}]
	if !ok || c.Deposit.IsZero() {
		return core.ErrNoRefundAvailable
	}

	now := e.now(ctx)
	if !c.Revealed {
		if !e.expired(c, now) {
			return core.ErrNoRefundAvailable
		}

		e.slash(ctx, c)
		return nil
	}

	a := e.auctions[vault]
	switch {
	case a == nil, a.Round > c.Round:
	case a.Executed && a.Winner != liquidator:
	case !a.Executed && now > a.AuctionEndTime+e.cfg.FinalizeGracePeriod:
	default:
		return core.ErrNoRefundAvailable
	}

	e.credit(ctx, c)
	return nil
}

// WithdrawRefund pays out liquidator's whole refund balance
func (e *Engine) WithdrawRefund(ctx context.Context, liquidator core.Address) (*uint256.Int, error) {
	amount := wad.OrZero(e.refunds[liquidator])
	if amount.IsZero() {
		return nil, core.ErrNoRefundAvailable
	}

	delete(e.refunds, liquidator)
	core.Emit(ctx, core.NewEvent(core.EventRefundWithdrawn, "", liquidator, amount, nil))
	if err := e.bond.Transfer(ctx, e.self, liquidator, amount); err != nil {
		return nil, err
	}

	return amount, nil
}

// CleanupBids drops the bid list of a resolved or stale auction along with its settled commitments
func (e *Engine) CleanupBids(ctx context.Context, vault core.Address) error {
	a, ok := e.auctions[vault]
	if !ok {
		return core.ErrAuctionNotActive
	}

	if !a.Executed && e.now(ctx) <= a.StartTime+e.cfg.BidRetention {
		return core.ErrCleanupNotAllowed
	}

	bids := len(e.bids[vault])
	delete(e.bids, vault)

	commits := 0
	for k, c := range e.commits {
		if k.vault == vault && c.Deposit.IsZero() {
			delete(e.commits, k)
			commits++
		}
	}

	core.Emit(ctx, core.NewEvent(core.EventBidsCleaned, vault, "", nil, core.NewEventData().
		Put("round", a.Round).
		Put("bids", bids).
		Put("commitments", commits)))
	return nil
}
