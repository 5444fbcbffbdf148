package liquidation

import (
	"context"

	"stablevault/core"
	"stablevault/pkg/wad"

	"github.com/fox-one/pkg/logger"
	"github.com/holiman/uint256"
	"golang.org/x/crypto/sha3"
)

// CommitHash keccak256 commitment over vault, liquidator, bid amount, requested collateral and salt.
// Addresses are NUL terminated and amounts big-endian 32 bytes.
func CommitHash(vault, liquidator core.Address, bidAmount, collateralRequested *uint256.Int, salt [32]byte) [32]byte {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(vault))
	h.Write([]byte{0})
	h.Write([]byte(liquidator))
	h.Write([]byte{0})

	bid := bidAmount.Bytes32()
	coll := collateralRequested.Bytes32()
	h.Write(bid[:])
	h.Write(coll[:])
	h.Write(salt[:])

	var out [32]byte
	h.Sum(out[:0])
	return out
}

// RequiredDeposit max(MinDeposit, debt * DepositRatio)
func RequiredDeposit(debt, minDeposit, ratio *uint256.Int) *uint256.Int {
	return wad.MaxOf(minDeposit, wad.MulUp(debt, ratio))
}

func (e *Engine) RequiredDeposit(ctx context.Context, vault core.Address) *uint256.Int {
	debt := e.vaults.GetVault(ctx, vault).Debt
	return RequiredDeposit(wad.OrZero(debt), e.cfg.MinDeposit, e.cfg.DepositRatio)
}

func (e *Engine) expired(c *core.LiquidationCommit, now int64) bool {
	return now > c.CommitTime+e.cfg.MaxCommitPeriod
}

func (e *Engine) slash(ctx context.Context, c *core.LiquidationCommit) {
	amount := c.Deposit
	c.Deposit = wad.Zero()
	e.slashedRevenue = wad.Add(e.slashedRevenue, amount)

	logger.FromContext(ctx).WithField("vault", c.Vault).Warnf("liquidation: slashed %s unrevealed deposit of %s", amount.Dec(), c.Liquidator)
	core.Emit(ctx, core.NewEvent(core.EventDepositSlashed, c.Vault, c.Liquidator, amount, core.NewEventData().Put("round", c.Round)))
}

func (e *Engine) credit(ctx context.Context, c *core.LiquidationCommit) {
	amount := c.Deposit
	c.Deposit = wad.Zero()
	e.refunds[c.Liquidator] = wad.Add(wad.OrZero(e.refunds[c.Liquidator]), amount)

	core.Emit(ctx, core.NewEvent(core.EventRefundCredited, c.Vault, c.Liquidator, amount, core.NewEventData().Put("round", c.Round)))
}

// CommitLiquidation posts a sealed bid on a liquidatable vault, opening an auction if none is running
func (e *Engine) CommitLiquidation(ctx context.Context, liquidator, vault core.Address, commitHash [32]byte, deposit *uint256.Int) error {
	if core.Halted(ctx, e.guard) {
		return core.ErrPaused
	}

	if commitHash == ([32]byte{}) {
		return core.ErrInvalidCommitmentHash
	}

	debt, err := e.vaults.CheckLiquidatable(ctx, vault)
	if err != nil {
		return err
	}

	if deposit.Lt(RequiredDeposit(debt, e.cfg.MinDeposit, e.cfg.DepositRatio)) {
		return core.ErrInsufficientDeposit
	}

	now := e.now(ctx)
	log := logger.FromContext(ctx).WithField("vault", vault)

	a, ok := e.auctions[vault]
	switch {
	case !ok || a.Executed:
		round := uint64(1)
		if ok {
			round = a.Round + 1
			delete(e.bids, vault)
		}

		a = &core.Auction{
			Vault:          vault,
			Round:          round,
			StartTime:      now,
			AuctionEndTime: now + e.cfg.AuctionDuration,
		}
		e.auctions[vault] = a

		log.Infof("liquidation: auction round %d started", round)
		core.Emit(ctx, core.NewEvent(core.EventAuctionStarted, vault, liquidator, debt, core.NewEventData().
			Put("round", round).
			Put("auction_end_time", a.AuctionEndTime)))
	case now > a.AuctionEndTime:
		return core.ErrAuctionNotActive
	}

	key := commitKey{liquidator: liquidator, vault: vault}
	if c, ok := e.commits[key]; ok && !c.Deposit.IsZero() {
		switch {
		case !c.Revealed && !e.expired(c, now):
			return core.ErrCommitmentAlreadyRevealed
		case !c.Revealed:
			e.slash(ctx, c)
		case c.Round == a.Round:
			return core.ErrCommitmentAlreadyRevealed
		default:
			// revealed in an earlier, resolved round and never claimed
			e.credit(ctx, c)
		}
	}

	e.commits[key] = &core.LiquidationCommit{
		Liquidator: liquidator,
		Vault:      vault,
		CommitHash: commitHash,
		CommitTime: now,
		Deposit:    deposit.Clone(),
		Round:      a.Round,
	}

	core.Emit(ctx, core.NewEvent(core.EventLiquidationCommitted, vault, liquidator, deposit, core.NewEventData().Put("round", a.Round)))
	return e.bond.Transfer(ctx, liquidator, e.self, deposit)
}

// RevealLiquidation opens a commitment and appends its bid to the running auction
func (e *Engine) RevealLiquidation(ctx context.Context, liquidator, vault core.Address, bidAmount, collateralRequested *uint256.Int, salt [32]byte) error {
	c, ok := e.commits[commitKey{liquidator: liquidator, vault: vault}]
	if !ok || (c.Deposit.IsZero() && !c.Revealed) {
		return core.ErrCommitmentNotFound
	}

	if c.Revealed {
		return core.ErrCommitmentAlreadyRevealed
	}

	now := e.now(ctx)
	if now-c.CommitTime < e.cfg.MinCommitPeriod {
		return core.ErrRevealTooEarly
	}

	if e.expired(c, now) {
		return core.ErrCommitmentExpired
	}

	if CommitHash(vault, liquidator, bidAmount, collateralRequested, salt) != c.CommitHash {
		return core.ErrInvalidCommitmentHash
	}

	a, ok := e.auctions[vault]
	if !ok || a.Round != c.Round {
		return core.ErrAuctionNotActive
	}

	if a.Executed {
		return core.ErrAuctionAlreadyExecuted
	}

	if now > a.AuctionEndTime {
		return core.ErrAuctionNotActive
	}

	if len(e.bids[vault]) >= e.cfg.MaxBidsPerAuction {
		return core.ErrTooManyBids
	}

	if bidAmount.IsZero() || collateralRequested.IsZero() {
		return core.ErrZeroAmount
	}

	if err := e.payable(ctx, liquidator, bidAmount); err != nil {
		return err
	}

	c.Revealed = true
	e.bids[vault] = append(e.bids[vault], &core.LiquidationBid{
		Liquidator:          liquidator,
		BidAmount:           bidAmount.Clone(),
		CollateralRequested: collateralRequested.Clone(),
		RevealTime:          now,
	})

	core.Emit(ctx, core.NewEvent(core.EventLiquidationRevealed, vault, liquidator, bidAmount, core.NewEventData().
		Put("collateral_requested", collateralRequested).
		Put("round", a.Round)))
	return nil
}

// payable bidder holds and has approved at least amount of stablecoin
func (e *Engine) payable(ctx context.Context, bidder core.Address, amount *uint256.Int) error {
	if e.stable.BalanceOf(ctx, bidder).Lt(amount) {
		return core.ErrInsufficientBalance
	}

	if e.stable.Allowance(ctx, bidder, e.self).Lt(amount) {
		return core.ErrInsufficientAllowance
	}

	return nil
}
