package core

import (
	"context"

	"github.com/holiman/uint256"
)

// LiquidationCommit hidden bid secured by a deposit
type LiquidationCommit struct {
	Liquidator Address      `json:"liquidator"`
	Vault      Address      `json:"vault"`
	CommitHash [32]byte     `json:"commit_hash"`
	CommitTime int64        `json:"commit_time"`
	Deposit    *uint256.Int `json:"deposit"`
	Revealed   bool         `json:"revealed"`
	Round      uint64       `json:"round"`
}

// LiquidationBid revealed bid
type LiquidationBid struct {
	Liquidator          Address      `json:"liquidator"`
	BidAmount           *uint256.Int `json:"bid_amount"`
	CollateralRequested *uint256.Int `json:"collateral_requested"`
	RevealTime          int64        `json:"reveal_time"`
}

// AuctionPhase derived auction state
type AuctionPhase string

const (
	AuctionInactive         AuctionPhase = "Inactive"
	AuctionCommitting       AuctionPhase = "Committing"
	AuctionRevealing        AuctionPhase = "Revealing"
	AuctionFinalizable      AuctionPhase = "Finalizable"
	AuctionExecuted         AuctionPhase = "Executed"
	AuctionFallbackExecuted AuctionPhase = "FallbackExecuted"
)

// Auction per vault batch auction
type Auction struct {
	Vault          Address      `json:"vault"`
	Round          uint64       `json:"round"`
	StartTime      int64        `json:"start_time"`
	AuctionEndTime int64        `json:"auction_end_time"`
	Executed       bool         `json:"executed"`
	Fallback       bool         `json:"fallback"`
	Winner         Address      `json:"winner,omitempty"`
	Phase          AuctionPhase `json:"phase"`
}

// LiquidationParams effective engine parameters for bidder tooling
type LiquidationParams struct {
	MinCommitPeriod      int64        `json:"min_commit_period"`
	MaxCommitPeriod      int64        `json:"max_commit_period"`
	AuctionDuration      int64        `json:"auction_duration"`
	TotalAuctionTimeout  int64        `json:"total_auction_timeout"`
	FinalizeGracePeriod  int64        `json:"finalize_grace_period"`
	MinDeposit           *uint256.Int `json:"min_deposit"`
	DepositRatio         *uint256.Int `json:"deposit_ratio"`
	MaxBidsPerAuction    int          `json:"max_bids_per_auction"`
	LiquidationThreshold *uint256.Int `json:"liquidation_threshold"`
	MaxLiquidationRatio  *uint256.Int `json:"max_liquidation_ratio"`
	LiquidatorBonus      *uint256.Int `json:"liquidator_bonus"`
	LiquidationPenalty   *uint256.Int `json:"liquidation_penalty"`
}

// ILiquidationEngine commit-reveal batch auction
type ILiquidationEngine interface {
	CommitLiquidation(ctx context.Context, liquidator, vault Address, commitHash [32]byte, deposit *uint256.Int) error
	RevealLiquidation(ctx context.Context, liquidator, vault Address, bidAmount, collateralRequested *uint256.Int, salt [32]byte) error
	FinalizeAuction(ctx context.Context, vault Address) error
	ClaimRefund(ctx context.Context, liquidator, vault Address) error
	WithdrawRefund(ctx context.Context, liquidator Address) (*uint256.Int, error)
	CleanupBids(ctx context.Context, vault Address) error

	GetAuction(ctx context.Context, vault Address) (*Auction, bool)
	GetCommitment(ctx context.Context, liquidator, vault Address) (*LiquidationCommit, bool)
	GetVaultBids(ctx context.Context, vault Address) []*LiquidationBid
	PendingRefund(ctx context.Context, liquidator Address) *uint256.Int
	RequiredDeposit(ctx context.Context, vault Address) *uint256.Int
	Params() *LiquidationParams
	Auctions(ctx context.Context) []*Auction
}
