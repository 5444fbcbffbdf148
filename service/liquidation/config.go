package liquidation

import (
	"stablevault/pkg/wad"

	"github.com/holiman/uint256"
)

// Config engine parameters, periods in seconds
type Config struct {
	MinCommitPeriod     int64
	MaxCommitPeriod     int64
	AuctionDuration     int64
	TotalAuctionTimeout int64
	FinalizeGracePeriod int64
	// BidRetention age after which bids of an unresolved auction may be cleaned up
	BidRetention int64

	MinDeposit        *uint256.Int
	DepositRatio      *uint256.Int
	MaxBidsPerAuction int

	// vault terms, published through Params for bidder tooling
	LiquidationThreshold *uint256.Int
	MaxLiquidationRatio  *uint256.Int
	LiquidatorBonus      *uint256.Int
	LiquidationPenalty   *uint256.Int
}

// DefaultConfig default engine parameters
func DefaultConfig() Config {
	return Config{
		MinCommitPeriod:      2 * 60,
		MaxCommitPeriod:      10 * 60,
		AuctionDuration:      15 * 60,
		TotalAuctionTimeout:  60 * 60,
		FinalizeGracePeriod:  30 * 60,
		BidRetention:         7 * 24 * 3600,
		MinDeposit:           wad.Units(1, 17),
		DepositRatio:         wad.Units(1, 13),
		MaxBidsPerAuction:    50,
		LiquidationThreshold: wad.Percent(120),
		MaxLiquidationRatio:  wad.Percent(50),
		LiquidatorBonus:      wad.Percent(5),
		LiquidationPenalty:   wad.Percent(5),
	}
}
