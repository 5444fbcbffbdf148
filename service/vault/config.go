package vault

import (
	"stablevault/core"
	"stablevault/pkg/wad"

	"github.com/holiman/uint256"
)

// Config vault manager parameters, ratios at WAD scale and periods in seconds
type Config struct {
	CollateralAsset      core.Asset
	MinCollateralRatio   *uint256.Int
	LiquidationThreshold *uint256.Int
	MinDebt              *uint256.Int
	BorrowAPR            *uint256.Int
	MinBorrowAPR         *uint256.Int
	MaxBorrowAPR         *uint256.Int
	MaxBorrowAPRDelta    *uint256.Int
	ProtocolFee          *uint256.Int
	LiquidatorBonus      *uint256.Int
	LiquidationPenalty   *uint256.Int
	MaxLiquidationRatio  *uint256.Int
	// interest larger than this fraction of debt arms the liquidation grace period
	GraceThreshold *uint256.Int
	// vaults whose collateral falls under this many base units after a liquidation have their debt written off
	DustThreshold *uint256.Int

	LiquidationCooldown int64
	InterestGracePeriod int64
	MaxAccrualWindow    int64
	SecondsPerYear      int64
	TWAPPeriod          int64
}

const secondsPerYear = 365 * 24 * 3600

// DefaultConfig protocol defaults
func DefaultConfig(asset core.Asset) Config {
	return Config{
		CollateralAsset:      asset,
		MinCollateralRatio:   wad.Percent(150),
		LiquidationThreshold: wad.Percent(120),
		MinDebt:              wad.Units(100, 18),
		BorrowAPR:            wad.Percent(5),
		MinBorrowAPR:         wad.Zero(),
		MaxBorrowAPR:         wad.Percent(20),
		MaxBorrowAPRDelta:    wad.Percent(2),
		ProtocolFee:          wad.Percent(10),
		LiquidatorBonus:      wad.Percent(5),
		LiquidationPenalty:   wad.Percent(5),
		MaxLiquidationRatio:  wad.Percent(50),
		GraceThreshold:       wad.New(100_000_000_000_000),
		DustThreshold:        wad.New(10),
		LiquidationCooldown:  600,
		InterestGracePeriod:  3600,
		MaxAccrualWindow:     secondsPerYear,
		SecondsPerYear:       secondsPerYear,
		TWAPPeriod:           1800,
	}
}
