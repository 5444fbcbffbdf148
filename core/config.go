package core

import (
	"github.com/fox-one/pkg/store/db"
)

// Config stablevault config
type Config struct {
	App         App         `json:"app"`
	DB          db.Config   `json:"db"`
	Oracle      OracleConf  `json:"oracle"`
	Vault       VaultConf   `json:"vault"`
	Liquidation AuctionConf `json:"liquidation"`
	Yield       YieldConf   `json:"yield"`
	Admins      []string    `json:"admins"`
}

// IsAdmin check if the user is admin
func (c *Config) IsAdmin(userID string) bool {
	if len(c.Admins) <= 0 {
		return false
	}

	for _, a := range c.Admins {
		if a == userID {
			return true
		}
	}

	return false
}

// App app config
type App struct {
	Owner           string `json:"owner"`
	CollateralAsset string `json:"collateral_asset"`
	StableAsset     string `json:"stable_asset"`
	BondAsset       string `json:"bond_asset"`
	SecondsPerBlock int64  `json:"seconds_per_block"`
	Genesis         int64  `json:"genesis"`
	VaultAddress    string `json:"vault_address"`
	EngineAddress   string `json:"engine_address"`
	PoolAddress     string `json:"pool_address"`
}

// OracleConf price oracle config, periods in seconds
type OracleConf struct {
	MaxPriceAge       int64      `json:"max_price_age"`
	UpdateCooldown    int64      `json:"update_cooldown"`
	MaxObservationAge int64      `json:"max_observation_age"`
	CacheTTL          int64      `json:"cache_ttl"`
	Feeds             []FeedConf `json:"feeds"`
}

// FeedConf price source of one asset, an http endpoint or a fixed price
type FeedConf struct {
	Asset       string `json:"asset"`
	EndPoint    string `json:"end_point"`
	StaticPrice string `json:"static_price"`
}

// VaultConf vault parameters, ratios and amounts as decimal strings
type VaultConf struct {
	MinCollateralRatio   string `json:"min_collateral_ratio"`
	LiquidationThreshold string `json:"liquidation_threshold"`
	MinDebt              string `json:"min_debt"`
	BorrowAPR            string `json:"borrow_apr"`
	MaxBorrowAPR         string `json:"max_borrow_apr"`
	MaxBorrowAPRDelta    string `json:"max_borrow_apr_delta"`
	ProtocolFee          string `json:"protocol_fee"`
	LiquidatorBonus      string `json:"liquidator_bonus"`
	LiquidationPenalty   string `json:"liquidation_penalty"`
	MaxLiquidationRatio  string `json:"max_liquidation_ratio"`
	// DustThreshold base units, not a decimal amount
	DustThreshold       uint64 `json:"dust_threshold"`
	LiquidationCooldown int64  `json:"liquidation_cooldown"`
	InterestGracePeriod int64  `json:"interest_grace_period"`
	TWAPPeriod          int64  `json:"twap_period"`
}

// AuctionConf liquidation engine parameters
type AuctionConf struct {
	MinCommitPeriod     int64  `json:"min_commit_period"`
	MaxCommitPeriod     int64  `json:"max_commit_period"`
	AuctionDuration     int64  `json:"auction_duration"`
	TotalAuctionTimeout int64  `json:"total_auction_timeout"`
	FinalizeGracePeriod int64  `json:"finalize_grace_period"`
	BidRetention        int64  `json:"bid_retention"`
	MinDeposit          string `json:"min_deposit"`
	DepositRatio        string `json:"deposit_ratio"`
	MaxBidsPerAuction   int    `json:"max_bids_per_auction"`
}

// YieldConf collateral yield adapter, kind is wrapped, rebasing or empty for plain collateral
type YieldConf struct {
	Kind              string `json:"kind"`
	Rate              string `json:"rate"`
	PooledUnderlying  string `json:"pooled_underlying"`
	TotalShares       string `json:"total_shares"`
	SlashingThreshold string `json:"slashing_threshold"`
}
