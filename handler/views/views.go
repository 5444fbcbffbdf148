package views

import (
	"encoding/hex"

	"stablevault/core"
	"stablevault/pkg/number"

	"github.com/shopspring/decimal"
)

// Default default view
type Default struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// DefaultSuccess default success view
var DefaultSuccess = Default{
	Code:    0,
	Message: "success",
}

// Vault vault view, amounts in token units
type Vault struct {
	Owner           core.Address     `json:"owner"`
	Collateral      decimal.Decimal  `json:"collateral"`
	Underlying      decimal.Decimal  `json:"underlying"`
	Debt            decimal.Decimal  `json:"debt"`
	HealthRatio     *decimal.Decimal `json:"health_ratio,omitempty"`
	PriceSource     core.PriceSource `json:"price_source"`
	Price           *decimal.Decimal `json:"price,omitempty"`
	LastAccrual     int64            `json:"last_accrual"`
	LastLiquidation int64            `json:"last_liquidation,omitempty"`
}

// Bid revealed bid
type Bid struct {
	Liquidator          core.Address    `json:"liquidator"`
	BidAmount           decimal.Decimal `json:"bid_amount"`
	CollateralRequested decimal.Decimal `json:"collateral_requested"`
	RevealTime          int64           `json:"reveal_time"`
}

// Auction auction view with its revealed bids
type Auction struct {
	core.Auction
	RequiredDeposit decimal.Decimal `json:"required_deposit"`
	Bids            []Bid           `json:"bids,omitempty"`
}

// Commitment sealed bid, the hash is hex encoded
type Commitment struct {
	Liquidator core.Address    `json:"liquidator"`
	Vault      core.Address    `json:"vault"`
	CommitHash string          `json:"commit_hash"`
	CommitTime int64           `json:"commit_time"`
	Deposit    decimal.Decimal `json:"deposit"`
	Revealed   bool            `json:"revealed"`
	Round      uint64          `json:"round"`
}

// Position stability pool position
type Position struct {
	Depositor     core.Address    `json:"depositor"`
	Compounded    decimal.Decimal `json:"compounded"`
	PendingGain   decimal.Decimal `json:"pending_gain"`
	LastUpdatedAt int64           `json:"last_updated_at"`
}

// Price oracle view of one asset
type Price struct {
	Asset        core.Asset       `json:"asset"`
	Price        *decimal.Decimal `json:"price,omitempty"`
	TWAP         *decimal.Decimal `json:"twap,omitempty"`
	Observations []Observation    `json:"observations"`
}

// Observation recorded price sample
type Observation struct {
	Price     decimal.Decimal `json:"price"`
	Timestamp int64           `json:"timestamp"`
}

// System aggregate accounting
type System struct {
	TotalDebt          decimal.Decimal `json:"total_debt"`
	StableReserves     decimal.Decimal `json:"stable_reserves"`
	CollateralReserves decimal.Decimal `json:"collateral_reserves"`
	BadDebt            decimal.Decimal `json:"bad_debt"`
	Solvency           decimal.Decimal `json:"solvency"`
	StableSupply       decimal.Decimal `json:"stable_supply"`
	SlashedRevenue     decimal.Decimal `json:"slashed_revenue"`
	PoolDeposits       decimal.Decimal `json:"pool_deposits"`
	VaultPaused        bool            `json:"vault_paused"`
	EmergencyPaused    bool            `json:"emergency_paused"`
	CircuitBreaker     bool            `json:"circuit_breaker"`
}

// PriceDecimal renders an oracle price
func PriceDecimal(p *core.HealthRatio) *decimal.Decimal {
	if p == nil || p.Price == nil {
		return nil
	}

	d := number.FromUnits(p.Price, 8)
	return &d
}

// VaultView vault with its health, h may be nil when no price is available
func VaultView(v *core.Vault, underlying decimal.Decimal, h *core.HealthRatio) Vault {
	view := Vault{
		Owner:           v.Owner,
		Collateral:      number.FromWad(v.Collateral),
		Underlying:      underlying,
		Debt:            number.FromWad(v.Debt),
		PriceSource:     core.PriceSourceNone,
		LastAccrual:     v.LastAccrual,
		LastLiquidation: v.LastLiquidation,
	}

	if h != nil {
		view.PriceSource = h.Source
		view.Price = PriceDecimal(h)
		if h.Value != nil && !v.Debt.IsZero() {
			ratio := number.FromWad(h.Value)
			view.HealthRatio = &ratio
		}
	}

	return view
}

// BidView revealed bid
func BidView(b *core.LiquidationBid) Bid {
	return Bid{
		Liquidator:          b.Liquidator,
		BidAmount:           number.FromWad(b.BidAmount),
		CollateralRequested: number.FromWad(b.CollateralRequested),
		RevealTime:          b.RevealTime,
	}
}

// CommitmentView sealed bid
func CommitmentView(c *core.LiquidationCommit) Commitment {
	return Commitment{
		Liquidator: c.Liquidator,
		Vault:      c.Vault,
		CommitHash: "0x" + hex.EncodeToString(c.CommitHash[:]),
		CommitTime: c.CommitTime,
		Deposit:    number.FromWad(c.Deposit),
		Revealed:   c.Revealed,
		Round:      c.Round,
	}
}

// PositionView pool position
func PositionView(p *core.PoolPosition) Position {
	return Position{
		Depositor:     p.Depositor,
		Compounded:    number.FromWad(p.Compounded),
		PendingGain:   number.FromWad(p.PendingGain),
		LastUpdatedAt: p.LastUpdatedAt,
	}
}

// SystemView aggregate accounting
func SystemView(h *core.SystemHealth) System {
	return System{
		TotalDebt:          number.FromWad(h.TotalDebt),
		StableReserves:     number.FromWad(h.StableReserves),
		CollateralReserves: number.FromWad(h.CollateralReserves),
		BadDebt:            number.FromWad(h.BadDebt),
		Solvency:           number.FromWad(h.Solvency),
		StableSupply:       number.FromWad(h.StableSupply),
		SlashedRevenue:     number.FromWad(h.SlashedRevenue),
		PoolDeposits:       number.FromWad(h.PoolDeposits),
		VaultPaused:        h.VaultPaused,
		EmergencyPaused:    h.EmergencyPaused,
		CircuitBreaker:     h.CircuitBreaker,
	}
}
