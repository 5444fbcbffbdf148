package core

import (
	"context"

	"github.com/holiman/uint256"
)

// Vault one borrower position
type Vault struct {
	Owner            Address      `json:"owner"`
	Collateral       *uint256.Int `json:"collateral"`
	Debt             *uint256.Int `json:"debt"`
	LastAccrual      int64        `json:"last_accrual"`
	LastExchangeRate *uint256.Int `json:"last_exchange_rate"`
	// discrete time step of the latest borrow, 0 before the first borrow
	LastBorrowBlock int64 `json:"last_borrow_block"`
	HasBorrowed     bool  `json:"has_borrowed"`
	LastLiquidation int64 `json:"last_liquidation"`
	// time of the latest interest posting large enough to arm the liquidation grace period
	LastInterestPosted int64 `json:"last_interest_posted"`
}

// NewVault empty vault
func NewVault(owner Address) *Vault {
	return &Vault{
		Owner:            owner,
		Collateral:       new(uint256.Int),
		Debt:             new(uint256.Int),
		LastExchangeRate: new(uint256.Int),
	}
}

// Clone deep copy
func (v *Vault) Clone() *Vault {
	c := *v
	c.Collateral = new(uint256.Int).Set(v.Collateral)
	c.Debt = new(uint256.Int).Set(v.Debt)
	c.LastExchangeRate = new(uint256.Int).Set(v.LastExchangeRate)
	return &c
}

// PriceSource price used to value collateral
type PriceSource string

const (
	PriceSourceNone PriceSource = "none"
	PriceSourceTWAP PriceSource = "twap"
	PriceSourceSpot PriceSource = "spot"
)

// HealthRatio collateral value over debt in WAD, and the price it was computed with
type HealthRatio struct {
	Value  *uint256.Int `json:"value"`
	Source PriceSource  `json:"source"`
	Price  *uint256.Int `json:"price,omitempty"`
}

// SystemHealth aggregate protocol accounting
type SystemHealth struct {
	TotalDebt          *uint256.Int `json:"total_debt"`
	StableReserves     *uint256.Int `json:"stable_reserves"`
	CollateralReserves *uint256.Int `json:"collateral_reserves"`
	BadDebt            *uint256.Int `json:"bad_debt"`
	Solvency           *uint256.Int `json:"solvency"`
	StableSupply       *uint256.Int `json:"stable_supply,omitempty"`
	SlashedRevenue     *uint256.Int `json:"slashed_revenue,omitempty"`
	PoolDeposits       *uint256.Int `json:"pool_deposits,omitempty"`
	VaultPaused        bool         `json:"vault_paused"`
	EmergencyPaused    bool         `json:"emergency_paused"`
	CircuitBreaker     bool         `json:"circuit_breaker"`
}

// IVaultService vault manager as seen by the liquidation engine and the api
type IVaultService interface {
	GetVault(ctx context.Context, owner Address) *Vault
	GetHealthRatio(ctx context.Context, owner Address) (*HealthRatio, error)
	// CheckLiquidatable current debt of a vault eligible for liquidation, valued at the TWAP only
	CheckLiquidatable(ctx context.Context, owner Address) (*uint256.Int, error)
	Liquidate(ctx context.Context, caller, owner Address, debtToRepay *uint256.Int) (repaid, seized *uint256.Int, err error)
	AccrueYield(ctx context.Context, owner Address) error
	Owners(ctx context.Context) []Address
	SystemHealth(ctx context.Context) *SystemHealth
}
