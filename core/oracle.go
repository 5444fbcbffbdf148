package core

import (
	"context"
	"math/big"
	"time"

	"github.com/holiman/uint256"
)

// Quote latest answer reported by an external feed
type Quote struct {
	Answer    *big.Int `json:"answer"`
	UpdatedAt int64    `json:"updated_at"`
	Decimals  uint8    `json:"decimals"`
}

// PriceFeed external price source
type PriceFeed interface {
	LatestQuote(ctx context.Context, asset Asset) (*Quote, error)
}

// PriceObservation one slot of the observation ring
type PriceObservation struct {
	Timestamp       int64        `json:"timestamp"`
	Price           *uint256.Int `json:"price"`
	CumulativePrice *uint256.Int `json:"cumulative_price"`
}

// IOracleService spot and time weighted prices at 8 decimals
type IOracleService interface {
	SetPriceFeed(ctx context.Context, caller Address, asset Asset, feed PriceFeed) error
	// GetPrice validated spot price, records an observation once the cooldown elapsed
	GetPrice(ctx context.Context, asset Asset) (*uint256.Int, error)
	// GetPriceView GetPrice without recording
	GetPriceView(ctx context.Context, asset Asset) (*uint256.Int, error)
	UpdatePriceObservation(ctx context.Context, asset Asset) error
	GetTWAP(ctx context.Context, asset Asset, period time.Duration) (*uint256.Int, error)
	Observations(ctx context.Context, asset Asset) []*PriceObservation
}
