package feed

import (
	"context"
	"math/big"
	"sync"

	"stablevault/core"
)

// StaticFeed settable quotes, an UpdatedAt of zero always reports the current block time
type StaticFeed struct {
	mu     sync.RWMutex
	quotes map[core.Asset]core.Quote
}

// NewStatic empty static feed
func NewStatic() *StaticFeed {
	return &StaticFeed{quotes: map[core.Asset]core.Quote{}}
}

// Set replaces the quote of asset
func (f *StaticFeed) Set(asset core.Asset, answer *big.Int, updatedAt int64, decimals uint8) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.quotes[asset] = core.Quote{
		Answer:    new(big.Int).Set(answer),
		UpdatedAt: updatedAt,
		Decimals:  decimals,
	}
}

// SetPrice always fresh quote at 8 decimals
func (f *StaticFeed) SetPrice(asset core.Asset, answer int64) {
	f.Set(asset, big.NewInt(answer), 0, 8)
}

func (f *StaticFeed) LatestQuote(ctx context.Context, asset core.Asset) (*core.Quote, error) {
	f.mu.RLock()
	q, ok := f.quotes[asset]
	f.mu.RUnlock()

	if !ok {
		return nil, core.ErrFeedUnavailable
	}

	if q.UpdatedAt == 0 {
		q.UpdatedAt = core.BlockTime(ctx, nil)
	}

	q.Answer = new(big.Int).Set(q.Answer)
	return &q, nil
}
