// Package yield translates yield bearing wrapper units into underlying value.
//
// Adapters report the exchange rate as underlying per wrapper unit at WAD
// scale. Guard wraps any adapter with the slashing policy: a rate drop larger
// than the threshold is reported before the rate is handed out, and a failed
// report withholds the rate entirely.
package yield

import (
	"context"

	"stablevault/core"
	"stablevault/pkg/wad"

	"github.com/holiman/uint256"
)

func underlying(ctx context.Context, a core.YieldAdapter, wrapperAmount *uint256.Int) (*uint256.Int, error) {
	rate, err := a.GetExchangeRate(ctx)
	if err != nil {
		return nil, err
	}

	return wad.Mul(wrapperAmount, rate), nil
}

func wrapper(ctx context.Context, a core.YieldAdapter, underlyingAmount *uint256.Int) (*uint256.Int, error) {
	rate, err := a.GetExchangeRate(ctx)
	if err != nil {
		return nil, err
	}

	if rate.IsZero() {
		return wad.Zero(), nil
	}

	return wad.Div(underlyingAmount, rate), nil
}

// Wrapped non-rebasing wrapper whose rate is read from the wrapping contract
type Wrapped struct {
	rate *uint256.Int
}

// NewWrapped wrapped adapter starting at rate
func NewWrapped(rate *uint256.Int) *Wrapped {
	return &Wrapped{rate: rate.Clone()}
}

// SetRate records a new rate reported by the wrapper
func (w *Wrapped) SetRate(rate *uint256.Int) {
	w.rate = rate.Clone()
}

func (w *Wrapped) GetExchangeRate(_ context.Context) (*uint256.Int, error) {
	return w.rate.Clone(), nil
}

func (w *Wrapped) GetUnderlyingAmount(ctx context.Context, wrapperAmount *uint256.Int) (*uint256.Int, error) {
	return underlying(ctx, w, wrapperAmount)
}

func (w *Wrapped) GetWrapperAmount(ctx context.Context, underlyingAmount *uint256.Int) (*uint256.Int, error) {
	return wrapper(ctx, w, underlyingAmount)
}

// Rebasing share based token, the rate is pooled underlying per share
type Rebasing struct {
	pooled *uint256.Int
	shares *uint256.Int
}

// NewRebasing rebasing adapter over pooled underlying and outstanding shares
func NewRebasing(pooled, shares *uint256.Int) *Rebasing {
	return &Rebasing{pooled: pooled.Clone(), shares: shares.Clone()}
}

// Rebase sets the pooled underlying after a rebase
func (r *Rebasing) Rebase(pooled *uint256.Int) {
	r.pooled = pooled.Clone()
}

func (r *Rebasing) GetExchangeRate(_ context.Context) (*uint256.Int, error) {
	if r.shares.IsZero() {
		return wad.WAD.Clone(), nil
	}

	return wad.Div(r.pooled, r.shares), nil
}

func (r *Rebasing) GetUnderlyingAmount(ctx context.Context, wrapperAmount *uint256.Int) (*uint256.Int, error) {
	return underlying(ctx, r, wrapperAmount)
}

func (r *Rebasing) GetWrapperAmount(ctx context.Context, underlyingAmount *uint256.Int) (*uint256.Int, error) {
	return wrapper(ctx, r, underlyingAmount)
}

// Mock settable rate and failure
type Mock struct {
	Rate *uint256.Int
	Err  error
}

// NewMock mock adapter at a 1:1 rate
func NewMock() *Mock {
	return &Mock{Rate: wad.WAD.Clone()}
}

func (m *Mock) GetExchangeRate(_ context.Context) (*uint256.Int, error) {
	if m.Err != nil {
		return nil, m.Err
	}

	return m.Rate.Clone(), nil
}

func (m *Mock) GetUnderlyingAmount(ctx context.Context, wrapperAmount *uint256.Int) (*uint256.Int, error) {
	return underlying(ctx, m, wrapperAmount)
}

func (m *Mock) GetWrapperAmount(ctx context.Context, underlyingAmount *uint256.Int) (*uint256.Int, error) {
	return wrapper(ctx, m, underlyingAmount)
}
