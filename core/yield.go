package core

import (
	"context"

	"github.com/holiman/uint256"
)

// YieldAdapter exchange rate of a yield bearing wrapper, underlying per wrapper unit in WAD
type YieldAdapter interface {
	GetExchangeRate(ctx context.Context) (*uint256.Int, error)
	GetUnderlyingAmount(ctx context.Context, wrapperAmount *uint256.Int) (*uint256.Int, error)
	GetWrapperAmount(ctx context.Context, underlyingAmount *uint256.Int) (*uint256.Int, error)
}

// SlashingReporter receives exchange rate drops beyond the slashing threshold
type SlashingReporter interface {
	ReportSlashing(ctx context.Context, asset Asset, previous, current *uint256.Int) error
}

// PauseGuard emergency pause collaborator
type PauseGuard interface {
	IsPaused(ctx context.Context) bool
	IsCircuitBreakerActive(ctx context.Context) bool
}

// Halted true when guard is set and either paused or tripped
func Halted(ctx context.Context, guard PauseGuard) bool {
	if guard == nil {
		return false
	}

	return guard.IsPaused(ctx) || guard.IsCircuitBreakerActive(ctx)
}
