package pause

import (
	"context"

	"stablevault/core"

	"github.com/fox-one/pkg/logger"
	"github.com/holiman/uint256"
)

// Breaker emergency pause plus a circuit breaker tripped by slashing reports
type Breaker struct {
	owner  core.Address
	paused bool
	active bool
	reason string
}

// New breaker administered by owner
func New(owner core.Address) *Breaker {
	return &Breaker{owner: owner}
}

func (b *Breaker) IsPaused(_ context.Context) bool {
	return b.paused
}

func (b *Breaker) IsCircuitBreakerActive(_ context.Context) bool {
	return b.active
}

// Reason why the breaker tripped
func (b *Breaker) Reason() string {
	return b.reason
}

// SetPaused pause or unpause
func (b *Breaker) SetPaused(ctx context.Context, caller core.Address, paused bool) error {
	if caller != b.owner {
		return core.ErrNotOwner
	}

	b.paused = paused
	kind := core.EventUnpaused
	if paused {
		kind = core.EventPaused
	}

	core.Emit(ctx, core.NewEvent(kind, "", caller, nil, nil))
	return nil
}

// Reset clears a tripped circuit breaker
func (b *Breaker) Reset(ctx context.Context, caller core.Address) error {
	if caller != b.owner {
		return core.ErrNotOwner
	}

	b.active = false
	b.reason = ""
	return nil
}

// ReportSlashing trips the circuit breaker
func (b *Breaker) ReportSlashing(ctx context.Context, asset core.Asset, previous, current *uint256.Int) error {
	logger.FromContext(ctx).WithField("asset", asset).Warnln("pause: circuit breaker tripped by slashing")

	b.active = true
	b.reason = "slashing:" + string(asset)
	return nil
}

// Checkpoint implements txn.Participant
func (b *Breaker) Checkpoint() func() {
	paused, active, reason := b.paused, b.active, b.reason
	return func() {
		b.paused, b.active, b.reason = paused, active, reason
	}
}
