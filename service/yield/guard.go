package yield

import (
	"context"
	"fmt"

	"stablevault/core"
	"stablevault/pkg/wad"

	"github.com/fox-one/pkg/logger"
	"github.com/holiman/uint256"
)

// DefaultSlashingThreshold 5%
var DefaultSlashingThreshold = wad.Percent(5)

// Guarded adapter applying the slashing policy
type Guarded struct {
	core.YieldAdapter
	asset     core.Asset
	threshold *uint256.Int
	reporter  core.SlashingReporter
	last      *uint256.Int
}

// Guard wraps adapter, drops beyond threshold are reported to reporter
func Guard(adapter core.YieldAdapter, asset core.Asset, threshold *uint256.Int, reporter core.SlashingReporter) *Guarded {
	if threshold == nil {
		threshold = DefaultSlashingThreshold
	}

	return &Guarded{
		YieldAdapter: adapter,
		asset:        asset,
		threshold:    threshold.Clone(),
		reporter:     reporter,
	}
}

// LastRate latest rate handed out, nil before the first read
func (g *Guarded) LastRate() *uint256.Int {
	if g.last == nil {
		return nil
	}

	return g.last.Clone()
}

func (g *Guarded) GetExchangeRate(ctx context.Context) (*uint256.Int, error) {
	rate, err := g.YieldAdapter.GetExchangeRate(ctx)
	if err != nil {
		return nil, err
	}

	if g.last != nil && rate.Lt(g.last) {
		drop := wad.Div(wad.Sub(g.last, rate), g.last)
		if drop.Gt(g.threshold) {
			log := logger.FromContext(ctx).WithField("asset", g.asset)
			log.Warnf("yield: rate dropped from %s to %s", g.last.Dec(), rate.Dec())

			if g.reporter == nil {
				return nil, fmt.Errorf("no slashing reporter: %w", core.ErrSlashingDetected)
			}

			if err := g.reporter.ReportSlashing(ctx, g.asset, g.last, rate); err != nil {
				log.WithError(err).Errorln("yield.ReportSlashing")
				return nil, fmt.Errorf("%s: %w", err.Error(), core.ErrSlashingDetected)
			}

			core.Emit(ctx, core.NewEvent(core.EventSlashingReported, "", "", rate, core.NewEventData().
				Put("asset", string(g.asset)).
				Put("previous", g.last).
				Put("drop", drop)))
		}
	}

	g.last = rate.Clone()
	return rate, nil
}

func (g *Guarded) GetUnderlyingAmount(ctx context.Context, wrapperAmount *uint256.Int) (*uint256.Int, error) {
	return underlying(ctx, g, wrapperAmount)
}

func (g *Guarded) GetWrapperAmount(ctx context.Context, underlyingAmount *uint256.Int) (*uint256.Int, error) {
	return wrapper(ctx, g, underlyingAmount)
}

// Checkpoint implements txn.Participant
func (g *Guarded) Checkpoint() func() {
	last := g.LastRate()
	return func() { g.last = last }
}
