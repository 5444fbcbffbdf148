// Package refresher records oracle observations on a schedule so the TWAP window stays populated.
package refresher

import (
	"context"
	"errors"

	"stablevault/core"
	"stablevault/worker"

	"github.com/fox-one/pkg/logger"
)

// Oracle the part of the protocol the refresher drives
type Oracle interface {
	UpdatePriceObservation(ctx context.Context, asset core.Asset) error
}

// Refresher oracle observation worker
type Refresher struct {
	worker.BaseJob
	oracle Oracle
	assets []core.Asset
}

// New refresher recording observations of assets every spec
func New(oracle Oracle, spec string, assets ...core.Asset) *Refresher {
	r := &Refresher{
		oracle: oracle,
		assets: assets,
	}

	r.Name = "refresher"
	r.Spec = spec
	r.OnWork = r.onWork
	return r
}

func (w *Refresher) onWork(ctx context.Context) error {
	log := logger.FromContext(ctx)

	var failed error
	for _, asset := range w.assets {
		err := w.oracle.UpdatePriceObservation(ctx, asset)
		switch {
		case err == nil:
			log.WithField("asset", asset).Debugln("observation recorded")
		case errors.Is(err, core.ErrUpdateTooFrequent):
			log.WithField("asset", asset).Debugln("observation skipped, cooldown")
		default:
			log.WithError(err).WithField("asset", asset).Errorln("UpdatePriceObservation")
			failed = err
		}
	}

	return failed
}
