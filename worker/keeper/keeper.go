// Package keeper finalizes expired auctions, clears settled bids, keeps vault
// accounting fresh and reports vaults that fell under the liquidation threshold.
package keeper

import (
	"context"
	"errors"
	"time"

	"stablevault/core"
	"stablevault/worker"

	"github.com/fox-one/pkg/logger"
	"github.com/fox-one/pkg/property"
	"github.com/holiman/uint256"
)

const checkpointKey = "keeper_accrue_checkpoint"

// Protocol the operations the keeper drives
type Protocol interface {
	Clock() core.Clock
	Auctions(ctx context.Context) []*core.Auction
	GetVaultBids(ctx context.Context, vault core.Address) []*core.LiquidationBid
	FinalizeAuction(ctx context.Context, vault core.Address) error
	CleanupBids(ctx context.Context, vault core.Address) error
	Owners(ctx context.Context) []core.Address
	AccrueYield(ctx context.Context, owner core.Address) error
	CheckLiquidatable(ctx context.Context, owner core.Address) (*uint256.Int, error)
}

// Checkpoints persisted keeper progress, satisfied by property.Store
type Checkpoints interface {
	Get(ctx context.Context, key string) (property.Value, error)
	Save(ctx context.Context, key string, value interface{}) error
}

// Keeper auction and vault maintenance worker
type Keeper struct {
	worker.BaseJob
	p              Protocol
	checkpoints    Checkpoints
	accrueInterval time.Duration
}

// New keeper ticking every spec, vault accrual is poked at most once per accrueInterval
func New(p Protocol, checkpoints Checkpoints, spec string, accrueInterval time.Duration) *Keeper {
	k := &Keeper{
		p:              p,
		checkpoints:    checkpoints,
		accrueInterval: accrueInterval,
	}

	k.Name = "keeper"
	k.Spec = spec
	k.OnWork = k.onWork
	return k
}

func (w *Keeper) onWork(ctx context.Context) error {
	w.settleAuctions(ctx)

	if err := w.accrueVaults(ctx); err != nil {
		return err
	}

	w.reportLiquidatable(ctx)
	return nil
}

func (w *Keeper) settleAuctions(ctx context.Context) {
	log := logger.FromContext(ctx)

	for _, a := range w.p.Auctions(ctx) {
		log := log.WithField("vault", a.Vault)

		switch a.Phase {
		case core.AuctionFinalizable:
			err := w.p.FinalizeAuction(ctx, a.Vault)
			switch {
			case err == nil:
				log.Infoln("auction finalized")
			case core.KindOf(err) == core.KindPrecondition:
				log.WithError(err).Infoln("auction not settled yet")
			default:
				log.WithError(err).Errorln("FinalizeAuction")
			}
		case core.AuctionExecuted, core.AuctionFallbackExecuted:
			if len(w.p.GetVaultBids(ctx, a.Vault)) == 0 {
				continue
			}

			if err := w.p.CleanupBids(ctx, a.Vault); err != nil {
				log.WithError(err).Errorln("CleanupBids")
				continue
			}

			log.Debugln("settled bids cleaned")
		}
	}
}

func (w *Keeper) accrueVaults(ctx context.Context) error {
	log := logger.FromContext(ctx)

	v, err := w.checkpoints.Get(ctx, checkpointKey)
	if err != nil {
		log.WithError(err).Errorln("property.Get", checkpointKey)
		return err
	}

	now := w.p.Clock().Now()
	if last := v.Time(); !last.IsZero() && now.Sub(last) < w.accrueInterval {
		return nil
	}

	for _, owner := range w.p.Owners(ctx) {
		if err := w.p.AccrueYield(ctx, owner); err != nil {
			if errors.Is(err, core.ErrSlashingDetected) {
				log.WithError(err).Warnln("accrual refused, collateral slashed")
				break
			}

			log.WithError(err).WithField("vault", owner).Errorln("AccrueYield")
		}
	}

	if err := w.checkpoints.Save(ctx, checkpointKey, now); err != nil {
		log.WithError(err).Errorln("property.Save", checkpointKey)
		return err
	}

	return nil
}

func (w *Keeper) reportLiquidatable(ctx context.Context) {
	log := logger.FromContext(ctx)

	for _, owner := range w.p.Owners(ctx) {
		debt, err := w.p.CheckLiquidatable(ctx, owner)
		if err != nil {
			continue
		}

		log.WithField("vault", owner).WithField("debt", debt.Dec()).Warnln("vault liquidatable")
	}
}
