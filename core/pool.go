package core

import (
	"context"

	"github.com/holiman/uint256"
)

// PoolDeposit stability pool position with the accumulator snapshots taken at the last interaction
type PoolDeposit struct {
	Depositor      Address      `json:"depositor"`
	Amount         *uint256.Int `json:"amount"`
	CollateralGain *uint256.Int `json:"collateral_gain"`
	Timestamp      int64        `json:"timestamp"`
	SnapshotP      *uint256.Int `json:"snapshot_p"`
	SnapshotG      *uint256.Int `json:"snapshot_g"`
	SnapshotEpoch  uint64       `json:"snapshot_epoch"`
	SnapshotScale  uint64       `json:"snapshot_scale"`
}

// Clone deep copy
func (d *PoolDeposit) Clone() *PoolDeposit {
	c := *d
	c.Amount = new(uint256.Int).Set(d.Amount)
	c.CollateralGain = new(uint256.Int).Set(d.CollateralGain)
	c.SnapshotP = new(uint256.Int).Set(d.SnapshotP)
	c.SnapshotG = new(uint256.Int).Set(d.SnapshotG)
	return &c
}

// PoolPosition a depositor's compounded view
type PoolPosition struct {
	Depositor     Address      `json:"depositor"`
	Compounded    *uint256.Int `json:"compounded"`
	PendingGain   *uint256.Int `json:"pending_gain"`
	LastUpdatedAt int64        `json:"last_updated_at"`
}

// IStabilityPool passive liquidity absorbing debt the auctions could not place
type IStabilityPool interface {
	Deposit(ctx context.Context, depositor Address, amount *uint256.Int) error
	Withdraw(ctx context.Context, depositor Address, amount *uint256.Int) error
	ClaimCollateralGains(ctx context.Context, depositor Address) (*uint256.Int, error)
	DistributeLiquidation(ctx context.Context, caller Address, debtToOffset, collateralToDistribute *uint256.Int) error

	GetDeposit(ctx context.Context, depositor Address) *PoolPosition
	TotalDeposits(ctx context.Context) *uint256.Int
}
