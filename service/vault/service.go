// Package vault keeps borrower vaults collateralized.
//
// Every mutating entry point accrues interest and yield before it checks
// anything, values collateral at the oracle TWAP and moves tokens only after
// its own bookkeeping is complete.
package vault

import (
	"context"
	"fmt"
	"sort"
	"time"

	"stablevault/core"
	"stablevault/pkg/block"
	"stablevault/pkg/wad"

	"github.com/holiman/uint256"
)

// Manager vault manager
type Manager struct {
	cfg        Config
	self       core.Address
	owner      core.Address
	clock      core.Clock
	blocks     *block.Clock
	oracle     core.IOracleService
	collateral core.Token
	stable     core.Stablecoin
	yield      core.YieldAdapter

	engine core.Address
	guard  core.PauseGuard
	paused bool
	apr    *uint256.Int

	vaults             map[core.Address]*core.Vault
	totalDebt          *uint256.Int
	stableReserves     *uint256.Int
	collateralReserves *uint256.Int
	badDebt            *uint256.Int
}

// Deps collaborators of the manager
type Deps struct {
	Oracle     core.IOracleService
	Collateral core.Token
	Stable     core.Stablecoin
	Yield      core.YieldAdapter
	Blocks     *block.Clock
	Clock      core.Clock
}

// New manager holding collateral under self and administered by owner
func New(self, owner core.Address, cfg Config, deps Deps) *Manager {
	return &Manager{
		cfg:                cfg,
		self:               self,
		owner:              owner,
		clock:              deps.Clock,
		blocks:             deps.Blocks,
		oracle:             deps.Oracle,
		collateral:         deps.Collateral,
		stable:             deps.Stable,
		yield:              deps.Yield,
		apr:                cfg.BorrowAPR.Clone(),
		vaults:             map[core.Address]*core.Vault{},
		totalDebt:          wad.Zero(),
		stableReserves:     wad.Zero(),
		collateralReserves: wad.Zero(),
		badDebt:            wad.Zero(),
	}
}

// Address account holding vault collateral
func (m *Manager) Address() core.Address {
	return m.self
}

// Config effective parameters
func (m *Manager) Config() Config {
	cfg := m.cfg
	cfg.BorrowAPR = m.apr.Clone()
	return cfg
}

func (m *Manager) now(ctx context.Context) int64 {
	return core.BlockTime(ctx, m.clock)
}

func (m *Manager) vault(owner core.Address) *core.Vault {
	v, ok := m.vaults[owner]
	if !ok {
		v = core.NewVault(owner)
		m.vaults[owner] = v
	}

	return v
}

func (m *Manager) halted(ctx context.Context) bool {
	return m.paused || core.Halted(ctx, m.guard)
}

// twap strict TWAP for state-mutating paths, refreshing the observation ring first
func (m *Manager) twap(ctx context.Context) (*uint256.Int, error) {
	if _, err := m.oracle.GetPrice(ctx, m.cfg.CollateralAsset); err != nil {
		return nil, err
	}

	price, err := m.oracle.GetTWAP(ctx, m.cfg.CollateralAsset, time.Duration(m.cfg.TWAPPeriod)*time.Second)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrTWAPUnavailable, err)
	}

	return price, nil
}

// HealthOf collateral value over debt in WAD, the max value when debt is zero
func HealthOf(collateral, debt, price *uint256.Int) *uint256.Int {
	if debt.IsZero() {
		return wad.Max()
	}

	return wad.Div(wad.PriceMul(collateral, price), debt)
}

// Owners vault owners in lexical order
func (m *Manager) Owners(_ context.Context) []core.Address {
	owners := make([]core.Address, 0, len(m.vaults))
	for owner := range m.vaults {
		owners = append(owners, owner)
	}

	sort.Slice(owners, func(i, j int) bool { return owners[i] < owners[j] })
	return owners
}

// Checkpoint implements txn.Participant
func (m *Manager) Checkpoint() func() {
	vaults := make(map[core.Address]*core.Vault, len(m.vaults))
	for k, v := range m.vaults {
		vaults[k] = v.Clone()
	}

	engine, guard, paused, apr := m.engine, m.guard, m.paused, m.apr.Clone()
	totalDebt := m.totalDebt.Clone()
	stableReserves := m.stableReserves.Clone()
	collateralReserves := m.collateralReserves.Clone()
	badDebt := m.badDebt.Clone()

	return func() {
		m.vaults = vaults
		m.engine, m.guard, m.paused, m.apr = engine, guard, paused, apr
		m.totalDebt = totalDebt
		m.stableReserves = stableReserves
		m.collateralReserves = collateralReserves
		m.badDebt = badDebt
	}
}
