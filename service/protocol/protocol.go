// Package protocol assembles the oracle, vault manager, liquidation engine,
// stability pool and their token ledgers into one serialized state machine.
//
// Every mutating method runs as one executor operation: it sees a single block
// time, and either all of its effects and events land or none do.
package protocol

import (
	"context"
	"fmt"

	"stablevault/core"
	"stablevault/internal/txn"
	"stablevault/pkg/block"
	"stablevault/service/liquidation"
	"stablevault/service/oracle"
	"stablevault/service/pause"
	"stablevault/service/pool"
	"stablevault/service/token"
	"stablevault/service/vault"
	"stablevault/service/yield"

	"github.com/holiman/uint256"
)

// Addresses module accounts holding protocol funds
type Addresses struct {
	Vault  core.Address
	Engine core.Address
	Pool   core.Address
}

// DefaultAddresses module accounts
func DefaultAddresses() Addresses {
	return Addresses{
		Vault:  "module:vault",
		Engine: "module:liquidation",
		Pool:   "module:pool",
	}
}

// Options assembly parameters
type Options struct {
	Owner     core.Address
	Addresses Addresses

	CollateralAsset core.Asset
	StableAsset     core.Asset
	BondAsset       core.Asset

	Oracle      oracle.Config
	Vault       vault.Config
	Liquidation liquidation.Config

	// Yield adapter of the collateral, nil for plain collateral
	Yield             core.YieldAdapter
	SlashingThreshold *uint256.Int

	SecondsPerBlock int64
	Genesis         int64

	Clock    core.Clock
	Events   core.IEventStore
	Observer txn.Observer
}

// DefaultOptions options with default parameters for collateral
func DefaultOptions(owner core.Address, collateral core.Asset) Options {
	return Options{
		Owner:           owner,
		Addresses:       DefaultAddresses(),
		CollateralAsset: collateral,
		StableAsset:     "svUSD",
		BondAsset:       "ETH",
		Oracle:          oracle.DefaultConfig(),
		Vault:           vault.DefaultConfig(collateral),
		Liquidation:     liquidation.DefaultConfig(),
		SecondsPerBlock: 12,
	}
}

// Protocol assembled protocol
type Protocol struct {
	exec  *txn.Executor
	owner core.Address
	addrs Addresses

	Oracle     *oracle.Oracle
	Vaults     *vault.Manager
	Engine     *liquidation.Engine
	Pool       *pool.Pool
	Breaker    *pause.Breaker
	Yield      *yield.Guarded
	Collateral *token.Ledger
	Bond       *token.Ledger
	Stable     *token.Stablecoin
}

// New wires the components together and registers every one of them with the executor
func New(ctx context.Context, opt Options) (*Protocol, error) {
	if opt.Owner.IsZero() {
		return nil, fmt.Errorf("protocol: owner: %w", core.ErrInvalidParameter)
	}

	blocks, err := block.New(opt.SecondsPerBlock, opt.Genesis)
	if err != nil {
		return nil, fmt.Errorf("protocol: %w", err)
	}

	opt.Vault.CollateralAsset = opt.CollateralAsset
	opt.Liquidation.LiquidationThreshold = opt.Vault.LiquidationThreshold
	opt.Liquidation.MaxLiquidationRatio = opt.Vault.MaxLiquidationRatio
	opt.Liquidation.LiquidatorBonus = opt.Vault.LiquidatorBonus
	opt.Liquidation.LiquidationPenalty = opt.Vault.LiquidationPenalty

	p := &Protocol{
		owner:      opt.Owner,
		addrs:      opt.Addresses,
		Oracle:     oracle.New(opt.Owner, opt.Oracle, opt.Clock),
		Breaker:    pause.New(opt.Owner),
		Collateral: token.NewLedger(opt.CollateralAsset),
		Bond:       token.NewLedger(opt.BondAsset),
		Stable:     token.NewStablecoin(opt.StableAsset, opt.Owner),
	}

	participants := []txn.Participant{p.Oracle, p.Breaker, p.Collateral, p.Bond, p.Stable}

	var adapter core.YieldAdapter
	if opt.Yield != nil {
		p.Yield = yield.Guard(opt.Yield, opt.CollateralAsset, opt.SlashingThreshold, p.Breaker)
		adapter = p.Yield
		participants = append(participants, p.Yield)
	}

	p.Vaults = vault.New(opt.Addresses.Vault, opt.Owner, opt.Vault, vault.Deps{
		Oracle:     p.Oracle,
		Collateral: p.Collateral,
		Stable:     p.Stable,
		Yield:      adapter,
		Blocks:     blocks,
		Clock:      opt.Clock,
	})

	p.Engine = liquidation.New(opt.Addresses.Engine, opt.Owner, opt.Liquidation, liquidation.Deps{
		Vaults:     p.Vaults,
		Stable:     p.Stable,
		Collateral: p.Collateral,
		Bond:       p.Bond,
		Clock:      opt.Clock,
	})

	p.Pool = pool.New(opt.Addresses.Pool, opt.Owner, p.Stable, p.Collateral, opt.Clock)

	participants = append(participants, p.Vaults, p.Engine, p.Pool)
	p.exec = txn.New(opt.Clock, opt.Events, participants...).WithObserver(opt.Observer)

	err = p.exec.Do(ctx, "protocol.bootstrap", func(ctx context.Context) error {
		for _, minter := range []core.Address{opt.Addresses.Vault, opt.Addresses.Engine, opt.Addresses.Pool} {
			if err := p.Stable.SetMinter(ctx, opt.Owner, minter, true); err != nil {
				return err
			}
		}

		if err := p.Vaults.SetLiquidationEngine(ctx, opt.Owner, opt.Addresses.Engine); err != nil {
			return err
		}

		if err := p.Vaults.SetPauseGuard(ctx, opt.Owner, p.Breaker); err != nil {
			return err
		}

		if err := p.Engine.SetPauseGuard(ctx, opt.Owner, p.Breaker); err != nil {
			return err
		}

		if err := p.Engine.SetStabilityPool(ctx, opt.Owner, p.Pool); err != nil {
			return err
		}

		return p.Pool.SetLiquidationEngine(ctx, opt.Owner, opt.Addresses.Engine)
	})
	if err != nil {
		return nil, fmt.Errorf("protocol: bootstrap: %w", err)
	}

	return p, nil
}

// Owner protocol administrator
func (p *Protocol) Owner() core.Address {
	return p.owner
}

// Addresses module accounts
func (p *Protocol) Addresses() Addresses {
	return p.addrs
}

// Clock time source operations are pinned to
func (p *Protocol) Clock() core.Clock {
	return p.exec.Clock()
}
