package protocol

import (
	"context"
	"time"

	"stablevault/core"
	"stablevault/service/vault"

	"github.com/holiman/uint256"
)

// oracle

func (p *Protocol) SetPriceFeed(ctx context.Context, caller core.Address, asset core.Asset, feed core.PriceFeed) error {
	return p.exec.Do(ctx, "oracle.set_feed", func(ctx context.Context) error {
		return p.Oracle.SetPriceFeed(ctx, caller, asset, feed)
	})
}

func (p *Protocol) UpdatePriceObservation(ctx context.Context, asset core.Asset) error {
	return p.exec.Do(ctx, "oracle.update", func(ctx context.Context) error {
		return p.Oracle.UpdatePriceObservation(ctx, asset)
	})
}

// GetPrice validated spot price, recording an observation when the cooldown allows
func (p *Protocol) GetPrice(ctx context.Context, asset core.Asset) (price *uint256.Int, err error) {
	err = p.exec.Do(ctx, "oracle.get_price", func(ctx context.Context) error {
		price, err = p.Oracle.GetPrice(ctx, asset)
		return err
	})

	return
}

func (p *Protocol) PriceView(ctx context.Context, asset core.Asset) (price *uint256.Int, err error) {
	err = p.exec.View(ctx, func(ctx context.Context) error {
		price, err = p.Oracle.GetPriceView(ctx, asset)
		return err
	})

	return
}

func (p *Protocol) TWAP(ctx context.Context, asset core.Asset, period time.Duration) (price *uint256.Int, err error) {
	err = p.exec.View(ctx, func(ctx context.Context) error {
		price, err = p.Oracle.GetTWAP(ctx, asset, period)
		return err
	})

	return
}

func (p *Protocol) Observations(ctx context.Context, asset core.Asset) (obs []*core.PriceObservation) {
	_ = p.exec.View(ctx, func(ctx context.Context) error {
		obs = p.Oracle.Observations(ctx, asset)
		return nil
	})

	return
}

// vaults

func (p *Protocol) DepositCollateral(ctx context.Context, caller core.Address, amount *uint256.Int) error {
	return p.exec.Do(ctx, "vault.deposit", func(ctx context.Context) error {
		return p.Vaults.DepositCollateral(ctx, caller, amount)
	})
}

func (p *Protocol) WithdrawCollateral(ctx context.Context, caller core.Address, amount *uint256.Int) error {
	return p.exec.Do(ctx, "vault.withdraw", func(ctx context.Context) error {
		return p.Vaults.WithdrawCollateral(ctx, caller, amount)
	})
}

func (p *Protocol) Borrow(ctx context.Context, caller core.Address, amount *uint256.Int) error {
	return p.exec.Do(ctx, "vault.borrow", func(ctx context.Context) error {
		return p.Vaults.Borrow(ctx, caller, amount)
	})
}

func (p *Protocol) Repay(ctx context.Context, caller core.Address, amount *uint256.Int) (paid *uint256.Int, err error) {
	err = p.exec.Do(ctx, "vault.repay", func(ctx context.Context) error {
		paid, err = p.Vaults.Repay(ctx, caller, amount)
		return err
	})

	return
}

func (p *Protocol) AccrueYield(ctx context.Context, owner core.Address) error {
	return p.exec.Do(ctx, "vault.accrue", func(ctx context.Context) error {
		return p.Vaults.AccrueYield(ctx, owner)
	})
}

func (p *Protocol) GetVault(ctx context.Context, owner core.Address) (v *core.Vault) {
	_ = p.exec.View(ctx, func(ctx context.Context) error {
		v = p.Vaults.GetVault(ctx, owner)
		return nil
	})

	return
}

func (p *Protocol) GetHealthRatio(ctx context.Context, owner core.Address) (h *core.HealthRatio, err error) {
	err = p.exec.View(ctx, func(ctx context.Context) error {
		h, err = p.Vaults.GetHealthRatio(ctx, owner)
		return err
	})

	return
}

func (p *Protocol) CheckLiquidatable(ctx context.Context, owner core.Address) (debt *uint256.Int, err error) {
	err = p.exec.View(ctx, func(ctx context.Context) error {
		debt, err = p.Vaults.CheckLiquidatable(ctx, owner)
		return err
	})

	return
}

func (p *Protocol) Owners(ctx context.Context) (owners []core.Address) {
	_ = p.exec.View(ctx, func(ctx context.Context) error {
		owners = p.Vaults.Owners(ctx)
		return nil
	})

	return
}

// UnderlyingCollateral owner's collateral valued in the underlying asset
func (p *Protocol) UnderlyingCollateral(ctx context.Context, owner core.Address) (amount *uint256.Int) {
	_ = p.exec.View(ctx, func(ctx context.Context) error {
		amount = p.Vaults.UnderlyingCollateral(ctx, owner)
		return nil
	})

	return
}

// liquidation engine

func (p *Protocol) CommitLiquidation(ctx context.Context, liquidator, vault core.Address, commitHash [32]byte, deposit *uint256.Int) error {
	return p.exec.Do(ctx, "auction.commit", func(ctx context.Context) error {
		return p.Engine.CommitLiquidation(ctx, liquidator, vault, commitHash, deposit)
	})
}

func (p *Protocol) RevealLiquidation(ctx context.Context, liquidator, vault core.Address, bidAmount, collateralRequested *uint256.Int, salt [32]byte) error {
	return p.exec.Do(ctx, "auction.reveal", func(ctx context.Context) error {
		return p.Engine.RevealLiquidation(ctx, liquidator, vault, bidAmount, collateralRequested, salt)
	})
}

func (p *Protocol) FinalizeAuction(ctx context.Context, vault core.Address) error {
	return p.exec.Do(ctx, "auction.finalize", func(ctx context.Context) error {
		return p.Engine.FinalizeAuction(ctx, vault)
	})
}

func (p *Protocol) ClaimRefund(ctx context.Context, liquidator, vault core.Address) error {
	return p.exec.Do(ctx, "auction.claim_refund", func(ctx context.Context) error {
		return p.Engine.ClaimRefund(ctx, liquidator, vault)
	})
}

func (p *Protocol) WithdrawRefund(ctx context.Context, liquidator core.Address) (amount *uint256.Int, err error) {
	err = p.exec.Do(ctx, "auction.withdraw_refund", func(ctx context.Context) error {
		amount, err = p.Engine.WithdrawRefund(ctx, liquidator)
		return err
	})

	return
}

func (p *Protocol) CleanupBids(ctx context.Context, vault core.Address) error {
	return p.exec.Do(ctx, "auction.cleanup", func(ctx context.Context) error {
		return p.Engine.CleanupBids(ctx, vault)
	})
}

func (p *Protocol) GetAuction(ctx context.Context, vault core.Address) (a *core.Auction, ok bool) {
	_ = p.exec.View(ctx, func(ctx context.Context) error {
		a, ok = p.Engine.GetAuction(ctx, vault)
		return nil
	})

	return
}

func (p *Protocol) Auctions(ctx context.Context) (auctions []*core.Auction) {
	_ = p.exec.View(ctx, func(ctx context.Context) error {
		auctions = p.Engine.Auctions(ctx)
		return nil
	})

	return
}

func (p *Protocol) GetCommitment(ctx context.Context, liquidator, vault core.Address) (c *core.LiquidationCommit, ok bool) {
	_ = p.exec.View(ctx, func(ctx context.Context) error {
		c, ok = p.Engine.GetCommitment(ctx, liquidator, vault)
		return nil
	})

	return
}

func (p *Protocol) GetVaultBids(ctx context.Context, vault core.Address) (bids []*core.LiquidationBid) {
	_ = p.exec.View(ctx, func(ctx context.Context) error {
		bids = p.Engine.GetVaultBids(ctx, vault)
		return nil
	})

	return
}

func (p *Protocol) PendingRefund(ctx context.Context, liquidator core.Address) (amount *uint256.Int) {
	_ = p.exec.View(ctx, func(ctx context.Context) error {
		amount = p.Engine.PendingRefund(ctx, liquidator)
		return nil
	})

	return
}

func (p *Protocol) RequiredDeposit(ctx context.Context, vault core.Address) (amount *uint256.Int) {
	_ = p.exec.View(ctx, func(ctx context.Context) error {
		amount = p.Engine.RequiredDeposit(ctx, vault)
		return nil
	})

	return
}

// VaultParams effective vault manager parameters, including the current borrow rate
func (p *Protocol) VaultParams(ctx context.Context) (cfg vault.Config) {
	_ = p.exec.View(ctx, func(ctx context.Context) error {
		cfg = p.Vaults.Config()
		return nil
	})

	return
}

func (p *Protocol) LiquidationParams() *core.LiquidationParams {
	return p.Engine.Params()
}

// stability pool

func (p *Protocol) PoolDeposit(ctx context.Context, depositor core.Address, amount *uint256.Int) error {
	return p.exec.Do(ctx, "pool.deposit", func(ctx context.Context) error {
		return p.Pool.Deposit(ctx, depositor, amount)
	})
}

func (p *Protocol) PoolWithdraw(ctx context.Context, depositor core.Address, amount *uint256.Int) error {
	return p.exec.Do(ctx, "pool.withdraw", func(ctx context.Context) error {
		return p.Pool.Withdraw(ctx, depositor, amount)
	})
}

func (p *Protocol) ClaimCollateralGains(ctx context.Context, depositor core.Address) (gain *uint256.Int, err error) {
	err = p.exec.Do(ctx, "pool.claim", func(ctx context.Context) error {
		gain, err = p.Pool.ClaimCollateralGains(ctx, depositor)
		return err
	})

	return
}

func (p *Protocol) GetDeposit(ctx context.Context, depositor core.Address) (pos *core.PoolPosition) {
	_ = p.exec.View(ctx, func(ctx context.Context) error {
		pos = p.Pool.GetDeposit(ctx, depositor)
		return nil
	})

	return
}

func (p *Protocol) PoolTotalDeposits(ctx context.Context) (total *uint256.Int) {
	_ = p.exec.View(ctx, func(ctx context.Context) error {
		total = p.Pool.TotalDeposits(ctx)
		return nil
	})

	return
}

// tokens

func (p *Protocol) token(asset core.Asset) (core.Token, error) {
	switch asset {
	case p.Collateral.Asset():
		return p.Collateral, nil
	case p.Stable.Asset():
		return p.Stable, nil
	case p.Bond.Asset():
		return p.Bond, nil
	default:
		return nil, core.ErrInvalidParameter
	}
}

// Approve lets spender move owner's asset
func (p *Protocol) Approve(ctx context.Context, owner, spender core.Address, asset core.Asset, amount *uint256.Int) error {
	return p.exec.Do(ctx, "token.approve", func(ctx context.Context) error {
		t, err := p.token(asset)
		if err != nil {
			return err
		}

		return t.Approve(ctx, owner, spender, amount)
	})
}

func (p *Protocol) Transfer(ctx context.Context, from, to core.Address, asset core.Asset, amount *uint256.Int) error {
	return p.exec.Do(ctx, "token.transfer", func(ctx context.Context) error {
		t, err := p.token(asset)
		if err != nil {
			return err
		}

		return t.Transfer(ctx, from, to, amount)
	})
}

// BalanceOf balance of account in asset
func (p *Protocol) BalanceOf(ctx context.Context, account core.Address, asset core.Asset) (balance *uint256.Int, err error) {
	err = p.exec.View(ctx, func(ctx context.Context) error {
		t, err := p.token(asset)
		if err != nil {
			return err
		}

		balance = t.BalanceOf(ctx, account)
		return nil
	})

	return
}

// Faucet owner-only issuance of collateral or bond, the stablecoin is only ever minted against debt
func (p *Protocol) Faucet(ctx context.Context, caller, to core.Address, asset core.Asset, amount *uint256.Int) error {
	return p.exec.Do(ctx, "token.faucet", func(ctx context.Context) error {
		if caller != p.owner {
			return core.ErrNotOwner
		}

		switch asset {
		case p.Collateral.Asset():
			return p.Collateral.Mint(ctx, to, amount)
		case p.Bond.Asset():
			return p.Bond.Mint(ctx, to, amount)
		default:
			return core.ErrInvalidParameter
		}
	})
}

// admin

func (p *Protocol) SetVaultPaused(ctx context.Context, caller core.Address, paused bool) error {
	return p.exec.Do(ctx, "admin.vault_pause", func(ctx context.Context) error {
		return p.Vaults.SetPaused(ctx, caller, paused)
	})
}

// SetEmergencyPause pauses vaults and the engine through the shared breaker
func (p *Protocol) SetEmergencyPause(ctx context.Context, caller core.Address, paused bool) error {
	return p.exec.Do(ctx, "admin.emergency_pause", func(ctx context.Context) error {
		return p.Breaker.SetPaused(ctx, caller, paused)
	})
}

func (p *Protocol) ResetCircuitBreaker(ctx context.Context, caller core.Address) error {
	return p.exec.Do(ctx, "admin.reset_breaker", func(ctx context.Context) error {
		return p.Breaker.Reset(ctx, caller)
	})
}

func (p *Protocol) SetBorrowRate(ctx context.Context, caller core.Address, apr *uint256.Int) error {
	return p.exec.Do(ctx, "admin.borrow_rate", func(ctx context.Context) error {
		return p.Vaults.SetBorrowRate(ctx, caller, apr)
	})
}

func (p *Protocol) WithdrawReserves(ctx context.Context, caller, to core.Address, stableAmount, collateralAmount *uint256.Int) error {
	return p.exec.Do(ctx, "admin.withdraw_reserves", func(ctx context.Context) error {
		return p.Vaults.WithdrawReserves(ctx, caller, to, stableAmount, collateralAmount)
	})
}

func (p *Protocol) WriteOffBadDebt(ctx context.Context, caller core.Address, amount *uint256.Int) error {
	return p.exec.Do(ctx, "admin.write_off", func(ctx context.Context) error {
		return p.Vaults.WriteOffBadDebt(ctx, caller, amount)
	})
}

func (p *Protocol) WithdrawSlashedRevenue(ctx context.Context, caller, to core.Address, amount *uint256.Int) error {
	return p.exec.Do(ctx, "admin.withdraw_slashed", func(ctx context.Context) error {
		return p.Engine.WithdrawSlashedRevenue(ctx, caller, to, amount)
	})
}

// system

// SystemHealth vault aggregates plus the stablecoin supply, slashed deposits, pool totals and pause flags
func (p *Protocol) SystemHealth(ctx context.Context) (h *core.SystemHealth) {
	_ = p.exec.View(ctx, func(ctx context.Context) error {
		h = p.Vaults.SystemHealth(ctx)
		h.StableSupply = p.Stable.TotalSupply(ctx)
		h.SlashedRevenue = p.Engine.SlashedRevenue()
		h.PoolDeposits = p.Pool.TotalDeposits(ctx)
		h.VaultPaused = p.Vaults.Paused(ctx)
		h.EmergencyPaused = p.Breaker.IsPaused(ctx)
		h.CircuitBreaker = p.Breaker.IsCircuitBreakerActive(ctx)
		return nil
	})

	return
}
