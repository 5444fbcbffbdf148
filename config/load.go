package config

import (
	"fmt"
	"time"

	"stablevault/core"
	"stablevault/pkg/number"
	"stablevault/service/feed"
	"stablevault/service/protocol"
	"stablevault/service/yield"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
)

// Options converts cfg into protocol assembly options, zero values keep the defaults
func Options(cfg *core.Config) (protocol.Options, error) {
	app := cfg.App
	if app.Owner == "" {
		return protocol.Options{}, fmt.Errorf("config: app.owner: %w", core.ErrInvalidParameter)
	}

	opt := protocol.DefaultOptions(core.Address(app.Owner), core.Asset(app.CollateralAsset))
	opt.StableAsset = core.Asset(app.StableAsset)
	opt.BondAsset = core.Asset(app.BondAsset)
	opt.SecondsPerBlock = app.SecondsPerBlock
	opt.Genesis = app.Genesis

	setAddress(&opt.Addresses.Vault, app.VaultAddress)
	setAddress(&opt.Addresses.Engine, app.EngineAddress)
	setAddress(&opt.Addresses.Pool, app.PoolAddress)

	setSeconds(&opt.Oracle.MaxPriceAge, cfg.Oracle.MaxPriceAge)
	setSeconds(&opt.Oracle.UpdateCooldown, cfg.Oracle.UpdateCooldown)
	setSeconds(&opt.Oracle.MaxObservationAge, cfg.Oracle.MaxObservationAge)

	v := cfg.Vault
	fields := []struct {
		name string
		dst  **uint256.Int
		val  string
	}{
		{"vault.min_collateral_ratio", &opt.Vault.MinCollateralRatio, v.MinCollateralRatio},
		{"vault.liquidation_threshold", &opt.Vault.LiquidationThreshold, v.LiquidationThreshold},
		{"vault.min_debt", &opt.Vault.MinDebt, v.MinDebt},
		{"vault.borrow_apr", &opt.Vault.BorrowAPR, v.BorrowAPR},
		{"vault.max_borrow_apr", &opt.Vault.MaxBorrowAPR, v.MaxBorrowAPR},
		{"vault.max_borrow_apr_delta", &opt.Vault.MaxBorrowAPRDelta, v.MaxBorrowAPRDelta},
		{"vault.protocol_fee", &opt.Vault.ProtocolFee, v.ProtocolFee},
		{"vault.liquidator_bonus", &opt.Vault.LiquidatorBonus, v.LiquidatorBonus},
		{"vault.liquidation_penalty", &opt.Vault.LiquidationPenalty, v.LiquidationPenalty},
		{"vault.max_liquidation_ratio", &opt.Vault.MaxLiquidationRatio, v.MaxLiquidationRatio},
		{"liquidation.min_deposit", &opt.Liquidation.MinDeposit, cfg.Liquidation.MinDeposit},
		{"liquidation.deposit_ratio", &opt.Liquidation.DepositRatio, cfg.Liquidation.DepositRatio},
	}

	for _, f := range fields {
		if err := setWad(f.dst, f.name, f.val); err != nil {
			return protocol.Options{}, err
		}
	}

	if v.DustThreshold > 0 {
		opt.Vault.DustThreshold = uint256.NewInt(v.DustThreshold)
	}

	setSeconds(&opt.Vault.LiquidationCooldown, v.LiquidationCooldown)
	setSeconds(&opt.Vault.InterestGracePeriod, v.InterestGracePeriod)
	setSeconds(&opt.Vault.TWAPPeriod, v.TWAPPeriod)

	l := cfg.Liquidation
	setSeconds(&opt.Liquidation.MinCommitPeriod, l.MinCommitPeriod)
	setSeconds(&opt.Liquidation.MaxCommitPeriod, l.MaxCommitPeriod)
	setSeconds(&opt.Liquidation.AuctionDuration, l.AuctionDuration)
	setSeconds(&opt.Liquidation.TotalAuctionTimeout, l.TotalAuctionTimeout)
	setSeconds(&opt.Liquidation.FinalizeGracePeriod, l.FinalizeGracePeriod)
	setSeconds(&opt.Liquidation.BidRetention, l.BidRetention)
	if l.MaxBidsPerAuction > 0 {
		opt.Liquidation.MaxBidsPerAuction = l.MaxBidsPerAuction
	}

	if opt.Liquidation.MinCommitPeriod >= opt.Liquidation.MaxCommitPeriod {
		return protocol.Options{}, fmt.Errorf("config: liquidation commit window %d..%d: %w",
			opt.Liquidation.MinCommitPeriod, opt.Liquidation.MaxCommitPeriod, core.ErrInvalidParameter)
	}

	adapter, threshold, err := Yield(cfg.Yield)
	if err != nil {
		return protocol.Options{}, err
	}

	opt.Yield = adapter
	opt.SlashingThreshold = threshold
	return opt, nil
}

// Yield builds the collateral yield adapter, nil when the collateral is plain
func Yield(cfg core.YieldConf) (core.YieldAdapter, *uint256.Int, error) {
	var threshold *uint256.Int
	if err := setWad(&threshold, "yield.slashing_threshold", cfg.SlashingThreshold); err != nil {
		return nil, nil, err
	}

	switch cfg.Kind {
	case "":
		return nil, nil, nil
	case "wrapped":
		rate := number.MustWad("1")
		if err := setWad(&rate, "yield.rate", cfg.Rate); err != nil {
			return nil, nil, err
		}

		return yield.NewWrapped(rate), threshold, nil
	case "rebasing":
		var pooled, shares *uint256.Int
		if err := setWad(&pooled, "yield.pooled_underlying", cfg.PooledUnderlying); err != nil {
			return nil, nil, err
		}

		if err := setWad(&shares, "yield.total_shares", cfg.TotalShares); err != nil {
			return nil, nil, err
		}

		if pooled == nil || shares == nil {
			return nil, nil, fmt.Errorf("config: rebasing yield needs pooled_underlying and total_shares: %w", core.ErrInvalidParameter)
		}

		return yield.NewRebasing(pooled, shares), threshold, nil
	default:
		return nil, nil, fmt.Errorf("config: yield.kind %q: %w", cfg.Kind, core.ErrInvalidParameter)
	}
}

// Feeds builds the price feed of every configured asset
func Feeds(cfg core.OracleConf) (map[core.Asset]core.PriceFeed, error) {
	feeds := make(map[core.Asset]core.PriceFeed, len(cfg.Feeds))
	var static *feed.StaticFeed

	for _, f := range cfg.Feeds {
		asset := core.Asset(f.Asset)
		if asset == "" {
			return nil, fmt.Errorf("config: feed without asset: %w", core.ErrInvalidParameter)
		}

		switch {
		case f.EndPoint != "":
			var pf core.PriceFeed = feed.NewHTTP(f.EndPoint)
			if cfg.CacheTTL > 0 {
				pf = feed.Cache(pf, time.Duration(cfg.CacheTTL)*time.Second)
			}

			feeds[asset] = pf
		case f.StaticPrice != "":
			d, err := decimal.NewFromString(f.StaticPrice)
			if err != nil || !d.IsPositive() {
				return nil, fmt.Errorf("config: feed %s static_price %q: %w", asset, f.StaticPrice, core.ErrInvalidPrice)
			}

			answer, err := number.ToUnits(d, 8)
			if err != nil {
				return nil, fmt.Errorf("config: feed %s: %w", asset, err)
			}

			if static == nil {
				static = feed.NewStatic()
			}

			static.Set(asset, answer.ToBig(), 0, 8)
			feeds[asset] = static
		default:
			return nil, fmt.Errorf("config: feed %s needs end_point or static_price: %w", asset, core.ErrInvalidParameter)
		}
	}

	return feeds, nil
}

func setWad(dst **uint256.Int, name, s string) error {
	if s == "" {
		return nil
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("config: %s %q: %w", name, s, core.ErrInvalidParameter)
	}

	v, err := number.ToWad(d)
	if err != nil {
		return fmt.Errorf("config: %s %q: %v: %w", name, s, err, core.ErrInvalidParameter)
	}

	*dst = v
	return nil
}

func setSeconds(dst *int64, v int64) {
	if v > 0 {
		*dst = v
	}
}

func setAddress(dst *core.Address, v string) {
	if v != "" {
		*dst = core.Address(v)
	}
}
