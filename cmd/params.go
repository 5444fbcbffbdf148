package cmd

import (
	"fmt"
	"sort"

	"stablevault/config"
	"stablevault/pkg/number"

	"github.com/fatih/structs"
	"github.com/spf13/cobra"
)

type paramsView struct {
	Owner                string `json:"owner"`
	CollateralAsset      string `json:"collateral_asset"`
	StableAsset          string `json:"stable_asset"`
	MinCollateralRatio   string `json:"min_collateral_ratio"`
	LiquidationThreshold string `json:"liquidation_threshold"`
	MinDebt              string `json:"min_debt"`
	BorrowAPR            string `json:"borrow_apr"`
	ProtocolFee          string `json:"protocol_fee"`
	LiquidatorBonus      string `json:"liquidator_bonus"`
	LiquidationPenalty   string `json:"liquidation_penalty"`
	MaxLiquidationRatio  string `json:"max_liquidation_ratio"`
	MinCommitPeriod      int64  `json:"min_commit_period"`
	MaxCommitPeriod      int64  `json:"max_commit_period"`
	AuctionDuration      int64  `json:"auction_duration"`
	TotalAuctionTimeout  int64  `json:"total_auction_timeout"`
	MinDeposit           string `json:"min_deposit"`
	DepositRatio         string `json:"deposit_ratio"`
	MaxBidsPerAuction    int    `json:"max_bids_per_auction"`
	MaxPriceAge          int64  `json:"max_price_age"`
	UpdateCooldown       int64  `json:"update_cooldown"`
	MaxObservationAge    int64  `json:"max_observation_age"`
	YieldKind            string `json:"yield_kind"`
}

// command printing the effective protocol parameters
var paramsCmd = &cobra.Command{
	Use:   "params",
	Short: "print effective protocol parameters",
	RunE: func(cmd *cobra.Command, args []string) error {
		opt, err := config.Options(provideConfig())
		if err != nil {
			return err
		}

		view := paramsView{
			Owner:                string(opt.Owner),
			CollateralAsset:      string(opt.CollateralAsset),
			StableAsset:          string(opt.StableAsset),
			MinCollateralRatio:   number.FromWad(opt.Vault.MinCollateralRatio).String(),
			LiquidationThreshold: number.FromWad(opt.Vault.LiquidationThreshold).String(),
			MinDebt:              number.FromWad(opt.Vault.MinDebt).String(),
			BorrowAPR:            number.FromWad(opt.Vault.BorrowAPR).String(),
			ProtocolFee:          number.FromWad(opt.Vault.ProtocolFee).String(),
			LiquidatorBonus:      number.FromWad(opt.Vault.LiquidatorBonus).String(),
			LiquidationPenalty:   number.FromWad(opt.Vault.LiquidationPenalty).String(),
			MaxLiquidationRatio:  number.FromWad(opt.Vault.MaxLiquidationRatio).String(),
			MinCommitPeriod:      opt.Liquidation.MinCommitPeriod,
			MaxCommitPeriod:      opt.Liquidation.MaxCommitPeriod,
			AuctionDuration:      opt.Liquidation.AuctionDuration,
			TotalAuctionTimeout:  opt.Liquidation.TotalAuctionTimeout,
			MinDeposit:           number.FromWad(opt.Liquidation.MinDeposit).String(),
			DepositRatio:         number.FromWad(opt.Liquidation.DepositRatio).String(),
			MaxBidsPerAuction:    opt.Liquidation.MaxBidsPerAuction,
			MaxPriceAge:          opt.Oracle.MaxPriceAge,
			UpdateCooldown:       opt.Oracle.UpdateCooldown,
			MaxObservationAge:    opt.Oracle.MaxObservationAge,
			YieldKind:            cfg.Yield.Kind,
		}

		values := structs.Map(view)
		keys := make([]string, 0, len(values))
		for k := range values {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, k := range keys {
			cmd.Println(fmt.Sprintf("%-24s %v", k, values[k]))
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(paramsCmd)
}
