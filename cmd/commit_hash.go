package cmd

import (
	"crypto/rand"
	"encoding/hex"

	"stablevault/core"
	"stablevault/handler/param"
	"stablevault/service/liquidation"

	"github.com/spf13/cobra"
)

// command computing a liquidation commitment offline, so the bid never leaves the bidder before reveal
var commitHashCmd = &cobra.Command{
	Use:   "commit-hash <vault> <liquidator> <bid> <collateral> [salt]",
	Short: "compute the commitment hash of a sealed liquidation bid",
	Args:  cobra.RangeArgs(4, 5),
	RunE: func(cmd *cobra.Command, args []string) error {
		bid, err := param.Wad("bid", args[2])
		if err != nil {
			return err
		}

		collateral, err := param.Wad("collateral", args[3])
		if err != nil {
			return err
		}

		var salt [32]byte
		if len(args) == 5 {
			if salt, err = param.Bytes32(args[4]); err != nil {
				return err
			}
		} else if _, err := rand.Read(salt[:]); err != nil {
			return err
		}

		hash := liquidation.CommitHash(core.Address(args[0]), core.Address(args[1]), bid, collateral, salt)
		cmd.Println("salt:", "0x"+hex.EncodeToString(salt[:]))
		cmd.Println("hash:", "0x"+hex.EncodeToString(hash[:]))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(commitHashCmd)
}
