package cli

import (
	"fmt"

	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/spf13/cobra"

	"github.com/TrustedSmartChain/walletcore/app"
	"github.com/TrustedSmartChain/walletcore/x/txpipe/types"
)

const (
	FlagMemo          = "memo"
	FlagGas           = "gas"
	FlagBroadcastMode = "broadcast-mode"
)

// CmdSend returns the bank transfer command.
func CmdSend() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "send [to-address] [amount]",
		Short: "Send coins from the configured account",
		Example: `walletd send secret1... 1000000uscrt --memo rent
walletd send secret1... 5uscrt --broadcast-mode async`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := app.GetCommandContext(cmd)
			if err != nil {
				return err
			}
			signer, err := cc.RequireSigner()
			if err != nil {
				return err
			}

			if _, err := sdk.GetFromBech32(args[0], cc.Config.Chain.Bech32Prefix); err != nil {
				return fmt.Errorf("invalid recipient %s: %w", args[0], err)
			}
			amount, err := sdk.ParseCoinsNormalized(args[1])
			if err != nil {
				return fmt.Errorf("invalid amount %s: %w", args[1], err)
			}

			memo, _ := cmd.Flags().GetString(FlagMemo)
			gas, _ := cmd.Flags().GetUint64(FlagGas)
			modeStr, _ := cmd.Flags().GetString(FlagBroadcastMode)
			mode, err := types.ParseBroadcastMode(modeStr)
			if err != nil {
				return err
			}

			result, err := cc.App.Send(cmd.Context(), signer, args[0], amount, memo, gas, mode)
			if result != nil {
				if printErr := app.PrintJSON(cmd, result); printErr != nil {
					return printErr
				}
			}
			return err
		},
	}

	cmd.Flags().String(FlagMemo, "", "transaction memo")
	cmd.Flags().Uint64(FlagGas, types.DefaultGasLimit, "gas limit")
	cmd.Flags().String(FlagBroadcastMode, "sync", "broadcast mode (sync|async)")
	return cmd
}
