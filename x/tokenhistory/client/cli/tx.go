package cli

import (
	"github.com/spf13/cobra"

	"github.com/TrustedSmartChain/walletcore/app"
	"github.com/TrustedSmartChain/walletcore/x/tokenhistory/types"
)

const (
	FlagCodeHash = "code-hash"
	FlagKind     = "kind"
)

// NewHistoryCmd returns the token history commands.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:                        "history",
		Short:                      "Cache and inspect confidential token history",
		SuggestionsMinimumDistance: 2,
	}

	cmd.AddCommand(
		CmdRefreshHistory(),
		CmdShowHistory(),
	)
	return cmd
}

func CmdRefreshHistory() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "refresh [contract]",
		Short: "Fetch new history records of a token with the active viewing key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := app.GetCommandContext(cmd)
			if err != nil {
				return err
			}
			signer, err := cc.RequireSigner()
			if err != nil {
				return err
			}

			codeHash, _ := cmd.Flags().GetString(FlagCodeHash)
			kind, _ := cmd.Flags().GetString(FlagKind)

			fresh, err := cc.App.RefreshHistory(cmd.Context(), signer, args[0], codeHash, types.Kind(kind))
			if err != nil {
				return err
			}
			return app.PrintJSON(cmd, fresh)
		},
	}

	cmd.Flags().String(FlagCodeHash, "", "contract code hash, looked up when empty")
	cmd.Flags().String(FlagKind, string(types.KindTransfer), "history kind (transfer|transaction)")
	return cmd
}

func CmdShowHistory() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show [contract]",
		Short: "Print the cached history of a token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := app.GetCommandContext(cmd)
			if err != nil {
				return err
			}
			account, err := cc.Account()
			if err != nil {
				return err
			}

			kind, _ := cmd.Flags().GetString(FlagKind)
			entries, err := cc.App.TokenHistoryKeeper.History(cc.Config.Chain.ID, account, args[0], types.Kind(kind))
			if err != nil {
				return err
			}
			return app.PrintJSON(cmd, entries)
		},
	}

	cmd.Flags().String(FlagKind, string(types.KindTransfer), "history kind (transfer|transaction)")
	return cmd
}
