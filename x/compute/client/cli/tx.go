package cli

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/TrustedSmartChain/walletcore/app"
	"github.com/TrustedSmartChain/walletcore/x/compute/types"
)

const (
	FlagNonce = "nonce"
	FlagStore = "store"
)

// NewViewingKeyCmd returns the viewing key commands.
func NewViewingKeyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:                        "viewing-key",
		Short:                      "Derive and manage token viewing keys",
		SuggestionsMinimumDistance: 2,
	}

	cmd.AddCommand(
		CmdDeriveViewingKey(),
		CmdListViewingKeys(),
	)
	return cmd
}

func CmdDeriveViewingKey() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "derive [contract]",
		Short: "Derive a viewing key of the configured account for a token contract",
		Long: `Derive a viewing key from the account utility key. Without --nonce the nonce of the active
key is incremented, or a random nonce is used when there is none. --store makes the
derived key the active key.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := app.GetCommandContext(cmd)
			if err != nil {
				return err
			}
			account, err := cc.Account()
			if err != nil {
				return err
			}
			chain, contract := cc.App.Chain(), args[0]
			k := cc.App.ComputeKeeper

			var policy types.NoncePolicy
			nonceHex, _ := cmd.Flags().GetString(FlagNonce)
			switch {
			case nonceHex != "":
				bz, err := hex.DecodeString(nonceHex)
				if err != nil || len(bz) != types.ViewingKeyNonceSize {
					return fmt.Errorf("nonce must be %d hex encoded bytes", types.ViewingKeyNonceSize)
				}
				policy = types.ExplicitNonce([types.ViewingKeyNonceSize]byte(bz))
			default:
				if prev, err := k.ActiveViewingKey(chain, account, contract); err == nil {
					policy = types.IncrementNonce(prev.String())
					prev.Wipe()
				}
			}

			vk, err := k.DeriveViewingKey(cmd.Context(), account, chain, contract, policy)
			if err != nil {
				return err
			}
			defer vk.Wipe()

			if store, _ := cmd.Flags().GetBool(FlagStore); store {
				if err := k.StoreViewingKey(chain, account, contract, vk); err != nil {
					return err
				}
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), vk.String())
			return err
		},
	}

	cmd.Flags().String(FlagNonce, "", "explicit 4 byte nonce, hex encoded")
	cmd.Flags().Bool(FlagStore, false, "store the derived key as the active key")
	return cmd
}

func CmdListViewingKeys() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the contracts the configured account holds a viewing key for",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc, err := app.GetCommandContext(cmd)
			if err != nil {
				return err
			}
			account, err := cc.Account()
			if err != nil {
				return err
			}
			contracts, err := cc.App.ComputeKeeper.ViewingKeyContracts(cc.App.Chain(), account)
			if err != nil {
				return err
			}
			return app.PrintJSON(cmd, contracts)
		},
	}
}
