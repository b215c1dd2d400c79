package cli

import (
	"encoding/base64"
	"fmt"

	"github.com/cosmos/cosmos-sdk/types/query"
	"github.com/spf13/cobra"

	"github.com/TrustedSmartChain/walletcore/app"
	"github.com/TrustedSmartChain/walletcore/x/incidents/types"
)

const (
	FlagWatch    = "watch"
	FlagType     = "type"
	FlagLimit    = "limit"
	FlagOffset   = "offset"
	FlagPageKey  = "page-key"
	FlagReverse  = "reverse"
	FlagCountAll = "count-total"
)

// CmdSync returns the command running sync passes for an address.
func CmdSync() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync [address]",
		Short: "Synchronize the incoming and outgoing transactions of an address",
		Long: `Run one sync pass over the transactions sent and received by the address and print the
newly found incidents. With --watch the command keeps following the node websocket.
The address defaults to the configured account.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := app.GetCommandContext(cmd)
			if err != nil {
				return err
			}
			account, err := addressArg(cc, args)
			if err != nil {
				return err
			}

			if watch, _ := cmd.Flags().GetBool(FlagWatch); watch {
				return cc.App.Watch(cmd.Context(), cc.Events, account)
			}

			emitted, err := cc.App.SyncAccount(cmd.Context(), account)
			if printErr := app.PrintJSON(cmd, emitted); printErr != nil {
				return printErr
			}
			return err
		},
	}

	cmd.Flags().Bool(FlagWatch, false, "keep syncing on every new transaction")
	return cmd
}

// CmdIncidents returns the incidents query commands.
func CmdIncidents() *cobra.Command {
	cmd := &cobra.Command{
		Use:                        types.ModuleName,
		Short:                      "Query the local incident ledger",
		SuggestionsMinimumDistance: 2,
	}
	cmd.AddCommand(CmdListIncidents())
	return cmd
}

func CmdListIncidents() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list [address]",
		Short: "List the recorded incidents of an address, newest first",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := app.GetCommandContext(cmd)
			if err != nil {
				return err
			}
			account, err := addressArg(cc, args)
			if err != nil {
				return err
			}

			typ, _ := cmd.Flags().GetString(FlagType)
			page, err := readPageRequest(cmd)
			if err != nil {
				return err
			}

			resp, err := cc.App.IncidentsKeeper.Incidents(cmd.Context(), &types.IncidentsRequest{
				ChainID:    cc.Config.Chain.ID,
				Account:    account,
				Type:       types.IncidentType(typ),
				Pagination: page,
			})
			if err != nil {
				return err
			}
			return app.PrintJSON(cmd, resp)
		},
	}

	cmd.Flags().String(FlagType, "", "only list incidents of this type (tx_in|tx_out|token_in|token_out)")
	cmd.Flags().Uint64(FlagLimit, types.DefaultPageLimit, "page size")
	cmd.Flags().Uint64(FlagOffset, 0, "entries to skip, ignored with --page-key")
	cmd.Flags().String(FlagPageKey, "", "base64 next_key of the previous page")
	cmd.Flags().Bool(FlagReverse, false, "list oldest first")
	cmd.Flags().Bool(FlagCountAll, false, "count all matching incidents")
	return cmd
}

func readPageRequest(cmd *cobra.Command) (*query.PageRequest, error) {
	limit, _ := cmd.Flags().GetUint64(FlagLimit)
	offset, _ := cmd.Flags().GetUint64(FlagOffset)
	reverse, _ := cmd.Flags().GetBool(FlagReverse)
	countTotal, _ := cmd.Flags().GetBool(FlagCountAll)
	keyStr, _ := cmd.Flags().GetString(FlagPageKey)

	var key []byte
	if keyStr != "" {
		var err error
		if key, err = base64.StdEncoding.DecodeString(keyStr); err != nil {
			return nil, fmt.Errorf("invalid page key: %w", err)
		}
	}
	return &query.PageRequest{Key: key, Offset: offset, Limit: limit, CountTotal: countTotal, Reverse: reverse}, nil
}

func addressArg(cc *app.CommandContext, args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	return cc.Account()
}
