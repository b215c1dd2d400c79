package cli

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"cosmossdk.io/log"
	codectypes "github.com/cosmos/cosmos-sdk/codec/types"
	"github.com/spf13/cobra"

	"github.com/TrustedSmartChain/walletcore/x/msgs/keeper"
	"github.com/TrustedSmartChain/walletcore/x/msgs/types"
)

const FlagPrefix = "prefix"

// OfflineAnnotation marks commands that need neither the store nor a node.
const OfflineAnnotation = "offline"

type protoOutput struct {
	TypeURL string          `json:"type_url"`
	Value   string          `json:"value"`
	JSON    json.RawMessage `json:"json"`
}

// NewConvertCmd returns the offline message conversion commands.
func NewConvertCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:                        "convert",
		Short:                      "Convert messages between the Amino and proto encodings",
		SuggestionsMinimumDistance: 2,
		Annotations:                map[string]string{OfflineAnnotation: "true"},
	}

	cmd.AddCommand(
		CmdAminoToProto(),
		CmdProtoToAmino(),
	)
	return cmd
}

func newKeeper() keeper.Keeper {
	return keeper.NewKeeper(types.NewDefaultRegistry(), log.NewNopLogger())
}

func CmdAminoToProto() *cobra.Command {
	return &cobra.Command{
		Use:         "amino-to-proto [amino-json]",
		Short:       "Encode an Amino JSON message as a packed proto message",
		Example:     `walletd convert amino-to-proto '{"type":"cosmos-sdk/MsgSend","value":{...}}'`,
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{OfflineAnnotation: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var msg types.AminoMsg
			if err := json.Unmarshal([]byte(args[0]), &msg); err != nil {
				return fmt.Errorf("invalid amino message: %w", err)
			}

			cm, err := newKeeper().AminoToProto(msg)
			if err != nil {
				return err
			}
			packed, err := cm.Encode()
			if err != nil {
				return err
			}
			protoJSON, err := cm.Descriptor().ToJSON(cm.Data, cm.Prefix)
			if err != nil {
				return err
			}

			return printJSON(cmd, protoOutput{
				TypeURL: packed.TypeUrl,
				Value:   base64.StdEncoding.EncodeToString(packed.Value),
				JSON:    protoJSON,
			})
		},
	}
}

func CmdProtoToAmino() *cobra.Command {
	cmd := &cobra.Command{
		Use:         "proto-to-amino [type-url] [base64-value]",
		Short:       "Decode a packed proto message into its Amino JSON form",
		Args:        cobra.ExactArgs(2),
		Annotations: map[string]string{OfflineAnnotation: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := base64.StdEncoding.DecodeString(args[1])
			if err != nil {
				return fmt.Errorf("invalid base64 value: %w", err)
			}
			prefix, _ := cmd.Flags().GetString(FlagPrefix)

			msg, err := newKeeper().ProtoToAmino(&codectypes.Any{TypeUrl: args[0], Value: value}, prefix)
			if err != nil {
				return err
			}
			return printJSON(cmd, msg)
		},
	}

	cmd.Flags().String(FlagPrefix, "", "bech32 account prefix of the target chain (required)")
	return cmd
}

func printJSON(cmd *cobra.Command, v any) error {
	bz, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(bz))
	return err
}
