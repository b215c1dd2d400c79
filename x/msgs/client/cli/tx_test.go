package cli_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/TrustedSmartChain/walletcore/x/msgs/client/cli"
	"github.com/TrustedSmartChain/walletcore/x/msgs/types"
)

func run(t *testing.T, args ...string) []byte {
	t.Helper()
	cmd := cli.NewConvertCmd()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetArgs(args)
	require.NoError(t, cmd.Execute())
	return out.Bytes()
}

func TestConvertRoundTrip(t *testing.T) {
	from := sdk.MustBech32ifyAddressBytes("cosmos", bytes.Repeat([]byte{1}, 20))
	to := sdk.MustBech32ifyAddressBytes("cosmos", bytes.Repeat([]byte{2}, 20))
	amino := `{"type":"cosmos-sdk/MsgSend","value":{"from_address":"` + from + `","to_address":"` + to + `","amount":[{"denom":"uatom","amount":"100"}]}}`

	var packed struct {
		TypeURL string         `json:"type_url"`
		Value   string         `json:"value"`
		JSON    map[string]any `json:"json"`
	}
	require.NoError(t, json.Unmarshal(run(t, "amino-to-proto", amino), &packed))
	require.Equal(t, types.TypeURLMsgSend, packed.TypeURL)
	require.Equal(t, from, packed.JSON["fromAddress"])

	back := run(t, "proto-to-amino", packed.TypeURL, packed.Value, "--prefix", "cosmos")
	require.JSONEq(t, amino, string(back))
}

func TestConvertRequiresPrefix(t *testing.T) {
	cmd := cli.NewConvertCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"proto-to-amino", types.TypeURLMsgSend, ""})
	require.ErrorIs(t, cmd.Execute(), types.ErrMissingPrefix)
}
