package types

import (
	"encoding/json"
	"strconv"

	sdk "github.com/cosmos/cosmos-sdk/types"
	txtypes "github.com/cosmos/cosmos-sdk/types/tx"

	msgtypes "github.com/TrustedSmartChain/walletcore/x/msgs/types"
)

// DirectSignBytes returns the SIGN_MODE_DIRECT document for a body and auth info.
func DirectSignBytes(bodyBytes, authInfoBytes []byte, state SignerState) ([]byte, error) {
	doc := txtypes.SignDoc{
		BodyBytes:     bodyBytes,
		AuthInfoBytes: authInfoBytes,
		ChainId:       state.ChainID,
		AccountNumber: state.AccountNumber,
	}
	return doc.Marshal()
}

type stdFee struct {
	Amount sdk.Coins `json:"amount"`
	Gas    string    `json:"gas"`
}

type stdSignDoc struct {
	AccountNumber string              `json:"account_number"`
	ChainID       string              `json:"chain_id"`
	Fee           stdFee              `json:"fee"`
	Memo          string              `json:"memo"`
	Msgs          []msgtypes.AminoMsg `json:"msgs"`
	Sequence      string              `json:"sequence"`
	TimeoutHeight string              `json:"timeout_height,omitempty"`
}

// AminoSignBytes returns the sorted legacy StdSignDoc JSON.
func AminoSignBytes(state SignerState, fee sdk.Coins, gasLimit uint64, memo string, msgs []msgtypes.AminoMsg, timeoutHeight uint64) ([]byte, error) {
	doc := stdSignDoc{
		AccountNumber: strconv.FormatUint(state.AccountNumber, 10),
		ChainID:       state.ChainID,
		Fee:           stdFee{Amount: fee, Gas: strconv.FormatUint(gasLimit, 10)},
		Memo:          memo,
		Msgs:          msgs,
		Sequence:      strconv.FormatUint(state.Sequence, 10),
	}
	if timeoutHeight > 0 {
		doc.TimeoutHeight = strconv.FormatUint(timeoutHeight, 10)
	}
	bz, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	return sdk.MustSortJSON(bz), nil
}
