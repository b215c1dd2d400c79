package types

import (
	stdmath "math"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/TrustedSmartChain/walletcore/client"
)

// GasFee is either an explicit coin amount or a price per gas unit.
type GasFee struct {
	Amount sdk.Coins
	Price  math.LegacyDec
	// Denom overrides the chain fee denom for price based fees.
	Denom string
}

func ExplicitFee(amount sdk.Coins) GasFee {
	return GasFee{Amount: amount}
}

func PriceFee(price math.LegacyDec, denom string) GasFee {
	return GasFee{Price: price, Denom: denom}
}

// ParseGasPrice parses a price such as "0.25uscrt".
func ParseGasPrice(s string) (GasFee, error) {
	dc, err := sdk.ParseDecCoin(s)
	if err != nil {
		return GasFee{}, ErrInvalidFee.Wrapf("gas price %q: %s", s, err)
	}
	return PriceFee(dc.Amount, dc.Denom), nil
}

// Compute returns the fee coins for gasLimit. A price based fee is
// ceil(price * gasLimit), falling back to the chain gas price and fee denom.
func (f GasFee) Compute(gasLimit uint64, chain client.ChainInfo) (sdk.Coins, error) {
	if !f.Amount.Empty() {
		if err := f.Amount.Validate(); err != nil {
			return nil, ErrInvalidFee.Wrap(err.Error())
		}
		return f.Amount, nil
	}

	price := f.Price
	if price.IsNil() {
		price = chain.GasPrice
	}
	if price.IsNil() || price.IsNegative() {
		return nil, ErrInvalidFee.Wrapf("no gas price for chain %s", chain.ChainID)
	}

	denom := f.Denom
	if denom == "" {
		denom = chain.FeeDenom
	}
	if err := sdk.ValidateDenom(denom); err != nil {
		return nil, ErrInvalidFee.Wrapf("fee denom %q: %s", denom, err)
	}
	if gasLimit > stdmath.MaxInt64 {
		return nil, ErrInvalidGasLimit.Wrapf("%d", gasLimit)
	}

	amount := price.MulInt64(int64(gasLimit)).Ceil().TruncateInt()
	return sdk.NewCoins(sdk.NewCoin(denom, amount)), nil
}
