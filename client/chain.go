package client

import (
	"cosmossdk.io/math"
)

// ChainInfo is the chain context every core operation takes explicitly.
type ChainInfo struct {
	ChainID      string `mapstructure:"id"`
	Bech32Prefix string `mapstructure:"bech32_prefix"`
	// FeeDenom is the first-listed native fee currency.
	FeeDenom string `mapstructure:"fee_denom"`
	// GasPrice is the default price per gas unit in FeeDenom.
	GasPrice math.LegacyDec `mapstructure:"-"`
}

// Namespace and Reference split a CAIP-2 style chain identity. Cosmos chains
// use the "cosmos" namespace with the chain id as reference.
func (c ChainInfo) Namespace() string { return "cosmos" }

func (c ChainInfo) Reference() string { return c.ChainID }

// AccountInfo is the live signer state of an account.
type AccountInfo struct {
	Address       string
	AccountNumber uint64
	Sequence      uint64
}
