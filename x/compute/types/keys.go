package types

import "strings"

const (
	ModuleName = "compute"

	// NonceSize is the per-message transaction nonce carried in every envelope.
	NonceSize = 32
	// CodeHashSize is the binary length of a contract code hash.
	CodeHashSize = 32
	// PubKeySize is a compressed secp256k1 public key.
	PubKeySize = 33

	// ViewingKeyPreamble prefixes every encoded viewing key.
	ViewingKeyPreamble  = "api_key_"
	ViewingKeyNonceSize = 4
	ViewingKeySize      = 32

	// TxKeyInfoPrefix is followed by the chain id in the HKDF info of
	// transaction encryption keys.
	TxKeyInfoPrefix = "walletcore/compute/"
)

// hkdfSalt is shared with the enclave side and must not change.
var hkdfSalt = []byte{
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x02, 0x4b, 0xea, 0xd8, 0xdf, 0x69, 0x99,
	0x08, 0x52, 0xc2, 0x02, 0xdb, 0x0e, 0x00, 0x97, 0xc1, 0xa1, 0x2e, 0xa6, 0x37, 0xd7, 0xe9, 0x6d,
}

// UtilityKeyPath locates the seed viewing keys are derived from.
func UtilityKeyPath(account string) string {
	return strings.Join([]string{"utility", account}, "/")
}

// ViewingKeyPath locates the active viewing key of an account for one token.
func ViewingKeyPath(chainID, account, contract string) string {
	return strings.Join([]string{"viewing_key", chainID, account, contract}, "/")
}
