package types

import (
	"context"

	cryptotypes "github.com/cosmos/cosmos-sdk/crypto/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// Signer is the part of the signing-key capability envelopes need.
type Signer interface {
	Address() sdk.AccAddress
	PubKey() cryptotypes.PubKey
	ECDH(otherPubKey []byte) ([]byte, error)
}

// ComputeClient defines the confidential compute endpoints of one chain.
type ComputeClient interface {
	ConsensusIOKey(ctx context.Context) ([]byte, error)
	CodeHashByContract(ctx context.Context, contract string) (string, error)
	QueryContract(ctx context.Context, contract string, encryptedQuery []byte) ([]byte, error)
}

// SecretStore holds encrypted-at-rest wallet secrets. BorrowPlaintext hands
// the decrypted value to fn and wipes it once fn returns.
type SecretStore interface {
	Get(path string) ([]byte, bool, error)
	Put(path string, value []byte) error
	Filter(prefix string) ([]string, error)
	BorrowPlaintext(path string, fn func(plaintext []byte) error) error
}
