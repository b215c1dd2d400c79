package types

import (
	dcrsecp "github.com/decred/dcrd/dcrec/secp256k1/v4"

	"github.com/cosmos/cosmos-sdk/crypto/keys/secp256k1"
	cryptotypes "github.com/cosmos/cosmos-sdk/crypto/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

var _ Signer = (*LocalSigner)(nil)

// LocalSigner holds an in-process secp256k1 key. Signatures are deterministic
// (RFC 6979).
type LocalSigner struct {
	key *secp256k1.PrivKey
}

func NewLocalSigner(key cryptotypes.PrivKey) (*LocalSigner, error) {
	k, ok := key.(*secp256k1.PrivKey)
	if !ok {
		return nil, ErrWrongKeyType.Wrapf("%T", key)
	}
	return &LocalSigner{key: k}, nil
}

// LocalSignerFromSecret derives the key from secret with sha256.
func LocalSignerFromSecret(secret []byte) *LocalSigner {
	return &LocalSigner{key: secp256k1.GenPrivKeyFromSecret(secret)}
}

func (s *LocalSigner) Address() sdk.AccAddress {
	return sdk.AccAddress(s.key.PubKey().Address())
}

func (s *LocalSigner) PubKey() cryptotypes.PubKey {
	return s.key.PubKey()
}

func (s *LocalSigner) Sign(msg []byte) ([]byte, error) {
	return s.key.Sign(msg)
}

// ECDH returns the x coordinate of the shared point with otherPubKey.
func (s *LocalSigner) ECDH(otherPubKey []byte) ([]byte, error) {
	pub, err := dcrsecp.ParsePubKey(otherPubKey)
	if err != nil {
		return nil, ErrWrongKeyType.Wrapf("peer public key: %s", err)
	}
	priv := dcrsecp.PrivKeyFromBytes(s.key.Key)
	defer priv.Zero()
	return dcrsecp.GenerateSharedSecret(priv, pub), nil
}
