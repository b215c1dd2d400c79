package types

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"io"
	"strings"

	"github.com/btcsuite/btcd/btcutil/base58"
	"golang.org/x/crypto/hkdf"

	"github.com/TrustedSmartChain/walletcore/client"
)

// ViewingKeyMaterial is a derived viewing key and the nonce it was derived with.
type ViewingKeyMaterial struct {
	Nonce [ViewingKeyNonceSize]byte
	Key   [ViewingKeySize]byte
}

// String encodes the key as the preamble followed by base58(nonce || key).
func (v ViewingKeyMaterial) String() string {
	raw := make([]byte, 0, ViewingKeyNonceSize+ViewingKeySize)
	raw = append(raw, v.Nonce[:]...)
	raw = append(raw, v.Key[:]...)
	return ViewingKeyPreamble + base58.Encode(raw)
}

func (v *ViewingKeyMaterial) Wipe() {
	clear(v.Key[:])
}

func ParseViewingKey(s string) (ViewingKeyMaterial, error) {
	var v ViewingKeyMaterial
	if !strings.HasPrefix(s, ViewingKeyPreamble) {
		return v, ErrInvalidViewingKey.Wrap("missing preamble")
	}
	raw := base58.Decode(strings.TrimPrefix(s, ViewingKeyPreamble))
	if len(raw) != ViewingKeyNonceSize+ViewingKeySize {
		return v, ErrInvalidViewingKey.Wrapf("decoded length %d", len(raw))
	}
	copy(v.Nonce[:], raw[:ViewingKeyNonceSize])
	copy(v.Key[:], raw[ViewingKeyNonceSize:])
	return v, nil
}

// NoncePolicy picks the nonce of the next viewing key. In priority order:
// Explicit, the nonce of Previous plus one, a hash of a non-conforming
// Previous, then random bytes.
type NoncePolicy struct {
	Explicit *[ViewingKeyNonceSize]byte
	Previous string

	// Rand defaults to crypto/rand.
	Rand io.Reader
}

func ExplicitNonce(nonce [ViewingKeyNonceSize]byte) NoncePolicy {
	return NoncePolicy{Explicit: &nonce}
}

func IncrementNonce(previous string) NoncePolicy {
	return NoncePolicy{Previous: previous}
}

func (p NoncePolicy) Nonce() ([ViewingKeyNonceSize]byte, error) {
	var nonce [ViewingKeyNonceSize]byte
	switch {
	case p.Explicit != nil:
		return *p.Explicit, nil

	case p.Previous != "":
		if prev, err := ParseViewingKey(p.Previous); err == nil {
			binary.BigEndian.PutUint32(nonce[:], binary.BigEndian.Uint32(prev.Nonce[:])+1)
			prev.Wipe()
			return nonce, nil
		}
		sum := sha256.Sum256([]byte(p.Previous))
		copy(nonce[:], sum[:ViewingKeyNonceSize])
		return nonce, nil
	}

	r := p.Rand
	if r == nil {
		r = rand.Reader
	}
	_, err := io.ReadFull(r, nonce[:])
	return nonce, err
}

// ViewingKeyInfo is the HKDF info of a viewing key: namespace:reference:contract: || nonce.
func ViewingKeyInfo(chain client.ChainInfo, contract string, nonce [ViewingKeyNonceSize]byte) []byte {
	prefix := chain.Namespace() + ":" + chain.Reference() + ":" + contract + ":"
	info := make([]byte, 0, len(prefix)+ViewingKeyNonceSize)
	info = append(info, prefix...)
	return append(info, nonce[:]...)
}

// DeriveViewingKey expands the utility key seed for one token contract.
func DeriveViewingKey(seed []byte, chain client.ChainInfo, contract string, nonce [ViewingKeyNonceSize]byte) (ViewingKeyMaterial, error) {
	v := ViewingKeyMaterial{Nonce: nonce}
	r := hkdf.New(sha256.New, seed, nil, ViewingKeyInfo(chain, contract, nonce))
	if _, err := io.ReadFull(r, v.Key[:]); err != nil {
		return ViewingKeyMaterial{}, err
	}
	return v, nil
}
