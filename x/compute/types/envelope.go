package types

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"strings"
	"sync"

	"golang.org/x/crypto/hkdf"
)

type EnvelopeState int

const (
	StateNoKey EnvelopeState = iota
	StateKeyDerived
	StateEncrypted
	StateSent
)

func (s EnvelopeState) String() string {
	switch s {
	case StateNoKey:
		return "no_key"
	case StateKeyDerived:
		return "key_derived"
	case StateEncrypted:
		return "encrypted"
	case StateSent:
		return "sent"
	default:
		return "unknown"
	}
}

// DeriveTxKey expands shared || nonce into an AES-256 key and a GCM nonce.
// Callers clear both once done.
func DeriveTxKey(shared, nonce []byte, chainID string) (key, iv []byte, err error) {
	ikm := make([]byte, 0, len(shared)+len(nonce))
	ikm = append(ikm, shared...)
	ikm = append(ikm, nonce...)
	defer clear(ikm)

	out := make([]byte, 32+12)
	r := hkdf.New(sha256.New, ikm, hkdfSalt, []byte(TxKeyInfoPrefix+chainID))
	if _, err := io.ReadFull(r, out); err != nil {
		clear(out)
		return nil, nil, err
	}
	return out[:32], out[32:], nil
}

// NormalizeCodeHash lowercases a hex code hash and checks its length.
func NormalizeCodeHash(codeHash string) (string, error) {
	h := strings.ToLower(strings.TrimPrefix(codeHash, "0x"))
	bz, err := hex.DecodeString(h)
	if err != nil || len(bz) != CodeHashSize {
		return "", ErrInvalidCodeHash.Wrapf("%q", codeHash)
	}
	return h, nil
}

// Envelope is one encrypted interaction with a contract. It keeps the nonce
// of the message it sealed so the matching response can be opened exactly
// once.
type Envelope struct {
	ChainID string
	Nonce   [NonceSize]byte

	signer       Signer
	consensusKey []byte

	mu       sync.Mutex
	state    EnvelopeState
	consumed bool
}

func NewEnvelope(signer Signer, chainID string, consensusKey []byte, nonce [NonceSize]byte) *Envelope {
	return &Envelope{
		ChainID:      chainID,
		Nonce:        nonce,
		signer:       signer,
		consensusKey: consensusKey,
	}
}

func (e *Envelope) State() EnvelopeState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// PubKey is the compressed signer key the enclave uses for its side of ECDH.
func (e *Envelope) PubKey() []byte {
	return e.signer.PubKey().Bytes()
}

func (e *Envelope) aead() (cipher.AEAD, []byte, func(), error) {
	shared, err := e.signer.ECDH(e.consensusKey)
	if err != nil {
		return nil, nil, nil, err
	}
	key, iv, err := DeriveTxKey(shared, e.Nonce[:], e.ChainID)
	clear(shared)
	if err != nil {
		return nil, nil, nil, err
	}
	wipe := func() {
		clear(key)
		clear(iv)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		wipe()
		return nil, nil, nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		wipe()
		return nil, nil, nil, err
	}
	return gcm, iv, wipe, nil
}

// Encrypt seals hex(codeHash) || msg and returns nonce || pubkey || ciphertext.
func (e *Envelope) Encrypt(codeHash string, msg []byte) ([]byte, error) {
	h, err := NormalizeCodeHash(codeHash)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != StateNoKey {
		return nil, ErrInvalidEnvelope.Wrapf("encrypt in state %s", e.state)
	}

	gcm, iv, wipe, err := e.aead()
	if err != nil {
		return nil, err
	}
	defer wipe()
	e.state = StateKeyDerived

	plaintext := make([]byte, 0, len(h)+len(msg))
	plaintext = append(plaintext, h...)
	plaintext = append(plaintext, msg...)
	defer clear(plaintext)

	pub := e.signer.PubKey().Bytes()
	out := make([]byte, 0, NonceSize+len(pub)+len(plaintext)+gcm.Overhead())
	out = append(out, e.Nonce[:]...)
	out = append(out, pub...)
	out = gcm.Seal(out, iv, plaintext, nil)

	e.state = StateEncrypted
	return out, nil
}

// MarkSent records that the sealed message left the process.
func (e *Envelope) MarkSent() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == StateEncrypted {
		e.state = StateSent
	}
}

// Decrypt opens a response to the sealed message. Only one attempt is
// allowed per envelope, successful or not.
func (e *Envelope) Decrypt(ciphertext []byte) ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.consumed {
		return nil, ErrNonceConsumed
	}
	if e.state < StateEncrypted {
		return nil, ErrInvalidEnvelope.Wrapf("decrypt in state %s", e.state)
	}
	e.consumed = true

	gcm, iv, wipe, err := e.aead()
	if err != nil {
		return nil, err
	}
	defer wipe()

	plaintext, err := gcm.Open(nil, iv, ciphertext, nil)
	if err != nil {
		return nil, ErrDecrypt.Wrap("response does not match envelope nonce")
	}
	return plaintext, nil
}

// SplitEnvelope parses nonce || pubkey || ciphertext.
func SplitEnvelope(bz []byte) (nonce [NonceSize]byte, pubKey, ciphertext []byte, err error) {
	if len(bz) < NonceSize+PubKeySize {
		return nonce, nil, nil, ErrInvalidEnvelope.Wrapf("length %d", len(bz))
	}
	copy(nonce[:], bz[:NonceSize])
	return nonce, bz[NonceSize : NonceSize+PubKeySize], bz[NonceSize+PubKeySize:], nil
}
