package app

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"
	"sync"

	dbm "github.com/cosmos/cosmos-db"
	"golang.org/x/crypto/hkdf"

	computetypes "github.com/TrustedSmartChain/walletcore/x/compute/types"
)

var _ computetypes.SecretStore = (*DBSecretStore)(nil)

var secretPrefix = []byte("secret/")

const secretKeyInfo = "walletd/secret-store"

// DBSecretStore keeps secrets in the wallet database sealed with AES-256-GCM
// under a key derived from a passphrase. The path is bound as additional
// data, so a sealed value cannot be moved to another path.
type DBSecretStore struct {
	db   dbm.DB
	mu   sync.Mutex
	aead cipher.AEAD
	rand io.Reader
}

func NewDBSecretStore(db dbm.DB, passphrase []byte) (*DBSecretStore, error) {
	if len(passphrase) == 0 {
		return nil, fmt.Errorf("secret store: empty passphrase")
	}

	key := make([]byte, 32)
	defer clear(key)
	if _, err := io.ReadFull(hkdf.New(sha256.New, passphrase, secretPrefix, []byte(secretKeyInfo)), key); err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &DBSecretStore{db: db, aead: aead, rand: rand.Reader}, nil
}

func secretKey(path string) []byte {
	return append(append([]byte{}, secretPrefix...), path...)
}

func (s *DBSecretStore) open(path string, sealed []byte) ([]byte, error) {
	n := s.aead.NonceSize()
	if len(sealed) < n {
		return nil, fmt.Errorf("secret store: %s: truncated value", path)
	}
	plaintext, err := s.aead.Open(nil, sealed[:n], sealed[n:], []byte(path))
	if err != nil {
		return nil, fmt.Errorf("secret store: %s: wrong passphrase or corrupt value", path)
	}
	return plaintext, nil
}

func (s *DBSecretStore) Get(path string) ([]byte, bool, error) {
	sealed, err := s.db.Get(secretKey(path))
	if err != nil {
		return nil, false, err
	}
	if sealed == nil {
		return nil, false, nil
	}
	plaintext, err := s.open(path, sealed)
	if err != nil {
		return nil, false, err
	}
	return plaintext, true, nil
}

func (s *DBSecretStore) Put(path string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	nonce := make([]byte, s.aead.NonceSize())
	if _, err := io.ReadFull(s.rand, nonce); err != nil {
		return err
	}
	sealed := s.aead.Seal(nonce, nonce, value, []byte(path))
	return s.db.SetSync(secretKey(path), sealed)
}

// Filter lists the stored paths under prefix in lexical order.
func (s *DBSecretStore) Filter(prefix string) ([]string, error) {
	start := secretKey(prefix)
	iterator, err := s.db.Iterator(start, prefixEnd(start))
	if err != nil {
		return nil, err
	}
	defer iterator.Close()

	var out []string
	for ; iterator.Valid(); iterator.Next() {
		out = append(out, string(iterator.Key()[len(secretPrefix):]))
	}
	return out, iterator.Error()
}

func (s *DBSecretStore) BorrowPlaintext(path string, fn func([]byte) error) error {
	plaintext, ok, err := s.Get(path)
	if err != nil {
		return err
	}
	if !ok {
		return computetypes.ErrSecretNotFound.Wrap(path)
	}
	defer clear(plaintext)
	return fn(plaintext)
}

func prefixEnd(prefix []byte) []byte {
	end := append([]byte{}, prefix...)
	for i := len(end) - 1; i >= 0; i-- {
		end[i]++
		if end[i] != 0 {
			return end[:i+1]
		}
	}
	return nil
}
