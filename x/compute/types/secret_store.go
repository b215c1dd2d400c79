package types

import (
	"sort"
	"strings"
	"sync"
)

var _ SecretStore = (*MemSecretStore)(nil)

// MemSecretStore keeps secrets in process memory.
type MemSecretStore struct {
	mu      sync.RWMutex
	secrets map[string][]byte
}

func NewMemSecretStore() *MemSecretStore {
	return &MemSecretStore{secrets: make(map[string][]byte)}
}

func (s *MemSecretStore) Get(path string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.secrets[path]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (s *MemSecretStore) Put(path string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.secrets[path]; ok {
		clear(old)
	}
	s.secrets[path] = append([]byte(nil), value...)
	return nil
}

// Filter lists the stored paths under prefix in lexical order.
func (s *MemSecretStore) Filter(prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []string
	for p := range s.secrets {
		if strings.HasPrefix(p, prefix) {
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (s *MemSecretStore) BorrowPlaintext(path string, fn func([]byte) error) error {
	s.mu.RLock()
	v, ok := s.secrets[path]
	var borrowed []byte
	if ok {
		borrowed = append([]byte(nil), v...)
	}
	s.mu.RUnlock()
	if !ok {
		return ErrSecretNotFound.Wrap(path)
	}
	defer clear(borrowed)
	return fn(borrowed)
}
