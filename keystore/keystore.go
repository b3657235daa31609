// Package keystore is a role-tagged named key store: every key material
// blob produced by Setup/KeyGen is addressed by name and tagged with the
// role it plays (public parameters, a secret key, a master secret).
package keystore

import (
	"fmt"
	"sync"

	"github.com/openabe-go/oabe/abeerr"
)

// Role classifies the kind of key material stored under a name.
type Role int

const (
	RolePublic Role = iota
	RoleSecret
	RoleParams
)

type entry struct {
	role Role
	body []byte
}

// Store is a flat name -> (role, body) map. It is not safe for concurrent
// use; wrap with Synchronized for shared access across goroutines.
type Store struct {
	entries map[string]entry
}

// New returns an empty Store.
func New() *Store { return &Store{entries: map[string]entry{}} }

// Add inserts a new named key. It never implicitly overwrites an existing
// entry under the same name.
func (s *Store) Add(name string, role Role, body []byte) error {
	if _, exists := s.entries[name]; exists {
		return fmt.Errorf("%w: key %q already exists", abeerr.ErrInvalidInput, name)
	}
	s.entries[name] = entry{role: role, body: append([]byte{}, body...)}
	return nil
}

// Get returns the body and role stored under name.
func (s *Store) Get(name string) ([]byte, Role, error) {
	e, ok := s.entries[name]
	if !ok {
		return nil, 0, fmt.Errorf("%w: no key named %q", abeerr.ErrInvalidInput, name)
	}
	return e.body, e.role, nil
}

// GetByRole returns the names of every entry tagged with role.
func (s *Store) GetByRole(role Role) []string {
	var out []string
	for name, e := range s.entries {
		if e.role == role {
			out = append(out, name)
		}
	}
	return out
}

// Delete removes name from the store. It is a no-op if name is absent.
func (s *Store) Delete(name string) { delete(s.entries, name) }

// Synchronized wraps a Store with a mutex for use across goroutines.
type Synchronized struct {
	mu    sync.RWMutex
	store *Store
}

// NewSynchronized returns a mutex-guarded, empty Store.
func NewSynchronized() *Synchronized { return &Synchronized{store: New()} }

func (s *Synchronized) Add(name string, role Role, body []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Add(name, role, body)
}

func (s *Synchronized) Get(name string) ([]byte, Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store.Get(name)
}

func (s *Synchronized) GetByRole(role Role) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store.GetByRole(role)
}

func (s *Synchronized) Delete(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store.Delete(name)
}
