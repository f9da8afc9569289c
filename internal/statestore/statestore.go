package statestore

import (
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sync"

	"onlineshop/internal/cart"
	"onlineshop/internal/session"
)

// Store persists the client's auth and cart partitions, and only those,
// as one JSON document under a single namespaced key. Everything else is
// session-transient and never written.
type Store struct {
	mu     sync.Mutex
	path   string
	logger *log.Logger
	state  partitions
}

type persistedAuth struct {
	Token    string           `json:"token"`
	Identity session.Identity `json:"identity"`
}

type partitions struct {
	Auth *persistedAuth `json:"auth,omitempty"`
	Cart []cart.Line    `json:"cart,omitempty"`
}

type document struct {
	Root partitions `json:"onlineshop"`
}

func New(path string, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Store{path: path, logger: logger}
}

// DefaultPath places the state file under the user config directory.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".onlineshop-state.json"
	}
	return filepath.Join(dir, "onlineshop", "state.json")
}

// Load reads the persisted document. A missing or corrupt file yields empty
// state rather than an error; the client starts fresh.
func (s *Store) Load() {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Printf("statestore: read %s: %v", s.path, err)
		}
		s.state = partitions{}
		return
	}
	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		s.logger.Printf("statestore: corrupt state file %s: %v", s.path, err)
		s.state = partitions{}
		return
	}
	s.state = doc.Root
}

// Auth returns the persisted session, if any.
func (s *Store) Auth() (token string, identity session.Identity, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Auth == nil || s.state.Auth.Token == "" {
		return "", session.Identity{}, false
	}
	return s.state.Auth.Token, s.state.Auth.Identity, true
}

// CartLines returns the persisted cart partition.
func (s *Store) CartLines() []cart.Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	lines := make([]cart.Line, len(s.state.Cart))
	copy(lines, s.state.Cart)
	return lines
}

// SaveAuth implements session.Persister.
func (s *Store) SaveAuth(token string, identity session.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Auth = &persistedAuth{Token: token, Identity: identity}
	return s.writeLocked()
}

// ClearAuth implements session.Persister. The cart partition survives a
// logout.
func (s *Store) ClearAuth() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Auth = nil
	return s.writeLocked()
}

// SaveCart replaces the persisted cart partition. Wired as a cart store
// subscriber so every mutation is flushed.
func (s *Store) SaveCart(lines []cart.Line) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Cart = lines
	return s.writeLocked()
}

func (s *Store) writeLocked() error {
	raw, err := json.MarshalIndent(document{Root: s.state}, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return err
		}
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
