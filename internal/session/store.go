package session

import (
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/maheshrc27/postflow-cli/pkg/utils"
)

// sentinelToken is a placeholder some older state files carry; it must never
// be treated as a real session.
const sentinelToken = "dummy token"

const stateFileName = "session.json"

// Store holds the client-side proof of authentication. There are exactly two
// states: unauthenticated (CurrentToken returns "") and authenticated.
type Store interface {
	SetToken(token string) error
	ClearToken() error
	CurrentToken() string
}

// MemoryStore keeps the token in memory only. Used as a test double and for
// one-shot commands that should not touch the state file.
type MemoryStore struct {
	mu    sync.RWMutex
	token string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) SetToken(token string) error {
	if token == "" || token == sentinelToken {
		return errors.New("refusing to store empty or placeholder token")
	}
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) ClearToken() error {
	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) CurrentToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

type sessionState struct {
	Token string `json:"token"`
}

// FileStore persists the token under the state directory, encrypted at rest
// with AES-GCM. Last writer wins; reads always reflect the most recent
// SetToken/ClearToken call.
type FileStore struct {
	mu       sync.RWMutex
	token    string
	stateDir string
	key      []byte
}

func NewFileStore(stateDir, secretKey string) (*FileStore, error) {
	if err := os.MkdirAll(stateDir, 0o700); err != nil {
		return nil, err
	}
	s := &FileStore{
		stateDir: stateDir,
		key:      []byte(secretKey),
	}
	s.load()
	return s, nil
}

func (s *FileStore) statePath() string {
	return filepath.Join(s.stateDir, stateFileName)
}

// load restores a previously persisted token. A missing or unreadable state
// file leaves the store unauthenticated rather than failing.
func (s *FileStore) load() {
	data, err := os.ReadFile(s.statePath())
	if err != nil {
		return
	}

	var state sessionState
	if err := json.Unmarshal(data, &state); err != nil {
		slog.Info("discarding unreadable session state", "error", err)
		return
	}
	if state.Token == "" {
		return
	}

	token, err := utils.Decrypt(state.Token, s.key)
	if err != nil {
		slog.Info("discarding undecryptable session state", "error", err)
		return
	}
	if token == "" || token == sentinelToken {
		return
	}
	s.token = token
}

func (s *FileStore) SetToken(token string) error {
	if token == "" || token == sentinelToken {
		return errors.New("refusing to store empty or placeholder token")
	}

	encrypted, err := utils.Encrypt([]byte(token), s.key)
	if err != nil {
		return err
	}

	data, err := json.Marshal(sessionState{Token: encrypted})
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.WriteFile(s.statePath(), data, 0o600); err != nil {
		return err
	}
	s.token = token
	return nil
}

// ClearToken is idempotent; clearing an already empty store succeeds.
func (s *FileStore) ClearToken() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	if err := os.Remove(s.statePath()); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (s *FileStore) CurrentToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}
