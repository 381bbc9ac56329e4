// Package session persists the authenticated user and bearer token
// between runs, and holds the per-run slot store other packages use
// for ephemeral cross-view state.
package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

const sessionFile = "session.json"

// User is the authenticated account returned by the backend.
type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Session is the persisted credential state.
type Session struct {
	Token string `json:"token"`
	User  *User  `json:"user,omitempty"`
}

// Authenticated reports whether a token is present.
func (s Session) Authenticated() bool { return s.Token != "" }

func sessionPath(appDir string) (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	dir = filepath.Join(dir, appDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return filepath.Join(dir, sessionFile), nil
}

// Save writes the session atomically under the user config dir. The
// token is sealed before it is written.
func Save(appDir string, s Session) error {
	path, err := sessionPath(appDir)
	if err != nil {
		return err
	}
	sealed, err := sealToken(s.Token)
	if err != nil {
		return err
	}
	s.Token = sealed
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Load reads the persisted session. A missing file is an empty
// session, not an error.
func Load(appDir string) (Session, error) {
	path, err := sessionPath(appDir)
	if err != nil {
		return Session{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Session{}, nil
		}
		return Session{}, err
	}
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return Session{}, err
	}
	token, err := openToken(s.Token)
	if err != nil {
		// unreadable token means signed out, not a crash
		return Session{}, nil
	}
	s.Token = token
	return s, nil
}

// Clear removes the persisted session. Used on logout and on a 401.
func Clear(appDir string) error {
	path, err := sessionPath(appDir)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Slots is a small in-memory key/value store scoped to one program
// run. It stands in for browser session storage: values survive view
// switches but not restarts.
type Slots struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewSlots returns an empty slot store.
func NewSlots() *Slots {
	return &Slots{values: make(map[string]string)}
}

// Get returns the slot value and whether it was set.
func (s *Slots) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

// Set stores a slot value.
func (s *Slots) Set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
}
