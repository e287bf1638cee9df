// Package session persists the bearer credential. The token file's
// presence is the sole signal gating protected screens; there is no
// expiry check and no refresh flow.
package session

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

const tokenFile = "token"

// Store owns the credential for the lifetime of the program. It is
// created once at startup and cleared once, on logout or when the
// backend rejects the credential.
type Store struct {
	dir    string
	token  string
	loaded bool
}

// New creates a store rooted at dir. If dir is empty the default config
// directory is used.
func New(dir string) *Store {
	if dir == "" {
		dir = DefaultDir()
	}
	return &Store{dir: dir}
}

// DefaultDir returns XDG_CONFIG_HOME/taskflow, falling back to
// $HOME/.config/taskflow.
func DefaultDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "taskflow")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "taskflow"
	}
	return filepath.Join(home, ".config", "taskflow")
}

// Token returns the stored credential, or "" when none is saved.
func (s *Store) Token() string {
	if !s.loaded {
		data, err := os.ReadFile(filepath.Join(s.dir, tokenFile))
		if err == nil {
			s.token = strings.TrimSpace(string(data))
		}
		s.loaded = true
	}
	return s.token
}

// Active reports whether a credential is present.
func (s *Store) Active() bool {
	return s.Token() != ""
}

// Save writes the credential with owner-only permissions.
func (s *Store) Save(token string) error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(s.dir, tokenFile), []byte(token), 0o600); err != nil {
		return err
	}
	s.token = token
	s.loaded = true
	return nil
}

// Clear removes the credential. A missing token file is not an error.
func (s *Store) Clear() error {
	s.token = ""
	s.loaded = true
	err := os.Remove(filepath.Join(s.dir, tokenFile))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
