// Package session persists the signed-in token between console runs in
// ~/.config/prms/session.toml (mode 0600). Credentials are never stored.
package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/prms/console/internal/config"
	"github.com/prms/console/internal/prms"
)

const defaultPath = "~/.config/prms/session.toml"

// ErrNoSession means nobody is signed in.
var ErrNoSession = errors.New("not signed in")

// Saved is the persisted session.
type Saved struct {
	Token   string    `toml:"token"`
	UserID  string    `toml:"user_id"`
	Name    string    `toml:"name"`
	Email   string    `toml:"email"`
	Role    string    `toml:"role"`
	SavedAt time.Time `toml:"saved_at"`
}

// User rebuilds the cached profile.
func (s Saved) User() prms.User {
	return prms.User{ID: s.UserID, Name: s.Name, Email: s.Email, Role: prms.Role(s.Role), Active: true}
}

// Claims decodes the token claims.
func (s Saved) Claims() (prms.Claims, error) {
	return prms.ParseClaims(s.Token)
}

// Expired reports whether the token has expired at now. Tokens that cannot be
// decoded count as expired.
func (s Saved) Expired(now time.Time) bool {
	claims, err := s.Claims()
	return err != nil || claims.Expired(now)
}

// Path resolves path, defaulting to ~/.config/prms/session.toml.
func Path(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		path = defaultPath
	}
	return config.ExpandPath(path)
}

// Load reads the saved session. A missing or empty file is ErrNoSession.
func Load(path string) (Saved, error) {
	resolved, err := Path(path)
	if err != nil {
		return Saved{}, err
	}
	bytes, err := os.ReadFile(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Saved{}, ErrNoSession
		}
		return Saved{}, fmt.Errorf("read session: %w", err)
	}
	var s Saved
	if err := toml.Unmarshal(bytes, &s); err != nil {
		return Saved{}, fmt.Errorf("parse session: %w", err)
	}
	if strings.TrimSpace(s.Token) == "" {
		return Saved{}, ErrNoSession
	}
	return s, nil
}

// Save writes token and user, readable only by the owner.
func Save(path, token string, user prms.User, now time.Time) error {
	resolved, err := Path(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(resolved), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	bytes, err := toml.Marshal(Saved{
		Token:   token,
		UserID:  user.ID,
		Name:    user.Name,
		Email:   user.Email,
		Role:    string(user.Role),
		SavedAt: now.UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := os.WriteFile(resolved, bytes, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return os.Chmod(resolved, 0o600)
}

// Clear removes the saved session. Removing a missing file is not an error.
func Clear(path string) error {
	resolved, err := Path(path)
	if err != nil {
		return err
	}
	if err := os.Remove(resolved); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}
