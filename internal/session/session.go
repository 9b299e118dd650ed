// Package session reads the persisted client state: the auth token and the
// profile of the signed-in user.
package session

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Niavlys042/codelearn-journey-forge.github.io/api"
)

// ErrNotAdmin is returned by RequireAdmin when the stored user lacks the
// administrator flag.
var ErrNotAdmin = errors.New("session user is not an administrator")

// Session is the content of a session file. The file may be YAML or JSON.
type Session struct {
	Token string    `yaml:"token" json:"token"`
	User  *api.User `yaml:"user,omitempty" json:"user,omitempty"`
}

// FileStore reads a session file. Every call reads the file again so a token
// written by another process is picked up on the next request.
type FileStore struct {
	path string
}

// NewFileStore returns a store over path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// DefaultPath returns the session file location under the user's config
// directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config directory: %w", err)
	}
	return filepath.Join(dir, "codelearn", "session.yaml"), nil
}

// Path returns the file the store reads.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the session. A missing file is an empty session.
func (s *FileStore) Load() (Session, error) {
	var sess Session

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return sess, nil
	}
	if err != nil {
		return sess, fmt.Errorf("read session file: %w", err)
	}

	if err := yaml.Unmarshal(data, &sess); err != nil {
		return sess, fmt.Errorf("decode session file %s: %w", s.path, err)
	}
	sess.Token = strings.TrimSpace(sess.Token)
	return sess, nil
}

// Token implements codelearn.CredentialProvider. No session means no token.
func (s *FileStore) Token(_ context.Context) (string, error) {
	sess, err := s.Load()
	if err != nil {
		return "", err
	}
	return sess.Token, nil
}

// User returns the stored profile, or nil when nobody is signed in.
func (s *FileStore) User() (*api.User, error) {
	sess, err := s.Load()
	if err != nil {
		return nil, err
	}
	return sess.User, nil
}

// RequireAdmin fails unless the stored user is an administrator.
func (s *FileStore) RequireAdmin() error {
	user, err := s.User()
	if err != nil {
		return err
	}
	if user == nil || !user.IsAdmin {
		return ErrNotAdmin
	}
	return nil
}

// Write stores sess at path as YAML, readable only by the owner. It belongs
// to the sign-in flow; the client itself never writes the session.
func Write(path string, sess Session) error {
	data, err := yaml.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create session directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	return nil
}

// Remove deletes the session file. A missing file is not an error.
func Remove(path string) error {
	err := os.Remove(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}
