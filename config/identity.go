package config

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// IdentityProvider supplies the user identifier stamped into every backend
// request. An empty string means anonymous.
type IdentityProvider interface {
	UserID() string
}

// StaticIdentity is a fixed user id.
type StaticIdentity string

func (s StaticIdentity) UserID() string {
	return string(s)
}

// FileIdentity persists a generated user id in <data dir>/identity.id so the
// same id is reused across runs.
type FileIdentity struct {
	path string

	once sync.Once
	id   string
}

// NewFileIdentity returns an identity backed by dataDir/identity.id.
func NewFileIdentity(dataDir string) *FileIdentity {
	return &FileIdentity{path: filepath.Join(dataDir, "identity.id")}
}

// UserID loads the stored id, generating and saving one on first use. Any
// filesystem failure degrades to an in-memory id for this run.
func (f *FileIdentity) UserID() string {
	f.once.Do(func() {
		data, err := os.ReadFile(f.path)
		if err == nil {
			if id := strings.TrimSpace(string(data)); id != "" {
				f.id = id
				return
			}
		}

		f.id = uuid.New().String()
		if err := os.WriteFile(f.path, []byte(f.id), 0600); err != nil && DebugLog != nil {
			DebugLog.Printf("[Identity] failed to persist identity to %s: %v", f.path, err)
		}
	})
	return f.id
}

// NewIdentityProvider prefers the configured user id and falls back to the
// persisted file identity.
func NewIdentityProvider(cfg *Config) IdentityProvider {
	if cfg.UserID != "" {
		return StaticIdentity(cfg.UserID)
	}
	return NewFileIdentity(cfg.DataDir())
}
