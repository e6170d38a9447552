package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func setupHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("PDFCHAT_API_URL", "")
	t.Setenv("PDFCHAT_USER_ID", "")
	t.Setenv("PDFCHAT_DATA_DIR", "")
	t.Setenv("PDFCHAT_HISTORY_DEBOUNCE_MS", "")
	return home
}

func TestLoadCreatesDefaults(t *testing.T) {
	home := setupHome(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.BackendURL != DefaultBackendURL {
		t.Errorf("BackendURL = %q, want %q", cfg.BackendURL, DefaultBackendURL)
	}
	if cfg.HistoryDebounce != DefaultHistoryDebounce {
		t.Errorf("HistoryDebounce = %v, want %v", cfg.HistoryDebounce, DefaultHistoryDebounce)
	}
	if cfg.DevServer.Provider != "echo" {
		t.Errorf("DevServer.Provider = %q, want echo", cfg.DevServer.Provider)
	}

	wantDataDir := filepath.Join(home, ".local", "share", "pdfchat")
	if cfg.DataDir() != wantDataDir {
		t.Errorf("DataDir() = %q, want %q", cfg.DataDir(), wantDataDir)
	}
	if !FileExists(GetSettingsFilePath()) {
		t.Error("settings.toml was not created")
	}
	if !FileExists(filepath.Join(wantDataDir, "config.toml")) {
		t.Error("config.toml was not created")
	}
}

func TestLoadUserConfigValues(t *testing.T) {
	home := setupHome(t)
	dataDir := filepath.Join(home, "data")
	t.Setenv("PDFCHAT_DATA_DIR", dataDir)

	err := SaveUserConfig(&UserConfig{
		Backend:   BackendConfig{URL: "http://api.internal:9000", HistoryDebounceMS: 40},
		Identity:  IdentityConfig{UserID: "user-42"},
		DevServer: DevServerConfig{Addr: ":9999", Provider: "ollama", Model: "llama3.1"},
	}, dataDir)
	if err != nil {
		t.Fatalf("SaveUserConfig() error: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.BackendURL != "http://api.internal:9000" {
		t.Errorf("BackendURL = %q", cfg.BackendURL)
	}
	if cfg.HistoryDebounce != 40*time.Millisecond {
		t.Errorf("HistoryDebounce = %v, want 40ms", cfg.HistoryDebounce)
	}
	if cfg.UserID != "user-42" {
		t.Errorf("UserID = %q, want user-42", cfg.UserID)
	}
	if cfg.DevServer.Provider != "ollama" || cfg.DevServer.Model != "llama3.1" {
		t.Errorf("DevServer = %+v", cfg.DevServer)
	}
	if cfg.DevServerDBPath() != filepath.Join(dataDir, "devserver.db") {
		t.Errorf("DevServerDBPath() = %q", cfg.DevServerDBPath())
	}
}

func TestEnvOverrides(t *testing.T) {
	home := setupHome(t)
	t.Setenv("PDFCHAT_DATA_DIR", filepath.Join(home, "envdata"))
	t.Setenv("PDFCHAT_API_URL", "http://env:1234")
	t.Setenv("PDFCHAT_USER_ID", "env-user")
	t.Setenv("PDFCHAT_HISTORY_DEBOUNCE_MS", "0")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.BackendURL != "http://env:1234" {
		t.Errorf("BackendURL = %q", cfg.BackendURL)
	}
	if cfg.UserID != "env-user" {
		t.Errorf("UserID = %q", cfg.UserID)
	}
	if cfg.HistoryDebounce != 0 {
		t.Errorf("HistoryDebounce = %v, want 0", cfg.HistoryDebounce)
	}
	if cfg.DataDir() != filepath.Join(home, "envdata") {
		t.Errorf("DataDir() = %q", cfg.DataDir())
	}
}

func TestExpandPath(t *testing.T) {
	home := setupHome(t)

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"tilde", "~/docs", filepath.Join(home, "docs")},
		{"absolute", "/var/lib/pdfchat/", "/var/lib/pdfchat"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExpandPath(tt.in); got != tt.want {
				t.Errorf("ExpandPath(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFileIdentityPersists(t *testing.T) {
	dir := t.TempDir()

	first := NewFileIdentity(dir).UserID()
	if first == "" {
		t.Fatal("expected generated user id")
	}

	second := NewFileIdentity(dir).UserID()
	if second != first {
		t.Errorf("second identity = %q, want %q", second, first)
	}

	data, err := os.ReadFile(filepath.Join(dir, "identity.id"))
	if err != nil {
		t.Fatalf("identity file not written: %v", err)
	}
	if string(data) != first {
		t.Errorf("identity file = %q, want %q", data, first)
	}
}

func TestFileIdentityUnwritableDirStillReturnsID(t *testing.T) {
	id := NewFileIdentity(filepath.Join(t.TempDir(), "missing", "dir")).UserID()
	if id == "" {
		t.Error("expected in-memory identity when the file cannot be written")
	}
}

func TestNewIdentityProviderPrefersConfig(t *testing.T) {
	cfg := &Config{DataDirectory: t.TempDir(), UserID: "configured"}
	if got := NewIdentityProvider(cfg).UserID(); got != "configured" {
		t.Errorf("UserID() = %q, want configured", got)
	}

	cfg.UserID = ""
	if _, ok := NewIdentityProvider(cfg).(*FileIdentity); !ok {
		t.Error("expected FileIdentity fallback")
	}
}

func TestChatOptions(t *testing.T) {
	off := false
	tests := []struct {
		name           string
		chat           ChatConfig
		wantAutoCreate bool
		wantBlocking   bool
		wantPreserve   bool
	}{
		{"unset auto_create defaults on", ChatConfig{}, true, false, false},
		{"auto_create disabled", ChatConfig{AutoCreate: &off}, false, false, false},
		{"blocking and preserve", ChatConfig{BlockingReplies: true, PreservePartial: true}, true, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			home := setupHome(t)
			dataDir := filepath.Join(home, "data")
			t.Setenv("PDFCHAT_DATA_DIR", dataDir)

			if err := SaveUserConfig(&UserConfig{Chat: tt.chat}, dataDir); err != nil {
				t.Fatalf("SaveUserConfig() error: %v", err)
			}
			cfg, err := Load()
			if err != nil {
				t.Fatalf("Load() error: %v", err)
			}
			if cfg.AutoCreate != tt.wantAutoCreate {
				t.Errorf("AutoCreate = %v, want %v", cfg.AutoCreate, tt.wantAutoCreate)
			}
			if cfg.BlockingReplies != tt.wantBlocking {
				t.Errorf("BlockingReplies = %v, want %v", cfg.BlockingReplies, tt.wantBlocking)
			}
			if cfg.PreservePartial != tt.wantPreserve {
				t.Errorf("PreservePartial = %v, want %v", cfg.PreservePartial, tt.wantPreserve)
			}
		})
	}
}
