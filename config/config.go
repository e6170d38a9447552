package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

type SystemConfig struct {
	DataDirectory string `toml:"data_directory"`
}

type BackendConfig struct {
	URL               string `toml:"url"`
	HistoryDebounceMS int    `toml:"history_debounce_ms"`
}

type ChatConfig struct {
	// Unset means true
	AutoCreate      *bool `toml:"auto_create,omitempty"`
	BlockingReplies bool  `toml:"blocking_replies"`
	PreservePartial bool  `toml:"preserve_partial"`
}

type IdentityConfig struct {
	UserID string `toml:"user_id,omitempty"`
}

type DevServerConfig struct {
	Addr     string `toml:"addr"`
	DBPath   string `toml:"db_path,omitempty"`
	Provider string `toml:"provider"`
	Model    string `toml:"model,omitempty"`
	BaseURL  string `toml:"base_url,omitempty"`
	APIKey   string `toml:"api_key,omitempty"`
}

type UserConfig struct {
	Backend   BackendConfig   `toml:"backend"`
	Identity  IdentityConfig  `toml:"identity"`
	Chat      ChatConfig      `toml:"chat"`
	DevServer DevServerConfig `toml:"devserver"`
}

type Config struct {
	DataDirectory   string
	BackendURL      string
	UserID          string
	HistoryDebounce time.Duration
	AutoCreate      bool
	BlockingReplies bool
	PreservePartial bool
	DevServer       DevServerConfig
}

var Debug = false
var DebugLog *log.Logger

func (c *Config) DataDir() string {
	return ExpandPath(c.DataDirectory)
}

// DevServerDBPath returns the sqlite path for the development backend,
// defaulting to a file inside the data directory.
func (c *Config) DevServerDBPath() string {
	if c.DevServer.DBPath != "" {
		return ExpandPath(c.DevServer.DBPath)
	}
	return filepath.Join(c.DataDir(), "devserver.db")
}

func (c *Config) applyUserConfig(u *UserConfig) {
	if u.Backend.URL != "" {
		c.BackendURL = u.Backend.URL
	}
	if u.Backend.HistoryDebounceMS > 0 {
		c.HistoryDebounce = time.Duration(u.Backend.HistoryDebounceMS) * time.Millisecond
	}
	c.UserID = u.Identity.UserID
	if u.Chat.AutoCreate != nil {
		c.AutoCreate = *u.Chat.AutoCreate
	}
	c.BlockingReplies = u.Chat.BlockingReplies
	c.PreservePartial = u.Chat.PreservePartial
	c.DevServer = u.DevServer
	if c.DevServer.Addr == "" {
		c.DevServer.Addr = DefaultDevServerAddr
	}
	if c.DevServer.Provider == "" {
		c.DevServer.Provider = "echo"
	}
}

func (c *Config) applyEnvOverrides() {
	if url := os.Getenv("PDFCHAT_API_URL"); url != "" {
		c.BackendURL = url
	}
	if userID := os.Getenv("PDFCHAT_USER_ID"); userID != "" {
		c.UserID = userID
	}
	if dataDir := os.Getenv("PDFCHAT_DATA_DIR"); dataDir != "" {
		c.DataDirectory = dataDir
	}
	if ms := os.Getenv("PDFCHAT_HISTORY_DEBOUNCE_MS"); ms != "" {
		if v, err := strconv.Atoi(ms); err == nil && v >= 0 {
			c.HistoryDebounce = time.Duration(v) * time.Millisecond
		}
	}
}

func CheckDebug() bool {
	debug := os.Getenv("PDFCHAT_DEBUG")
	return debug == "true" || debug == "1"
}

func InitDebugLog(dataDir string) {
	if !CheckDebug() {
		return
	}

	Debug = true
	logPath := filepath.Join(dataDir, "debug.log")

	// 0600: the log records conversation ids and message sizes
	f, err := os.OpenFile(logPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0600)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not open debug log at %s: %v\n", logPath, err)
		return
	}

	DebugLog = log.New(f, "", log.Ldate|log.Ltime|log.Lmicroseconds|log.Lshortfile)
	DebugLog.Printf("=== Debug logging started (PDFCHAT_DEBUG=%s) ===", os.Getenv("PDFCHAT_DEBUG"))
	DebugLog.Printf("Log path: %s", logPath)
}

// Load reads settings.toml and the user config.toml, then applies
// environment overrides. Missing files are created from templates.
func Load() (*Config, error) {
	cfg := &Config{
		DataDirectory:   GetDefaultDataDir(),
		BackendURL:      DefaultBackendURL,
		HistoryDebounce: DefaultHistoryDebounce,
		AutoCreate:      true,
		DevServer: DevServerConfig{
			Addr:     DefaultDevServerAddr,
			Provider: "echo",
		},
	}

	systemCfg, err := LoadSystemConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load system config: %w", err)
	}
	if systemCfg.DataDirectory != "" {
		cfg.DataDirectory = systemCfg.DataDirectory
	}

	// The data directory may be redirected by env before the user config is read
	if dataDir := os.Getenv("PDFCHAT_DATA_DIR"); dataDir != "" {
		cfg.DataDirectory = dataDir
	}

	dataDir := cfg.DataDir()
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	// Ensure data directory has correct permissions (fix if needed)
	if err := EnsureDataDirPermissions(dataDir); err != nil {
		return nil, fmt.Errorf("failed to set data directory permissions: %w", err)
	}

	userCfg, err := LoadUserConfig(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load user config: %w", err)
	}
	cfg.applyUserConfig(userCfg)
	cfg.applyEnvOverrides()

	return cfg, nil
}
