// Package config provides configuration management for terabox-int.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"gopkg.in/ini.v1"

	"github.com/terabox/terabox-int/internal/models"
)

// DefaultBaseURL is the production API endpoint. Overridable via config
// file, TERABOX_API_URL, or --api-url.
const DefaultBaseURL = "https://api.terabox.com"

// Config is the single configuration source for the CLI and the API client.
// It doubles as the session store: the access token and the cached identity
// live here, are written at login and wiped at logout. No other component
// persists credentials.
//
// Config file location:
//   - Windows: %USERPROFILE%\.config\terabox\config
//   - Unix: ~/.config/terabox/config
//
// INI format:
//
//	[terabox]
//	base_url = https://api.terabox.com
//	access_token = <bearer-token>
//
//	[terabox.user]
//	id = 66f0c2...
//	name = Demo User
//	email = demo@terabox.com
type Config struct {
	// API connection settings
	BaseURL     string `ini:"base_url"`
	AccessToken string `ini:"access_token"`

	// Cached identity of the token owner (informational; the server is
	// authoritative, see /api/auth/me).
	UserID    string `ini:"id"`
	UserName  string `ini:"name"`
	UserEmail string `ini:"email"`

	// path the config was loaded from; Save writes back here.
	path string
}

// ErrMissingBaseURL is returned by Validate when no API endpoint is set.
var ErrMissingBaseURL = errors.New("base_url is required")

// DefaultPath returns the default location of the config file.
func DefaultPath() (string, error) {
	var configDir string

	if runtime.GOOS == "windows" {
		userProfile := os.Getenv("USERPROFILE")
		if userProfile == "" {
			return "", errors.New("USERPROFILE environment variable not set")
		}
		configDir = filepath.Join(userProfile, ".config", "terabox")
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, ".config", "terabox")
	}

	return filepath.Join(configDir, "config"), nil
}

// Load reads the config file at path. A missing file is not an error: it
// yields a default config that will be created on first Save. Environment
// overrides (TERABOX_API_URL, TERABOX_TOKEN) are applied last.
func Load(path string) (*Config, error) {
	cfg := &Config{
		BaseURL: DefaultBaseURL,
		path:    path,
	}

	file, err := ini.Load(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	} else {
		if err := file.Section("terabox").MapTo(cfg); err != nil {
			return nil, fmt.Errorf("failed to parse [terabox] section: %w", err)
		}
		if err := file.Section("terabox.user").MapTo(cfg); err != nil {
			return nil, fmt.Errorf("failed to parse [terabox.user] section: %w", err)
		}
	}

	cfg.applyEnv()
	cfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	return cfg, nil
}

// LoadDefault loads the config from the default per-OS location.
func LoadDefault() (*Config, error) {
	path, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	return Load(path)
}

func (c *Config) applyEnv() {
	if v := os.Getenv("TERABOX_API_URL"); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv("TERABOX_TOKEN"); v != "" {
		c.AccessToken = v
	}
}

// Validate checks that the config is usable for API calls.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.BaseURL) == "" {
		return ErrMissingBaseURL
	}
	return nil
}

// Save writes the config back to the file it was loaded from, creating the
// directory if needed. Written with 0600 since it holds the access token.
func (c *Config) Save() error {
	if c.path == "" {
		return errors.New("config has no backing file")
	}

	if err := os.MkdirAll(filepath.Dir(c.path), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	file := ini.Empty()
	sec := file.Section("terabox")
	sec.Key("base_url").SetValue(c.BaseURL)
	sec.Key("access_token").SetValue(c.AccessToken)

	user := file.Section("terabox.user")
	user.Key("id").SetValue(c.UserID)
	user.Key("name").SetValue(c.UserName)
	user.Key("email").SetValue(c.UserEmail)

	if err := file.SaveTo(c.path); err != nil {
		return fmt.Errorf("failed to write config %s: %w", c.path, err)
	}
	return os.Chmod(c.path, 0o600)
}

// Path returns the backing file path.
func (c *Config) Path() string {
	return c.path
}

// SetSession stores the token and its owner after a successful login.
func (c *Config) SetSession(token string, user models.User) {
	c.AccessToken = token
	c.UserID = user.ID
	c.UserName = user.Name
	c.UserEmail = user.Email
}

// Token returns the stored access token, or "" when logged out.
// Implements the auth token source.
func (c *Config) Token() string {
	return c.AccessToken
}

// CurrentUser returns the cached identity, or nil when logged out.
func (c *Config) CurrentUser() *models.User {
	if c.AccessToken == "" {
		return nil
	}
	return &models.User{ID: c.UserID, Name: c.UserName, Email: c.UserEmail}
}

// ClearSession wipes the token and cached identity and persists the change.
func (c *Config) ClearSession() error {
	c.AccessToken = ""
	c.UserID = ""
	c.UserName = ""
	c.UserEmail = ""
	return c.Save()
}
