package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/terabox/terabox-int/internal/models"
)

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v, want nil for missing file", err)
	}
	if cfg.BaseURL != DefaultBaseURL {
		t.Errorf("BaseURL = %q, want default %q", cfg.BaseURL, DefaultBaseURL)
	}
	if cfg.AccessToken != "" {
		t.Errorf("AccessToken = %q, want empty", cfg.AccessToken)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	cfg.BaseURL = "https://staging.terabox.example"
	cfg.SetSession("tok-123", models.User{ID: "u1", Name: "Demo User", Email: "demo@terabox.com"})

	if err := cfg.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() after Save error = %v", err)
	}
	if loaded.BaseURL != "https://staging.terabox.example" {
		t.Errorf("BaseURL = %q after round trip", loaded.BaseURL)
	}
	if loaded.Token() != "tok-123" {
		t.Errorf("Token() = %q, want tok-123", loaded.Token())
	}
	user := loaded.CurrentUser()
	if user == nil || user.Email != "demo@terabox.com" {
		t.Errorf("CurrentUser() = %+v, want cached identity", user)
	}
}

func TestClearSessionWipesTokenAndIdentity(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config")

	cfg, _ := Load(path)
	cfg.SetSession("tok-123", models.User{ID: "u1", Name: "Demo User", Email: "demo@terabox.com"})
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if err := cfg.ClearSession(); err != nil {
		t.Fatalf("ClearSession() error = %v", err)
	}
	if cfg.Token() != "" {
		t.Errorf("Token() = %q after ClearSession, want empty", cfg.Token())
	}
	if cfg.CurrentUser() != nil {
		t.Error("CurrentUser() should be nil after ClearSession")
	}

	// The wipe must be persisted, not just in-memory.
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Token() != "" {
		t.Errorf("persisted Token() = %q after ClearSession, want empty", loaded.Token())
	}
}

func TestValidateRequiresBaseURL(t *testing.T) {
	cfg := &Config{BaseURL: "  "}
	if err := cfg.Validate(); err != ErrMissingBaseURL {
		t.Errorf("Validate() error = %v, want ErrMissingBaseURL", err)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("TERABOX_API_URL", "https://env.terabox.example/")
	t.Setenv("TERABOX_TOKEN", "env-token")

	cfg, err := Load(filepath.Join(t.TempDir(), "config"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.BaseURL != "https://env.terabox.example" {
		t.Errorf("BaseURL = %q, want env override without trailing slash", cfg.BaseURL)
	}
	if cfg.Token() != "env-token" {
		t.Errorf("Token() = %q, want env override", cfg.Token())
	}
}

func TestSaveSetsRestrictivePermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("file modes are not meaningful on Windows")
	}
	path := filepath.Join(t.TempDir(), "config")
	cfg, _ := Load(path)
	cfg.AccessToken = "secret"
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("config file mode = %v, want 0600", info.Mode().Perm())
	}
}
