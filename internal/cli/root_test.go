package cli

import (
	"strings"
	"testing"

	"github.com/terabox/terabox-int/internal/version"
)

func TestRootCmdUsesVersionPackage(t *testing.T) {
	origVersion, origBuildTime := version.Version, version.BuildTime
	defer func() {
		version.Version, version.BuildTime = origVersion, origBuildTime
	}()

	version.Version = "v9.9.9-test"
	version.BuildTime = "2026-01-02"

	rootCmd := NewRootCmd()
	if !strings.Contains(rootCmd.Version, "v9.9.9-test") {
		t.Errorf("rootCmd.Version = %q, want injected version", rootCmd.Version)
	}
	if !strings.Contains(rootCmd.Version, "2026-01-02") {
		t.Errorf("rootCmd.Version = %q, want injected build time", rootCmd.Version)
	}
	if !strings.Contains(rootCmd.Long, "v9.9.9-test") {
		t.Errorf("rootCmd.Long does not carry the injected version")
	}
}
