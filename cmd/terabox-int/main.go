// TeraBox Interlink - command-line client for TeraBox cloud storage.
package main

import (
	"os"

	"github.com/terabox/terabox-int/internal/cli"
	"github.com/terabox/terabox-int/internal/version"
)

// Version information, overridden by ldflags in release builds.
var (
	Version   = "v1.0.0"
	BuildTime = "unknown"
)

func main() {
	version.Version = Version
	version.BuildTime = BuildTime

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
