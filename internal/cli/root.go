// Package cli provides the command-line interface for terabox-int.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/terabox/terabox-int/internal/api"
	"github.com/terabox/terabox-int/internal/auth"
	"github.com/terabox/terabox-int/internal/config"
	"github.com/terabox/terabox-int/internal/dashboard"
	"github.com/terabox/terabox-int/internal/events"
	"github.com/terabox/terabox-int/internal/logging"
	"github.com/terabox/terabox-int/internal/notify"
	"github.com/terabox/terabox-int/internal/version"
)

var (
	// Global flags
	cfgFile string
	apiURL  string
	token   string
	verbose bool
	noNotif bool

	// Global logger
	logger *logging.Logger

	// Global context for signal handling
	rootContext context.Context
	cancelFunc  context.CancelFunc
)

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "terabox-int",
		Short: "TeraBox Interlink - CLI for TeraBox cloud storage",
		Long: `TeraBox Interlink ` + version.Version + ` - Built: ` + version.BuildTime + `
Command-line client for TeraBox cloud storage: upload, download,
list and delete files, and inspect your storage dashboard.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger = logging.NewLogger("cli")
			if verbose {
				logging.SetGlobalLevel(zerolog.DebugLevel)
			}
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "TeraBox API base URL (overrides config)")
	rootCmd.PersistentFlags().StringVar(&token, "token", "", "Access token (overrides stored session)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output (shows debug messages)")
	rootCmd.PersistentFlags().BoolVar(&noNotif, "no-notifications", false, "Disable desktop notifications")

	rootCmd.Version = version.Version + " (" + version.BuildTime + ")"

	return rootCmd
}

// AddCommands registers all subcommands on the root.
func AddCommands(rootCmd *cobra.Command) {
	rootCmd.AddCommand(newLoginCmd())
	rootCmd.AddCommand(newRegisterCmd())
	rootCmd.AddCommand(newLogoutCmd())
	rootCmd.AddCommand(newWhoamiCmd())
	rootCmd.AddCommand(newFilesCmd())
	rootCmd.AddCommand(newDashboardCmd())
}

// Execute runs the CLI with signal-driven cancellation.
func Execute() error {
	rootContext, cancelFunc = context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		for sig := range sigChan {
			if sig != nil {
				fmt.Fprintf(os.Stderr, "\nReceived signal %v, cancelling...\n", sig)
				cancelFunc()
			}
		}
	}()

	rootCmd := NewRootCmd()
	AddCommands(rootCmd)
	err := rootCmd.Execute()

	signal.Stop(sigChan)
	close(sigChan)

	return err
}

// GetLogger returns the global CLI logger.
func GetLogger() *logging.Logger {
	if logger == nil {
		logger = logging.NewLogger("cli")
	}
	return logger
}

// GetContext returns the global CLI context. It is cancelled when the user
// presses Ctrl+C.
func GetContext() context.Context {
	if rootContext == nil {
		return context.Background()
	}
	return rootContext
}

// loadConfig loads the configuration and applies global flag overrides.
func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		var err error
		path, err = config.DefaultPath()
		if err != nil {
			return nil, err
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if apiURL != "" {
		cfg.BaseURL = apiURL
	}
	if token != "" {
		cfg.AccessToken = token
	}
	return cfg, nil
}

// newViewModel builds the standard CLI stack: config, client, gate, bus,
// notifier, view model.
func newViewModel() (*dashboard.ViewModel, *config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	client, err := api.NewClient(cfg)
	if err != nil {
		return nil, nil, err
	}
	gate := auth.NewGate(cfg)
	bus := events.NewEventBus(0)
	notifier := notify.NewNotifier(&notify.Config{Desktop: !noNotif}, bus)
	return dashboard.NewViewModel(client, gate, bus, notifier), cfg, nil
}
