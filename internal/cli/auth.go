// Package cli: authentication commands.
package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/terabox/terabox-int/internal/api"
	"github.com/terabox/terabox-int/internal/auth"
	"github.com/terabox/terabox-int/internal/format"
)

// newLoginCmd creates the 'login' command.
func newLoginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session",
		Long: `Authenticate against TeraBox and store the access token in the
configuration file for subsequent commands.

Examples:
  terabox-int login --email user@example.com
  terabox-int login --email user@example.com --password secret`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			client, err := api.NewClient(cfg)
			if err != nil {
				return err
			}

			if email == "" {
				fmt.Fprint(os.Stderr, "Email: ")
				fmt.Fscanln(os.Stdin, &email)
			}
			if password == "" {
				password, err = promptPassword("Password: ")
				if err != nil {
					return err
				}
			}

			login, err := client.Login(GetContext(), strings.TrimSpace(email), password)
			if err != nil {
				return err
			}

			cfg.SetSession(login.AccessToken, login.User)
			if err := cfg.Save(); err != nil {
				return fmt.Errorf("failed to save session: %w", err)
			}

			fmt.Printf("Logged in as %s <%s>\n", login.User.Name, login.User.Email)
			return nil
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "Account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Account password (prompted if omitted)")
	return cmd
}

// newRegisterCmd creates the 'register' command.
func newRegisterCmd() *cobra.Command {
	var name, email, password string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a new account",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			client, err := api.NewClient(cfg)
			if err != nil {
				return err
			}

			if password == "" {
				password, err = promptPassword("Password: ")
				if err != nil {
					return err
				}
				confirm, err := promptPassword("Confirm password: ")
				if err != nil {
					return err
				}
				if password != confirm {
					return api.NewValidationError("passwords do not match")
				}
			}

			reg, err := client.Register(GetContext(), name, strings.TrimSpace(email), password)
			if err != nil {
				return err
			}

			fmt.Println(reg.Message)
			fmt.Println("Run 'terabox-int login' to start a session.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "Display name")
	cmd.Flags().StringVarP(&email, "email", "e", "", "Account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Account password (prompted if omitted)")
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("email")
	return cmd
}

// newLogoutCmd creates the 'logout' command.
func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the stored session",
		Long:  `Remove the access token from the configuration file. Remote files are untouched.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			gate := auth.NewGate(cfg)
			if err := gate.ClearSession(); err != nil {
				return err
			}
			fmt.Println("Logged out.")
			return nil
		},
	}
}

// newWhoamiCmd creates the 'whoami' command.
func newWhoamiCmd() *cobra.Command {
	var remote bool

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session identity",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			gate := auth.NewGate(cfg)
			user, err := gate.Authorize()
			if err != nil {
				return err
			}

			if remote {
				client, err := api.NewClient(cfg)
				if err != nil {
					return err
				}
				user, err = client.Me(GetContext())
				if err != nil {
					return err
				}
			}

			fmt.Printf("%s <%s>\n", user.Name, user.Email)
			if user.StorageLimit > 0 {
				quota := user.Quota()
				fmt.Printf("Storage: %s of %s (%.1f%%)\n",
					format.Bytes(quota.Used), format.Bytes(quota.Limit), quota.Percentage())
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&remote, "remote", false, "Fetch the identity from the server instead of the stored session")
	return cmd
}

// promptPassword reads a password without echoing it. Falls back to a plain
// read when stdin is not a terminal.
func promptPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		raw, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(raw), nil
	}

	var pw string
	if _, err := fmt.Fscanln(os.Stdin, &pw); err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return pw, nil
}
