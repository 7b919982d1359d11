// Package cli: dashboard commands.
package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/terabox/terabox-int/internal/format"
)

// newDashboardCmd creates the 'dashboard' command.
func newDashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "dashboard",
		Aliases: []string{"stats"},
		Short:   "Show storage dashboard",
		Long:    `Show account statistics and storage quota usage.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			vm, _, err := newViewModel()
			if err != nil {
				return err
			}
			if err := vm.Refresh(GetContext()); err != nil {
				return err
			}

			stats := vm.Stats()
			quota := vm.Quota()
			pct := vm.StoragePercentage()

			fmt.Printf("Files:          %d\n", stats.TotalFiles)
			fmt.Printf("Folders:        %d\n", stats.TotalFolders)
			fmt.Printf("Shared files:   %d\n", stats.SharedFiles)
			fmt.Printf("Recent uploads: %d\n", stats.RecentUploads)
			fmt.Println()
			fmt.Printf("Storage: %s of %s (%.1f%%)\n",
				format.Bytes(quota.Used), format.Bytes(quota.Limit), pct)
			fmt.Println(quotaBar(pct, 40))
			return nil
		},
	}
}

// quotaBar renders a fixed-width usage bar like [#####....].
func quotaBar(pct float64, width int) string {
	if width <= 0 {
		width = 40
	}
	filled := int(pct / 100 * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return "[" + strings.Repeat("#", filled) + strings.Repeat(".", width-filled) + "]"
}
