// Package cli: file operation commands.
package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/terabox/terabox-int/internal/format"
	"github.com/terabox/terabox-int/internal/progress"
)

// newFilesCmd creates the 'files' command group.
func newFilesCmd() *cobra.Command {
	filesCmd := &cobra.Command{
		Use:   "files",
		Short: "File operations (upload, download, list, delete)",
		Long:  `Commands for managing files in TeraBox cloud storage.`,
	}

	filesCmd.AddCommand(newFilesListCmd())
	filesCmd.AddCommand(newFilesUploadCmd())
	filesCmd.AddCommand(newFilesDownloadCmd())
	filesCmd.AddCommand(newFilesDeleteCmd())

	return filesCmd
}

// newFilesListCmd creates the 'files list' command.
func newFilesListCmd() *cobra.Command {
	var search string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List your files",
		Long: `List files in your TeraBox storage.

Examples:
  terabox-int files list
  terabox-int files list --search budget`,
		RunE: func(cmd *cobra.Command, args []string) error {
			vm, _, err := newViewModel()
			if err != nil {
				return err
			}
			if err := vm.Refresh(GetContext()); err != nil {
				return err
			}
			vm.SetSearchQuery(search)

			files := vm.FilteredFiles()
			if len(files) == 0 {
				if search != "" {
					fmt.Printf("No files matching %q.\n", search)
				} else {
					fmt.Println("No files.")
				}
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tSIZE\tSHARED\tUPLOADED")
			for _, f := range files {
				shared := ""
				if f.IsShared {
					shared = "yes"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					f.ID, f.DisplayName(), format.Bytes(f.Size), shared,
					f.UploadedAt.Local().Format("2006-01-02 15:04"))
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&search, "search", "s", "", "Filter by file name (case-insensitive)")
	return cmd
}

// newFilesUploadCmd creates the 'files upload' command.
func newFilesUploadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload a file",
		Long: `Upload a file to TeraBox cloud storage.

Only one upload runs at a time; the command blocks until the transfer
completes or fails.

Examples:
  terabox-int files upload report.pdf`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			vm, _, err := newViewModel()
			if err != nil {
				return err
			}

			path := args[0]
			info, err := os.Stat(path)
			if err != nil {
				return fmt.Errorf("cannot read %s: %w", path, err)
			}

			bar := progress.NewCLIProgress()
			bar.Start(info.Size(), "Uploading "+filepath.Base(path))

			task, err := vm.RequestUpload(GetContext(), path, progress.Callback(bar))
			if err != nil {
				bar.Error(err)
				return err
			}
			bar.Finish()

			fmt.Printf("Uploaded %s (%s), task %s\n", task.Name, format.Bytes(task.Size), task.ID)
			return nil
		},
	}
	return cmd
}

// newFilesDownloadCmd creates the 'files download' command.
func newFilesDownloadCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "download <file-id>",
		Short: "Download a file",
		Long: `Download a file by id. The file is written atomically: on a failed
transfer nothing is left at the destination.

Examples:
  terabox-int files download f81d4fae
  terabox-int files download f81d4fae --output ~/Downloads/report.pdf`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			vm, _, err := newViewModel()
			if err != nil {
				return err
			}

			id := args[0]
			dest := output

			// default the destination to the server-side name
			var size int64
			if err := vm.Refresh(GetContext()); err == nil {
				for _, f := range vm.Files() {
					if f.ID == id {
						size = f.Size
						if dest == "" {
							dest = downloadDest(f.DisplayName(), id)
						}
						break
					}
				}
			}
			if dest == "" {
				dest = id
			}

			bar := progress.NewCLIProgress()
			bar.Start(size, "Downloading "+filepath.Base(dest))

			if err := vm.RequestDownload(GetContext(), id, dest, progress.Callback(bar)); err != nil {
				bar.Error(err)
				return err
			}
			bar.Finish()

			fmt.Printf("Saved to %s\n", dest)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Destination path (defaults to the original file name)")
	return cmd
}

// downloadDest reduces a server-provided name to a bare file name so a
// crafted response cannot steer the write outside the working directory.
func downloadDest(name, id string) string {
	base := filepath.Base(filepath.FromSlash(name))
	if base == "" || base == "." || base == ".." || base == string(filepath.Separator) {
		return id
	}
	return base
}

// newFilesDeleteCmd creates the 'files delete' command.
func newFilesDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <file-id> [file-id...]",
		Short: "Delete files",
		Long: `Delete one or more files by id. Deleting an id that no longer exists
is treated as already done.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			vm, _, err := newViewModel()
			if err != nil {
				return err
			}
			if err := vm.Refresh(GetContext()); err != nil {
				return err
			}

			for _, id := range args {
				if err := vm.RequestDelete(GetContext(), id); err != nil {
					return fmt.Errorf("failed to delete %s: %w", id, err)
				}
				fmt.Printf("Deleted %s\n", id)
			}
			return nil
		},
	}
}
