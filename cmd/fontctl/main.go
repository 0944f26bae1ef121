// fontctl is the client-side companion to the typevault service. It scans
// local font files, previews the provisional grouping before anything is
// uploaded, and submits batches to a running server.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	serverURL string
	window    int
)

func main() {
	root := &cobra.Command{
		Use:           "fontctl",
		Short:         "Scan, preview, and upload font files to a typevault server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(
		&serverURL, "server", "http://localhost:8080",
		"base URL of the typevault server",
	)
	root.PersistentFlags().IntVar(
		&window, "window", 0,
		"concurrent files per scan window (0 uses the default)",
	)

	root.AddCommand(newPreviewCommand())
	root.AddCommand(newUploadCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
