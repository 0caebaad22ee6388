// Command webshell wraps one web application in a dedicated desktop window
// with a tray icon.
package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

func init() {
	// The tray's event loop must own the main thread on macOS.
	runtime.LockOSThread()
}

type rootOptions struct {
	configPath string
	hidden     bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "webshell",
		Short:         "Desktop shell for a web application",
		Long:          "Opens the configured web application in its own window, keeps navigation on an allowlist of hosts and shows a local page while offline.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApp(opts)
		},
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "config file (default: search next to the binary, then the user config dir)")
	root.Flags().BoolVar(&opts.hidden, "hidden", false, "start minimized to the tray")

	root.AddCommand(
		newAutostartCmd(opts),
		newHostsCmd(opts),
		newJournalCmd(opts),
		newSilentCmd(),
		newVersionCmd(),
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "webshell: %v\n", err)
		os.Exit(1)
	}
}
