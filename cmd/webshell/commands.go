package main

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/Mavwarf/webshell/internal/autostart"
	"github.com/Mavwarf/webshell/internal/config"
	"github.com/Mavwarf/webshell/internal/navguard"
	"github.com/Mavwarf/webshell/internal/silent"
)

// loadConfig loads and validates the configuration.
func loadConfig(path string) (config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}
	if err := config.Validate(cfg); err != nil {
		return config.Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "webshell %s (built %s)\n", version, buildDate)
		},
	}
}

func newHostsCmd(opts *rootOptions) *cobra.Command {
	var long bool
	cmd := &cobra.Command{
		Use:   "hosts",
		Short: "Print the effective in-app host allowlist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts.configPath)
			if err != nil {
				return err
			}
			hosts := navguard.NewAllowlist(cfg.AllowedHosts).Hosts()
			if !long {
				for _, h := range hosts {
					fmt.Fprintln(cmd.OutOrStdout(), h)
				}
				return nil
			}
			return hostsTable(cmd.OutOrStdout(), cfg.AppURL, hosts)
		},
	}
	cmd.Flags().BoolVarP(&long, "long", "l", false, "show a table with each host's role")
	return cmd
}

// hostsTable prints one row per host, marking the application's own host.
func hostsTable(w io.Writer, appURL string, hosts []string) error {
	u, err := url.Parse(appURL)
	if err != nil {
		return err
	}
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Host", "Role"})
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	table.SetNoWhiteSpace(true)
	for _, h := range hosts {
		role := "allowed"
		if strings.EqualFold(h, u.Hostname()) {
			role = "app"
		}
		table.Append([]string{h, role})
	}
	table.Render()
	return nil
}

func newAutostartCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "autostart",
		Short: "Manage starting at login",
	}
	var visible bool
	enable := &cobra.Command{
		Use:   "enable",
		Short: "Start at login",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts.configPath)
			if err != nil {
				return err
			}
			e, err := autostartEntry(cfg, opts.configPath, !visible)
			if err != nil {
				return err
			}
			if err := autostart.Enable(e); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Autostart enabled.")
			return nil
		},
	}
	enable.Flags().BoolVar(&visible, "visible", false, "show the window at login instead of starting in the tray")

	disable := &cobra.Command{
		Use:   "disable",
		Short: "Do not start at login",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := autostart.Disable(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Autostart disabled.")
			return nil
		},
	}
	status := &cobra.Command{
		Use:   "status",
		Short: "Show whether autostart is enabled",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "Autostart: %s\n", onOff(autostart.Enabled()))
		},
	}
	cmd.AddCommand(enable, disable, status)
	return cmd
}

// autostartEntry describes this binary, carrying an explicit config path.
func autostartEntry(cfg config.Config, configPath string, hidden bool) (autostart.Entry, error) {
	exe, err := os.Executable()
	if err != nil {
		return autostart.Entry{}, fmt.Errorf("locate executable: %w", err)
	}
	e := autostart.Entry{Exe: exe, Title: cfg.Title, Hidden: hidden}
	if configPath != "" {
		abs, err := filepath.Abs(configPath)
		if err != nil {
			return autostart.Entry{}, err
		}
		e.Args = []string{"--config", abs}
	}
	return e, nil
}

func onOff(b bool) string {
	if b {
		return "enabled"
	}
	return "disabled"
}

var errNoJournal = errors.New(`journal is off; set "journal: file" or "journal: sqlite" in the config`)

func newSilentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "silent [DURATION|off]",
		Short: "Pause offline notifications",
		Long:  "Without arguments, show whether notifications are paused. With a duration such as 30m or 2h, pause them; \"off\" resumes them.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) == 0 {
				if end, ok := silent.Until(); ok {
					fmt.Fprintf(out, "Notifications paused until %s.\n", end.Local().Format("15:04"))
				} else {
					fmt.Fprintln(out, "Notifications are on.")
				}
				return nil
			}
			if args[0] == "off" {
				if err := silent.Disable(); err != nil {
					return err
				}
				fmt.Fprintln(out, "Notifications resumed.")
				return nil
			}
			d, err := time.ParseDuration(args[0])
			if err != nil {
				return fmt.Errorf("invalid duration %q: %w", args[0], err)
			}
			end, err := silent.Enable(d)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Notifications paused until %s.\n", end.Local().Format("15:04"))
			return nil
		},
	}
}
