package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Mavwarf/webshell/internal/journal"
	"github.com/Mavwarf/webshell/internal/paths"
)

func newJournalCmd(opts *rootOptions) *cobra.Command {
	var (
		count    int
		clean    int
		clearAll bool
	)
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Show recorded navigation decisions and connectivity changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if count <= 0 {
				return fmt.Errorf("count must be a positive integer")
			}
			cfg, err := loadConfig(opts.configPath)
			if err != nil {
				return err
			}
			store, err := journal.Open(cfg.Journal, paths.DataDir())
			if err != nil {
				return err
			}
			if store == nil {
				return errNoJournal
			}
			defer store.Close()

			out := cmd.OutOrStdout()
			switch {
			case clearAll:
				if err := store.Clear(); err != nil {
					return err
				}
				fmt.Fprintln(out, "Journal cleared.")
				return nil
			case clean > 0:
				n, err := store.Clean(clean)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Removed %d entries older than %d days.\n", n, clean)
				return nil
			}

			entries, err := store.Entries(count)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(out, "Journal is empty.")
				return nil
			}
			renderEntries(out, entries, colorEnabled(out))
			return nil
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 20, "number of most recent entries to show")
	cmd.Flags().IntVar(&clean, "clean", 0, "remove entries older than this many days")
	cmd.Flags().BoolVar(&clearAll, "clear", false, "delete all entries")
	return cmd
}

// colorEnabled reports whether out is a terminal and NO_COLOR is unset.
func colorEnabled(out io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := out.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

type palette struct{ on bool }

func (p palette) ansi(code, s string) string {
	if !p.on {
		return s
	}
	return code + s + "\033[0m"
}

func (p palette) dim(s string) string    { return p.ansi("\033[2m", s) }
func (p palette) cyan(s string) string   { return p.ansi("\033[36m", s) }
func (p palette) green(s string) string  { return p.ansi("\033[32m", s) }
func (p palette) yellow(s string) string { return p.ansi("\033[33m", s) }
func (p palette) red(s string) string    { return p.ansi("\033[31m", s) }

// renderEntries prints one line per entry, with a header line whenever
// the run session changes.
func renderEntries(w io.Writer, entries []journal.Entry, color bool) {
	p := palette{on: color}
	session := ""
	for _, e := range entries {
		if e.Session != session {
			session = e.Session
			fmt.Fprintln(w, p.dim("session "+shortID(session)))
		}
		var b strings.Builder
		b.WriteString(p.dim(e.Time.Local().Format(time.DateTime)))
		b.WriteString("  ")
		b.WriteString(fmt.Sprintf("%-10s", e.Kind))
		b.WriteString("  ")
		b.WriteString(subjectColor(p, e)(fmt.Sprintf("%-8s", e.Subject)))
		if e.URL != "" {
			b.WriteString("  ")
			b.WriteString(e.URL)
		}
		if e.Detail != "" {
			b.WriteString("  ")
			b.WriteString(p.dim(e.Detail))
		}
		fmt.Fprintln(w, b.String())
	}
}

func subjectColor(p palette, e journal.Entry) func(string) string {
	switch e.Subject {
	case "allow", "online", "start":
		return p.green
	case "external":
		return p.cyan
	case "offline":
		return p.yellow
	case "deny":
		return p.red
	default:
		return func(s string) string { return s }
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
