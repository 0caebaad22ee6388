// Package autostart registers the shell to start at user login.
package autostart

import "strings"

// Name identifies the login item on every platform.
const Name = "webshell"

// Entry describes what runs at login.
type Entry struct {
	Exe    string   // absolute executable path
	Args   []string // extra arguments, e.g. --hidden
	Title  string   // display name
	Hidden bool     // start in the tray
}

func (e Entry) argv() []string {
	argv := append([]string{e.Exe}, e.Args...)
	if e.Hidden {
		argv = append(argv, "--hidden")
	}
	return argv
}

// commandLine quotes each argument that needs it, double-quote style.
func commandLine(argv []string) string {
	parts := make([]string, len(argv))
	for i, a := range argv {
		if a == "" || strings.ContainsAny(a, " \t\"") {
			a = `"` + strings.ReplaceAll(a, `"`, `\"`) + `"`
		}
		parts[i] = a
	}
	return strings.Join(parts, " ")
}
