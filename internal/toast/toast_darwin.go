//go:build darwin

package toast

import "fmt"

func command(title, message, _ string) (string, []string) {
	script := fmt.Sprintf(`display notification "%s" with title "%s"`,
		escapeAppleScript(message), escapeAppleScript(title))
	return "osascript", []string{"-e", script}
}
