package toast

import "strings"

// escapePowerShell doubles single quotes for embedding inside PowerShell
// single-quoted strings.
func escapePowerShell(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

// escapeAppleScript escapes backslashes and double quotes for embedding
// inside AppleScript strings.
func escapeAppleScript(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}

// escapeXML replaces XML-special characters so content can be embedded
// inside XML text and attribute values.
func escapeXML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, "\"", "&quot;")
	s = strings.ReplaceAll(s, "'", "&apos;")
	return s
}
