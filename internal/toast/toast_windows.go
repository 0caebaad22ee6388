//go:build windows

package toast

import (
	"fmt"
	"strings"
)

// showScript returns the PowerShell script for a Windows 10+ toast built
// with the ToastNotificationManager XML API.
func showScript(title, message, iconPath string) string {
	t := escapePowerShell(escapeXML(title))
	m := escapePowerShell(escapeXML(message))

	iconElem := ""
	if iconPath != "" {
		fileURI := "file:///" + strings.ReplaceAll(iconPath, `\`, "/")
		iconElem = fmt.Sprintf(`<image placement="appLogoOverride" src="%s"/>`,
			escapePowerShell(escapeXML(fileURI)))
	}

	return fmt.Sprintf(`
[Windows.UI.Notifications.ToastNotificationManager, Windows.UI.Notifications, ContentType = WindowsRuntime] | Out-Null
[Windows.Data.Xml.Dom.XmlDocument, Windows.Data.Xml.Dom, ContentType = WindowsRuntime] | Out-Null

$xml = New-Object Windows.Data.Xml.Dom.XmlDocument
$xml.LoadXml('<toast><visual><binding template="ToastGeneric">%s<text>%s</text><text>%s</text><text placement="attribution">via webshell</text></binding></visual></toast>')
$toast = [Windows.UI.Notifications.ToastNotification]::new($xml)
[Windows.UI.Notifications.ToastNotificationManager]::CreateToastNotifier('{1AC14E77-02E7-4E5D-B744-2EB1AE5198B7}\WindowsPowerShell\v1.0\powershell.exe').Show($toast)
`, iconElem, t, m)
}

func command(title, message, iconPath string) (string, []string) {
	return "powershell", []string{"-NoProfile", "-Command", showScript(title, message, iconPath)}
}
