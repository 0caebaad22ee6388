//go:build linux

package toast

func command(title, message, iconPath string) (string, []string) {
	args := []string{"--app-name=webshell"}
	if iconPath != "" {
		args = append(args, "--icon="+iconPath)
	}
	return "notify-send", append(args, title, message)
}
