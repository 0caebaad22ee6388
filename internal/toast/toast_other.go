//go:build !linux && !darwin && !windows

package toast

func command(string, string, string) (string, []string) { return "", nil }
