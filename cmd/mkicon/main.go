// mkicon writes the app icon as a PNG, used for packaging and the
// desktop entry. Usage: go run ./cmd/mkicon [-size N] [-offline] <output.png>
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/Mavwarf/webshell/internal/icon"
	"github.com/Mavwarf/webshell/internal/paths"
)

func main() {
	size := flag.Int("size", 256, "icon edge in pixels")
	offline := flag.Bool("offline", false, "draw the offline variant")
	flag.Parse()
	if flag.NArg() != 1 || *size < 16 {
		fmt.Fprintln(os.Stderr, "usage: mkicon [-size N] [-offline] <output.png>")
		os.Exit(2)
	}
	data, err := icon.PNG(*size, *offline)
	if err == nil {
		err = paths.AtomicWrite(flag.Arg(0), data)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "mkicon: %v\n", err)
		os.Exit(1)
	}
}
