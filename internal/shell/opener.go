package shell

import "github.com/pkg/browser"

// SystemOpener opens URLs with the operating system's default handler.
type SystemOpener struct{}

func (SystemOpener) Open(url string) error {
	return browser.OpenURL(url)
}
