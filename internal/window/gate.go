package window

import (
	"github.com/go-rod/rod/lib/proto"

	"github.com/Mavwarf/webshell/internal/navguard"
)

// refusedReason fails a refused document request. Chromium commits no
// error page for an aborted navigation, so the current document stays.
const refusedReason = proto.NetworkErrorReasonAborted

// admit reports whether a held document request may continue. Only
// main-frame requests are classified.
func admit(h Handler, url string, mainFrame bool) bool {
	if !mainFrame {
		return true
	}
	return h.Navigate(url, navguard.InPlace)
}

// admitAbout is admit for the about window: only the about document
// itself loads, any other main-frame target goes to the default browser.
func admitAbout(h Handler, url, aboutURL string, mainFrame bool) bool {
	if !mainFrame || sameFile(url, aboutURL) {
		return true
	}
	h.OpenExternalLink(url)
	return false
}

// refusedCommit reports whether a committed main-frame document must be
// replaced by the app. The request gate never sees file: loads, so they
// are classified here after the fact.
func refusedCommit(h Handler, f *proto.PageFrame) bool {
	if f == nil || f.ParentID != "" || internalScheme(f.URL) {
		return false
	}
	if !navguard.IsFileURL(f.URL) {
		return false
	}
	return !h.Navigate(f.URL, navguard.InPlace)
}
