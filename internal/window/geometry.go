package window

import (
	"net/url"
	"path"
	"strings"
)

// Bounds is a window rectangle in screen pixels.
type Bounds struct {
	Left, Top, Width, Height int
}

// centered returns bounds of the given fractions of the screen, centered.
func centered(screenW, screenH int, widthRatio, heightRatio float64) Bounds {
	w := int(float64(screenW) * widthRatio)
	h := int(float64(screenH) * heightRatio)
	return Bounds{
		Left:   (screenW - w) / 2,
		Top:    (screenH - h) / 2,
		Width:  w,
		Height: h,
	}
}

// sameFile reports whether two file: URLs name the same path.
func sameFile(a, b string) bool {
	ua, err := url.Parse(a)
	if err != nil || !strings.EqualFold(ua.Scheme, "file") {
		return false
	}
	ub, err := url.Parse(b)
	if err != nil || !strings.EqualFold(ub.Scheme, "file") {
		return false
	}
	return path.Clean(ua.Path) == path.Clean(ub.Path)
}

// internalScheme reports URLs the browser uses for its own documents.
func internalScheme(raw string) bool {
	for _, p := range []string{"about:", "chrome-error:", "chrome:", "devtools:"} {
		if strings.HasPrefix(raw, p) {
			return true
		}
	}
	return false
}
