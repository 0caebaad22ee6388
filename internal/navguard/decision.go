package navguard

import "fmt"

// Origin tells the guard how a navigation was requested.
type Origin int

const (
	// InPlace is a navigation of the managed window itself.
	InPlace Origin = iota
	// NewWindow is a window.open or target=_blank request.
	NewWindow
)

func (o Origin) String() string {
	switch o {
	case InPlace:
		return "in-place"
	case NewWindow:
		return "new-window"
	default:
		return fmt.Sprintf("origin(%d)", int(o))
	}
}

// Action is the outcome of a classification.
type Action int

const (
	// Deny drops the request with no side effect. It is the zero value so
	// an uninitialized Decision is the restrictive one.
	Deny Action = iota
	// AllowInApp keeps loading the URL inside the managed window.
	AllowInApp
	// OpenExternally hands the URL to the default browser.
	OpenExternally
)

func (a Action) String() string {
	switch a {
	case Deny:
		return "deny"
	case AllowInApp:
		return "allow"
	case OpenExternally:
		return "external"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

// Decision is the result of Guard.Classify. URL is set only for
// OpenExternally and holds the URL to hand to the browser.
type Decision struct {
	Action Action
	URL    string
}

func (d Decision) String() string {
	if d.Action == OpenExternally {
		return fmt.Sprintf("%s(%s)", d.Action, d.URL)
	}
	return d.Action.String()
}

func deny() Decision               { return Decision{Action: Deny} }
func allow() Decision              { return Decision{Action: AllowInApp} }
func external(url string) Decision { return Decision{Action: OpenExternally, URL: url} }
