package shell

import (
	"encoding/json"
	"fmt"

	"github.com/Mavwarf/webshell/internal/navguard"
)

// BindingName is the function the window exposes to the bridge script.
const BindingName = "webshellBridge"

// Message is one request from the bridge script.
type Message struct {
	Type    string `json:"type"`
	URL     string `json:"url,omitempty"`
	Online  *bool  `json:"online,omitempty"`
	Message string `json:"message,omitempty"`
}

// DecodeMessage parses a raw bridge request. Content is less trusted than
// the shell, so anything that is not a well-formed message is rejected.
func DecodeMessage(raw []byte) (Message, error) {
	var m Message
	if err := json.Unmarshal(raw, &m); err != nil {
		return Message{}, fmt.Errorf("bridge: decode: %w", err)
	}
	if m.Type == "" {
		return Message{}, fmt.Errorf("bridge: missing type")
	}
	return m, nil
}

// Dispatch handles one bridge request and returns the reply sent back to
// the script. Fire-and-forget messages reply with nil.
func (s *Shell) Dispatch(m Message) (any, error) {
	switch m.Type {
	case "get-allowed-hosts":
		return s.AllowedHosts(), nil
	case "get-zoom":
		return s.ZoomFactor(), nil
	case "network-status":
		if m.Online == nil {
			return nil, fmt.Errorf("bridge: network-status without online")
		}
		s.NetworkStatus(*m.Online)
	case "retry":
		s.Retry()
	case "open-external":
		return s.OpenExternalLink(m.URL), nil
	case "open-window":
		s.Navigate(m.URL, navguard.NewWindow)
	case "zoom-in":
		return s.ZoomIn(), nil
	case "zoom-out":
		return s.ZoomOut(), nil
	case "zoom-reset":
		return s.ZoomReset(), nil
	case "log":
		s.logFromPage(m.Message)
	default:
		return nil, fmt.Errorf("bridge: unknown message type %q", m.Type)
	}
	return nil, nil
}
