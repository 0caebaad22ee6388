package connectivity

import "strings"

// Chromium net error codes that mean the network, not the page, failed.
// See net/base/net_error_list.h.
const (
	ErrFailed               = -2
	ErrTimedOut             = -7
	ErrNetworkChanged       = -21
	ErrConnectionClosed     = -100
	ErrConnectionReset      = -101
	ErrConnectionRefused    = -102
	ErrConnectionAborted    = -103
	ErrConnectionFailed     = -104
	ErrNameNotResolved      = -105
	ErrInternetDisconnected = -106
	ErrAddressUnreachable   = -109
	ErrConnectionTimedOut   = -118
	ErrNameResolutionFailed = -137
	ErrEmptyResponse        = -324
)

// Codes that are reported for load failures but do not indicate a lost
// connection.
const (
	ErrAborted         = -3
	ErrBlockedByClient = -20
	ErrBlockedByResp   = -27
	ErrUnknown         = 0
)

var networkCodes = map[int]bool{
	ErrFailed:               true,
	ErrTimedOut:             true,
	ErrNetworkChanged:       true,
	ErrConnectionClosed:     true,
	ErrConnectionReset:      true,
	ErrConnectionRefused:    true,
	ErrConnectionAborted:    true,
	ErrConnectionFailed:     true,
	ErrNameNotResolved:      true,
	ErrInternetDisconnected: true,
	ErrAddressUnreachable:   true,
	ErrConnectionTimedOut:   true,
	ErrNameResolutionFailed: true,
	ErrEmptyResponse:        true,
}

// IsNetworkError reports whether code is one of the network-class load
// failures that switch the window to the offline page.
func IsNetworkError(code int) bool {
	return networkCodes[code]
}

// errorNames maps the DevTools error text (without the "net::ERR_"
// prefix) to its numeric code.
var errorNames = map[string]int{
	"FAILED":                 ErrFailed,
	"ABORTED":                ErrAborted,
	"TIMED_OUT":              ErrTimedOut,
	"BLOCKED_BY_CLIENT":      ErrBlockedByClient,
	"NETWORK_CHANGED":        ErrNetworkChanged,
	"BLOCKED_BY_RESPONSE":    ErrBlockedByResp,
	"CONNECTION_CLOSED":      ErrConnectionClosed,
	"CONNECTION_RESET":       ErrConnectionReset,
	"CONNECTION_REFUSED":     ErrConnectionRefused,
	"CONNECTION_ABORTED":     ErrConnectionAborted,
	"CONNECTION_FAILED":      ErrConnectionFailed,
	"NAME_NOT_RESOLVED":      ErrNameNotResolved,
	"INTERNET_DISCONNECTED":  ErrInternetDisconnected,
	"ADDRESS_UNREACHABLE":    ErrAddressUnreachable,
	"CONNECTION_TIMED_OUT":   ErrConnectionTimedOut,
	"NAME_RESOLUTION_FAILED": ErrNameResolutionFailed,
	"EMPTY_RESPONSE":         ErrEmptyResponse,
}

// CodeFromErrorText converts a DevTools Network.loadingFailed error text
// such as "net::ERR_INTERNET_DISCONNECTED" into its numeric code.
// Unrecognized text yields ErrUnknown, which is never a network error.
func CodeFromErrorText(text string) int {
	name := strings.ToUpper(strings.TrimSpace(text))
	name = strings.TrimPrefix(name, "NET::")
	name = strings.TrimPrefix(name, "ERR_")
	if code, ok := errorNames[name]; ok {
		return code
	}
	return ErrUnknown
}
