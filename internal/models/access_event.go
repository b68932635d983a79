package models

import "time"

// Access event types
const (
	AccessLoginSuccess = "LOGIN_SUCCESS"
	AccessLoginFail    = "LOGIN_FAIL"
	AccessLogout       = "LOGOUT"
	AccessGranted      = "ACCESS_GRANTED"
	AccessDenied       = "ACCESS_DENIED"
)

// NetworkAddressMaxLen fits the longest textual IPv6 address.
const NetworkAddressMaxLen = 45

// AccessEventLabels maps each event type to its human-readable label.
var AccessEventLabels = map[string]string{
	AccessLoginSuccess: "Successful Login",
	AccessLoginFail:    "Failed Login",
	AccessLogout:       "User Logout",
	AccessGranted:      "Access Granted to Resource",
	AccessDenied:       "Access Denied to Resource",
}

// AccessEvent is append-only. ActorID is nil for failed logins and after the
// actor has been deleted.
type AccessEvent struct {
	ID             int64     `json:"id"`
	ActorID        *int64    `json:"actor_id,omitempty"`
	ActorUsername  *string   `json:"actor_username,omitempty"`
	EventType      string    `json:"event_type"`
	NetworkAddress *string   `json:"network_address,omitempty"`
	Details        string    `json:"details"`
	CreatedAt      time.Time `json:"created_at"`
}

func IsValidAccessEventType(t string) bool {
	_, ok := AccessEventLabels[t]
	return ok
}

// AccessEventLabel returns the display label, or the raw code when unknown.
func AccessEventLabel(t string) string {
	if l, ok := AccessEventLabels[t]; ok {
		return l
	}
	return t
}
