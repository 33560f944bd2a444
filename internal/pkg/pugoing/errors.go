package pugoing

import "fmt"

// Vendor business-error strings, matched bit-exact against the envelope msg.
const (
	msgHostOffline  = "主机不在线"
	msgNoPermission = "您没有此权限访问该主机"
)

// APIError is the common base of every error this package returns.
type APIError interface {
	error
	apiError()
}

// AuthenticationError means the vendor rejected the login (bad credentials
// or a malformed login response). It is never retried here; callers surface
// it as "reauthentication required".
type AuthenticationError struct {
	Message string
	Cause   error
}

func (e *AuthenticationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("authentication failed: %s: %v", e.Message, e.Cause)
	}
	return "authentication failed: " + e.Message
}

func (e *AuthenticationError) Unwrap() error { return e.Cause }
func (e *AuthenticationError) apiError()     {}

// CommunicationError covers network failures, timeouts, parse failures,
// unexpected envelopes and any vendor business error that is not one of the
// two recognized offline/permission cases.
type CommunicationError struct {
	Message string
	Cause   error
}

func (e *CommunicationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("communication error: %s: %v", e.Message, e.Cause)
	}
	return "communication error: " + e.Message
}

func (e *CommunicationError) Unwrap() error { return e.Cause }
func (e *CommunicationError) apiError()     {}

// DeviceOfflineError is the vendor saying the gateway host is unreachable.
type DeviceOfflineError struct {
	SN string
}

func (e *DeviceOfflineError) Error() string {
	return "host offline: " + e.SN
}

func (e *DeviceOfflineError) apiError() {}

// NoPermissionError is the vendor denying access to a gateway host.
type NoPermissionError struct {
	SN string
}

func (e *NoPermissionError) Error() string {
	return "no permission to access host: " + e.SN
}

func (e *NoPermissionError) apiError() {}

// ValidationError is raised locally, before any network call, for
// out-of-range or malformed control intents.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) apiError() {}
