package domain

import "errors"

// Error taxonomy shared by the gateway, services and scheduler. Every failure
// is wrapped with exactly one of these so the scheduler boundary can log by
// category without ever letting a failure stop the tick loop.
var (
	// ErrAuth covers a failed login, a login that returned no token, or a
	// downstream call rejected as unauthorized.
	ErrAuth = errors.New("authentication failed")

	// ErrTransient covers timeouts and non-200 responses from the platform.
	ErrTransient = errors.New("transient platform error")

	// ErrClassification covers a malformed response from the reply-decision
	// service.
	ErrClassification = errors.New("reply classification failed")

	// ErrData covers unexpected or missing fields in a workout or message
	// record.
	ErrData = errors.New("malformed record")
)
