// Package ssrf validates hostnames and IP addresses before the web-fetch
// tool is allowed to dial them, and exposes the building blocks (pinned
// dialing, redirect re-validation) used to keep that guarantee across the
// life of a request.
package ssrf

// BlockedError is returned when a hostname or IP address is blocked by SSRF
// protection.
type BlockedError struct {
	Message string
}

func (e *BlockedError) Error() string { return e.Message }

// NewBlockedError builds a BlockedError from message.
func NewBlockedError(message string) *BlockedError {
	return &BlockedError{Message: message}
}
