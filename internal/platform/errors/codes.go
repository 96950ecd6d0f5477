// Package errors provides coded errors for failures that are reported back to
// chat members or operators rather than propagated.
package errors

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Admin command errors
	CodeNotAdmin       Code = "NOT_ADMIN"
	CodeUserNotFound   Code = "USER_NOT_FOUND"
	CodeNoReplyTarget  Code = "NO_REPLY_TARGET"
	CodeInvalidSession Code = "INVALID_SESSION"
	CodeWrongThread    Code = "WRONG_THREAD"

	// Collaborator errors
	CodeExternalFailure Code = "EXTERNAL_FAILURE"
	CodeClickFeed       Code = "CLICK_FEED_UNAVAILABLE"
)

// UserVisible reports whether the code is surfaced to the member who issued
// the command. Everything else is only logged.
func (c Code) UserVisible() bool {
	switch c {
	case CodeUserNotFound:
		return true
	default:
		return false
	}
}
