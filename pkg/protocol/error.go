// Package protocol defines the errors shared by the carnet client layers.
//
// Errors fall into a small taxonomy that callers test with errors.Is:
//
//   - ErrNotFound: a document path is absent. Expected and used for support detection.
//   - ErrUnsupported: the vehicle does not support the requested action. Nothing was sent.
//   - ErrInvalidArgument: an action parameter is out of range or malformed. Nothing was sent.
//   - ErrSubmissionFailed: the backend rejected the action or returned no response.
//   - ErrNotImplemented: the action has no backend integration.
//
// Polling failures and exhausted retry budgets are not errors. They are reported as request
// statuses (see package request).
package protocol

import (
	"errors"
	"fmt"
)

// Error exposes methods useful for categorizing errors.
type Error interface {
	error

	// MayHaveSucceeded returns true if the Error was triggered by a command that might have been
	// executed. For example, if a client times out while waiting for a response, then the client
	// cannot tell if the backend received the command.
	MayHaveSucceeded() bool

	// Temporary returns true if the Error might be the result of a transient condition, such as the
	// backend throttling requests.
	Temporary() bool
}

var (
	ErrNotFound         = errors.New("not found")
	ErrUnsupported      = errors.New("not supported by vehicle")
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrSubmissionFailed = errors.New("submission failed")
	ErrNotImplemented   = errors.New("not implemented")

	// ErrBadResponse indicates the backend returned a body that could not be decoded.
	ErrBadResponse = errors.New("invalid response")
	// ErrThrottled indicates the backend refused a request because the rate limit was reached.
	ErrThrottled = NewError("backend rate limit reached", false, true)
	// ErrNoToken indicates a client tried to contact the backend without an OAuth token.
	ErrNoToken = NewError("no OAuth token available", false, false)
)

type CommandError struct {
	Err               error
	PossibleSuccess   bool
	PossibleTemporary bool
}

func NewError(message string, mayHaveSucceeded bool, temporary bool) error {
	return &CommandError{Err: errors.New(message), PossibleSuccess: mayHaveSucceeded, PossibleTemporary: temporary}
}

func (e *CommandError) Error() string {
	return e.Err.Error()
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

func (e *CommandError) MayHaveSucceeded() bool {
	return e.PossibleSuccess
}

func (e *CommandError) Temporary() bool {
	return e.PossibleTemporary
}

// UnsupportedError indicates an action was refused before submission because the vehicle lacks
// the capability or state it needs.
type UnsupportedError struct {
	Action string
	Reason string
}

func (e *UnsupportedError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("%s: %s", e.Action, ErrUnsupported)
	}
	return fmt.Sprintf("%s: %s: %s", e.Action, ErrUnsupported, e.Reason)
}

func (e *UnsupportedError) Unwrap() error { return ErrUnsupported }

func (e *UnsupportedError) MayHaveSucceeded() bool { return false }

func (e *UnsupportedError) Temporary() bool { return false }

func Unsupported(action, reason string) error {
	return &UnsupportedError{Action: action, Reason: reason}
}

// ArgumentError indicates an action parameter failed validation.
type ArgumentError struct {
	Action   string
	Argument string
	Value    interface{}
	Reason   string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("%s: %s %s=%v: %s", e.Action, ErrInvalidArgument, e.Argument, e.Value, e.Reason)
}

func (e *ArgumentError) Unwrap() error { return ErrInvalidArgument }

func (e *ArgumentError) MayHaveSucceeded() bool { return false }

func (e *ArgumentError) Temporary() bool { return false }

// SubmissionError indicates the backend did not accept an action. Err carries the transport error,
// if any; a nil Err means the backend returned no response.
type SubmissionError struct {
	Topic string
	Err   error
}

func (e *SubmissionError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("failed to perform %s action: %s: no response", e.Topic, ErrSubmissionFailed)
	}
	return fmt.Sprintf("failed to perform %s action: %s: %s", e.Topic, ErrSubmissionFailed, e.Err)
}

func (e *SubmissionError) Is(target error) bool {
	return target == ErrSubmissionFailed
}

func (e *SubmissionError) Unwrap() error { return e.Err }

func (e *SubmissionError) MayHaveSucceeded() bool {
	return MayHaveSucceeded(e.Err)
}

func (e *SubmissionError) Temporary() bool {
	return Temporary(e.Err)
}

// MayHaveSucceeded returns true if err is an Error that indicates the command may have been
// executed but the client did not receive a confirmation from the backend.
func MayHaveSucceeded(err error) bool {
	var commErr Error
	if errors.As(err, &commErr) && commErr.MayHaveSucceeded() {
		return true
	}
	return false
}

// Temporary returns true if err is an Error that indicates the command failed due to possibly
// transient conditions that do not require user action to resolve.
func Temporary(err error) bool {
	var commErr Error
	if errors.As(err, &commErr) && commErr.Temporary() {
		return true
	}
	return false
}

// ShouldRetry returns true if the client should retry to issue the command that triggered an error.
func ShouldRetry(err error) bool {
	if err == nil {
		return false
	}
	var e Error
	if errors.As(err, &e) {
		if e.MayHaveSucceeded() {
			return false
		}
		if e.Temporary() {
			return true
		}
	}
	return false
}

// NominalError indicates the backend received and understood a command, but reported that it
// could not be executed.
type NominalError struct {
	Details error
}

func (e *NominalError) Error() string {
	return e.Details.Error()
}

func (e *NominalError) Unwrap() error {
	return e.Details
}

func (e *NominalError) MayHaveSucceeded() bool {
	return MayHaveSucceeded(e.Details)
}

func (e *NominalError) Temporary() bool {
	return Temporary(e.Details)
}

func IsNominalError(err error) bool {
	if err == nil {
		return false
	}
	var nErr *NominalError
	return errors.As(err, &nErr)
}
