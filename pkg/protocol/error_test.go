package protocol

import (
	"errors"
	"fmt"
	"testing"
)

func TestRetriableError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		shouldRetry bool
	}{
		{"nil", nil, false},
		{"plain", errors.New("boom"), false},
		{"temporary", NewError("busy", false, true), true},
		{"may have succeeded", NewError("timeout", true, true), false},
		{"permanent", NewError("denied", false, false), false},
		{"wrapped temporary", fmt.Errorf("context: %w", ErrThrottled), true},
		{"unsupported", Unsupported("lock", "access disabled"), false},
		{"submission temporary", &SubmissionError{Topic: "lock", Err: ErrThrottled}, true},
		{"submission empty", &SubmissionError{Topic: "lock"}, false},
	}
	for _, test := range tests {
		if got := ShouldRetry(test.err); got != test.shouldRetry {
			t.Errorf("%s: ShouldRetry() = %v, expected %v", test.name, got, test.shouldRetry)
		}
	}
}

func TestTaxonomy(t *testing.T) {
	if err := Unsupported("lock", ""); !errors.Is(err, ErrUnsupported) {
		t.Errorf("UnsupportedError does not match ErrUnsupported: %s", err)
	}
	argErr := &ArgumentError{Action: "climatisation", Argument: "temperature", Value: 31.0, Reason: "out of range"}
	if !errors.Is(argErr, ErrInvalidArgument) {
		t.Errorf("ArgumentError does not match ErrInvalidArgument")
	}
	if errors.Is(argErr, ErrUnsupported) {
		t.Errorf("ArgumentError matches ErrUnsupported")
	}
	transport := NewError("connection reset", true, false)
	subErr := fmt.Errorf("lock: %w", &SubmissionError{Topic: "lock", Err: transport})
	if !errors.Is(subErr, ErrSubmissionFailed) {
		t.Errorf("SubmissionError does not match ErrSubmissionFailed")
	}
	if !errors.Is(subErr, transport) {
		t.Errorf("SubmissionError does not unwrap to transport error")
	}
	if !MayHaveSucceeded(subErr) {
		t.Errorf("SubmissionError lost MayHaveSucceeded from transport error")
	}
}

func TestNominalError(t *testing.T) {
	err := fmt.Errorf("outer: %w", &NominalError{Details: ErrThrottled})
	if !IsNominalError(err) {
		t.Errorf("IsNominalError returned false")
	}
	if !Temporary(err) {
		t.Errorf("NominalError did not propagate Temporary")
	}
	if IsNominalError(nil) {
		t.Errorf("IsNominalError(nil) returned true")
	}
}
