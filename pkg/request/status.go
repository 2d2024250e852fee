package request

import "strings"

// Status is the lifecycle state of a Record.
type Status int

const (
	StatusEmpty Status = iota
	StatusInProgress
	StatusSucceeded
	StatusFailed
	StatusThrottled
	StatusTimeout
	StatusException
)

var statusNames = map[Status]string{
	StatusEmpty:      "None",
	StatusInProgress: "In Progress",
	StatusSucceeded:  "Succeeded",
	StatusFailed:     "Failed",
	StatusThrottled:  "Throttled",
	StatusTimeout:    "Timeout",
	StatusException:  "Exception",
}

func (s Status) String() string {
	if n, ok := statusNames[s]; ok {
		return n
	}
	return "Unknown"
}

// Terminal reports whether no further polling happens in s.
func (s Status) Terminal() bool {
	return s != StatusEmpty && s != StatusInProgress
}

// ParseStatus maps a backend status string onto a Status. Unrecognized and empty strings are
// terminal failures.
func ParseStatus(s string) Status {
	switch strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), "_", " ")) {
	case "in progress":
		return StatusInProgress
	case "successful", "succeeded", "success":
		return StatusSucceeded
	case "throttled":
		return StatusThrottled
	case "timeout":
		return StatusTimeout
	case "exception":
		return StatusException
	}
	return StatusFailed
}
