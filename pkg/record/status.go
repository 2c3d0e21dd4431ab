package record

import (
	"fmt"
	"strconv"
)

// StatusKind distinguishes the three states an exchange can be in.
type StatusKind uint8

const (
	// StatusPending marks an exchange whose outcome is not yet known.
	StatusPending StatusKind = iota
	// StatusError marks a transport failure. HTTP error codes (4xx, 5xx)
	// are not errors; only failures to complete the exchange are.
	StatusError
	// StatusHTTP marks a completed exchange carrying an HTTP status code.
	StatusHTTP
)

// Status is the tagged outcome of an exchange. On the wire it serializes as
// the string "PENDING", the string "ERROR", or a bare integer status code.
type Status struct {
	Kind StatusKind
	Code int
}

// Pending returns the initial status every record starts with.
func Pending() Status { return Status{Kind: StatusPending} }

// Failed returns the terminal status for a transport failure.
func Failed() Status { return Status{Kind: StatusError} }

// Code returns a terminal status carrying an HTTP status code.
func Code(code int) Status { return Status{Kind: StatusHTTP, Code: code} }

// IsPending reports whether the exchange has not reached a terminal state.
func (s Status) IsPending() bool { return s.Kind == StatusPending }

// IsError reports whether the exchange ended in a transport failure.
func (s Status) IsError() bool { return s.Kind == StatusError }

// Terminal reports whether the status can no longer change.
func (s Status) Terminal() bool { return s.Kind != StatusPending }

func (s Status) String() string {
	switch s.Kind {
	case StatusError:
		return "ERROR"
	case StatusHTTP:
		return strconv.Itoa(s.Code)
	default:
		return "PENDING"
	}
}

// MarshalJSON encodes the tagged value in its wire shape.
func (s Status) MarshalJSON() ([]byte, error) {
	switch s.Kind {
	case StatusHTTP:
		return []byte(strconv.Itoa(s.Code)), nil
	case StatusError:
		return []byte(`"ERROR"`), nil
	default:
		return []byte(`"PENDING"`), nil
	}
}

// UnmarshalJSON accepts the wire shapes produced by MarshalJSON. Unknown
// strings are rejected so malformed frames surface at the parse boundary.
func (s *Status) UnmarshalJSON(b []byte) error {
	switch string(b) {
	case `"PENDING"`:
		*s = Pending()
		return nil
	case `"ERROR"`:
		*s = Failed()
		return nil
	}
	code, err := strconv.Atoi(string(b))
	if err != nil {
		return fmt.Errorf("status: unrecognized value %s", b)
	}
	*s = Code(code)
	return nil
}
