package practicum

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNetwork wraps every transport-level failure (DNS, refused, timeouts).
	ErrNetwork = errors.New("network failure")
	// ErrUnavailable matches *StatusError.
	ErrUnavailable = errors.New("api unavailable")
	// ErrDecode wraps bodies that are not a JSON object.
	ErrDecode = errors.New("malformed json in api response")
)

// StatusError is returned for any non-200 response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s: status code %d", ErrUnavailable, e.Code)
	if t := http.StatusText(e.Code); t != "" {
		msg += " (" + t + ")"
	}
	return msg
}

func (e *StatusError) Is(target error) bool { return target == ErrUnavailable }
