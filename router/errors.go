package router

import (
	"errors"
	"fmt"
)

// ErrMalformedResponse marks a 2xx body that does not carry a reply.
var ErrMalformedResponse = errors.New("malformed response")

// RequestFailure is the single failure kind of the routing client. It covers
// transport errors, non-2xx statuses and undecodable bodies alike.
type RequestFailure struct {
	Op     string // "generate" or "logs"
	URL    string
	Status int // 0 when no response was received
	Err    error
}

func (e *RequestFailure) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s %s: status %d: %v", e.Op, e.URL, e.Status, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
}

func (e *RequestFailure) Unwrap() error {
	return e.Err
}

// IsRequestFailure reports whether err is or wraps a *RequestFailure.
func IsRequestFailure(err error) bool {
	var rf *RequestFailure
	return errors.As(err, &rf)
}
