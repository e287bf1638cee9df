package api

import (
	"errors"
	"fmt"
)

// ErrUnauthorized is returned for any 401 response, regardless of which
// operation triggered it. The UI reacts by discarding the stored
// credential and returning to the login screen.
var ErrUnauthorized = errors.New("unauthorized")

// Error is a non-2xx response carrying the server-provided detail
// message when one could be decoded.
type Error struct {
	Status int
	Detail string
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("request failed with status %d", e.Status)
}
