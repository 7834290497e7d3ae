package apiclient

import (
	"errors"
	"fmt"
)

// ErrNotAuthenticated is returned before any network round trip when an
// authenticated call is attempted without a stored token.
var ErrNotAuthenticated = errors.New("not logged in, please login first")

// ConnectivityError means the host could not be reached at all. The base URL
// is part of the message to aid local debugging.
type ConnectivityError struct {
	BaseURL string
	Err     error
}

func (e *ConnectivityError) Error() string {
	return fmt.Sprintf("cannot connect to server at %s, make sure the API is running: %v", e.BaseURL, e.Err)
}

func (e *ConnectivityError) Unwrap() error {
	return e.Err
}

// RequestError is a non-2xx HTTP response, carrying the status code and the
// raw response text.
type RequestError struct {
	StatusCode int
	Body       string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}

// ValidationError is raised client-side before any network call, or when a
// server response does not match the expected shape.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// IsAuthRejection reports whether err is a 401 from the server. The
// dispatcher has already cleared the session store by the time the caller
// sees this.
func IsAuthRejection(err error) bool {
	var reqErr *RequestError
	return errors.As(err, &reqErr) && reqErr.StatusCode == 401
}
