package httpcontext

import (
	"errors"
)

// RedirectError aborts a pipeline with a redirect the server turns into a
// Location header and status code.
type RedirectError struct {
	status int
	url    string
}

func (r *RedirectError) Error() string {
	return "redirect to " + r.url
}

func (r *RedirectError) StatusCode() int {
	return r.status
}

func (r *RedirectError) Location() string {
	return r.url
}

// ErrResponseSent signals that the response already went to the wire, a
// websocket upgrade or hijack for instance, and finalization must be skipped.
var ErrResponseSent = errors.New("response already sent")
