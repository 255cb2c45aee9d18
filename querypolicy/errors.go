package querypolicy

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrMalformedRequest matches any [*MalformedRequestError] with [errors.Is].
var ErrMalformedRequest = errors.New("malformed request")

// MalformedRequestError is returned when a request cannot be augmented
// because it has no absolute URL.
type MalformedRequestError struct {
	// URL is the request URL as given, or empty if there was none.
	URL string

	// Reason describes what is missing.
	Reason string
}

func (e *MalformedRequestError) Error() string {
	if e.URL == "" {
		return fmt.Sprintf("malformed request: %s", e.Reason)
	}
	return fmt.Sprintf("malformed request %q: %s", e.URL, e.Reason)
}

// Unwrap returns [ErrMalformedRequest].
func (e *MalformedRequestError) Unwrap() error {
	return ErrMalformedRequest
}

func checkRequest(req *http.Request) error {
	switch {
	case req == nil:
		return &MalformedRequestError{Reason: "nil request"}
	case req.URL == nil:
		return &MalformedRequestError{Reason: "missing URL"}
	case req.URL.Scheme == "":
		return &MalformedRequestError{URL: req.URL.String(), Reason: "missing scheme"}
	case req.URL.Host == "":
		return &MalformedRequestError{URL: req.URL.String(), Reason: "missing host"}
	}
	return nil
}
