package githubapi

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrMalformedLink is returned when a Link header does not follow the
	// <url>; rel="name" convention.
	ErrMalformedLink = errors.New("malformed Link header")

	// ErrNotList is returned when a paginated endpoint answers with a body
	// that is not a JSON array.
	ErrNotList = errors.New("page body is not a JSON array")
)

// HTTPError represents a non-2xx response.
type HTTPError struct {
	// StatusCode is the HTTP response status code.
	StatusCode int

	// Status is the status line text, e.g. "404 Not Found".
	Status string

	// URL is the request URL that produced the response.
	URL string

	// Message is the "message" field of a GitHub error body when present,
	// otherwise the raw body.
	Message string
}

func (err *HTTPError) Error() string {
	if err.Message == "" {
		return fmt.Sprintf("HTTP %d from %s", err.StatusCode, err.URL)
	}
	return fmt.Sprintf("HTTP %d from %s: %s", err.StatusCode, err.URL, err.Message)
}

// DecodeError is returned when a successful response body is not valid JSON.
type DecodeError struct {
	URL string
	Err error
}

func (err *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode JSON response from %s: %v", err.URL, err.Err)
}

func (err *DecodeError) Unwrap() error {
	return err.Err
}

// IsNotFound reports whether err is a 404 response.
func IsNotFound(err error) bool {
	var httpError *HTTPError
	return errors.As(err, &httpError) && httpError.StatusCode == http.StatusNotFound
}

// IsUnauthorized reports whether err is a 401 response, which GitHub
// returns for a bad or expired token.
func IsUnauthorized(err error) bool {
	var httpError *HTTPError
	return errors.As(err, &httpError) && httpError.StatusCode == http.StatusUnauthorized
}
