package api

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies a failed request.
type ErrorKind string

// Error taxonomy for normalized request failures.
const (
	KindNetworkFailure ErrorKind = "network_failure" // no response received
	KindAuthFailure    ErrorKind = "auth_failure"    // 401
	KindClientError    ErrorKind = "client_error"    // other 4xx
	KindServerError    ErrorKind = "server_error"    // 5xx
)

// RequestError is the single error shape every non-2xx outcome is
// normalized into. Status is zero when no response was received.
type RequestError struct {
	Kind    ErrorKind
	Status  int
	Message string
}

func (e *RequestError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s (%d): %s", e.Kind, e.Status, e.Message)
}

func kindForStatus(status int) ErrorKind {
	switch {
	case status == http.StatusUnauthorized:
		return KindAuthFailure
	case status >= 500:
		return KindServerError
	default:
		return KindClientError
	}
}

// IsAuthFailure reports whether err is a normalized 401 failure.
func IsAuthFailure(err error) bool {
	var reqErr *RequestError
	return errors.As(err, &reqErr) && reqErr.Kind == KindAuthFailure
}

// IsNetworkFailure reports whether err indicates no response was received.
func IsNetworkFailure(err error) bool {
	var reqErr *RequestError
	return errors.As(err, &reqErr) && reqErr.Kind == KindNetworkFailure
}
