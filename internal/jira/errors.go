package jira

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrTransport is returned when the request never produced a response.
	ErrTransport = errors.New("jira transport failure")

	// ErrDecode is returned when a 2xx body is not the expected JSON.
	ErrDecode = errors.New("jira response decode failure")

	// ErrNoBaseURL is returned by NewClient when no base URL is configured.
	ErrNoBaseURL = errors.New("jira base URL is required")
)

// APIError is a non-2xx response from Jira. ErrorMessages and Errors are
// decoded from Jira's standard error body when one is present.
type APIError struct {
	StatusCode    int
	ErrorMessages []string
	Errors        map[string]any
}

func (e *APIError) Error() string {
	return fmt.Sprintf("request failed with status code %d", e.StatusCode)
}

// Messages returns ErrorMessages joined by ", ", or "" when Jira sent none.
func (e *APIError) Messages() string {
	return strings.Join(e.ErrorMessages, ", ")
}

// RemoteMessage returns the Jira error messages carried by err when it is
// (or wraps) an APIError with a non-empty message list.
func RemoteMessage(err error) (string, bool) {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return "", false
	}
	msg := apiErr.Messages()
	return msg, msg != ""
}

// errorBody is Jira's standard error payload. Members are decoded one by
// one so a malformed errors map cannot hide the messages.
type errorBody struct {
	ErrorMessages []json.RawMessage `json:"errorMessages"`
	Errors        json.RawMessage   `json:"errors"`
}
