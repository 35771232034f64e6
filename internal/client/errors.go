package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// RemoteServiceError is returned for every failed call to the staff service.
// Message keeps the service's own message when it sent one.
type RemoteServiceError struct {
	Endpoint   string
	StatusCode int
	Message    string
	Err        error
}

func (e *RemoteServiceError) Error() string {
	return e.Message
}

func (e *RemoteServiceError) Unwrap() error {
	return e.Err
}

// IsAuthError reports whether the service rejected the credentials
func (e *RemoteServiceError) IsAuthError() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// IsAuthError reports whether err is a RemoteServiceError caused by bad credentials
func IsAuthError(err error) bool {
	var rerr *RemoteServiceError
	return errors.As(err, &rerr) && rerr.IsAuthError()
}

func newRemoteServiceError(endpoint string, statusCode int, body []byte) *RemoteServiceError {
	var payload struct {
		Message string `json:"message"`
	}
	msg := ""
	if err := json.Unmarshal(body, &payload); err == nil {
		msg = payload.Message
	}
	if msg == "" {
		msg = fmt.Sprintf("staff service returned status %d: %s", statusCode, string(body))
	}
	return &RemoteServiceError{Endpoint: endpoint, StatusCode: statusCode, Message: msg}
}
