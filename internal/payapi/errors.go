package payapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// ErrTransport wraps every failure that happened before an HTTP status was
// received: DNS, connection resets, timeouts, cancelled contexts.
var ErrTransport = errors.New("payments api unreachable")

// APIError is a non-2xx answer from the payments API. Message is shown to the
// user verbatim.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("payments api: %d %s", e.StatusCode, e.Message)
}

func newAPIError(status int, body []byte) *APIError {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	msg := ""
	if err := json.Unmarshal(body, &payload); err == nil {
		msg = payload.Message
		if msg == "" {
			msg = payload.Error
		}
	}
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &APIError{StatusCode: status, Message: msg}
}

// decode unmarshals body into out, first unwrapping the value under one of
// envelopes when the payload is an object that carries it.
func decode(body []byte, out any, envelopes ...string) error {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil
	}

	if body[0] == '{' && len(envelopes) > 0 {
		var wrapper map[string]json.RawMessage
		if err := json.Unmarshal(body, &wrapper); err == nil {
			for _, key := range envelopes {
				raw := bytes.TrimSpace(wrapper[key])
				if len(raw) > 0 && (raw[0] == '{' || raw[0] == '[') {
					return json.Unmarshal(raw, out)
				}
			}
		}
	}

	return json.Unmarshal(body, out)
}
