package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrFormBody is returned by Update when given a multipart form.
var ErrFormBody = errors.New("rest: update takes a JSON body, not a form")

// StatusError is returned when the backend answers outside the 2xx range.
// It carries what the caller needs to inspect the failed response.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Status     string
	Body       []byte // first 4 KiB of the response body
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s %s: %s", e.Method, e.URL, e.Status)
	if d := e.Detail(); d != "" {
		msg += ": " + d
	}
	return msg
}

// HTTPStatus returns the response status code.
func (e *StatusError) HTTPStatus() int {
	return e.StatusCode
}

// Detail extracts the backend's error message from a JSON body
// ({"detail": ...}, {"error": ...} or {"message": ...}), falling back to the raw text.
func (e *StatusError) Detail() string {
	body := strings.TrimSpace(string(e.Body))
	if body == "" {
		return ""
	}
	var payload map[string]any
	if err := json.Unmarshal(e.Body, &payload); err == nil {
		for _, key := range []string{"detail", "error", "message"} {
			switch v := payload[key].(type) {
			case string:
				return v
			case nil:
			default:
				b, _ := json.Marshal(v)
				return string(b)
			}
		}
	}
	return body
}

// DecodeError is returned when a 2xx body does not match the expected shape.
type DecodeError struct {
	URL string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding response from %s: %v", e.URL, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// StatusCode reports the HTTP status carried by err, if any.
func StatusCode(err error) (int, bool) {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode, true
	}
	return 0, false
}
