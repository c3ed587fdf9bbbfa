package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/Veraticus/zentrum/internal/common"
)

// Kind tells transport failures apart from HTTP and decoding failures.
type Kind int

// Error kinds.
const (
	KindTransport Kind = iota
	KindHTTP
	KindDecode
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindHTTP:
		return "http"
	case KindDecode:
		return "decode"
	default:
		return "unknown"
	}
}

// Error is the single error type returned by every Client call.
type Error struct {
	Err        error
	Op         string
	Message    string
	Kind       Kind
	StatusCode int
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %s (status %d)", e.Op, e.Message, e.StatusCode)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

// DisplayMessage is the text shown to the user.
func (e *Error) DisplayMessage() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is makes a 404 response match common.ErrNotFound.
func (e *Error) Is(target error) bool {
	return target == common.ErrNotFound && e.Kind == KindHTTP && e.StatusCode == http.StatusNotFound
}

// errorResponse is the error body produced by the extraction service.
type errorResponse struct {
	Timestamp string `json:"timestamp"`
	Error     string `json:"error"`
	Message   string `json:"message"`
	Status    int    `json:"status"`
}

// newHTTPError builds an Error for a non-2xx response, preferring the
// structured message in body over the status text.
func newHTTPError(op string, statusCode int, status string, body []byte) *Error {
	msg := ""
	var parsed errorResponse
	if err := json.Unmarshal(body, &parsed); err == nil {
		msg = strings.TrimSpace(parsed.Message)
	}
	if msg == "" {
		msg = http.StatusText(statusCode)
	}
	if msg == "" {
		msg = strings.TrimSpace(strings.TrimPrefix(status, fmt.Sprint(statusCode)))
	}
	if msg == "" {
		msg = fmt.Sprintf("request failed with status %d", statusCode)
	}

	return &Error{
		Op:         op,
		Kind:       KindHTTP,
		StatusCode: statusCode,
		Message:    msg,
	}
}

func newTransportError(op string, err error) *Error {
	msg := "could not reach extraction service"
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		msg = "extraction service did not respond in time"
	}
	return &Error{
		Op:      op,
		Kind:    KindTransport,
		Message: msg,
		Err:     err,
	}
}

func newDecodeError(op string, err error) *Error {
	return &Error{
		Op:      op,
		Kind:    KindDecode,
		Message: "unexpected response from extraction service",
		Err:     err,
	}
}

// IsTransport reports whether err is a transport failure.
func IsTransport(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == KindTransport
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
