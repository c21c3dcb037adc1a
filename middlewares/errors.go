package middlewares

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/whitelabel/internal"
)

// PanicError is a panic recovered by Recover.
type PanicError struct {
	Value any
	Stack []byte // nil when stack capture is disabled
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// TimeoutError reports a request that outlived its Timeout deadline.
type TimeoutError struct {
	Duration time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("request timeout after %s", e.Duration)
}

// AsPanicError extracts a *PanicError from err.
func AsPanicError(err error) (*PanicError, bool) {
	var pe *PanicError
	ok := errors.As(err, &pe)
	return pe, ok
}

// AsTimeoutError extracts a *TimeoutError from err.
func AsTimeoutError(err error) (*TimeoutError, bool) {
	var te *TimeoutError
	ok := errors.As(err, &te)
	return te, ok
}

// ErrorResponse is the JSON body written by ErrorHandler.
type ErrorResponse struct {
	Error     string `json:"error"`
	Detail    string `json:"detail,omitempty"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// ErrorHandler renders handler errors as JSON. HTTP errors keep their
// status and message. Expired deadlines become 503. Anything else is a
// bare 500 so internals never reach the client.
func ErrorHandler(c internal.Context, err error) error {
	resp := ErrorResponse{RequestID: GetRequestID(c)}
	status := http.StatusInternalServerError

	if herr := internal.AsHTTPError(err); herr != nil {
		status = herr.StatusCode()
		resp.Error = herr.Message
		resp.Detail = herr.Detail
		resp.Code = herr.ErrorCode
		if herr.RequestID != "" {
			resp.RequestID = herr.RequestID
		}
		if status >= http.StatusInternalServerError {
			c.LogError("request failed", slog.Int("status", status), slog.Any("error", err))
		}
		return c.JSON(status, resp)
	}

	if _, ok := AsTimeoutError(err); ok || errors.Is(err, context.DeadlineExceeded) {
		status = http.StatusServiceUnavailable
		resp.Code = "timeout"
	} else if _, ok := AsPanicError(err); !ok {
		c.LogError("request failed", slog.Any("error", err))
	}

	resp.Error = http.StatusText(status)
	return c.JSON(status, resp)
}
