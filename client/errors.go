package client

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ErrTimeout indicates the scraping API did not answer in time.
type ErrTimeout struct {
	Err error
}

func (e ErrTimeout) Error() string {
	return fmt.Errorf("timeout: %w", e.Err).Error()
}

func (e ErrTimeout) Unwrap() error {
	return e.Err
}

// ErrConnection indicates the scraping API could not be reached.
type ErrConnection struct {
	Err error
}

func (e ErrConnection) Error() string {
	return fmt.Errorf("connection: %w", e.Err).Error()
}

func (e ErrConnection) Unwrap() error {
	return e.Err
}

// ErrCanceled indicates the request was abandoned by its caller.
type ErrCanceled struct {
	Err error
}

func (e ErrCanceled) Error() string {
	return fmt.Errorf("canceled: %w", e.Err).Error()
}

func (e ErrCanceled) Unwrap() error {
	return e.Err
}

// ErrServer indicates the API answered but reported a failure, either
// through a success:false envelope or an error status without one.
// Message is the server's explanation and may be empty.
type ErrServer struct {
	StatusCode int
	Message    string
}

func (e ErrServer) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server: scrape failed (status %d)", e.StatusCode)
	}
	return fmt.Sprintf("server: %s (status %d)", e.Message, e.StatusCode)
}

// ErrBadResponse indicates a response that could not be turned into a
// result: undecodable body, or success without usable data.
type ErrBadResponse struct {
	StatusCode int
	Err        error
}

func (e ErrBadResponse) Error() string {
	return fmt.Errorf("bad_response: status %d: %w", e.StatusCode, e.Err).Error()
}

func (e ErrBadResponse) Unwrap() error {
	return e.Err
}

// IsTransport reports whether err means the API was never heard from.
func IsTransport(err error) bool {
	var timeout ErrTimeout
	var conn ErrConnection
	var canceled ErrCanceled
	return errors.As(err, &timeout) || errors.As(err, &conn) || errors.As(err, &canceled)
}

// ErrorTypeLabel maps an error onto a short label for metrics and logs.
func ErrorTypeLabel(err error) string {
	if err == nil {
		return "unknown"
	}
	var timeout ErrTimeout
	if errors.As(err, &timeout) {
		return "timeout"
	}
	var conn ErrConnection
	if errors.As(err, &conn) {
		return "connection"
	}
	var canceled ErrCanceled
	if errors.As(err, &canceled) {
		return "canceled"
	}
	var server ErrServer
	if errors.As(err, &server) {
		return "server"
	}
	var bad ErrBadResponse
	if errors.As(err, &bad) {
		return "bad_response"
	}
	return "other"
}

// classifyTransportError wraps an error returned before any response was
// received.
func classifyTransportError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return ErrCanceled{Err: err}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout{Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrTimeout{Err: err}
	}
	return ErrConnection{Err: err}
}
