package api

import (
	"errors"
	"fmt"
)

// ErrNetwork marks failures where no usable response came back: the
// request could not be sent, the connection dropped, or the body was not
// a JSON envelope.
var ErrNetwork = errors.New("network error")

// NetworkMessage is what the user sees for any ErrNetwork failure.
const NetworkMessage = "Network error. Please try again."

// APIError is an application failure: the storefront answered with a falsy
// success flag. Message is the server's text and may be empty.
type APIError struct {
	Op      string
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s (status %d)", e.Op, e.Message, e.Status)
	}
	return fmt.Sprintf("%s: request failed (status %d)", e.Op, e.Status)
}

type ErrorClass int

const (
	ClassNone ErrorClass = iota
	ClassTransport
	ClassApplication
	ClassLocal
)

func (c ErrorClass) String() string {
	switch c {
	case ClassTransport:
		return "transport"
	case ClassApplication:
		return "application"
	case ClassLocal:
		return "local"
	}
	return "none"
}

func ClassifyError(err error) ErrorClass {
	if err == nil {
		return ClassNone
	}
	if errors.Is(err, ErrNetwork) {
		return ClassTransport
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return ClassApplication
	}
	return ClassLocal
}

// UserMessage turns err into the one-line message a view shows. Server
// messages win; fallback covers application failures without one.
func UserMessage(err error, fallback string) string {
	switch ClassifyError(err) {
	case ClassNone:
		return ""
	case ClassTransport:
		return NetworkMessage
	case ClassApplication:
		var apiErr *APIError
		errors.As(err, &apiErr)
		if apiErr.Message != "" {
			return apiErr.Message
		}
		if fallback != "" {
			return fallback
		}
		return apiErr.Error()
	}
	return err.Error()
}
