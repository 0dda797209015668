package hub

import (
	"net/http"
	"strconv"
)

// notFoundError signals an unknown event name or subscription id.
type notFoundError struct{ what string }

func (e notFoundError) Error() string   { return "not found: " + e.what }
func (e notFoundError) StatusCode() int { return http.StatusNotFound }

func errEventNotFound(name string) error { return notFoundError{what: "event " + strconv.Quote(name)} }

func errSubscriptionNotFound(id int64) error {
	return notFoundError{what: "subscription " + strconv.FormatInt(id, 10)}
}

// IsNotFound reports whether err indicates an unknown event or subscription.
func IsNotFound(err error) bool {
	_, ok := err.(notFoundError)
	return ok
}

// badRequestError wraps a caller mistake such as an unknown sink kind.
type badRequestError struct{ err error }

func (e badRequestError) Error() string   { return e.err.Error() }
func (e badRequestError) Unwrap() error   { return e.err }
func (e badRequestError) StatusCode() int { return http.StatusBadRequest }

// IsBadRequest reports whether err was caused by invalid caller input.
func IsBadRequest(err error) bool {
	_, ok := err.(badRequestError)
	return ok
}

// unavailableError signals a feature that is not configured (e.g. journal).
type unavailableError struct{ msg string }

func (e unavailableError) Error() string   { return e.msg }
func (e unavailableError) StatusCode() int { return http.StatusServiceUnavailable }

// IsUnavailable reports whether err indicates an unconfigured feature.
func IsUnavailable(err error) bool {
	_, ok := err.(unavailableError)
	return ok
}
