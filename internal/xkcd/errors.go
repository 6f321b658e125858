package xkcd

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidNumber = errors.New("invalid xkcd number")
	ErrRequest       = errors.New("xkcd request failed")
	ErrDecode        = errors.New("malformed xkcd response")
)

// Error is implemented by the three failures a resolution can end with:
// *InvalidNumberError, *RequestError and *DecodeError.
type Error interface {
	error
	xkcdError()
}

// InvalidNumberError reports a requested number that is <= 0 or above the
// latest published comic.
type InvalidNumberError struct {
	Number int
}

func (e *InvalidNumberError) Error() string {
	return fmt.Sprintf("invalid xkcd number: %d", e.Number)
}

func (e *InvalidNumberError) Is(target error) bool { return target == ErrInvalidNumber }

func (*InvalidNumberError) xkcdError() {}

// RequestError is a transport level failure, including non-2xx responses.
type RequestError struct {
	URL string
	Err error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("xkcd request error: GET %s: %s", e.URL, e.Detail())
}

// Detail is the underlying diagnostic message.
func (e *RequestError) Detail() string {
	if e.Err == nil {
		return "unknown error"
	}
	return e.Err.Error()
}

func (e *RequestError) Unwrap() error { return e.Err }

func (e *RequestError) Is(target error) bool { return target == ErrRequest }

func (*RequestError) xkcdError() {}

// DecodeError reports a required field that was missing or had the wrong
// shape. Field is empty when the body was not a JSON object at all.
type DecodeError struct {
	Field string
	Err   error
}

func (e *DecodeError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("xkcd decode error: %v", e.Err)
	}
	if e.Err == nil {
		return fmt.Sprintf("xkcd decode error: field %q", e.Field)
	}
	return fmt.Sprintf("xkcd decode error: field %q: %v", e.Field, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

func (e *DecodeError) Is(target error) bool { return target == ErrDecode }

func (*DecodeError) xkcdError() {}

// asRequestError keeps an existing *RequestError and wraps anything else.
func asRequestError(url string, err error) error {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr
	}
	return &RequestError{URL: url, Err: err}
}
