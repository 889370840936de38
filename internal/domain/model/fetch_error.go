package model

import (
	"errors"
	"fmt"
)

// FetchErrorKind tells apart the ways obtaining a rate can fail.
type FetchErrorKind int

const (
	// KindTransport covers DNS, TLS, connection and timeout failures.
	KindTransport FetchErrorKind = iota
	// KindStatus is a non-200 answer whose body carried a message.
	KindStatus
	// KindParse is a 200 answer that did not yield every requested rate.
	KindParse
	// KindInvalidRate is a rate that parsed but cannot be used, e.g. a negative one.
	KindInvalidRate
)

func (k FetchErrorKind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindStatus:
		return "status"
	case KindParse:
		return "parse"
	case KindInvalidRate:
		return "invalid_rate"
	default:
		return fmt.Sprintf("FetchErrorKind(%d)", int(k))
	}
}

// FetchError is a failure to obtain a valid rate from the provider. Its Error
// text is the provider's message when there is one.
type FetchError struct {
	Kind       FetchErrorKind
	StatusCode int
	Message    string
	Err        error
}

func (e *FetchError) Error() string {
	return e.Message
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// AsFetchError reports whether err carries a *FetchError and returns it.
func AsFetchError(err error) (*FetchError, bool) {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}
