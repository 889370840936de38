package repository

import (
	"errors"
)

const parseErrorMessage = "error parsing rates response"

var (
	// ErrMissingMessage is returned when an error response has no "message" field.
	ErrMissingMessage = errors.New(`error response has no "message" field`)
	ErrNoTargets      = errors.New("no target currencies requested")
)
