package model

import (
	"errors"
	"strings"
)

var ErrEmptyCurrency = errors.New("currency code is empty")

// Currency is an opaque currency code such as "USD". Beyond being non-empty it
// is not validated; the provider decides what it supports.
type Currency string

const (
	USD Currency = "USD"
	EUR Currency = "EUR"
	JPY Currency = "JPY"
	GBP Currency = "GBP"
	INR Currency = "INR"
)

// NormalizeCurrency trims and upper-cases a code received at the boundary.
func NormalizeCurrency(code string) Currency {
	return Currency(strings.ToUpper(strings.TrimSpace(code)))
}

func (c Currency) Validate() error {
	if c == "" {
		return ErrEmptyCurrency
	}
	return nil
}

func (c Currency) String() string {
	return string(c)
}
