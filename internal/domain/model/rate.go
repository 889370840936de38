package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// CurrencyPair is the ordered key of a cached rate. USD-JPY and JPY-USD are
// unrelated entries.
type CurrencyPair struct {
	BaseCurrency   Currency `json:"base_currency"`
	TargetCurrency Currency `json:"target_currency"`
}

func NewCurrencyPair(from, to Currency) CurrencyPair {
	return CurrencyPair{BaseCurrency: from, TargetCurrency: to}
}

func (p CurrencyPair) String() string {
	return fmt.Sprintf("%s-%s", p.BaseCurrency, p.TargetCurrency)
}

// ExchangeRate is how many units of TargetCurrency one unit of BaseCurrency buys.
type ExchangeRate struct {
	BaseCurrency   Currency        `json:"base_currency"`
	TargetCurrency Currency        `json:"target_currency"`
	Rate           decimal.Decimal `json:"rate"`
	Cached         bool            `json:"cached"`
	FetchedAt      time.Time       `json:"fetched_at"`
}

type ConversionRequest struct {
	FromCurrency Currency        `json:"from_currency"`
	ToCurrency   Currency        `json:"to_currency"`
	Amount       decimal.Decimal `json:"amount"`
}

type ConversionResult struct {
	FromCurrency Currency        `json:"from_currency"`
	ToCurrency   Currency        `json:"to_currency"`
	FromAmount   decimal.Decimal `json:"from_amount"`
	ToAmount     decimal.Decimal `json:"to_amount"`
	Rate         decimal.Decimal `json:"rate"`
}
