package ports

import (
	"time"

	"xe-rate-service/internal/domain/model"
)

// RateStore holds rates keyed by their ordered currency pair.
type RateStore interface {
	Get(pair model.CurrencyPair) (model.ExchangeRate, bool)
	Set(rate model.ExchangeRate)
	Remove(pair model.CurrencyPair) (model.ExchangeRate, bool)
	Clear() int
	Len() int
}

// ExpirationPolicy decides when the whole store goes stale.
type ExpirationPolicy interface {
	SetTTL(ttl *time.Duration)
	Expired() bool
}
