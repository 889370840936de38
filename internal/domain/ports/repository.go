package ports

import (
	"context"

	"github.com/shopspring/decimal"

	"xe-rate-service/internal/domain/model"
)

// RateFetcher obtains rates from the remote pricing service. One call is one
// request; implementations do not retry.
type RateFetcher interface {
	FetchRate(ctx context.Context, from, to model.Currency) (decimal.Decimal, error)
	FetchRates(ctx context.Context, from model.Currency, to []model.Currency) (map[model.Currency]decimal.Decimal, error)
}
