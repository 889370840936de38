package ports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"xe-rate-service/internal/domain/model"
)

type ExchangeService interface {
	GetRate(ctx context.Context, from, to model.Currency) (*model.ExchangeRate, error)
	GetRates(ctx context.Context, from model.Currency, to []model.Currency) (map[model.Currency]model.ExchangeRate, error)
	ConvertCurrency(ctx context.Context, request model.ConversionRequest) (*model.ConversionResult, error)
	FlushRates(ctx context.Context) int
	FlushRate(ctx context.Context, from, to model.Currency) (decimal.Decimal, bool)
	ExpireRates(ctx context.Context) bool
	SetTTL(ttl *time.Duration)
}
