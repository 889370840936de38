package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"xe-rate-service/internal/domain/model"
	"xe-rate-service/internal/domain/ports"
	"xe-rate-service/internal/metrics"
	"xe-rate-service/pkg/logger"
	"xe-rate-service/pkg/utils"
)

var (
	ErrInvalidCurrency = errors.New("invalid currency")
	ErrInvalidAmount   = errors.New("invalid amount")
)

// ExchangeService answers rate lookups from the store and goes to the
// provider only on a miss. One expiration policy governs the whole store.
type ExchangeService struct {
	fetcher ports.RateFetcher
	store   ports.RateStore
	policy  ports.ExpirationPolicy
	metrics *metrics.Metrics
	log     *logger.Logger

	// collapses concurrent misses on the same pair into one request
	inflight singleflight.Group
}

func NewExchangeService(
	fetcher ports.RateFetcher,
	store ports.RateStore,
	policy ports.ExpirationPolicy,
	metrics *metrics.Metrics,
	log *logger.Logger,
) *ExchangeService {
	return &ExchangeService{
		fetcher: fetcher,
		store:   store,
		policy:  policy,
		metrics: metrics,
		log:     log,
	}
}

// GetRate returns the rate from one currency to another, fetching and caching
// it on a miss. Fetch errors are returned unchanged and nothing is cached.
func (s *ExchangeService) GetRate(ctx context.Context, from, to model.Currency) (*model.ExchangeRate, error) {
	if err := validatePair(from, to); err != nil {
		return nil, err
	}

	s.ExpireRates(ctx)

	if from == to {
		return &model.ExchangeRate{
			BaseCurrency:   from,
			TargetCurrency: to,
			Rate:           decimal.NewFromInt(1),
			FetchedAt:      time.Now(),
		}, nil
	}

	pair := model.NewCurrencyPair(from, to)
	if rate, found := s.store.Get(pair); found {
		s.metrics.CacheHitsTotal.Inc()
		rate.Cached = true
		return &rate, nil
	}
	s.metrics.CacheMissesTotal.Inc()

	s.log.Info("Fetching exchange rate from provider", "pair", pair.String())
	// The shared fetch outlives any single caller, so one caller giving up
	// does not fail the others waiting on it.
	fetchCtx := context.WithoutCancel(ctx)
	ch := s.inflight.DoChan(inflightKey(from, to), func() (any, error) {
		rates, err := s.fetch(fetchCtx, from, []model.Currency{to})
		if err != nil {
			return nil, err
		}
		return rates[to], nil
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if res.Err != nil {
		s.log.Error("Failed to fetch exchange rate", "error", res.Err, "pair", pair.String())
		return nil, res.Err
	}
	if res.Shared {
		s.log.Debug("Shared in-flight fetch", "pair", pair.String())
	}

	rate := res.Val.(model.ExchangeRate)
	return &rate, nil
}

// GetRates resolves several targets at once. Cached rates are reused and every
// missing target is fetched in a single request. Either all rates are returned
// or none.
func (s *ExchangeService) GetRates(ctx context.Context, from model.Currency, to []model.Currency) (map[model.Currency]model.ExchangeRate, error) {
	if err := from.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCurrency, err)
	}
	if len(to) == 0 {
		return nil, fmt.Errorf("%w: no target currencies", ErrInvalidCurrency)
	}
	for _, target := range to {
		if err := target.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidCurrency, err)
		}
	}

	s.ExpireRates(ctx)

	result := make(map[model.Currency]model.ExchangeRate, len(to))
	missing := make([]model.Currency, 0, len(to))
	for _, target := range to {
		if _, seen := result[target]; seen || contains(missing, target) {
			continue
		}
		if target == from {
			result[target] = model.ExchangeRate{
				BaseCurrency:   from,
				TargetCurrency: target,
				Rate:           decimal.NewFromInt(1),
				FetchedAt:      time.Now(),
			}
			continue
		}
		if rate, found := s.store.Get(model.NewCurrencyPair(from, target)); found {
			s.metrics.CacheHitsTotal.Inc()
			rate.Cached = true
			result[target] = rate
			continue
		}
		s.metrics.CacheMissesTotal.Inc()
		missing = append(missing, target)
	}

	if len(missing) == 0 {
		return result, nil
	}

	s.log.Info("Fetching exchange rates from provider", "from", from.String(), "to", utils.JoinCodes(missing))
	fetched, err := s.fetch(ctx, from, missing)
	if err != nil {
		s.log.Error("Failed to fetch exchange rates", "error", err, "from", from.String())
		return nil, err
	}
	for target, rate := range fetched {
		result[target] = rate
	}

	return result, nil
}

// fetch asks the provider for the given targets and stores the result. Nothing
// is stored unless every rate is usable.
func (s *ExchangeService) fetch(ctx context.Context, from model.Currency, to []model.Currency) (map[model.Currency]model.ExchangeRate, error) {
	start := time.Now()
	values, err := s.fetcher.FetchRates(ctx, from, to)
	s.metrics.FetchDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		s.recordFetchError(err)
		return nil, err
	}

	fetchedAt := time.Now()
	rates := make(map[model.Currency]model.ExchangeRate, len(to))
	for _, target := range to {
		value, ok := values[target]
		if !ok {
			err := &model.FetchError{
				Kind:    model.KindParse,
				Message: fmt.Sprintf("rate not returned for currency: %s", target),
			}
			s.recordFetchError(err)
			return nil, err
		}
		if value.IsNegative() {
			err := &model.FetchError{
				Kind:    model.KindInvalidRate,
				Message: fmt.Sprintf("invalid rate %s for %s", value.String(), model.NewCurrencyPair(from, target)),
			}
			s.recordFetchError(err)
			return nil, err
		}
		rates[target] = model.ExchangeRate{
			BaseCurrency:   from,
			TargetCurrency: target,
			Rate:           value,
			FetchedAt:      fetchedAt,
		}
	}

	for _, rate := range rates {
		s.store.Set(rate)
	}
	s.metrics.CacheEntries.Set(float64(s.store.Len()))

	return rates, nil
}

func (s *ExchangeService) recordFetchError(err error) {
	kind := "unclassified"
	if fe, ok := model.AsFetchError(err); ok {
		kind = fe.Kind.String()
	}
	s.metrics.FetchErrorsTotal.WithLabelValues(kind).Inc()
}

// ConvertCurrency multiplies the amount by the current rate. Rounding is left
// to the caller, which knows the target currency's minor unit.
func (s *ExchangeService) ConvertCurrency(ctx context.Context, request model.ConversionRequest) (*model.ConversionResult, error) {
	s.metrics.ConversionRequests.Inc()

	if err := validatePair(request.FromCurrency, request.ToCurrency); err != nil {
		return nil, err
	}

	if !request.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	rate, err := s.GetRate(ctx, request.FromCurrency, request.ToCurrency)
	if err != nil {
		return nil, err
	}

	return &model.ConversionResult{
		FromCurrency: request.FromCurrency,
		ToCurrency:   request.ToCurrency,
		FromAmount:   request.Amount,
		ToAmount:     request.Amount.Mul(rate.Rate),
		Rate:         rate.Rate,
	}, nil
}

// FlushRates empties the store and returns how many rates were dropped.
func (s *ExchangeService) FlushRates(ctx context.Context) int {
	count := s.store.Clear()
	s.metrics.CacheFlushesTotal.WithLabelValues("manual").Inc()
	s.metrics.CacheEntries.Set(0)
	s.log.Info("Flushed all exchange rates", "count", count)
	return count
}

// FlushRate drops one pair and returns the rate that was cached for it.
func (s *ExchangeService) FlushRate(ctx context.Context, from, to model.Currency) (decimal.Decimal, bool) {
	pair := model.NewCurrencyPair(from, to)
	rate, found := s.store.Remove(pair)
	if !found {
		return decimal.Decimal{}, false
	}

	s.metrics.CacheEntries.Set(float64(s.store.Len()))
	s.log.Info("Flushed exchange rate", "pair", pair.String())
	return rate.Rate, true
}

// ExpireRates clears the whole store when the TTL has elapsed and reports
// whether it did so.
func (s *ExchangeService) ExpireRates(ctx context.Context) bool {
	if !s.policy.Expired() {
		return false
	}

	count := s.store.Clear()
	s.metrics.CacheFlushesTotal.WithLabelValues("ttl").Inc()
	s.metrics.CacheEntries.Set(0)
	s.log.Info("Exchange rates expired", "count", count)
	return true
}

// SetTTL changes the expiration window. nil disables expiration.
func (s *ExchangeService) SetTTL(ttl *time.Duration) {
	s.policy.SetTTL(ttl)
	if ttl == nil {
		s.log.Info("Rate expiration disabled")
		return
	}
	s.log.Info("Rate expiration configured", "ttl", ttl.String())
}

func validatePair(from, to model.Currency) error {
	if err := from.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidCurrency, err)
	}
	if err := to.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidCurrency, err)
	}
	return nil
}

// inflightKey quotes both codes so that pairs like ("A-B", "C") and
// ("A", "B-C") never share a fetch.
func inflightKey(from, to model.Currency) string {
	return strconv.Quote(from.String()) + strconv.Quote(to.String())
}

func contains(codes []model.Currency, code model.Currency) bool {
	for _, c := range codes {
		if c == code {
			return true
		}
	}
	return false
}
