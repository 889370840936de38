package cache

import (
	"sync"

	"xe-rate-service/internal/domain/model"
	"xe-rate-service/pkg/logger"
)

// MemoryCache is the in-process rate store. Reads may run concurrently; writes
// are serialized.
type MemoryCache struct {
	cacheMap map[model.CurrencyPair]model.ExchangeRate
	mutex    sync.RWMutex
	log      *logger.Logger
}

func NewMemoryCache(log *logger.Logger) *MemoryCache {
	return &MemoryCache{
		cacheMap: make(map[model.CurrencyPair]model.ExchangeRate),
		log:      log,
	}
}

func (c *MemoryCache) Get(pair model.CurrencyPair) (model.ExchangeRate, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	rate, found := c.cacheMap[pair]
	if found {
		c.log.Debug("Cache hit", "pair", pair.String())
		return rate, true
	}

	c.log.Debug("Cache miss", "pair", pair.String())
	return model.ExchangeRate{}, false
}

func (c *MemoryCache) Set(rate model.ExchangeRate) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	pair := model.NewCurrencyPair(rate.BaseCurrency, rate.TargetCurrency)
	c.cacheMap[pair] = rate
	c.log.Debug("Cache set", "pair", pair.String(), "rate", rate.Rate.String())
}

// Remove deletes a single pair and returns what was stored under it.
func (c *MemoryCache) Remove(pair model.CurrencyPair) (model.ExchangeRate, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	rate, found := c.cacheMap[pair]
	if !found {
		return model.ExchangeRate{}, false
	}
	delete(c.cacheMap, pair)
	c.log.Debug("Removed cache entry", "pair", pair.String())

	return rate, true
}

// Clear drops every entry and reports how many there were.
func (c *MemoryCache) Clear() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	count := len(c.cacheMap)
	c.cacheMap = make(map[model.CurrencyPair]model.ExchangeRate)
	c.log.Info("Cleared cache entries", "count", count)

	return count
}

func (c *MemoryCache) Len() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.cacheMap)
}
