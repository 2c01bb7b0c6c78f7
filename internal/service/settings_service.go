// Package service holds the business logic between the HTTP handlers and
// the repositories.  Services own transactions and business rules; the
// handlers only bind, delegate and shape responses.
package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Neruaka/jana-distribution/internal/model"
)

// settingsStore is the slice of the setting repository the service needs.
type settingsStore interface {
	Get(ctx context.Context, key string) (model.Setting, error)
	GetAll(ctx context.Context, category string) ([]model.Setting, error)
	Upsert(ctx context.Context, s *model.Setting) error
	Delete(ctx context.Context, key string) error
}

// settingsCache abstracts the key-value cache in front of the settings
// table.  The Redis client satisfies it through RedisSettingsCache; tests
// plug an in-memory map.
type settingsCache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// RedisSettingsCache adapts a go-redis client to the settingsCache
// interface, treating redis.Nil as a plain miss.
type RedisSettingsCache struct{ C *redis.Client }

func (r RedisSettingsCache) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := r.C.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (r RedisSettingsCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return r.C.Set(ctx, key, value, ttl).Err()
}

func (r RedisSettingsCache) Del(ctx context.Context, key string) error {
	return r.C.Del(ctx, key).Err()
}

// SettingsService serves typed configuration values with a read-through
// cache.  Reads hit Redis first and fall back to Postgres on a miss;
// writes go to Postgres and invalidate the cached entry.  A nil cache
// disables caching entirely, every read goes straight to the store.
type SettingsService struct {
	Store settingsStore
	Cache settingsCache
	TTL   time.Duration
}

func NewSettingsService(store settingsStore, cache settingsCache) *SettingsService {
	return &SettingsService{Store: store, Cache: cache, TTL: 5 * time.Minute}
}

func cacheKey(key string) string { return "settings:" + key }

// Get returns one setting, served from cache when possible.  Cache
// failures are ignored: the store remains the source of truth.
func (s *SettingsService) Get(ctx context.Context, key string) (model.Setting, error) {
	if s.Cache != nil {
		if raw, ok, err := s.Cache.Get(ctx, cacheKey(key)); err == nil && ok {
			var st model.Setting
			if err := json.Unmarshal([]byte(raw), &st); err == nil {
				return st, nil
			}
		}
	}
	st, err := s.Store.Get(ctx, key)
	if err != nil {
		return st, err
	}
	if s.Cache != nil {
		if raw, err := json.Marshal(st); err == nil {
			_ = s.Cache.Set(ctx, cacheKey(key), string(raw), s.TTL)
		}
	}
	return st, nil
}

// GetAll lists settings, optionally filtered by category.  Listings skip
// the cache: they are admin-facing and rare.
func (s *SettingsService) GetAll(ctx context.Context, category string) ([]model.Setting, error) {
	return s.Store.GetAll(ctx, category)
}

// Put creates or replaces a setting and drops the cached entry.
func (s *SettingsService) Put(ctx context.Context, st *model.Setting) error {
	if err := s.Store.Upsert(ctx, st); err != nil {
		return err
	}
	s.Invalidate(ctx, st.Key)
	return nil
}

// Delete removes a setting and drops the cached entry.
func (s *SettingsService) Delete(ctx context.Context, key string) error {
	if err := s.Store.Delete(ctx, key); err != nil {
		return err
	}
	s.Invalidate(ctx, key)
	return nil
}

// Invalidate drops one cached setting.
func (s *SettingsService) Invalidate(ctx context.Context, key string) {
	if s.Cache != nil {
		_ = s.Cache.Del(ctx, cacheKey(key))
	}
}

// Float returns a numeric setting, or def when the key is missing or not
// a number.  JSONB numbers decode as float64.
func (s *SettingsService) Float(ctx context.Context, key string, def float64) float64 {
	st, err := s.Get(ctx, key)
	if err != nil {
		return def
	}
	if v, ok := st.Value.(float64); ok {
		return v
	}
	return def
}

// Bool returns a boolean setting, or def when the key is missing or not
// a boolean.
func (s *SettingsService) Bool(ctx context.Context, key string, def bool) bool {
	st, err := s.Get(ctx, key)
	if err != nil {
		return def
	}
	if v, ok := st.Value.(bool); ok {
		return v
	}
	return def
}
