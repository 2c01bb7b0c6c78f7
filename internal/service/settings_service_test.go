package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/Neruaka/jana-distribution/internal/model"
)

// stubStore counts reads so cache hits are observable.
type stubStore struct {
	settings map[string]model.Setting
	getCalls int
}

func (s *stubStore) Get(ctx context.Context, key string) (model.Setting, error) {
	s.getCalls++
	st, ok := s.settings[key]
	if !ok {
		return model.Setting{}, sql.ErrNoRows
	}
	return st, nil
}

func (s *stubStore) GetAll(ctx context.Context, category string) ([]model.Setting, error) {
	out := make([]model.Setting, 0)
	for _, st := range s.settings {
		if category == "" || st.Category == category {
			out = append(out, st)
		}
	}
	return out, nil
}

func (s *stubStore) Upsert(ctx context.Context, st *model.Setting) error {
	s.settings[st.Key] = *st
	return nil
}

func (s *stubStore) Delete(ctx context.Context, key string) error {
	if _, ok := s.settings[key]; !ok {
		return sql.ErrNoRows
	}
	delete(s.settings, key)
	return nil
}

// memCache is an in-memory settingsCache.
type memCache struct {
	data map[string]string
}

func newMemCache() *memCache { return &memCache{data: map[string]string{}} }

func (m *memCache) Get(ctx context.Context, key string) (string, bool, error) {
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	m.data[key] = value
	return nil
}

func (m *memCache) Del(ctx context.Context, key string) error {
	delete(m.data, key)
	return nil
}

func newTestSettings() (*SettingsService, *stubStore, *memCache) {
	store := &stubStore{settings: map[string]model.Setting{
		model.SettingMinOrderAmount: {
			ID: 1, Key: model.SettingMinOrderAmount, Category: "commande",
			Value: 50.0, ValueType: model.SettingNumber,
		},
		model.SettingAllowBackorder: {
			ID: 2, Key: model.SettingAllowBackorder, Category: "stock",
			Value: true, ValueType: model.SettingBool,
		},
	}}
	cache := newMemCache()
	return NewSettingsService(store, cache), store, cache
}

func TestSettingsGetReadsThroughCache(t *testing.T) {
	svc, store, _ := newTestSettings()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		st, err := svc.Get(ctx, model.SettingMinOrderAmount)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if st.Value != 50.0 {
			t.Fatalf("value = %v, want 50", st.Value)
		}
	}
	if store.getCalls != 1 {
		t.Fatalf("store reads = %d, want 1 (subsequent reads served from cache)", store.getCalls)
	}
}

func TestSettingsGetMissingKey(t *testing.T) {
	svc, _, _ := newTestSettings()
	if _, err := svc.Get(context.Background(), "inconnu"); err != sql.ErrNoRows {
		t.Fatalf("err = %v, want sql.ErrNoRows", err)
	}
}

func TestSettingsPutInvalidatesCache(t *testing.T) {
	svc, store, _ := newTestSettings()
	ctx := context.Background()

	if _, err := svc.Get(ctx, model.SettingMinOrderAmount); err != nil {
		t.Fatalf("warm-up Get: %v", err)
	}
	updated := model.Setting{
		Key: model.SettingMinOrderAmount, Category: "commande",
		Value: 80.0, ValueType: model.SettingNumber,
	}
	if err := svc.Put(ctx, &updated); err != nil {
		t.Fatalf("Put: %v", err)
	}
	st, err := svc.Get(ctx, model.SettingMinOrderAmount)
	if err != nil {
		t.Fatalf("Get after Put: %v", err)
	}
	if st.Value != 80.0 {
		t.Fatalf("value = %v, want 80 (stale cache served)", st.Value)
	}
	if store.getCalls != 2 {
		t.Fatalf("store reads = %d, want 2 (Put must drop the cached entry)", store.getCalls)
	}
}

func TestSettingsWithoutCache(t *testing.T) {
	store := &stubStore{settings: map[string]model.Setting{
		"k": {Key: "k", Value: "v", ValueType: model.SettingString},
	}}
	svc := NewSettingsService(store, nil)
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if _, err := svc.Get(ctx, "k"); err != nil {
			t.Fatalf("Get: %v", err)
		}
	}
	if store.getCalls != 2 {
		t.Fatalf("store reads = %d, want 2 with caching disabled", store.getCalls)
	}
}

func TestSettingsTypedAccessors(t *testing.T) {
	svc, _, _ := newTestSettings()
	ctx := context.Background()

	if v := svc.Float(ctx, model.SettingMinOrderAmount, 0); v != 50 {
		t.Fatalf("Float = %v, want 50", v)
	}
	if v := svc.Float(ctx, "inconnu", 12.5); v != 12.5 {
		t.Fatalf("Float default = %v, want 12.5", v)
	}
	if v := svc.Bool(ctx, model.SettingAllowBackorder, false); !v {
		t.Fatal("Bool = false, want true")
	}
	if v := svc.Bool(ctx, "inconnu", true); !v {
		t.Fatal("Bool default = false, want true")
	}
	// Wrong type falls back to the default.
	if v := svc.Bool(ctx, model.SettingMinOrderAmount, false); v {
		t.Fatal("Bool on a number setting should return the default")
	}
}
