package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/metric"
)

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &RedisStore{
		client: client,
		ttl:    ttl,
	}
}

// RedisStore keeps wizard and customizer state with a sliding TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func (r RedisStore) GetWizard(ctx context.Context, id string) (*domain.Wizard, error) {
	var w domain.Wizard
	if err := r.get(ctx, "wizard", wizardKey(id), &w); err != nil {
		return nil, err
	}
	return &w, nil
}

func (r RedisStore) SaveWizard(ctx context.Context, w *domain.Wizard) error {
	return r.set(ctx, "wizard", wizardKey(w.ID), w)
}

func (r RedisStore) DeleteWizard(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, wizardKey(id)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func (r RedisStore) AcquireSubmitLock(ctx context.Context, id string, ttl time.Duration) (bool, error) {
	ok, err := r.client.SetNX(ctx, lockKey(id), "1", ttl).Result()
	if err != nil {
		metric.StoreOperationsTotal.WithLabelValues("lock", "error").Inc()
		return false, fmt.Errorf("redis setnx failed: %w", err)
	}
	return ok, nil
}

func (r RedisStore) ReleaseSubmitLock(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, lockKey(id)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func (r RedisStore) GetDesignSession(ctx context.Context, id string) (*domain.DesignSession, error) {
	var s domain.DesignSession
	if err := r.get(ctx, "design", designKey(id), &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r RedisStore) SaveDesignSession(ctx context.Context, s *domain.DesignSession) error {
	return r.set(ctx, "design", designKey(s.ID), s)
}

func (r RedisStore) get(ctx context.Context, kind, key string, v any) error {
	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		metric.StoreOperationsTotal.WithLabelValues("get_"+kind, "miss").Inc()
		return ErrCacheMiss
	}
	if err != nil {
		metric.StoreOperationsTotal.WithLabelValues("get_"+kind, "error").Inc()
		return fmt.Errorf("redis get failed: %w", err)
	}

	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("unmarshal %s failed: %w", kind, err)
	}
	metric.StoreOperationsTotal.WithLabelValues("get_"+kind, "hit").Inc()
	return nil
}

func (r RedisStore) set(ctx context.Context, kind, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s failed: %w", kind, err)
	}
	if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
		metric.StoreOperationsTotal.WithLabelValues("set_"+kind, "error").Inc()
		return fmt.Errorf("redis set failed: %w", err)
	}
	metric.StoreOperationsTotal.WithLabelValues("set_"+kind, "ok").Inc()
	return nil
}

func wizardKey(id string) string {
	return fmt.Sprintf("checkout:%s", id)
}

func designKey(id string) string {
	return fmt.Sprintf("design:%s", id)
}

func lockKey(id string) string {
	return fmt.Sprintf("checkout:%s:submit", id)
}
