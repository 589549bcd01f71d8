package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bekimbicaku/scan-perks/internal/domain/model"
	"github.com/bekimbicaku/scan-perks/internal/domain/ports/repository"
	"github.com/bekimbicaku/scan-perks/internal/infra/metrics"
	red "github.com/bekimbicaku/scan-perks/internal/infra/redis"
)

var _ repository.BusinessRepository = (*businessRepoCacheDecorator)(nil)

// businessRepoCacheDecorator caches FindByID, which runs on every scan. All
// writes invalidate.
type businessRepoCacheDecorator struct {
	inner repository.BusinessRepository
	cache red.RedisClient
	ttl   time.Duration
}

func NewBusinessRepoCacheDecorator(inner repository.BusinessRepository, cache red.RedisClient, ttl time.Duration) repository.BusinessRepository {
	if ttl <= 0 {
		ttl = 1 * time.Hour
	}
	return &businessRepoCacheDecorator{
		inner: inner,
		cache: cache,
		ttl:   ttl,
	}
}

func businessKey(id string) string { return fmt.Sprintf("business:%s", id) }

func (d *businessRepoCacheDecorator) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Business, error) {
	val, err := d.cache.Get(ctx, businessKey(id))
	if err == nil {
		metrics.IncCacheRequest("business", "hit")
		var b model.Business
		if json.Unmarshal([]byte(val), &b) == nil {
			return &b, nil
		}
	}

	metrics.IncCacheRequest("business", "miss")
	b, err := d.inner.FindByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if bytes, err := json.Marshal(b); err == nil {
		d.cache.Set(ctx, businessKey(id), bytes, d.ttl)
	}
	return b, nil
}

// FindByAPIKey stays uncached; it serves the low-volume business API, and
// keys should not sit in the cache.
func (d *businessRepoCacheDecorator) FindByAPIKey(ctx context.Context, tx repository.Tx, apiKey string) (*model.Business, error) {
	return d.inner.FindByAPIKey(ctx, tx, apiKey)
}

func (d *businessRepoCacheDecorator) Save(ctx context.Context, tx repository.Tx, b *model.Business) error {
	d.cache.Del(ctx, businessKey(b.ID))
	return d.inner.Save(ctx, tx, b)
}

func (d *businessRepoCacheDecorator) SetPlan(ctx context.Context, tx repository.Tx, id string, plan model.PlanID, status model.PlanStatus, startedAt *time.Time) error {
	d.cache.Del(ctx, businessKey(id))
	return d.inner.SetPlan(ctx, tx, id, plan, status, startedAt)
}

func (d *businessRepoCacheDecorator) Deactivate(ctx context.Context, tx repository.Tx, id string, at time.Time) error {
	d.cache.Del(ctx, businessKey(id))
	return d.inner.Deactivate(ctx, tx, id, at)
}

func (d *businessRepoCacheDecorator) Delete(ctx context.Context, tx repository.Tx, id string) error {
	d.cache.Del(ctx, businessKey(id))
	return d.inner.Delete(ctx, tx, id)
}
