//go:build !integration

package postgres

import (
	"context"
	"time"

	"github.com/bekimbicaku/scan-perks/internal/domain/model"
	"github.com/bekimbicaku/scan-perks/internal/domain/ports/repository"
	red "github.com/bekimbicaku/scan-perks/internal/infra/redis"
)

// mockRedisClient lets cache decorator tests script the cache layer. A method
// whose func field is unset panics, which catches unexpected cache traffic.
type mockRedisClient struct {
	PingFunc   func(ctx context.Context) error
	SetFunc    func(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	GetFunc    func(ctx context.Context, key string) (string, error)
	IncrFunc   func(ctx context.Context, key string) (int64, error)
	ExpireFunc func(ctx context.Context, key string, expiration time.Duration) error
	DelFunc    func(ctx context.Context, keys ...string) error
	CloseFunc  func() error
}

var _ red.RedisClient = (*mockRedisClient)(nil)

func (m *mockRedisClient) Ping(ctx context.Context) error { return m.PingFunc(ctx) }

func (m *mockRedisClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return m.SetFunc(ctx, key, value, expiration)
}

func (m *mockRedisClient) Get(ctx context.Context, key string) (string, error) {
	return m.GetFunc(ctx, key)
}

func (m *mockRedisClient) Incr(ctx context.Context, key string) (int64, error) {
	return m.IncrFunc(ctx, key)
}

func (m *mockRedisClient) Expire(ctx context.Context, key string, expiration time.Duration) error {
	return m.ExpireFunc(ctx, key, expiration)
}

func (m *mockRedisClient) Del(ctx context.Context, keys ...string) error {
	return m.DelFunc(ctx, keys...)
}

func (m *mockRedisClient) Close() error { return m.CloseFunc() }

// mockInnerBusinessRepo stands in for the real repo behind the decorator.
type mockInnerBusinessRepo struct {
	SaveFunc         func(ctx context.Context, tx repository.Tx, b *model.Business) error
	FindByIDFunc     func(ctx context.Context, tx repository.Tx, id string) (*model.Business, error)
	FindByAPIKeyFunc func(ctx context.Context, tx repository.Tx, apiKey string) (*model.Business, error)
	SetPlanFunc      func(ctx context.Context, tx repository.Tx, id string, plan model.PlanID, status model.PlanStatus, startedAt *time.Time) error
	DeactivateFunc   func(ctx context.Context, tx repository.Tx, id string, at time.Time) error
	DeleteFunc       func(ctx context.Context, tx repository.Tx, id string) error
}

var _ repository.BusinessRepository = (*mockInnerBusinessRepo)(nil)

func (m *mockInnerBusinessRepo) Save(ctx context.Context, tx repository.Tx, b *model.Business) error {
	return m.SaveFunc(ctx, tx, b)
}

func (m *mockInnerBusinessRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Business, error) {
	return m.FindByIDFunc(ctx, tx, id)
}

func (m *mockInnerBusinessRepo) FindByAPIKey(ctx context.Context, tx repository.Tx, apiKey string) (*model.Business, error) {
	return m.FindByAPIKeyFunc(ctx, tx, apiKey)
}

func (m *mockInnerBusinessRepo) SetPlan(ctx context.Context, tx repository.Tx, id string, plan model.PlanID, status model.PlanStatus, startedAt *time.Time) error {
	return m.SetPlanFunc(ctx, tx, id, plan, status, startedAt)
}

func (m *mockInnerBusinessRepo) Deactivate(ctx context.Context, tx repository.Tx, id string, at time.Time) error {
	return m.DeactivateFunc(ctx, tx, id, at)
}

func (m *mockInnerBusinessRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	return m.DeleteFunc(ctx, tx, id)
}
