// Package codes remembers which legal-service codes have already been
// pushed to the backend, so later builds do not reissue them.
package codes

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"legalaid-seeder/internal/common/config"
	"legalaid-seeder/internal/common/database"
	apperrors "legalaid-seeder/internal/common/errors"
)

type Registry interface {
	// Known returns every recorded code in ascending order.
	Known(ctx context.Context) ([]int, error)
	Record(ctx context.Context, codes []int) error
	Reset(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}

// New returns a Redis-backed registry, or a no-op registry when no Redis
// address is configured.
func New(cfg config.RedisConfig) Registry {
	if cfg.Address == "" {
		return NopRegistry{}
	}
	return NewRedisRegistry(database.NewRedis(cfg), cfg.CodeSetKey)
}

// RedisRegistry keeps codes in one Redis set.
type RedisRegistry struct {
	client *database.RedisClient
	key    string
}

func NewRedisRegistry(client *database.RedisClient, key string) *RedisRegistry {
	return &RedisRegistry{client: client, key: key}
}

func (r *RedisRegistry) Known(ctx context.Context) ([]int, error) {
	members, err := r.client.SetMembers(ctx, r.key)
	if err != nil {
		return nil, apperrors.NewCodeRegistryFailedError(err)
	}

	out := make([]int, 0, len(members))
	for _, m := range members {
		code, err := strconv.Atoi(m)
		if err != nil {
			return nil, apperrors.NewCodeRegistryFailedError(fmt.Errorf("set %s holds non-numeric member %q", r.key, m))
		}
		out = append(out, code)
	}
	sort.Ints(out)
	return out, nil
}

func (r *RedisRegistry) Record(ctx context.Context, codes []int) error {
	members := make([]interface{}, len(codes))
	for i, c := range codes {
		members[i] = c
	}
	if err := r.client.SetAdd(ctx, r.key, members...); err != nil {
		return apperrors.NewCodeRegistryFailedError(err)
	}
	return nil
}

func (r *RedisRegistry) Reset(ctx context.Context) error {
	if err := r.client.Del(ctx, r.key); err != nil {
		return apperrors.NewCodeRegistryFailedError(err)
	}
	return nil
}

func (r *RedisRegistry) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx); err != nil {
		return apperrors.NewCodeRegistryFailedError(err)
	}
	return nil
}

func (r *RedisRegistry) Close() error {
	return r.client.Close()
}

// NopRegistry remembers nothing.
type NopRegistry struct{}

func (NopRegistry) Known(context.Context) ([]int, error) { return nil, nil }
func (NopRegistry) Record(context.Context, []int) error  { return nil }
func (NopRegistry) Reset(context.Context) error          { return nil }
func (NopRegistry) Ping(context.Context) error           { return nil }
func (NopRegistry) Close() error                         { return nil }
