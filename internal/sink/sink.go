// Package sink writes generated tables to a backend and purges them.
package sink

import (
	"context"
	"fmt"

	"legalaid-seeder/internal/common/config"
	"legalaid-seeder/internal/common/database"
	"legalaid-seeder/internal/common/supabase"
	"legalaid-seeder/internal/models"
)

// Sink is a table-level backend. Insert is all-or-nothing per call.
type Sink interface {
	Insert(ctx context.Context, table models.TableSpec, rows []interface{}) error
	DeleteAll(ctx context.Context, table models.TableSpec) error
	// Select decodes every row of table into dest, a pointer to a slice.
	Select(ctx context.Context, table models.TableSpec, dest interface{}) error
}

// Factory opens a sink for one operation. The returned func releases it.
type Factory func(ctx context.Context, authorization string) (Sink, func() error, error)

// NewFactory returns a Factory over New for cfg.
func NewFactory(cfg *config.Config) Factory {
	return func(ctx context.Context, authorization string) (Sink, func() error, error) {
		return New(ctx, cfg, authorization)
	}
}

// Static returns a Factory that always yields s. Used by tests and by
// commands that share one sink.
func Static(s Sink) Factory {
	return func(context.Context, string) (Sink, func() error, error) {
		return s, func() error { return nil }, nil
	}
}

// New builds the sink named by cfg.Sink.Type. authorization, when set,
// replaces the api key as the PostgREST bearer token.
func New(ctx context.Context, cfg *config.Config, authorization string) (Sink, func() error, error) {
	switch cfg.Sink.Type {
	case config.SinkPostgres:
		pg, err := database.NewPostgres(ctx, cfg.Database.Postgres)
		if err != nil {
			return nil, nil, err
		}
		return NewPostgres(pg), pg.Close, nil

	case config.SinkMemory:
		return NewMemory(), func() error { return nil }, nil

	case config.SinkPostgREST, "":
		key := cfg.Supabase.ServiceRoleKey
		if key == "" {
			key = cfg.Supabase.AnonKey
		}
		client := supabase.NewRESTClient(cfg.Supabase.URL, key, config.GetDuration(cfg.Supabase.Timeout)).
			WithAuthorization(authorization)
		return NewPostgREST(client), func() error { return nil }, nil

	default:
		return nil, nil, fmt.Errorf("unknown sink type %q", cfg.Sink.Type)
	}
}
