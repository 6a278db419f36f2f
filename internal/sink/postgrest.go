package sink

import (
	"context"

	"legalaid-seeder/internal/common/supabase"
	"legalaid-seeder/internal/models"
)

// PostgREST writes through the backend's REST interface.
type PostgREST struct {
	client *supabase.RESTClient
}

func NewPostgREST(client *supabase.RESTClient) *PostgREST {
	return &PostgREST{client: client}
}

func (p *PostgREST) Insert(ctx context.Context, table models.TableSpec, rows []interface{}) error {
	if len(rows) == 0 {
		return nil
	}
	return p.client.Insert(ctx, table.Name, table.Columns(), rows)
}

func (p *PostgREST) DeleteAll(ctx context.Context, table models.TableSpec) error {
	return p.client.DeleteAll(ctx, table.Name, table.Key)
}

func (p *PostgREST) Select(ctx context.Context, table models.TableSpec, dest interface{}) error {
	return p.client.Select(ctx, table.Name, dest)
}
