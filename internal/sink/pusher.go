package sink

import (
	"context"
	"fmt"

	"legalaid-seeder/internal/common/logger"
	"legalaid-seeder/internal/common/metrics"
	"legalaid-seeder/internal/generator/builder"
	"legalaid-seeder/internal/models"

	"golang.org/x/sync/errgroup"
)

const defaultBatchSize = 500

// Pusher writes a dataset table by table. Parent tables go first, one at a
// time; child tables only reference parents, so they are written
// concurrently once every parent has landed.
type Pusher struct {
	sink      Sink
	batchSize int
	log       logger.Logger
}

func NewPusher(sink Sink, batchSize int, log logger.Logger) *Pusher {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &Pusher{sink: sink, batchSize: batchSize, log: log}
}

// Push writes every table. It stops at the first failed parent table.
func (p *Pusher) Push(ctx context.Context, tables []builder.TableRows) error {
	var children []builder.TableRows
	for _, t := range tables {
		if !t.Parent {
			children = append(children, t)
			continue
		}
		if err := p.insert(ctx, t); err != nil {
			return err
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, t := range children {
		t := t
		g.Go(func() error {
			return p.insert(gctx, t)
		})
	}
	return g.Wait()
}

func (p *Pusher) insert(ctx context.Context, t builder.TableRows) error {
	for start := 0; start < len(t.Rows); start += p.batchSize {
		end := start + p.batchSize
		if end > len(t.Rows) {
			end = len(t.Rows)
		}
		if err := p.sink.Insert(ctx, t.TableSpec, t.Rows[start:end]); err != nil {
			metrics.PushFailures.WithLabelValues(t.Name).Inc()
			return fmt.Errorf("push %s rows %d-%d: %w", t.Name, start, end, err)
		}
		metrics.RecordsPushed.WithLabelValues(t.Name).Add(float64(end - start))
	}

	p.log.Debug("Table pushed", map[string]interface{}{
		"table": t.Name,
		"rows":  len(t.Rows),
	})
	return nil
}

// Purge deletes every row of tables. Child tables are cleared concurrently
// before parents are cleared in reverse insertion order.
func (p *Pusher) Purge(ctx context.Context, tables []models.TableSpec) error {
	var parents []models.TableSpec

	g, gctx := errgroup.WithContext(ctx)
	for _, t := range tables {
		if t.Parent {
			parents = append(parents, t)
			continue
		}
		t := t
		g.Go(func() error {
			return p.deleteAll(gctx, t)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i := len(parents) - 1; i >= 0; i-- {
		if err := p.deleteAll(ctx, parents[i]); err != nil {
			return err
		}
	}
	return nil
}

func (p *Pusher) deleteAll(ctx context.Context, t models.TableSpec) error {
	if err := p.sink.DeleteAll(ctx, t); err != nil {
		metrics.PushFailures.WithLabelValues(t.Name).Inc()
		return fmt.Errorf("purge %s: %w", t.Name, err)
	}
	p.log.Debug("Table purged", map[string]interface{}{"table": t.Name})
	return nil
}
