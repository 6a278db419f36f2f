// Package generator wires the reference tables, random source, value
// generator and entity factory into builders according to configuration.
package generator

import (
	"legalaid-seeder/internal/common/config"
	"legalaid-seeder/internal/generator/builder"
	"legalaid-seeder/internal/generator/factory"
	"legalaid-seeder/internal/generator/refdata"
	"legalaid-seeder/internal/generator/rng"
	"legalaid-seeder/internal/generator/values"
)

// Engine holds the loaded reference tables. Each Builder call starts a
// fresh random stream, so a non-zero seed makes every build reproducible.
type Engine struct {
	cfg    config.GeneratorConfig
	tables *refdata.Tables
	opts   []values.Option
}

// LoadTables reads the reference data named by cfg and tops it up from
// the fake-data libraries when synthesis is enabled.
func LoadTables(cfg config.GeneratorConfig) (*refdata.Tables, error) {
	tables, err := refdata.Load(cfg.ReferenceDataPath)
	if err != nil {
		return nil, err
	}
	if cfg.SynthesizeReferenceData {
		tables = refdata.Synthesize(tables, cfg.SynthesizeCount)
	}
	return tables, nil
}

func New(cfg config.GeneratorConfig, opts ...values.Option) (*Engine, error) {
	tables, err := LoadTables(cfg)
	if err != nil {
		return nil, err
	}
	return NewWithTables(cfg, tables, opts...), nil
}

func NewWithTables(cfg config.GeneratorConfig, tables *refdata.Tables, opts ...values.Option) *Engine {
	return &Engine{cfg: cfg, tables: tables, opts: opts}
}

// Builder returns a builder whose case codes avoid knownCodes.
func (e *Engine) Builder(knownCodes ...int) (*builder.Builder, error) {
	v, err := values.New(rng.New(e.cfg.Seed), e.tables, e.opts...)
	if err != nil {
		return nil, err
	}

	f, err := factory.New(v, factory.Options{
		CodeDigits:      e.cfg.LegalServiceCodeDigits,
		MaxCodeAttempts: e.cfg.MaxCodeAttempts,
	})
	if err != nil {
		return nil, err
	}
	return builder.New(f, knownCodes...), nil
}
