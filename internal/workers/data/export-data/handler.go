package exportdata

import (
	"context"
	"fmt"

	"legalaid-seeder/internal/common/config"
	apperrors "legalaid-seeder/internal/common/errors"
	"legalaid-seeder/internal/common/logger"
	"legalaid-seeder/internal/common/metrics"
	"legalaid-seeder/internal/common/observability"
	"legalaid-seeder/internal/export"
	"legalaid-seeder/internal/generator"
	"legalaid-seeder/internal/generator/builder"
	"legalaid-seeder/internal/workers/runner"
	"legalaid-seeder/pkg/registry"
)

const (
	TaskType    = "export-data"
	OperationID = "export_data"
)

// Handler builds datasets without a backend and writes them to files.
type Handler struct {
	config *Config
	engine *generator.Engine
	obs    *observability.Observability
	op     *registry.Operation
	logger logger.Logger
}

type HandlerOptions struct {
	AppConfig     *config.Config
	CustomConfig  *Config
	Engine        *generator.Engine
	Observability *observability.Observability
	Logger        logger.Logger
}

func NewHandler(opts HandlerOptions) (*Handler, error) {
	cfg := createConfigFromAppConfig(opts.AppConfig, opts.CustomConfig)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for %s: %w", TaskType, err)
	}

	engine := opts.Engine
	if engine == nil {
		var err error
		if engine, err = generator.New(cfg.Generator); err != nil {
			return nil, fmt.Errorf("%s: %w", TaskType, err)
		}
	}

	log := opts.Logger
	if log == nil {
		log = logger.NewStructured("info", "json")
	}

	return &Handler{
		config: cfg,
		engine: engine,
		obs:    opts.Observability,
		op:     registry.MustLookup(OperationID),
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, apperrors.NewInvalidRequestError("input cannot be nil")
	}
	if !h.config.Enabled {
		return nil, apperrors.NewConfigurationError(fmt.Sprintf("operation %s is disabled", OperationID))
	}

	resolved := h.withDefaults(*input)
	if err := h.op.Validate(&resolved); err != nil {
		return nil, err
	}
	for name, n := range map[string]int{
		"numCases":               resolved.NumCases,
		"numLimitedAssistances":  resolved.NumLimitedAssistances,
		"numTranslationRequests": resolved.NumTranslationRequests,
	} {
		if n > h.config.MaxListings {
			return nil, apperrors.NewConfigurationError(
				fmt.Sprintf("%s cannot exceed %d, got %d", name, h.config.MaxListings, n))
		}
	}

	var output *Output
	err := runner.Track(ctx, h.obs, TaskType, func(ctx context.Context) error {
		var err error
		output, err = h.export(&resolved)
		return err
	})
	return output, err
}

func (h *Handler) withDefaults(in Input) Input {
	if in.NumUsers == 0 {
		in.NumUsers = h.config.NumUsers
	}
	if len(in.Formats) == 0 {
		in.Formats = h.config.Formats
	}
	if in.OutputDir == "" {
		in.OutputDir = h.config.OutputDir
	}
	return in
}

func (h *Handler) export(input *Input) (*Output, error) {
	b, err := h.engine.Builder()
	if err != nil {
		return nil, err
	}

	req := builder.Request{
		NumCases:               input.NumCases,
		NumLimitedAssistances:  input.NumLimitedAssistances,
		NumTranslationRequests: input.NumTranslationRequests,
		NumInterests:           input.NumInterests,
		Kinds:                  input.kinds(),
		Users:                  b.Values().Users(input.NumUsers),
	}
	if err := req.CheckCapacity(); err != nil {
		return nil, err
	}

	ds, err := b.Build(req)
	if err != nil {
		return nil, err
	}
	if err := ds.Verify(); err != nil {
		return nil, err
	}

	files, err := export.Write(input.OutputDir, ds, input.Formats)
	if err != nil {
		return nil, err
	}

	counts := ds.Counts()
	metrics.RecordGenerated(counts)
	h.logger.Info("Dataset exported", map[string]interface{}{
		"outputDir": input.OutputDir,
		"formats":   input.Formats,
		"files":     len(files),
		"counts":    counts,
	})

	return &Output{
		Message:     "Success",
		Files:       files,
		Counts:      counts,
		Users:       len(req.Users),
		GeneratedAt: ds.GeneratedAt,
	}, nil
}
