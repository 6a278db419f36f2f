package builddata

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"legalaid-seeder/internal/common/config"
	apperrors "legalaid-seeder/internal/common/errors"
	"legalaid-seeder/internal/common/logger"
	"legalaid-seeder/internal/common/metrics"
	"legalaid-seeder/internal/common/observability"
	"legalaid-seeder/internal/generator"
	"legalaid-seeder/internal/generator/builder"
	"legalaid-seeder/internal/models"
	"legalaid-seeder/internal/sink"
	"legalaid-seeder/internal/store/codes"
	"legalaid-seeder/internal/workers/runner"
	"legalaid-seeder/pkg/registry"
)

const (
	TaskType    = "build-data"
	OperationID = "build_data"
)

type Handler struct {
	config *Config
	engine *generator.Engine
	sinks  sink.Factory
	codes  codes.Registry
	obs    *observability.Observability
	op     *registry.Operation
	logger logger.Logger
}

type HandlerOptions struct {
	AppConfig    *config.Config
	CustomConfig *Config
	// Engine overrides the generator built from configuration.
	Engine        *generator.Engine
	Sinks         sink.Factory
	Codes         codes.Registry
	Observability *observability.Observability
	Logger        logger.Logger
}

func NewHandler(opts HandlerOptions) (*Handler, error) {
	cfg := createConfigFromAppConfig(opts.AppConfig, opts.CustomConfig)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for %s: %w", TaskType, err)
	}
	if opts.Sinks == nil {
		return nil, fmt.Errorf("%s: sink factory is required", TaskType)
	}

	engine := opts.Engine
	if engine == nil {
		var err error
		if engine, err = generator.New(cfg.Generator); err != nil {
			return nil, fmt.Errorf("%s: %w", TaskType, err)
		}
	}

	registryCodes := opts.Codes
	if registryCodes == nil {
		registryCodes = codes.NopRegistry{}
	}

	log := opts.Logger
	if log == nil {
		log = logger.NewStructured("info", "json")
	}

	return &Handler{
		config: cfg,
		engine: engine,
		sinks:  opts.Sinks,
		codes:  registryCodes,
		obs:    opts.Observability,
		op:     registry.MustLookup(OperationID),
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}, nil
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var input Input
	runner.Serve(w, r, OperationID, h.config.Timeout, h.logger, &input, func(ctx context.Context) (interface{}, error) {
		return h.Execute(ctx, &input)
	})
}

// Execute builds a dataset for the users in test_users, verifies it and
// pushes it. Nothing is written unless the whole dataset builds.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, apperrors.NewInvalidRequestError("input cannot be nil")
	}
	if !h.config.Enabled {
		return nil, apperrors.NewConfigurationError(fmt.Sprintf("operation %s is disabled", OperationID))
	}
	if err := h.op.Validate(input); err != nil {
		return nil, err
	}
	if err := h.checkLimits(input); err != nil {
		return nil, err
	}

	var output *Output
	err := runner.Track(ctx, h.obs, TaskType, func(ctx context.Context) error {
		var err error
		output, err = h.execute(ctx, input)
		return err
	})
	return output, err
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	start := time.Now()
	kinds := input.kinds()

	h.logger.Info("Building data", map[string]interface{}{
		"numCases":               input.NumCases,
		"numLimitedAssistances":  input.NumLimitedAssistances,
		"numTranslationRequests": input.NumTranslationRequests,
		"numInterests":           input.NumInterests,
		"dryRun":                 input.DryRun,
	})

	s, release, err := h.sinks(ctx, runner.Authorization(ctx))
	if err != nil {
		return nil, err
	}
	defer release()

	var users []models.UserData
	if err := s.Select(ctx, models.TestUsersTable, &users); err != nil {
		return nil, err
	}
	req := builder.Request{
		NumCases:               input.NumCases,
		NumLimitedAssistances:  input.NumLimitedAssistances,
		NumTranslationRequests: input.NumTranslationRequests,
		NumInterests:           input.NumInterests,
		Kinds:                  kinds,
		Users:                  users,
	}
	if err := req.CheckCapacity(); err != nil {
		return nil, err
	}

	known, err := h.codes.Known(ctx)
	if err != nil {
		return nil, err
	}

	b, err := h.engine.Builder(known...)
	if err != nil {
		return nil, err
	}
	ds, err := b.Build(req)
	if err != nil {
		return nil, err
	}
	if err := ds.Verify(); err != nil {
		return nil, err
	}

	counts := ds.Counts()
	metrics.RecordGenerated(counts)

	output := &Output{
		Message:     "Success",
		Counts:      counts,
		Users:       len(users),
		DryRun:      input.DryRun,
		GeneratedAt: ds.GeneratedAt,
	}

	if !input.DryRun {
		if err := sink.NewPusher(s, h.config.BatchSize, h.logger).Push(ctx, ds.Rows()); err != nil {
			return nil, err
		}
		// The rows are already written, so a registry failure only costs
		// collision avoidance on the next run.
		if err := h.codes.Record(ctx, ds.LegalServerIDs()); err != nil {
			h.logger.Warn("Failed to record legal service codes", map[string]interface{}{
				"error": err.Error(),
				"codes": len(ds.Cases),
			})
		}
	}

	output.DurationMs = time.Since(start).Milliseconds()
	h.logger.Info("Data built", map[string]interface{}{
		"counts":     counts,
		"users":      len(users),
		"dryRun":     input.DryRun,
		"durationMs": output.DurationMs,
	})
	return output, nil
}

func (h *Handler) checkLimits(input *Input) error {
	for name, n := range map[string]int{
		"numCases":               input.NumCases,
		"numLimitedAssistances":  input.NumLimitedAssistances,
		"numTranslationRequests": input.NumTranslationRequests,
	} {
		if n > h.config.MaxListings {
			return apperrors.NewConfigurationError(
				fmt.Sprintf("%s cannot exceed %d, got %d", name, h.config.MaxListings, n))
		}
	}
	return nil
}
