package purgedata

import (
	"context"
	"fmt"
	"net/http"

	"legalaid-seeder/internal/common/config"
	apperrors "legalaid-seeder/internal/common/errors"
	"legalaid-seeder/internal/common/logger"
	"legalaid-seeder/internal/common/observability"
	"legalaid-seeder/internal/models"
	"legalaid-seeder/internal/sink"
	"legalaid-seeder/internal/store/codes"
	"legalaid-seeder/internal/workers/runner"
	"legalaid-seeder/pkg/registry"
)

const (
	TaskType    = "purge-data"
	OperationID = "purge_data"
)

type Handler struct {
	config *Config
	sinks  sink.Factory
	codes  codes.Registry
	obs    *observability.Observability
	op     *registry.Operation
	logger logger.Logger
}

type HandlerOptions struct {
	AppConfig     *config.Config
	CustomConfig  *Config
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

// Execute deletes every generated row, child tables first, then forgets
// the recorded legal-service codes. It refuses to run unless confirmed.
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
	if !input.Confirm {
		return nil, apperrors.NewConfirmationRequiredError(OperationID)
	}

	var output *Output
	err := runner.Track(ctx, h.obs, TaskType, func(ctx context.Context) error {
		s, release, err := h.sinks(ctx, runner.Authorization(ctx))
		if err != nil {
			return err
		}
		defer release()

		if err := sink.NewPusher(s, 0, h.logger).Purge(ctx, models.GeneratedTables); err != nil {
			return err
		}
		if err := h.codes.Reset(ctx); err != nil {
			return err
		}

		tables := make([]string, len(models.GeneratedTables))
		for i, t := range models.GeneratedTables {
			tables[i] = t.Name
		}
		output = &Output{Message: "Success", Tables: tables}
		return nil
	})
	if err != nil {
		return nil, err
	}

	h.logger.Info("Data purged", map[string]interface{}{"tables": len(output.Tables)})
	return output, nil
}
