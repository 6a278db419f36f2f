package purgetestusers

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
	"legalaid-seeder/internal/workers/runner"
	"legalaid-seeder/pkg/registry"

	"golang.org/x/sync/errgroup"
)

const (
	TaskType    = "purge-test-users"
	OperationID = "purge_test_users"
)

// UserDeleter removes auth users.
type UserDeleter interface {
	DeleteUser(ctx context.Context, userID string) error
}

type Handler struct {
	config *Config
	admin  UserDeleter
	sinks  sink.Factory
	obs    *observability.Observability
	op     *registry.Operation
	logger logger.Logger
}

type HandlerOptions struct {
	AppConfig     *config.Config
	CustomConfig  *Config
	Admin         UserDeleter
	Sinks         sink.Factory
	Observability *observability.Observability
	Logger        logger.Logger
}

func NewHandler(opts HandlerOptions) (*Handler, error) {
	cfg := createConfigFromAppConfig(opts.AppConfig, opts.CustomConfig)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for %s: %w", TaskType, err)
	}
	if opts.Admin == nil || opts.Sinks == nil {
		return nil, fmt.Errorf("%s: auth admin and sink factory are required", TaskType)
	}

	log := opts.Logger
	if log == nil {
		log = logger.NewStructured("info", "json")
	}

	return &Handler{
		config: cfg,
		admin:  opts.Admin,
		sinks:  opts.Sinks,
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

// Execute deletes the auth user behind every test_users row, then clears
// the table. Rows are only cleared once every auth deletion succeeded, so a
// failed purge can be retried.
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

		var users []models.UserData
		if err := s.Select(ctx, models.TestUsersTable, &users); err != nil {
			return err
		}

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(h.config.Concurrency)
		for _, u := range users {
			id := u.ID
			g.Go(func() error {
				return h.admin.DeleteUser(gctx, id)
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		if err := s.DeleteAll(ctx, models.TestUsersTable); err != nil {
			return err
		}

		deleted := make([]string, len(users))
		for i, u := range users {
			deleted[i] = u.ID
		}
		output = &Output{Message: "Success", Deleted: deleted}
		return nil
	})
	if err != nil {
		return nil, err
	}

	h.logger.Info("Test users purged", map[string]interface{}{"users": len(output.Deleted)})
	return output, nil
}
