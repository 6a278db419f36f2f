package buildusers

import (
	"context"
	"fmt"
	"net/http"

	"legalaid-seeder/internal/common/config"
	apperrors "legalaid-seeder/internal/common/errors"
	"legalaid-seeder/internal/common/logger"
	"legalaid-seeder/internal/common/observability"
	"legalaid-seeder/internal/common/supabase"
	"legalaid-seeder/internal/generator"
	"legalaid-seeder/internal/models"
	"legalaid-seeder/internal/sink"
	"legalaid-seeder/internal/workers/runner"
	"legalaid-seeder/pkg/registry"
)

const (
	TaskType    = "build-users"
	OperationID = "build_users"
)

// AuthAdmin is the part of the auth admin API this operation uses.
type AuthAdmin interface {
	CreateUser(ctx context.Context, user *supabase.CreateUserRequest) (*supabase.AuthUser, error)
	DeleteUser(ctx context.Context, userID string) error
}

type Handler struct {
	config *Config
	engine *generator.Engine
	admin  AuthAdmin
	sinks  sink.Factory
	obs    *observability.Observability
	op     *registry.Operation
	logger logger.Logger
}

type HandlerOptions struct {
	AppConfig     *config.Config
	CustomConfig  *Config
	Engine        *generator.Engine
	Admin         AuthAdmin
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

// Execute creates confirmed auth users flagged as fake and records them in
// test_users. If any step fails, the auth users created so far are
// deleted again.
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
	if input.NumUsers < h.config.MinUsers || input.NumUsers > h.config.MaxUsers {
		return nil, apperrors.NewConfigurationError(fmt.Sprintf(
			"numUsers must be between %d and %d, got %d", h.config.MinUsers, h.config.MaxUsers, input.NumUsers))
	}

	var output *Output
	err := runner.Track(ctx, h.obs, TaskType, func(ctx context.Context) error {
		users, err := h.createUsers(ctx, input.NumUsers)
		if err != nil {
			return err
		}
		output = &Output{Message: "Success", Users: users}
		return nil
	})
	if err != nil {
		return nil, err
	}

	h.logger.Info("Test users created", map[string]interface{}{"users": len(output.Users)})
	return output, nil
}

func (h *Handler) createUsers(ctx context.Context, n int) (users []models.UserData, err error) {
	b, err := h.engine.Builder()
	if err != nil {
		return nil, err
	}

	defer func() {
		if err != nil {
			h.rollback(users)
		}
	}()

	for i := 0; i < n; i++ {
		draft := b.Values().User()
		created, err := h.admin.CreateUser(ctx, &supabase.CreateUserRequest{
			Email:        draft.Email,
			Password:     h.config.Password,
			EmailConfirm: true,
			UserMetadata: map[string]interface{}{"fake": true},
		})
		if err != nil {
			return users, err
		}
		draft.ID = created.ID
		users = append(users, draft)
	}

	s, release, err := h.sinks(ctx, runner.Authorization(ctx))
	if err != nil {
		return users, err
	}
	defer release()

	rows := make([]interface{}, len(users))
	for i, u := range users {
		rows[i] = u
	}
	if err := s.Insert(ctx, models.TestUsersTable, rows); err != nil {
		return users, err
	}
	return users, nil
}

// rollback deletes auth users created by a failed run. It uses a fresh
// context so a cancelled request still cleans up.
func (h *Handler) rollback(users []models.UserData) {
	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	for _, u := range users {
		if err := h.admin.DeleteUser(ctx, u.ID); err != nil {
			h.logger.Warn("Failed to roll back test user", map[string]interface{}{
				"userId": u.ID,
				"error":  err.Error(),
			})
		}
	}
}
