package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"legalaid-seeder/internal/common/config"
	"legalaid-seeder/internal/common/logger"
	"legalaid-seeder/internal/common/observability"
	"legalaid-seeder/internal/common/supabase"
	"legalaid-seeder/internal/generator"
	"legalaid-seeder/internal/sink"
	"legalaid-seeder/internal/store/codes"
	builddata "legalaid-seeder/internal/workers/data/build-data"
	exportdata "legalaid-seeder/internal/workers/data/export-data"
	purgedata "legalaid-seeder/internal/workers/data/purge-data"
	buildusers "legalaid-seeder/internal/workers/users/build-users"
	purgetestusers "legalaid-seeder/internal/workers/users/purge-test-users"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// app holds what every command shares once configuration is loaded.
type app struct {
	cfgFile  string
	logLevel string
	sinkType string

	in  io.Reader
	out io.Writer

	cfg    *config.Config
	zapLog *zap.Logger
	log    logger.Logger
	obs    *observability.Observability
	engine *generator.Engine

	closers []func() error
}

func newApp(in io.Reader, out io.Writer) *app {
	return &app{in: in, out: out}
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "seeder",
		Short:        "Generate and manage synthetic legal-aid data",
		SilenceUsage: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return a.load()
		},
	}
	root.SetIn(a.in)
	root.SetOut(a.out)

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default: configs/config.yaml)")
	flags.StringVar(&a.logLevel, "log-level", "", "override logging.level")
	flags.StringVar(&a.sinkType, "sink", "", "override sink.type (postgrest, postgres, memory)")

	root.AddCommand(
		a.newBuildCmd(),
		a.newPurgeCmd(),
		a.newUsersCmd(),
		a.newExportCmd(),
		a.newVerifyCmd(),
		a.newOperationsCmd(),
		a.newServeCmd(),
	)
	return root
}

func (a *app) load() error {
	var err error
	if a.cfgFile != "" {
		a.cfg, err = config.LoadFromFile(a.cfgFile)
	} else {
		a.cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}
	if a.logLevel != "" {
		a.cfg.Logging.Level = a.logLevel
	}
	if a.sinkType != "" {
		switch a.sinkType {
		case config.SinkPostgREST, config.SinkPostgres, config.SinkMemory:
			a.cfg.Sink.Type = a.sinkType
		default:
			return fmt.Errorf("unknown sink type %q", a.sinkType)
		}
	}

	a.zapLog = logger.New(a.cfg.Logging.Level, a.cfg.Logging.Format)
	a.log = logger.NewZapAdapter(a.zapLog)
	a.obs = observability.New(a.cfg.App.Name, a.log)

	if a.engine, err = generator.New(a.cfg.Generator); err != nil {
		return fmt.Errorf("generator setup failed: %w", err)
	}
	return nil
}

// close releases everything opened by load and the command that ran.
func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.log.Warn("Close failed", map[string]interface{}{"error": err.Error()})
		}
	}
	a.closers = nil
	if a.obs != nil {
		a.obs.Shutdown()
		a.obs = nil
	}
	if a.zapLog != nil {
		_ = a.zapLog.Sync()
	}
}

// requireBackend checks backend settings unless rows stay in memory.
func (a *app) requireBackend() error {
	if a.cfg.Sink.Type == config.SinkMemory {
		return nil
	}
	return a.cfg.ValidateBackend()
}

// openCodes connects the code registry, retrying while Redis comes up.
func (a *app) openCodes(ctx context.Context) (codes.Registry, error) {
	reg := codes.New(a.cfg.Database.Redis)
	err := retryWithBackoff(ctx, func() error {
		return reg.Ping(ctx)
	}, 5, 500*time.Millisecond, a.log, "Redis connection")
	if err != nil {
		_ = reg.Close()
		return nil, err
	}
	a.closers = append(a.closers, reg.Close)
	return reg, nil
}

func (a *app) adminClient() (*supabase.AdminClient, error) {
	if a.cfg.Supabase.URL == "" || a.cfg.Supabase.ServiceRoleKey == "" {
		return nil, fmt.Errorf("supabase.url and supabase.service_role_key are required to manage auth users")
	}
	return supabase.NewAdminClient(a.cfg.Supabase.URL, a.cfg.Supabase.ServiceRoleKey,
		config.GetDuration(a.cfg.Supabase.Timeout)), nil
}

func (a *app) buildDataHandler(ctx context.Context, sinks sink.Factory) (*builddata.Handler, error) {
	reg, err := a.openCodes(ctx)
	if err != nil {
		return nil, err
	}
	return builddata.NewHandler(builddata.HandlerOptions{
		AppConfig:     a.cfg,
		Engine:        a.engine,
		Sinks:         sinks,
		Codes:         reg,
		Observability: a.obs,
		Logger:        a.log,
	})
}

func (a *app) purgeDataHandler(ctx context.Context, sinks sink.Factory) (*purgedata.Handler, error) {
	reg, err := a.openCodes(ctx)
	if err != nil {
		return nil, err
	}
	return purgedata.NewHandler(purgedata.HandlerOptions{
		AppConfig:     a.cfg,
		Sinks:         sinks,
		Codes:         reg,
		Observability: a.obs,
		Logger:        a.log,
	})
}

func (a *app) buildUsersHandler(sinks sink.Factory) (*buildusers.Handler, error) {
	admin, err := a.adminClient()
	if err != nil {
		return nil, err
	}
	return buildusers.NewHandler(buildusers.HandlerOptions{
		AppConfig:     a.cfg,
		Engine:        a.engine,
		Admin:         admin,
		Sinks:         sinks,
		Observability: a.obs,
		Logger:        a.log,
	})
}

func (a *app) purgeTestUsersHandler(sinks sink.Factory) (*purgetestusers.Handler, error) {
	admin, err := a.adminClient()
	if err != nil {
		return nil, err
	}
	return purgetestusers.NewHandler(purgetestusers.HandlerOptions{
		AppConfig:     a.cfg,
		Admin:         admin,
		Sinks:         sinks,
		Observability: a.obs,
		Logger:        a.log,
	})
}

func (a *app) exportDataHandler() (*exportdata.Handler, error) {
	return exportdata.NewHandler(exportdata.HandlerOptions{
		AppConfig:     a.cfg,
		Engine:        a.engine,
		Observability: a.obs,
		Logger:        a.log,
	})
}

// sinks returns the sink factory for this process. A memory sink is shared
// so that rows written by one operation are visible to the next.
func (a *app) sinks() sink.Factory {
	if a.cfg.Sink.Type == config.SinkMemory {
		return sink.Static(sink.NewMemory())
	}
	return sink.NewFactory(a.cfg)
}

func (a *app) print(v interface{}) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
