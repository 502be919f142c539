package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ngclient/ngutils/internal/config"
	"github.com/ngclient/ngutils/internal/errors"
	"github.com/ngclient/ngutils/pkg/middleware"
	"github.com/ngclient/ngutils/pkg/server"
	"github.com/ngclient/ngutils/pkg/snapshot"
)

func serveCmd(configPath *string) *cobra.Command {
	var (
		addr    string
		backend string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long: `Start the page model API and the watch feed.

Configuration is read from ngutils.json, then NGUTILS_* environment
variables, then flags.

Examples:
  ngutils serve
  ngutils serve --addr=:9090
  NGUTILS_SNAPSHOT_BACKEND=s3 NGUTILS_S3_BUCKET=models ngutils serve`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			if backend != "" {
				cfg.Snapshot.Backend = backend
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg, cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address (default from config)")
	cmd.Flags().StringVar(&backend, "snapshot", "", "Snapshot backend: none, memory or s3")

	return cmd
}

// loadConfig reads the config file, then applies environment overrides.
// Without an explicit path a missing ./ngutils.json means defaults.
func loadConfig(path string) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if path != "" {
		cfg, err = config.LoadFile(path)
	} else {
		cfg, err = config.Load(".")
		if stderrors.Is(err, errors.New("N030")) {
			cfg, err = config.New(), nil
		}
	}
	if err != nil {
		return nil, err
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel()}
	if cfg.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// newStore builds the configured snapshot store. A nil store disables
// snapshots.
func newStore(ctx context.Context, cfg *config.Config) (snapshot.Store, error) {
	switch cfg.Snapshot.Backend {
	case config.BackendMemory:
		return snapshot.NewMemoryStore(), nil
	case config.BackendS3:
		s3cfg := cfg.Snapshot.S3
		client, err := snapshot.NewS3Client(ctx, s3cfg.Region, s3cfg.Endpoint, s3cfg.UsePathStyle)
		if err != nil {
			return nil, errors.New("N031").WithDetail("cannot configure S3 client").Wrap(err)
		}
		return snapshot.NewS3Store(client, s3cfg.Bucket, s3cfg.Prefix), nil
	case config.BackendNone, "":
		return nil, nil
	default:
		return nil, errors.New("N031").WithDetailf("snapshot.backend %q", cfg.Snapshot.Backend)
	}
}

func serverConfig(cfg *config.Config) *server.ServerConfig {
	sc := server.DefaultServerConfig()
	sc.Address = cfg.Server.Addr
	sc.ReadTimeout = cfg.ReadTimeout()
	sc.WriteTimeout = cfg.WriteTimeout()
	sc.ShutdownTimeout = cfg.ShutdownTimeout()
	sc.CheckOrigin = server.AllowedOriginsCheck(cfg.Server.AllowedOrigins)
	sc.PageTitle = cfg.Page.Title
	sc.PageLang = cfg.Page.Lang
	return sc
}

func runServe(ctx context.Context, cfg *config.Config, logOut io.Writer) error {
	logger := newLogger(cfg, logOut)
	slog.SetDefault(logger)

	store, err := newStore(ctx, cfg)
	if err != nil {
		return err
	}

	opts := []server.Option{server.WithLogger(logger)}
	if store != nil {
		opts = append(opts, server.WithStore(store))
	}
	if cfg.Metrics.Enabled {
		m := middleware.NewMetrics(middleware.WithNamespace(cfg.Metrics.Namespace))
		opts = append(opts, server.WithMetrics(m, nil))
	}
	if cfg.Tracing.Enabled {
		opts = append(opts, server.WithTracing(middleware.WithTracerName(cfg.Tracing.TracerName)))
	}

	logger.Info("starting ngutils",
		"version", version,
		"addr", cfg.Server.Addr,
		"snapshot", cfg.Snapshot.Backend,
		"metrics", cfg.Metrics.Enabled,
		"tracing", cfg.Tracing.Enabled,
	)
	if p := cfg.Path(); p != "" {
		logger.Info("config loaded", "path", p)
	}

	srv := server.New(serverConfig(cfg), opts...)
	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}
