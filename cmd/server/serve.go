package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/So-lol/ace-website-sub001/internal/api"
	"github.com/So-lol/ace-website-sub001/internal/blob"
	"github.com/So-lol/ace-website-sub001/internal/common"
	"github.com/So-lol/ace-website-sub001/internal/db"
	"github.com/So-lol/ace-website-sub001/internal/docstore"
	"github.com/So-lol/ace-website-sub001/internal/logging"
	"github.com/So-lol/ace-website-sub001/internal/metrics"
	"github.com/So-lol/ace-website-sub001/internal/routes"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/multierr"
)

const shutdownTimeout = 15 * time.Second

func newServeCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), v)
		},
	}
	cmd.Flags().String("http-addr", ":8080", "listen address")
	_ = v.BindPFlag("http_addr", cmd.Flags().Lookup("http-addr"))
	return cmd
}

func serve(ctx context.Context, v *viper.Viper) (err error) {
	cfg, flush, err := setup(v)
	if err != nil {
		return err
	}
	defer flush()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logging.Info("ACE backend starting up",
		"environment", cfg.Env,
		"timestamp", time.Now().Format(time.RFC3339),
	)

	// Connect to DB with GORM
	orm, err := db.InitPostgresORM(cfg.Postgres.DSN())
	if err != nil {
		logging.Error("Failed to connect to Postgres (GORM)", "error", err.Error())
		return err
	}
	ormPool, err := orm.DB()
	if err != nil {
		return fmt.Errorf("unwrap gorm pool: %w", err)
	}
	logging.Info("Connected to Postgres (GORM)")

	// Connect to DB with sqlx
	sqlDB, err := db.InitPostgres(ctx, cfg.Postgres.DSN())
	if err != nil {
		logging.Error("Failed to connect to Postgres (sqlx)", "error", err.Error())
		return multierr.Append(err, ormPool.Close())
	}
	logging.Info("Connected to Postgres (sqlx)")

	redisClient := common.NewRedisClient(cfg.Redis)
	defer func() {
		err = multierr.Combine(err, redisClient.Close(), sqlDB.Close(), ormPool.Close())
	}()

	blobs, err := blob.NewOSStore(cfg.Blob.Root, cfg.Blob.PublicURL)
	if err != nil {
		return err
	}

	metricsReg := metrics.NewMetricsRegistry()
	deps := api.InitDependencies(api.Infra{
		ORM:   orm,
		SQL:   sqlDB,
		Redis: redisClient,
		Docs:  docstore.NewRedisStore(redisClient, metricsReg),
		Blobs: blobs,
	}, cfg, metricsReg)
	defer func() { err = multierr.Append(err, deps.Cache.Close()) }()

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           routes.RegisterRoutes(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logging.Info("Server starting", "addr", cfg.HTTPAddr, "environment", cfg.Env)
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logging.Info("Shutting down", "timeout", shutdownTimeout.String())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
