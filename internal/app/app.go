package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/fieldops/task_distributor/internal/config"
	v1 "github.com/fieldops/task_distributor/internal/controller/http/v1"
	"github.com/fieldops/task_distributor/internal/infrastructure/report_generator"
	"github.com/fieldops/task_distributor/internal/pipeline"
	"github.com/fieldops/task_distributor/internal/repository/postgresql"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	log *slog.Logger
	cfg *config.Config
}

func New(log *slog.Logger, cfg *config.Config) *App {
	return &App{
		log: log,
		cfg: cfg,
	}
}

func (a *App) Run(ctx context.Context) error {
	a.log.InfoContext(ctx, "establishing postgresql connection",
		slog.String("postgresql_host", a.cfg.PostgreSQL.Host),
		slog.String("postgresql_port", a.cfg.PostgreSQL.Port),
		slog.String("postgresql_dbname", a.cfg.PostgreSQL.DBName),
	)

	pool, err := postgresql.NewConnection(ctx, a.log, a.cfg.PostgreSQL)
	if err != nil {
		return fmt.Errorf("failed to create db connection: %w", err)
	}
	defer pool.Close()

	agentsRepository := postgresql.NewAgentsRepository(pool)
	distributionsRepository := postgresql.NewDistributionsRepository(pool)
	tasksRepository := postgresql.NewTasksRepository(pool)
	txManager := postgresql.NewTxManager(pool)

	orchestrator := pipeline.NewOrchestrator(a.log, tasksRepository, distributionsRepository, txManager)
	service := pipeline.NewService(a.log, agentsRepository, distributionsRepository, distributionsRepository, orchestrator)

	server := v1.NewServer(
		a.cfg.HTTP,
		a.cfg.JWTSecret,
		v1.NewUploadsHandler(service),
		v1.NewDistributionsHandler(distributionsRepository, tasksRepository, agentsRepository, report_generator.New()),
	)

	return a.serve(ctx, server)
}

func (a *App) serve(ctx context.Context, server *v1.Server) error {
	erg, ctx := errgroup.WithContext(ctx)

	erg.Go(func() error {
		a.log.InfoContext(ctx, "starting http server",
			slog.String("addr", net.JoinHostPort(a.cfg.HTTP.Host, a.cfg.HTTP.Port)),
		)

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server error: %w", err)
		}

		return nil
	})

	erg.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		return server.Shutdown(shutdownCtx)
	})

	if err := erg.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		a.log.ErrorContext(ctx, "server stopped with error", slog.String("err", err.Error()))

		return err
	}

	a.log.InfoContext(ctx, "server stopped gracefully")

	return nil
}
