package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/academy-shift-go/internal/config"
	appHTTP "github.com/cmlabs-hris/academy-shift-go/internal/handler/http"
	"github.com/cmlabs-hris/academy-shift-go/internal/pkg/cron"
	"github.com/cmlabs-hris/academy-shift-go/internal/pkg/database"
	"github.com/cmlabs-hris/academy-shift-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/academy-shift-go/internal/pkg/sse"
	"github.com/cmlabs-hris/academy-shift-go/internal/repository/postgresql"
	shiftService "github.com/cmlabs-hris/academy-shift-go/internal/service/shift"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	logLevel := config.SlogLevel(cfg.App.LogLevel)
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL())
	if err != nil {
		return fmt.Errorf("error connecting to database: %w", err)
	}
	defer db.Close()

	if err := db.EnsureSchema(ctx); err != nil {
		return err
	}

	policy, err := cfg.Shift.Policy()
	if err != nil {
		return err
	}

	shiftRepo := postgresql.NewShiftRepository(db)
	failedSyncRepo := postgresql.NewFailedShiftSyncRepository(db)

	hub := sse.NewHub()
	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)

	shiftSvc := shiftService.NewShiftService(shiftRepo, failedSyncRepo, hub, policy)
	autoClockoutSvc := shiftService.NewAutoClockoutService(shiftRepo, hub, policy)

	shiftHandler := appHTTP.NewShiftHandler(shiftSvc, JWTService, hub)
	cronHandler := appHTTP.NewCronHandler(autoClockoutSvc)

	router := appHTTP.NewRouter(JWTService, shiftHandler, cronHandler, appHTTP.RouterOptions{
		AllowedOrigins: cfg.App.AllowedOrigins,
		Env:            cfg.App.Env,
		Version:        cfg.App.Version,
		CronSecret:     cfg.Shift.CronSecret,
		LogLevel:       logLevel,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	if cfg.Shift.SweepInterval > 0 {
		scheduler := cron.NewScheduler()
		cron.NewShiftJobs(autoClockoutSvc, cfg.Shift.SweepInterval).RegisterJobs(scheduler)
		scheduler.Start()
		g.Go(func() error {
			<-gctx.Done()
			scheduler.Stop()
			return nil
		})
	}

	g.Go(func() error {
		slog.Info("Server running", "addr", server.Addr, "env", cfg.App.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		// SSE streams stay open until the client leaves; cut them off at the deadline
		if err := server.Shutdown(shutdownCtx); err != nil {
			return server.Close()
		}
		return nil
	})

	return g.Wait()
}
