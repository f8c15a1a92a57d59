package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/example/taskmanager/config"
	"github.com/example/taskmanager/database"
	"github.com/example/taskmanager/logutil"
	"github.com/example/taskmanager/middleware/metrics"
	"github.com/example/taskmanager/middleware/ratelimit"
	"github.com/example/taskmanager/modules/activity"
	"github.com/example/taskmanager/modules/api"
	"github.com/example/taskmanager/modules/auth"
	"github.com/example/taskmanager/modules/task"
	"github.com/example/taskmanager/seed"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

const shutdownTimeout = 30 * time.Second

func main() {
	app := &cli.App{
		Name:   "taskmanager",
		Usage:  "Task management REST API",
		Flags:  config.Flags(),
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Start the HTTP API",
				Flags:  config.Flags(),
				Action: serve,
			},
			{
				Name:   "seed",
				Usage:  "Replace all data with the demo users and tasks",
				Flags:  config.Flags(),
				Action: runSeed,
			},
		},
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	if err := app.RunContext(ctx, os.Args); err != nil {
		log.Error().Err(err).Msg("Application failed")
		os.Exit(1)
	}
}

// setup reads the configuration and builds the logger shared by both commands.
func setup(c *cli.Context) (config.Config, zerolog.Logger, func(), error) {
	cfg := config.FromContext(c)
	logger, closer, err := logutil.New(logutil.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		File:   cfg.LogFile,
	})
	if err != nil {
		return cfg, logger, nil, err
	}
	release := func() { _ = closer.Close() }

	warnings, err := cfg.Validate()
	if err != nil {
		release()
		return cfg, logger, nil, fmt.Errorf("invalid configuration: %w", err)
	}
	for _, w := range warnings {
		logger.Warn().Msg(w)
	}
	return cfg, logger, release, nil
}

func serve(c *cli.Context) error {
	cfg, logger, release, err := setup(c)
	if err != nil {
		return err
	}
	defer release()

	ctx := logutil.WithLogger(c.Context, logger)
	db, err := database.Open(ctx, cfg.DatabasePath, logger)
	if err != nil {
		return err
	}

	monoLevel := mono.LogLevelInfo
	if cfg.LogLevel == "error" {
		monoLevel = mono.LogLevelError
	}
	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(shutdownTimeout),
		mono.WithLogLevel(monoLevel),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		_ = database.Close(db)
		return fmt.Errorf("failed to create application: %w", err)
	}

	apiOpts := api.Options{
		Addr:        cfg.Addr,
		CORSOrigins: cfg.CORSOrigins,
		Metrics:     metrics.New(),
	}

	// Independent modules first, then dependent modules.
	app.Register(auth.NewModule(db, auth.Options{
		JWT: auth.JWTConfig{
			SecretKey:     cfg.JWTSecret,
			TokenDuration: cfg.TokenTTL,
			Issuer:        cfg.JWTIssuer,
		},
		BcryptCost: cfg.BcryptCost,
	}, logger))
	app.Register(task.NewModule(db, logger))
	app.Register(activity.NewModule(logger))
	if cfg.RedisAddr != "" {
		rl := ratelimit.NewModule(logger,
			ratelimit.WithRedisAddr(cfg.RedisAddr),
			ratelimit.WithRedisPassword(cfg.RedisPassword),
			ratelimit.WithLimit(cfg.RateLimit, cfg.RateLimitWindow),
		)
		app.Register(rl)
		apiOpts.RateLimit = rl.Handler()
	} else {
		logger.Info().Msg("REDIS_ADDR not set, rate limiting disabled")
	}
	app.Register(api.NewModule(apiOpts, logger))

	if err := app.Start(ctx); err != nil {
		_ = database.Close(db)
		return fmt.Errorf("failed to start application: %w", err)
	}
	logger.Info().Str("addr", cfg.Addr).Msg("Task manager started")

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		shutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				logger.Info().Msg("Graceful shutdown initiated...")
				if err := app.Stop(ctx); err != nil {
					return err
				}
				return database.Close(db)
			},
		},
	)

	exitCode := <-wait
	logger.Info().Int("code", exitCode).Msg("Application exited")
	if exitCode != 0 {
		return cli.Exit("shutdown failed", exitCode)
	}
	return nil
}

func runSeed(c *cli.Context) error {
	cfg, logger, release, err := setup(c)
	if err != nil {
		return err
	}
	defer release()

	ctx := logutil.WithLogger(c.Context, logger)
	db, err := database.Open(ctx, cfg.DatabasePath, logger)
	if err != nil {
		return err
	}
	defer database.Close(db)

	logger.Info().Msg("Start seeding...")
	if err := seed.Run(ctx, db, auth.NewPasswordHasherWithCost(cfg.BcryptCost)); err != nil {
		return fmt.Errorf("seed failed: %w", err)
	}
	logger.Info().Msg("Seeding finished")
	return nil
}

