// The wschedd command implements the Wrale Scheduler server
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/wrale/wrale-scheduler/internal/wschedd/auth"
	authpg "github.com/wrale/wrale-scheduler/internal/wschedd/auth/postgres"
	"github.com/wrale/wrale-scheduler/internal/wschedd/config"
	contentpg "github.com/wrale/wrale-scheduler/internal/wschedd/content/postgres"
	"github.com/wrale/wrale-scheduler/internal/wschedd/database"
	devicepg "github.com/wrale/wrale-scheduler/internal/wschedd/device/postgres"
	"github.com/wrale/wrale-scheduler/internal/wschedd/events"
	eventsmqtt "github.com/wrale/wrale-scheduler/internal/wschedd/events/mqtt"
	eventsredis "github.com/wrale/wrale-scheduler/internal/wschedd/events/redis"
	"github.com/wrale/wrale-scheduler/internal/wschedd/events/websocket"
	"github.com/wrale/wrale-scheduler/internal/wschedd/logging"
	"github.com/wrale/wrale-scheduler/internal/wschedd/metrics"
	"github.com/wrale/wrale-scheduler/internal/wschedd/ratelimit"
	ratelimitredis "github.com/wrale/wrale-scheduler/internal/wschedd/ratelimit/redis"
	"github.com/wrale/wrale-scheduler/internal/wschedd/recurrence"
	schedulepg "github.com/wrale/wrale-scheduler/internal/wschedd/schedule/postgres"
	"github.com/wrale/wrale-scheduler/internal/wschedd/schedule/service"
	"github.com/wrale/wrale-scheduler/internal/wschedd/settings"
	settingsredis "github.com/wrale/wrale-scheduler/internal/wschedd/settings/redis"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	envFile := flag.String("env-file", ".env", "dotenv file loaded before configuration")
	var tokens tokenFlags
	flag.Int64Var(&tokens.issueFor, "issue-token-for", 0, "issue an API token for the user ID, print it and exit")
	flag.Int64Var(&tokens.revokeFor, "revoke-tokens-for", 0, "revoke every API token of the user ID and exit")
	flag.Parse()

	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "failed to load %s: %v\n", *envFile, err)
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, zlog := logging.New(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger, zlog, tokens); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}

// components holds what the router needs
type components struct {
	cfg       *config.Config
	auth      *auth.Service
	schedule  *service.Service
	devices   *devicepg.Repository
	hub       *websocket.Hub
	limiter   *ratelimit.Service
	readiness []func(context.Context) error
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger, zlog zerolog.Logger, tokens tokenFlags) error {
	db, err := database.Open(ctx, cfg.Database.DSN(), database.PoolOptions{
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		ConnectRetries:  cfg.Database.ConnectRetries,
		RetryDelay:      time.Second,
	}, logger)
	if err != nil {
		return fmt.Errorf("setting up database: %w", err)
	}
	defer db.Close()

	authService := auth.NewService(authpg.NewRepository(db, logger), cfg.Auth.TokenExpiry, logger)
	if tokens.set() {
		return runTokenCommand(ctx, authService, tokens, os.Stdout)
	}

	c := &components{
		cfg:       cfg,
		auth:      authService,
		devices:   devicepg.NewRepository(db, logger),
		readiness: []func(context.Context) error{db.PingContext},
	}

	var (
		settingsStore  settings.Store  = settings.NewMemoryStore()
		rateLimitStore ratelimit.Store = ratelimit.NewMemoryStore()
		publishers     []events.Publisher
	)

	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Username: cfg.Redis.Username,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
		settingsStore = settingsredis.NewStore(rdb)
		rateLimitStore = ratelimitredis.NewStore(rdb)
		publishers = append(publishers, eventsredis.NewPublisher(rdb, cfg.MQTT.TopicPrefix))
		c.readiness = append(c.readiness, func(ctx context.Context) error { return rdb.Ping(ctx).Err() })
		logger.Info("redis enabled", "addr", cfg.Redis.Addr)
	} else {
		logger.Warn("redis not configured, settings are kept in memory")
	}

	if cfg.MQTT.Broker != "" {
		client, err := eventsmqtt.Connect(eventsmqtt.Options{
			Broker:      cfg.MQTT.Broker,
			ClientID:    cfg.MQTT.ClientID,
			Username:    cfg.MQTT.Username,
			Password:    cfg.MQTT.Password,
			TopicPrefix: cfg.MQTT.TopicPrefix,
			QoS:         cfg.MQTT.QoS,
		}, logger)
		if err != nil {
			return err
		}
		publisher := eventsmqtt.NewPublisher(client, cfg.MQTT.TopicPrefix, cfg.MQTT.QoS)
		defer publisher.Close()
		publishers = append(publishers, publisher)
	}

	c.hub = websocket.NewHub(logger, originChecker(cfg.CORS.AllowedOrigins))
	publishers = append(publishers, c.hub)

	c.limiter = ratelimit.NewService(rateLimitStore, logger)
	if cfg.RateLimit.Enabled {
		if err := c.limiter.RegisterDefaultLimits(cfg.RateLimit.Requests, cfg.RateLimit.Period, cfg.RateLimit.BurstSize); err != nil {
			return fmt.Errorf("configuring rate limits: %w", err)
		}
	}

	loc, err := cfg.Schedule.Location()
	if err != nil {
		return fmt.Errorf("loading schedule timezone: %w", err)
	}

	c.schedule = service.New(service.Config{
		Repository: schedulepg.NewRepository(db, logger),
		Devices:    c.devices,
		Content:    contentpg.NewRepository(db),
		Settings:   settingsStore,
		Expander: recurrence.NewExpander(
			recurrence.WithLocation(loc),
			recurrence.WithLimit(cfg.Schedule.MaxOccurrences),
		),
		Publisher:      events.NewMulti(logger, publishers...),
		Metrics:        metrics.NewRecorder(),
		Logger:         logger,
		MaxQueryWindow: cfg.Schedule.MaxQueryWindow,
	})

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      newRouter(c, logger, zlog),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c.hub.Run(gctx)
		return nil
	})
	g.Go(func() error {
		logger.Info("starting server", "addr", server.Addr, "timezone", loc.String())
		var err error
		if cfg.Server.TLSCert != "" && cfg.Server.TLSKey != "" {
			err = server.ListenAndServeTLS(cfg.Server.TLSCert, cfg.Server.TLSKey)
		} else {
			err = server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("server stopped")
	return nil
}
