package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"task-assignment-api/internal/auth"
	"task-assignment-api/internal/cache"
	"task-assignment-api/internal/config"
	"task-assignment-api/internal/database"
	"task-assignment-api/internal/logging"
	"task-assignment-api/internal/realtime"
	"task-assignment-api/internal/routes"
	"task-assignment-api/internal/service"
	"task-assignment-api/internal/taskid"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

func main() {
	configPath := flag.String("config", os.Getenv("TASKAPP_CONFIG"), "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load config")
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to configure logging")
	}
	if logger.GetLevel() < logrus.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}

	// Init database
	db, err := database.Open(cfg.Database.Path, cfg.Database.LogLevel)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}
	if err := database.Migrate(db); err != nil {
		logger.WithError(err).Fatal("Failed to migrate database")
	}
	logger.WithField("path", cfg.Database.Path).Info("Database connected and migrated")

	tokens, err := auth.NewTokenManager(auth.TokenConfig{
		Secret:   cfg.JWT.Secret,
		Issuer:   cfg.JWT.Issuer,
		Audience: cfg.JWT.Audience,
		TTL:      cfg.JWT.TTL,
	})
	if err != nil {
		logger.WithError(err).Fatal("Failed to configure tokens")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := realtime.NewHub()
	var (
		events  realtime.Publisher = realtime.NewLocalPublisher(hub, logger)
		members cache.MemberCache  = cache.Noop{}
	)
	if cfg.Redis.URL != "" {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			logger.WithError(err).Fatal("Invalid redis.url")
		}
		rc := redis.NewClient(opts)
		defer rc.Close()
		if err := rc.Ping(ctx).Err(); err != nil {
			logger.WithError(err).Fatal("Failed to reach redis")
		}
		events = realtime.NewRedisPublisher(rc, cfg.Redis.Channel, logger)
		members = cache.NewRedisMemberCache(rc, cfg.Redis.CacheTTL)
		go realtime.Subscribe(ctx, rc, cfg.Redis.Channel, hub, logger)
		logger.WithField("channel", cfg.Redis.Channel).Info("Redis cache and event fan-out enabled")
	}

	ids := taskid.NewGenerator(db, taskid.Options{
		MaxAttempts: cfg.Counter.MaxAttempts,
		Backoff:     cfg.Counter.Backoff,
	})
	users := service.NewUserService(db, tokens, members, logger)
	notifications := service.NewNotificationService(db, events, logger)
	tasks := service.NewTaskService(db, ids, notifications, users, events, logger)

	// Setup the routes (public and protected routes)
	ginRoutes := routes.SetupRoutes(routes.Deps{
		Tokens:        tokens,
		Users:         users,
		Tasks:         tasks,
		Notifications: notifications,
		Hub:           hub,
		Logger:        logger,
	})

	srv := &http.Server{
		Addr:              cfg.Server.Port,
		Handler:           ginRoutes,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.WithField("port", cfg.Server.Port).Info("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Failed to start server")
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Graceful shutdown failed")
	}
}
