package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/campuscarry/campuscarry-api/config"
	"github.com/campuscarry/campuscarry-api/controllers"
	"github.com/campuscarry/campuscarry-api/events"
	"github.com/campuscarry/campuscarry-api/logger"
	"github.com/campuscarry/campuscarry-api/middleware"
	"github.com/campuscarry/campuscarry-api/realtime"
	"github.com/campuscarry/campuscarry-api/services"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const sinkQueueSize = 256

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "campuscarry-api: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	log, err := logger.New(cfg.LogLevel, cfg.GoEnv)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	if cfg.EnvFile != "" {
		log.Info("loaded environment file", zap.String("file", cfg.EnvFile))
	}

	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		return err
	}
	if err := config.Migrate(db); err != nil {
		return err
	}
	log.Info("database ready", zap.String("driver", cfg.DatabaseDriver))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	hub := realtime.NewHub(log)

	var flush []func()
	var bridge *realtime.RedisBridge
	if cfg.RedisURL != "" {
		bridge = realtime.NewRedisBridge(realtime.NewRedisClient(cfg.RedisURL), realtime.DefaultChannel, hub, log)
		g.Go(func() error { return bridge.Run(ctx) })
	}
	realtimeNotifier, closeRealtime := realtimeSink(hub, bridge, log)
	flush = append(flush, closeRealtime)
	if bridge != nil {
		flush = append(flush, func() { _ = bridge.Close() })
	}
	fanout := events.NewFanout(log).Add("realtime", realtimeNotifier)
	if cfg.KafkaEnabled() {
		kafkaSink := events.NewKafkaNotifier(cfg.KafkaBrokers, cfg.KafkaTopic)
		queue := events.NewAsync("kafka", kafkaSink, sinkQueueSize, log)
		fanout.Add("kafka", queue)
		flush = append(flush, func() {
			queue.Close()
			_ = kafkaSink.Close()
		})
	}
	if cfg.ArchiveEnabled() {
		store, err := services.NewS3Service(ctx, services.S3Options{
			Region:          cfg.AWSRegion,
			Bucket:          cfg.AWSS3Bucket,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretAccessKey,
		})
		if err != nil {
			return err
		}
		queue := events.NewAsync("s3-archive", services.NewEventArchive(store), sinkQueueSize, log)
		fanout.Add("s3-archive", queue)
		flush = append(flush, queue.Close)
	}
	log.Info("event sinks configured", zap.Strings("sinks", fanout.Sinks()))

	auth, err := middleware.EnsureValidToken(cfg, log)
	if err != nil {
		return err
	}

	router, err := setupRouter(cfg, log, db, fanout, hub, auth)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g.Go(func() error {
		log.Info("server listening", zap.String("addr", server.Addr), zap.String("env", cfg.GoEnv))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		err := server.Shutdown(shutdownCtx)

		hub.Close()
		for _, f := range flush {
			f()
		}
		if err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		log.Info("server stopped gracefully")
		return nil
	})

	return g.Wait()
}

// realtimeSink returns how events reach websocket rooms. Without a bridge they go straight to the
// local hub. With one they are queued for the Redis round-trip, and the returned func drains the queue.
func realtimeSink(hub *realtime.Hub, bridge *realtime.RedisBridge, log *zap.Logger) (events.Notifier, func()) {
	if bridge == nil {
		return hub, func() {}
	}
	queue := events.NewAsync("redis-bridge", bridge, sinkQueueSize, log)
	return queue, queue.Close
}

// setupRouter builds the gin engine with every service wired to the given notifier
func setupRouter(cfg *config.Config, log *zap.Logger, db *gorm.DB, notifier events.Notifier, hub *realtime.Hub, auth gin.HandlerFunc) (*gin.Engine, error) {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	} else if cfg.IsTest() {
		gin.SetMode(gin.TestMode)
	}

	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.RequestLogger(log),
		middleware.Metrics(),
		cors.New(cors.Config{
			AllowOrigins:     []string{cfg.FrontendURL},
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
			ExposeHeaders:    []string{middleware.RequestIDHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
	)

	users := services.NewUserService(db, log)
	var auth0 *services.Auth0Service
	if cfg.UsesAuth0() {
		auth0 = services.NewAuth0Service(cfg.Auth0Domain)
	}

	err := controllers.RegisterRoutes(router, auth, controllers.Dependencies{
		DB:       db,
		Users:    users,
		Orders:   services.NewOrderService(db, log),
		Offers:   services.NewOfferService(db, log),
		Matches:  services.NewMatchService(db, notifier, log),
		Messages: services.NewMessageService(db, notifier, log),
		Reviews:  services.NewReviewService(db, log),
		Auth0:    auth0,

		RequiredScope: cfg.RequiredScope,
	})
	if err != nil {
		return nil, err
	}

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/ws", realtime.ServeWS(hub, realtime.NewUpgrader(cfg.FrontendURL), log))
	return router, nil
}
