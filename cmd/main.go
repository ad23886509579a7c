package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sharath018/invitation-rsvp-backend/config"
	"github.com/sharath018/invitation-rsvp-backend/database"
	"github.com/sharath018/invitation-rsvp-backend/internal/auditlog"
	"github.com/sharath018/invitation-rsvp-backend/internal/auth"
	"github.com/sharath018/invitation-rsvp-backend/internal/changefeed"
	"github.com/sharath018/invitation-rsvp-backend/internal/invitation"
	"github.com/sharath018/invitation-rsvp-backend/internal/notification"
	"github.com/sharath018/invitation-rsvp-backend/internal/rsvp"
	"github.com/sharath018/invitation-rsvp-backend/internal/storage"
	"github.com/sharath018/invitation-rsvp-backend/internal/survey"
	"github.com/sharath018/invitation-rsvp-backend/routes"
	"github.com/sharath018/invitation-rsvp-backend/utils"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// @title Invitation & RSVP API
// @version 1.0
// @description Organizers publish invitations, guests answer them, organizers follow the responses live.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg := config.Load()
	logger := utils.InitLogger(cfg.IsProduction())
	defer logger.Sync()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		logger.Fatal("database connection failed", zap.Error(err))
	}

	logger.Info("running database migrations")
	if err := db.AutoMigrate(
		&auth.User{},
		&auditlog.AuditLog{},
		&invitation.Invitation{},
		&rsvp.Response{},
		&survey.Question{},
		&survey.Choice{},
		&survey.Answer{},
		&notification.NotificationLog{},
	); err != nil {
		logger.Fatal("auto-migrate failed", zap.Error(err))
	}

	deps := routes.Dependencies{
		DB:       db,
		AuditSvc: auditlog.NewService(auditlog.NewRepository(db), logger),
		Mailer:   notification.NewEmailSender(cfg, logger),
		Log:      logger,
	}

	// Redis backs the change feed, the public cache, reset tokens and the
	// limiter. Outside production the process runs without it.
	var publishers changefeed.Fanout
	if err := utils.InitRedis(cfg); err != nil {
		if cfg.IsProduction() {
			logger.Fatal("redis init failed", zap.Error(err))
		}
		logger.Warn("redis unavailable, using in-process feed and token store", zap.Error(err))
		broker := changefeed.NewBroker()
		deps.Feed = broker
		deps.Tokens = utils.NewMemoryTokenStore()
		publishers = append(publishers, broker)
	} else {
		feed := changefeed.NewRedisFeed(utils.RedisClient, logger)
		deps.Redis = utils.RedisClient
		deps.Feed = feed
		deps.Tokens = utils.NewTokenStore(utils.RedisClient)
		publishers = append(publishers, feed)
	}

	kafkaEnabled := utils.InitializeKafka(cfg)
	if kafkaEnabled {
		publishers = append(publishers, changefeed.NewKafkaPublisher(utils.KafkaWriter))
	}
	deps.Publisher = publishers

	if cfg.StorageDriver == "firebase" {
		if err := utils.InitFirebase(cfg); err != nil {
			logger.Fatal("firebase init failed", zap.Error(err))
		}
		deps.Uploader = storage.NewFirebaseUploader(utils.StorageClient, cfg.FirebaseBucket)
	} else {
		if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
			logger.Fatal("create upload directory", zap.String("dir", cfg.UploadDir), zap.Error(err))
		}
		deps.Uploader = storage.NewLocalUploader(cfg.UploadDir, cfg.BaseURL)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "Cache-Control"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	notificationSvc, err := routes.Setup(router, cfg, deps)
	if err != nil {
		logger.Fatal("route setup failed", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var consumer *notification.Consumer
	consumerDone := make(chan struct{})
	if kafkaEnabled {
		consumer = notification.NewConsumer(utils.NewKafkaReader(cfg), notificationSvc, logger)
		go func() {
			defer close(consumerDone)
			if err := consumer.Run(ctx); err != nil {
				logger.Error("notification consumer stopped", zap.Error(err))
			}
		}()
	} else {
		close(consumerDone)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		// request contexts end with the process so SSE streams close on shutdown
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	go func() {
		logger.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	shutdownErr := srv.Shutdown(shutdownCtx)
	<-consumerDone
	if consumer != nil {
		shutdownErr = multierr.Append(shutdownErr, consumer.Close())
	}
	if utils.KafkaWriter != nil {
		shutdownErr = multierr.Append(shutdownErr, utils.KafkaWriter.Close())
	}
	if utils.RedisClient != nil {
		shutdownErr = multierr.Append(shutdownErr, utils.RedisClient.Close())
	}
	shutdownErr = multierr.Append(shutdownErr, database.Close(db))

	if shutdownErr != nil {
		logger.Error("shutdown finished with errors", zap.Error(shutdownErr))
		return
	}
	logger.Info("shutdown complete")
}
