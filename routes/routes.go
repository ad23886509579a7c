package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sharath018/invitation-rsvp-backend/config"
	"github.com/sharath018/invitation-rsvp-backend/internal/auditlog"
	"github.com/sharath018/invitation-rsvp-backend/internal/auth"
	"github.com/sharath018/invitation-rsvp-backend/internal/changefeed"
	"github.com/sharath018/invitation-rsvp-backend/internal/geocode"
	"github.com/sharath018/invitation-rsvp-backend/internal/invitation"
	"github.com/sharath018/invitation-rsvp-backend/internal/ledger"
	"github.com/sharath018/invitation-rsvp-backend/internal/notification"
	"github.com/sharath018/invitation-rsvp-backend/internal/reports"
	"github.com/sharath018/invitation-rsvp-backend/internal/rsvp"
	"github.com/sharath018/invitation-rsvp-backend/internal/share"
	"github.com/sharath018/invitation-rsvp-backend/internal/storage"
	"github.com/sharath018/invitation-rsvp-backend/internal/survey"
	"github.com/sharath018/invitation-rsvp-backend/middleware"
	"go.uber.org/zap"
	"gorm.io/gorm"

	_ "github.com/sharath018/invitation-rsvp-backend/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Dependencies are the process-wide resources built in main
type Dependencies struct {
	DB *gorm.DB
	// Redis is nil when running without Redis
	Redis     *redis.Client
	Tokens    auth.TokenStore
	Feed      changefeed.Subscriber
	Publisher changefeed.Publisher
	Uploader  storage.Uploader
	Mailer    *notification.EmailSender
	AuditSvc  auditlog.Service
	Log       *zap.Logger
}

// Setup registers every route. It returns the notification service so main
// can feed it from the Kafka change stream.
func Setup(r *gin.Engine, cfg *config.Config, deps Dependencies) (notification.Service, error) {
	log := deps.Log

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	if cfg.StorageDriver != "firebase" {
		r.Static("/uploads", cfg.UploadDir)
	}

	globalLimit, err := middleware.RateLimiter(cfg.RateLimit, "limiter:global", deps.Redis, log)
	if err != nil {
		return nil, err
	}
	submitLimit, err := middleware.RateLimiter(cfg.SubmitRateLimit, "limiter:submit", deps.Redis, log)
	if err != nil {
		return nil, err
	}

	api := r.Group("/api/v1")
	api.Use(middleware.AuditMiddleware()) // client IP for audit logs and limiter keys
	api.Use(globalLimit)

	auditSvc := deps.AuditSvc
	auditHandler := auditlog.NewHandler(auditSvc)

	// ========== Auth ==========
	authRepo := auth.NewRepository(deps.DB)
	authSvc := auth.NewService(authRepo, deps.Tokens, deps.Mailer, auditSvc, cfg, log)
	authHandler := auth.NewHandler(authSvc)
	requireAuth := middleware.AuthMiddleware(authSvc)

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/refresh", authHandler.Refresh)
		authGroup.POST("/forgot-password", authHandler.ForgotPassword)
		authGroup.POST("/reset-password", authHandler.ResetPassword)
		authGroup.POST("/logout", requireAuth, authHandler.Logout)
		authGroup.GET("/me", requireAuth, authHandler.Me)
	}

	// ========== Invitations ==========
	invOpts := []invitation.Option{
		invitation.WithLogger(log),
		invitation.WithMaxUploadBytes(cfg.MaxUploadBytes),
		invitation.WithPublisher(deps.Publisher),
	}
	if deps.Redis != nil {
		invOpts = append(invOpts, invitation.WithCache(invitation.NewRedisCache(deps.Redis)))
	}
	invitationSvc := invitation.NewService(invitation.NewRepository(deps.DB), deps.Uploader, auditSvc, invOpts...)
	invitationHandler := invitation.NewHandler(invitationSvc)

	// ========== Survey ==========
	surveyRepo := survey.NewRepository(deps.DB)
	surveySvc := survey.NewService(surveyRepo, invitationSvc, auditSvc, log)
	surveyHandler := survey.NewHandler(surveySvc)

	// ========== Responses ==========
	responseStore := rsvp.NewStore(rsvp.NewRepository(deps.DB), deps.Publisher, log)
	rsvpSvc := rsvp.NewService(responseStore, surveyRepo, invitationSvc, surveySvc, auditSvc, log)
	rsvpHandler := rsvp.NewHandler(rsvpSvc)
	ledgerHandler := ledger.NewHandler(invitationSvc, responseStore, deps.Feed, log)

	// ========== Reports, sharing, geocoding ==========
	reportsSvc := reports.NewService(reports.NewRepository(deps.DB), invitationSvc, surveySvc, reports.NewReportExporter(), auditSvc, log)
	reportsHandler := reports.NewHandler(reportsSvc)
	shareHandler := share.NewHandler(invitationSvc, cfg.BaseURL, log)
	geocodeClient := geocode.NewClient(cfg.GeocodeURL, cfg.GeocodeUserAgent, cfg.GeocodeRPS, log)
	geocodeHandler := geocode.NewHandler(geocode.NewSearcher(geocodeClient))

	notificationSvc := notification.NewService(notification.NewRepository(deps.DB), invitationSvc, authSvc, deps.Mailer, auditSvc, cfg.FrontendURL, log)
	notificationHandler := notification.NewHandler(notificationSvc)

	// ========== Public (guests) ==========
	public := api.Group("/public")
	{
		public.GET("/invitations/:id", rsvpHandler.GetPublicInvitation)
		public.POST("/invitations/:id/responses", submitLimit, rsvpHandler.SubmitResponse)
	}

	// ========== Organizer ==========
	protected := api.Group("/")
	protected.Use(requireAuth)

	invitations := protected.Group("/invitations")
	{
		invitations.POST("", invitationHandler.CreateInvitation)
		invitations.GET("", invitationHandler.ListInvitations)
		invitations.GET("/:id", invitationHandler.GetInvitation)
		invitations.PUT("/:id", invitationHandler.UpdateInvitation)
		invitations.DELETE("/:id", invitationHandler.DeleteInvitation)
		invitations.POST("/:id/background", invitationHandler.UploadBackground)

		invitations.GET("/:id/questions", surveyHandler.GetQuestions)
		invitations.PUT("/:id/questions", surveyHandler.ReplaceQuestions)

		invitations.GET("/:id/responses", ledgerHandler.ListResponses)
		invitations.GET("/:id/responses/stream", ledgerHandler.StreamResponses)
		invitations.PATCH("/:id/responses/:responseId", rsvpHandler.UpdateResponse)
		invitations.DELETE("/:id/responses/:responseId", rsvpHandler.DeleteResponse)

		invitations.GET("/:id/export", reportsHandler.ExportResponses)
		invitations.GET("/:id/share", shareHandler.GetShareLinks)
		invitations.GET("/:id/qr", shareHandler.GetQRCode)
	}

	protected.GET("/geocode", geocodeHandler.SearchAddress)
	protected.GET("/notifications", notificationHandler.GetMyNotifications)

	auditRoutes := protected.Group("/auditlogs")
	{
		auditRoutes.GET("", auditHandler.GetAuditLogs)
		auditRoutes.GET("/:id", auditHandler.GetAuditLogByID)
	}

	return notificationSvc, nil
}
