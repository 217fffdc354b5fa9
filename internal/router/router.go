package router

import (
	"log"

	"automarket/config"
	"automarket/internal/events"
	"automarket/internal/handler"
	"automarket/internal/middleware"
	"automarket/internal/repository"
	"automarket/internal/service"
	"automarket/internal/ws"
	"automarket/pkg/cloudinary"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Deps are the optional outside services. Any of them may be nil.
type Deps struct {
	Cloud     cloudinary.Client
	Publisher events.Publisher
	Redis     *redis.Client
	FCM       *service.FCMService
}

func Setup(cfg *config.Config, db *gorm.DB, deps Deps) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := handler.RegisterValidators(); err != nil {
		log.Fatalf("validators: %v", err)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	var limiter middleware.Limiter
	if deps.Redis != nil {
		limiter = middleware.NewRedisRateLimiter(deps.Redis, cfg.RateLimit.Limit, cfg.RateLimit.Window)
		log.Printf("[ratelimit] using redis")
	} else {
		limiter = middleware.NewInMemoryRateLimiter(cfg.RateLimit.Limit, cfg.RateLimit.Window)
	}
	r.Use(middleware.RateLimit(limiter))

	// Repositories
	userRepo := repository.NewUserRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)
	listingRepo := repository.NewListingRepository(db)
	txRepo := repository.NewTransactionRepository(db)
	favRepo := repository.NewFavoriteRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	adminRepo := repository.NewAdminRepository(db)

	hub := ws.NewHub()
	pushers := []service.Pusher{service.HubPusher{Hub: hub}}
	if deps.FCM != nil {
		pushers = append(pushers, deps.FCM)
		log.Printf("[FCM] Push notifications enabled")
	} else {
		log.Printf("[FCM] Push notifications disabled: set FIREBASE_SERVICE_ACCOUNT_PATH to enable")
	}
	var uploader service.ImageUploader
	if deps.Cloud != nil {
		uploader = deps.Cloud
	}

	// Services
	authSvc := service.NewAuthService(cfg, userRepo)
	notifSvc := service.NewNotificationService(notificationRepo, userRepo, pushers...)
	listingSvc := service.NewListingService(listingRepo, catalogRepo, favRepo, notifSvc, deps.Publisher, uploader, cfg.Cloudinary.Folder)
	marketSvc := service.NewMarketplaceService(listingRepo, txRepo, userRepo, favRepo, reviewRepo, notifSvc, deps.Publisher)
	catalogSvc := service.NewCatalogService(catalogRepo, uploader, cfg.Cloudinary.Folder)
	reviewSvc := service.NewReviewService(reviewRepo, listingRepo)
	messageSvc := service.NewMessageService(messageRepo, listingRepo, notifSvc)
	adminSvc := service.NewAdminService(adminRepo, notifSvc)

	// Handlers
	authHandler := handler.NewAuthHandler(authSvc)
	googleOAuthHandler := handler.NewGoogleOAuthHandler(cfg, authSvc)
	catalogHandler := handler.NewCatalogHandler(catalogSvc, listingSvc)
	listingHandler := handler.NewListingHandler(listingSvc, marketSvc, reviewSvc, messageSvc)
	txHandler := handler.NewTransactionHandler(marketSvc)
	meHandler := handler.NewMeHandler(authSvc, listingSvc, messageSvc)
	notificationHandler := handler.NewNotificationHandler(notifSvc)
	adminHandler := handler.NewAdminHandler(adminSvc, reviewSvc)

	authMw := middleware.AuthRequired(&cfg.JWT)
	optionalMw := middleware.OptionalAuth(&cfg.JWT)
	staffMw := middleware.StaffRequired()

	api := r.Group("/api/v1")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/refresh", authHandler.Refresh)
			authGroup.PATCH("/change-password", authMw, authHandler.ChangePassword)
			authGroup.GET("/google", googleOAuthHandler.Redirect)
			authGroup.GET("/google/callback", googleOAuthHandler.Callback)
			authGroup.POST("/google/token", googleOAuthHandler.Token)
		}

		api.GET("/home", catalogHandler.Home)
		api.GET("/brands", catalogHandler.Brands)
		api.GET("/brands/:id/models", catalogHandler.Models)

		api.GET("/listings", listingHandler.Search)
		api.GET("/listings/:id", optionalMw, listingHandler.Detail)
		listings := api.Group("/listings")
		listings.Use(authMw)
		{
			listings.POST("", listingHandler.Create)
			listings.PATCH("/:id", listingHandler.Update)
			listings.DELETE("/:id", listingHandler.Delete)
			listings.POST("/:id/image", listingHandler.UploadImage)
			listings.POST("/:id/gallery", listingHandler.AddGalleryImage)
			listings.POST("/:id/favorite", listingHandler.ToggleFavorite)
			listings.POST("/:id/reviews", listingHandler.Review)
			listings.POST("/:id/messages", listingHandler.Contact)
			listings.POST("/:id/purchase", listingHandler.Purchase)
		}
		api.POST("/transactions/:id/confirm", authMw, txHandler.Confirm)

		me := api.Group("/me")
		me.Use(authMw)
		{
			me.GET("/profile", meHandler.Profile)
			me.GET("/listings", meHandler.Listings)
			me.GET("/favorites", meHandler.Favorites)
			me.GET("/purchases", txHandler.Purchases)
			me.GET("/sales", txHandler.Sales)
			me.GET("/messages", meHandler.Messages)
			me.GET("/notifications", notificationHandler.Inbox)
			me.GET("/notifications/unread-count", notificationHandler.UnreadCount)
			me.PUT("/notifications/:id/read", notificationHandler.MarkRead)
			me.POST("/notifications/read-all", notificationHandler.MarkAllRead)
			me.POST("/fcm-token", meHandler.RegisterFCMToken)
		}

		admin := api.Group("/admin")
		admin.Use(authMw, staffMw)
		{
			admin.GET("/dashboard", adminHandler.Dashboard)
			admin.GET("/reviews", adminHandler.PendingReviews)
			admin.PATCH("/reviews/:id", adminHandler.ModerateReview)
			admin.POST("/brands", catalogHandler.CreateBrand)
			admin.POST("/brands/:id/models", catalogHandler.CreateModel)
			admin.POST("/brands/:id/logo", catalogHandler.UploadLogo)
		}
	}

	r.GET("/ws/notifications", ws.UpgradeNotificationsWS(&cfg.JWT, hub, notifSvc))

	return r
}
