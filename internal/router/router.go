package router

import (
	"log"
	"time"

	"zoodate/config"
	"zoodate/internal/handler"
	"zoodate/internal/middleware"
	"zoodate/internal/repository"
	"zoodate/internal/service"
	"zoodate/internal/ws"
	"zoodate/pkg/cloudinary"
	"zoodate/pkg/entitlement"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func Setup(cfg *config.Config, db *gorm.DB, cloud cloudinary.Client) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RateLimit(middleware.NewInMemoryRateLimiter(100, 60*time.Second)))

	// Repositories
	userRepo := repository.NewUserRepository(db)
	petRepo := repository.NewPetRepository(db)
	likeRepo := repository.NewLikeRepository(db)
	matchRepo := repository.NewMatchRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	discoveryRepo := repository.NewDiscoveryRepository(db)

	chatHub := ws.NewChatHub()

	// Services
	authSvc := service.NewAuthService(cfg, userRepo)
	fcmSvc := service.NewFCMService(cfg.Firebase.ServiceAccountPath)
	if fcmSvc != nil {
		log.Printf("[FCM] Push notifications enabled")
	} else if cfg.Firebase.ServiceAccountPath != "" {
		log.Printf("[FCM] Push notifications disabled: failed to init (check service account file)")
	} else {
		log.Printf("[FCM] Push notifications disabled: set FIREBASE_SERVICE_ACCOUNT_PATH to enable")
	}
	notifSvc := service.NewNotificationService(notificationRepo, userRepo, fcmSvc)
	identitySvc := service.NewIdentityService(petRepo)
	matchSvc := service.NewMatchService(matchRepo)
	likeSvc := service.NewLikeService(likeRepo, petRepo, matchSvc, notifSvc)
	chatSvc := service.NewChatService(messageRepo, matchSvc, petRepo, chatHub, notifSvc)
	entitleClient := entitlement.NewClient("", cfg.RevenueCat.APIKey, cfg.RevenueCat.EntitlementID)

	// Handlers
	authHandler := handler.NewAuthHandler(authSvc)
	googleOAuthHandler := handler.NewGoogleOAuthHandler(cfg, authSvc)
	meHandler := handler.NewMeHandler(userRepo, identitySvc, entitleClient)
	petHandler := handler.NewPetHandler(petRepo, matchSvc, identitySvc, cloud)
	discoveryHandler := handler.NewDiscoveryHandler(discoveryRepo, &cfg.Discovery)
	likeHandler := handler.NewLikeHandler(likeSvc, identitySvc)
	chatHandler := handler.NewChatHandler(chatSvc, matchSvc, identitySvc)
	notificationHandler := handler.NewNotificationHandler(notificationRepo)

	authMw := middleware.AuthRequired(&cfg.JWT)

	api := r.Group("/api/v1")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/refresh", authHandler.Refresh)
			authGroup.GET("/google", googleOAuthHandler.Redirect)
			authGroup.GET("/google/callback", googleOAuthHandler.Callback)
			authGroup.POST("/google/token", googleOAuthHandler.Token)
		}

		me := api.Group("/me")
		me.Use(authMw)
		{
			me.GET("/profile", meHandler.GetProfile)
			me.PATCH("/profile", meHandler.UpdateProfile)
			me.POST("/push-token", meHandler.RegisterPushToken)
			me.GET("/entitlement", meHandler.GetEntitlement)
			me.GET("/matches", chatHandler.ListMatches)
			me.GET("/conversations", chatHandler.ListConversations)
			me.GET("/notifications", notificationHandler.List)
			me.PUT("/notifications/:id/read", notificationHandler.MarkRead)
		}

		api.POST("/pets", authMw, petHandler.Create)
		api.GET("/pets/:id", authMw, petHandler.Get)
		api.DELETE("/pets/:id", authMw, petHandler.Deactivate)
		api.POST("/pets/:id/photos", authMw, petHandler.UploadPhoto)

		api.GET("/discover", authMw, discoveryHandler.Discover)
		api.POST("/likes", authMw, likeHandler.Create)

		api.GET("/matches/:match_id/messages", authMw, chatHandler.GetMessages)
		api.POST("/matches/:match_id/messages", authMw, chatHandler.SendMessage)
		api.POST("/matches/:match_id/read", authMw, chatHandler.MarkRead)
	}

	r.GET("/ws/chat", handler.UpgradeChatWS(&cfg.JWT, chatHub, chatSvc, matchSvc, identitySvc))

	return r
}
