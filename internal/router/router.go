package router

import (
	"log"
	"time"

	"dojolibre/config"
	"dojolibre/internal/handler"
	"dojolibre/internal/middleware"
	"dojolibre/internal/repository"
	"dojolibre/internal/service"
	"dojolibre/internal/ws"
	"dojolibre/pkg/cloudinary"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func Setup(cfg *config.Config, db *gorm.DB, cloud cloudinary.Client) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	// Skip gin.Logger() to reduce log noise; use gin.Default() if you need request logging
	r.Use(middleware.RateLimit(middleware.NewInMemoryRateLimiter(cfg.RateLimit.RequestsPerMinute, time.Minute)))
	attendanceLimiter := middleware.NewInMemoryRateLimiter(cfg.RateLimit.AttendancePerMinute, time.Minute)

	// Repositories
	userRepo := repository.NewUserRepository(db)
	locRepo := repository.NewLocationRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	planRepo := repository.NewPlanRepository(db)
	billingRepo := repository.NewBillingRepository(db)
	followRepo := repository.NewFollowRepository(db)
	inviteRepo := repository.NewInviteRepository(db)
	changelogRepo := repository.NewChangelogRepository(db)

	occupancyHub := ws.NewOccupancyHub()

	// Services
	authSvc := service.NewAuthService(cfg, userRepo, inviteRepo)
	fcmSvc := service.NewFCMService(cfg.Firebase.ServiceAccountPath)
	if fcmSvc != nil {
		log.Printf("[fcm] push notifications enabled")
	} else if cfg.Firebase.ServiceAccountPath != "" {
		log.Printf("[fcm] push notifications disabled: failed to init (check service account file)")
	} else {
		log.Printf("[fcm] push notifications disabled: set FIREBASE_SERVICE_ACCOUNT_PATH to enable")
	}
	notifSvc := service.NewNotificationService(notificationRepo, userRepo, occupancyHub.Hub, fcmSvc)
	attendanceSvc := service.NewAttendanceService(db, attendanceRepo, locRepo, notifSvc, occupancyHub)
	statsSvc := service.NewStatsService(attendanceRepo, billingRepo)

	// Handlers
	authHandler := handler.NewAuthHandler(authSvc)
	googleOAuthHandler := handler.NewGoogleOAuthHandler(cfg, authSvc)
	meHandler := handler.NewMeHandler(userRepo, followRepo, planRepo)
	locationHandler := handler.NewLocationHandler(locRepo, statsSvc, changelogRepo)
	attendanceHandler := handler.NewAttendanceHandler(attendanceSvc, statsSvc, attendanceRepo, userRepo)
	messageHandler := handler.NewMessageHandler(messageRepo, followRepo, userRepo, notifSvc, occupancyHub.Hub)
	notificationHandler := handler.NewNotificationHandler(notificationRepo)
	planHandler := handler.NewPlanHandler(planRepo, changelogRepo)
	billingHandler := handler.NewBillingHandler(billingRepo, notifSvc)
	followHandler := handler.NewFollowHandler(followRepo, userRepo, notifSvc)
	adminHandler := handler.NewAdminHandler(cfg, userRepo, inviteRepo, changelogRepo)
	uploadHandler := handler.NewUploadHandler(cloud)

	authMw := middleware.AuthRequired(&cfg.JWT)

	api := r.Group("/api/v1")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/logout", authMw, authHandler.Logout)
			authGroup.PATCH("/change-password", authMw, authHandler.ChangePassword)
			authGroup.POST("/refresh", authHandler.Refresh)
			authGroup.GET("/google", googleOAuthHandler.Redirect)
			authGroup.GET("/google/callback", googleOAuthHandler.Callback)
			authGroup.POST("/google/token", googleOAuthHandler.Token)
		}

		me := api.Group("/me")
		me.Use(authMw)
		{
			me.GET("/profile", meHandler.Get)
			me.PATCH("/profile", meHandler.Update)
			me.POST("/fcm-token", meHandler.RegisterFCMToken)
			me.GET("/attendance", attendanceHandler.MyHistory)
			me.GET("/attendance/status", attendanceHandler.Status)
			me.GET("/attendance/stats", attendanceHandler.MyStats)
			me.GET("/billing", billingHandler.ListMine)
			me.GET("/notifications", notificationHandler.List)
			me.GET("/notifications/unread-count", notificationHandler.UnreadCount)
			me.PUT("/notifications/:id/read", notificationHandler.MarkRead)
			me.PUT("/notifications/read-all", notificationHandler.MarkAllRead)
			me.GET("/followers", followHandler.Followers)
			me.GET("/following", followHandler.Following)
		}

		locations := api.Group("/locations")
		locations.Use(authMw)
		{
			locations.GET("", locationHandler.List)
			locations.GET("/nearby", locationHandler.Nearby)
			locations.GET("/:id", locationHandler.Get)
			locations.GET("/:id/stats", locationHandler.Stats)
			locations.GET("/:id/attendees", attendanceHandler.CurrentAttendees)
			locations.POST("/:id/check-in", middleware.MemberRequired(), middleware.RateLimitPerUser(attendanceLimiter), attendanceHandler.CheckIn)
			locations.POST("/:id/check-out", middleware.MemberRequired(), middleware.RateLimitPerUser(attendanceLimiter), attendanceHandler.CheckOut)
			locations.POST("", middleware.RequireRole("PARTNER", "ADMIN", "SUPER_ADMIN"), locationHandler.Create)
			locations.PATCH("/:id", middleware.RequireRole("PARTNER", "ADMIN", "SUPER_ADMIN"), locationHandler.Update)
			locations.DELETE("/:id", middleware.RequireRole("PARTNER", "ADMIN", "SUPER_ADMIN"), locationHandler.Delete)
		}

		api.GET("/users/:id", authMw, meHandler.PublicProfile)
		api.POST("/users/:id/follow", authMw, followHandler.Follow)
		api.DELETE("/users/:id/follow", authMw, followHandler.Unfollow)
		api.POST("/users/:id/block", authMw, followHandler.Block)
		api.DELETE("/users/:id/block", authMw, followHandler.Unblock)

		messages := api.Group("/messages")
		messages.Use(authMw)
		{
			messages.POST("", messageHandler.Send)
			messages.GET("/with/:id", messageHandler.Conversation)
			messages.PUT("/:id/read", messageHandler.MarkRead)
			messages.GET("/unread-count", messageHandler.UnreadCount)
		}

		api.GET("/plans", authMw, planHandler.List)
		api.POST("/uploads/image", authMw, uploadHandler.Image)

		admin := api.Group("/admin")
		admin.Use(authMw, middleware.AdminRequired())
		{
			admin.GET("/users", adminHandler.ListUsers)
			admin.PATCH("/users/:id", adminHandler.UpdateUser)
			admin.GET("/users/:id/stats", attendanceHandler.UserStats)
			admin.POST("/invites", adminHandler.CreateInvite)
			admin.GET("/invites", adminHandler.ListInvites)
			admin.DELETE("/invites/:id", adminHandler.RevokeInvite)
			admin.GET("/changelog", adminHandler.Changelog)
			admin.POST("/plans", planHandler.Create)
			admin.PATCH("/plans/:id", planHandler.Update)
			admin.DELETE("/plans/:id", planHandler.Delete)
			admin.POST("/billing", billingHandler.Create)
			admin.PATCH("/billing/:id/status", billingHandler.UpdateStatus)
		}
	}

	r.GET("/ws/events", ws.UpgradeEventsWS(&cfg.JWT, occupancyHub))

	return r
}
