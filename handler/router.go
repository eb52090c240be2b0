package handler

import (
	"net/http"

	"digo_messenger/middleware"
	"digo_messenger/service"
	"digo_messenger/utils"

	"github.com/gin-gonic/gin"
)

// Services 路由依赖的全部服务
type Services struct {
	Users         *service.UserService
	Relationships *service.RelationshipService
	Chats         *service.ChatService
	Typing        *service.TypingService
	Settings      *service.SystemSettingsService
}

// SetupRouter 注册所有路由
func SetupRouter(svc Services) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true

	r.Use(gin.Logger())
	r.Use(middleware.ErrorHandlerMiddleware())
	r.Use(middleware.CORSMiddleware())

	r.NoMethod(utils.MethodNotAllowed)
	r.NoRoute(func(c *gin.Context) {
		utils.NotFound(c, "Not found")
	})

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authHandler := NewAuthHandler(svc.Users)
	msgHandler := NewMessengerHandler(svc.Chats, svc.Relationships, svc.Typing)
	adminHandler := NewAdminHandler(svc.Users, svc.Settings)

	api := r.Group("/api/v1")
	{
		// 注册、登录（不需要认证）
		api.POST("/auth", authHandler.Handle)

		// 私信、好友、正在输入
		messages := api.Group("/messages")
		messages.Use(middleware.AuthMiddleware())
		messages.Use(ActiveUserMiddleware(svc.Users))
		messages.GET("", msgHandler.HandleQuery)
		messages.POST("", msgHandler.HandleCommand)

		// 管理后台
		admin := api.Group("/admin")
		admin.Use(middleware.AuthMiddleware())
		admin.Use(AdminAuthMiddleware(svc.Users))
		admin.GET("", adminHandler.HandleQuery)
		admin.POST("", adminHandler.HandleCommand)
	}

	return r
}
