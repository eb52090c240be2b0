package main

import (
	"context"
	"log"
	"time"

	"digo_messenger/config"
	"digo_messenger/handler"
	"digo_messenger/middleware"
	"digo_messenger/repository"
	"digo_messenger/service"
	"digo_messenger/utils"

	"github.com/gin-gonic/gin"
)

func init() {
	// 服务端统一使用 UTC
	time.Local = time.UTC
}

func main() {
	cfg := config.Load()
	gin.SetMode(cfg.GinMode)

	// 初始化数据库（含建表）
	if err := utils.InitDB(cfg.DatabaseURL); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer utils.CloseDB()

	db := utils.GetDB()
	userRepo := repository.NewUserRepository(db)
	relRepo := repository.NewRelationshipRepository(db)
	msgRepo := repository.NewMessageRepository(db)

	// 正在输入状态：配置了 Redis 就放 Redis，否则放数据库
	var typingRepo repository.TypingRepository = repository.NewTypingRepository(db)
	rdb, err := utils.InitRedis(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	if rdb != nil {
		defer utils.CloseRedis()
		typingRepo = repository.NewRedisTypingRepository(rdb, 2*cfg.TypingWindow)
	}

	if err := middleware.InitAuth(cfg.JWTSecret, cfg.TokenTTL, cfg.TrustUserHeader); err != nil {
		log.Fatalf("Failed to init auth: %v (set JWT_SECRET)", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	sysSvc := service.NewSystemSettingsService(repository.NewSettingsRepository(db))
	if err := sysSvc.InitDefaultSettings(ctx); err != nil {
		log.Printf("Warning: Failed to init system settings: %v", err)
	}

	relSvc := service.NewRelationshipService(relRepo, userRepo)
	botSvc := service.NewBotService(cfg.Bot.UserID, cfg.Bot.Username, userRepo, msgRepo, relSvc)
	if err := botSvc.EnsureAccount(ctx); err != nil {
		log.Printf("Warning: Failed to create bot account: %v", err)
	}

	r := handler.SetupRouter(handler.Services{
		Users:         service.NewUserService(userRepo, botSvc, sysSvc),
		Relationships: relSvc,
		Chats:         service.NewChatService(msgRepo, relRepo, userRepo),
		Typing:        service.NewTypingService(typingRepo, sysSvc, cfg.TypingWindow),
		Settings:      sysSvc,
	})

	log.Printf("🚀 digo_messenger starting on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
