package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          string
	DatabaseURL   string
	RedisURL      string // 为空时正在输入状态存数据库
	RedisPassword string
	RedisDB       int
	JWTSecret     string
	TokenTTL      time.Duration // 登录 Token 有效期
	TypingWindow  time.Duration // 正在输入状态的有效窗口
	GinMode       string

	// TrustUserHeader 兼容旧客户端：允许直接用 X-User-Id 头声明身份
	TrustUserHeader bool

	Bot struct {
		UserID   string
		Username string
	}
}

func Load() *Config {
	// 加载 .env 文件
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	tokenTTLHours, _ := strconv.Atoi(getEnv("TOKEN_TTL_HOURS", "168"))
	typingWindowSec, _ := strconv.Atoi(getEnv("TYPING_WINDOW_SECONDS", "5"))
	trustHeader, _ := strconv.ParseBool(getEnv("TRUST_USER_HEADER", "false"))

	if tokenTTLHours <= 0 {
		tokenTTLHours = 168
	}
	if typingWindowSec <= 0 {
		typingWindowSec = 5
	}

	cfg := &Config{
		Port:            getEnv("PORT", "8080"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		RedisURL:        os.Getenv("REDIS_URL"),
		RedisPassword:   os.Getenv("REDIS_PASSWORD"),
		RedisDB:         redisDB,
		JWTSecret:       os.Getenv("JWT_SECRET"),
		TokenTTL:        time.Duration(tokenTTLHours) * time.Hour,
		TypingWindow:    time.Duration(typingWindowSec) * time.Second,
		GinMode:         getEnv("GIN_MODE", "release"),
		TrustUserHeader: trustHeader,
	}

	cfg.Bot.UserID = getEnv("BOT_USER_ID", "BOTDGO")
	cfg.Bot.Username = getEnv("BOT_USERNAME", "TeleDigo")

	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
