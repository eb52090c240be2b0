package middleware

import (
	"errors"
	"strings"
	"time"

	"digo_messenger/utils"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// LegacyUserHeader 旧客户端直接声明身份用的请求头
const LegacyUserHeader = "X-User-Id"

var (
	jwtSecret       []byte
	tokenTTL        = 7 * 24 * time.Hour
	trustUserHeader bool
)

// ErrEmptySecret 未配置签名密钥
var ErrEmptySecret = errors.New("jwt secret is empty")

// InitAuth 初始化认证中间件，密钥不能为空
func InitAuth(secret string, ttl time.Duration, trustHeader bool) error {
	if secret == "" {
		return ErrEmptySecret
	}
	jwtSecret = []byte(secret)
	if ttl > 0 {
		tokenTTL = ttl
	}
	trustUserHeader = trustHeader
	return nil
}

// Claims JWT 声明
type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// GenerateToken 签发登录 Token
func GenerateToken(userID string) (string, error) {
	if len(jwtSecret) == 0 {
		return "", ErrEmptySecret
	}
	now := time.Now()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(jwtSecret)
}

// ValidateToken 验证 JWT Token
func ValidateToken(tokenString string) (string, error) {
	if len(jwtSecret) == 0 {
		return "", ErrEmptySecret
	}
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid && claims.UserID != "" {
		return claims.UserID, nil
	}

	return "", jwt.ErrTokenInvalidClaims
}

var errMissingIdentity = errors.New("missing identity")

// resolveIdentity 依次尝试 Bearer Token 与（开启时）X-User-Id 头
func resolveIdentity(c *gin.Context) (string, error) {
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			return "", jwt.ErrTokenMalformed
		}
		return ValidateToken(parts[1])
	}

	if trustUserHeader {
		if userID := strings.TrimSpace(c.GetHeader(LegacyUserHeader)); userID != "" {
			return userID, nil
		}
	}

	return "", errMissingIdentity
}

// AuthMiddleware HTTP API 认证中间件
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := resolveIdentity(c)
		if err != nil {
			utils.Unauthorized(c, "Unauthorized")
			c.Abort()
			return
		}

		c.Set("user_id", userID)
		c.Next()
	}
}

// GetUserID 从上下文获取用户 ID
func GetUserID(c *gin.Context) (string, bool) {
	userID, exists := c.Get("user_id")
	if !exists {
		return "", false
	}
	id, ok := userID.(string)
	return id, ok && id != ""
}
