package middleware

import (
	"log"

	"digo_messenger/utils"

	"github.com/gin-gonic/gin"
)

// ErrorHandlerMiddleware 统一错误处理中间件
// 捕获 panic 和 handler 通过 c.Error 挂上的错误，只影响当前请求
func ErrorHandlerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Printf("[ERROR] Panic recovered: %s %s: %v", c.Request.Method, c.Request.URL.Path, err)

				if !c.Writer.Written() {
					utils.InternalServerError(c, "internal server error")
				}
				c.Abort()
			}
		}()

		c.Next()

		for _, err := range c.Errors {
			log.Printf("[ERROR] %s %s: %v", c.Request.Method, c.Request.URL.Path, err.Err)
		}

		if len(c.Errors) > 0 && !c.Writer.Written() {
			utils.InternalServerError(c, "internal server error")
		}
	}
}
