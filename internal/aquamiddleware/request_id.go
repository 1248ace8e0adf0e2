// Package aquamiddleware file: internal/aquamiddleware/request_id.go
package aquamiddleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDHeader 请求标识头，调用方可自带，否则由网关生成
const RequestIDHeader = "X-Request-Id"

// requestIDKey 是 gin 上下文中的请求标识键
const requestIDKey = "request_id"

// RequestID 为每个请求分配唯一标识并回写到响应头，
// 便于把访问日志与上游排障记录关联起来。
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Writer.Header().Set(RequestIDHeader, id)
		c.Next()
	}
}

// RequestIDFrom 取出当前请求的标识；中间件未启用时返回空串。
func RequestIDFrom(c *gin.Context) string {
	return c.GetString(requestIDKey)
}
