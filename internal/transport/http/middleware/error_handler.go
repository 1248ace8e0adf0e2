// Package middleware file: internal/transport/http/middleware/error_handler.go
package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"AquaBridge/internal/core/port"
)

// ErrorHandlingMiddleware 是一个Gin中间件，用于集中处理错误。
// 处理器只负责 c.Error(err)，状态码在这里统一裁定。
func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		// 只处理最后一个错误，它通常是根本原因
		err := c.Errors.Last().Err

		// 参数绑定或验证错误
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "请求参数验证失败", "details": ve.Error()})
			return
		}

		switch {
		case errors.Is(err, port.ErrEntityNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})

		case errors.Is(err, port.ErrUnknownField), errors.Is(err, port.ErrBadPagination):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		default:
			slog.Error("请求处理失败", "path", c.Request.URL.Path, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "服务器内部错误"})
		}
	}
}
