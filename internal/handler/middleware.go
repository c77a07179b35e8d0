package handler

import (
	"net/http"
	"strings"

	"researchai/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
)

// RequestID 透传或生成请求 ID，并写回响应头
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// only 拒绝除 method 以外的请求方法，不会调用 next
func only(method string, next gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != method {
			c.Header("Allow", method)
			c.AbortWithStatusJSON(http.StatusMethodNotAllowed, model.ErrorResponse{
				Error:   "Method not allowed",
				Message: "Only " + method + " requests are accepted",
			})
			return
		}
		next(c)
	}
}
