package handler

import (
	"context"
	"errors"
	"net/http"

	"researchai/internal/model"
	"researchai/internal/service"
	"researchai/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Completer 是聊天代理依赖的补全服务
type Completer interface {
	Connected() bool
	Complete(ctx context.Context, message string) (string, error)
}

type ChatHandler struct {
	chatService Completer
}

func NewChatHandler(chatService Completer) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
	}
}

// Status 报告后端是否已配置凭证
func (h *ChatHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, model.StatusResponse{Connected: h.chatService.Connected()})
}

// Chat 转发单条消息并返回第一个候选的原文
func (h *ChatHandler) Chat(c *gin.Context) {
	var req model.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Error:   "Bad request",
			Message: "body must be a JSON object with a message field",
		})
		return
	}
	if req.Message == nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Error:   "Bad request",
			Message: "message must be provided as a string",
		})
		return
	}

	content, err := h.chatService.Complete(c.Request.Context(), *req.Message)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.ChatResponse{Content: content})
}

func (h *ChatHandler) respondError(c *gin.Context, err error) {
	var upstream *service.UpstreamError
	switch {
	case errors.Is(err, service.ErrCredentialMissing):
		logger.Errorf("chat request rejected: %v", err)
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{
			Error: "API key not configured",
		})
	case errors.As(err, &upstream):
		logger.WithField("request_id", c.GetString(requestIDKey)).Errorf("API Error: %v", upstream.Err)
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{
			Error:   "API request failed",
			Details: upstream.Err.Error(),
		})
	default:
		logger.Errorf("chat request failed: %v", err)
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{
			Error:   "API request failed",
			Details: err.Error(),
		})
	}
}
