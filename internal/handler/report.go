package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"researchai/internal/model"
	"researchai/pkg/logger"

	"github.com/gin-gonic/gin"
)

// ReportRenderer 把对话记录渲染为 PDF
type ReportRenderer interface {
	Render(ctx context.Context, entries []model.TranscriptEntry) ([]byte, error)
}

type ReportHandler struct {
	renderer     ReportRenderer
	filename     string
	exposeErrors bool
}

// NewReportHandler 创建报告处理器；exposeErrors 为 true 时 500 响应附带 details
func NewReportHandler(renderer ReportRenderer, filename string, exposeErrors bool) *ReportHandler {
	return &ReportHandler{
		renderer:     renderer,
		filename:     filename,
		exposeErrors: exposeErrors,
	}
}

func (h *ReportHandler) GeneratePDF(c *gin.Context) {
	entries, err := bindTranscript(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Error:   "Bad request",
			Message: err.Error(),
		})
		return
	}

	pdf, err := h.renderer.Render(c.Request.Context(), entries)
	if err != nil {
		logger.WithField("request_id", c.GetString(requestIDKey)).Errorf("PDF generation error: %v", err)
		resp := model.ErrorResponse{Error: "PDF generation failed"}
		if h.exposeErrors {
			resp.Details = err.Error()
		}
		c.JSON(http.StatusInternalServerError, resp)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", h.filename))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

var (
	errHistoryNotArray = errors.New("chatHistory must be provided as an array")
	errEntryRole       = errors.New("every chatHistory entry needs a role")
)

// bindTranscript 只接受 chatHistory 为数组、且每条记录都带 role 的请求体
func bindTranscript(c *gin.Context) ([]model.TranscriptEntry, error) {
	var req model.ReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, errHistoryNotArray
	}

	raw := bytes.TrimSpace(req.ChatHistory)
	if len(raw) == 0 || raw[0] != '[' {
		return nil, errHistoryNotArray
	}

	var entries []model.TranscriptEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, errHistoryNotArray
	}
	for _, entry := range entries {
		if strings.TrimSpace(entry.Role) == "" {
			return nil, errEntryRole
		}
	}
	if entries == nil {
		entries = []model.TranscriptEntry{}
	}
	return entries, nil
}
