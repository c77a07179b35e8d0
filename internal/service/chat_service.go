package service

import (
	"context"
	"errors"

	"researchai/internal/model"
	"researchai/internal/telemetry"
	"researchai/pkg/logger"

	"github.com/cloudwego/eino/schema"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// CredentialFunc 在每次请求时解析 API 凭证，空字符串表示未配置
type CredentialFunc func() string

// ChatService 把单条用户消息转发给补全接口。它不保存任何会话状态，
// 每次调用只发送这一条 user 消息。
type ChatService struct {
	credential CredentialFunc
	factory    model.Factory
	tracer     trace.Tracer
	requests   metric.Int64Counter
}

func NewChatService(credential CredentialFunc, factory model.Factory) *ChatService {
	requests, err := otel.Meter(telemetry.InstrumentationName).Int64Counter(
		"researchai.chat.requests",
		metric.WithDescription("chat proxy calls by outcome"),
	)
	if err != nil {
		logger.Warnf("failed to create chat counter: %v", err)
	}

	return &ChatService{
		credential: credential,
		factory:    factory,
		tracer:     otel.Tracer(telemetry.InstrumentationName),
		requests:   requests,
	}
}

// Connected 报告当前是否能解析到凭证
func (s *ChatService) Connected() bool {
	return s.credential() != ""
}

// Complete 返回补全接口第一个候选的原文
func (s *ChatService) Complete(ctx context.Context, message string) (content string, err error) {
	ctx, span := s.tracer.Start(ctx, "chat.complete")
	defer func() {
		s.record(ctx, err)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	// 凭证是前置条件，空白消息也照常转发
	apiKey := s.credential()
	if apiKey == "" {
		return "", ErrCredentialMissing
	}

	generator, err := s.factory(ctx, apiKey)
	if err != nil {
		return "", &UpstreamError{Err: err}
	}

	reply, err := generator.Generate(ctx, []*schema.Message{schema.UserMessage(message)})
	if err != nil {
		return "", &UpstreamError{Err: err}
	}
	if reply == nil {
		return "", &UpstreamError{Err: model.ErrNoChoices}
	}

	span.SetAttributes(attribute.Int("chat.reply_length", len(reply.Content)))
	return reply.Content, nil
}

func (s *ChatService) record(ctx context.Context, err error) {
	if s.requests == nil {
		return
	}
	outcome := "ok"
	switch {
	case err == nil:
	case errors.Is(err, ErrCredentialMissing):
		outcome = "unconfigured"
	default:
		outcome = "upstream_error"
	}
	s.requests.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}
