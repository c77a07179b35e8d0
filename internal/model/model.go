package model

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"researchai/internal/config"
	"researchai/internal/utils"
	"researchai/pkg/logger"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino-ext/components/model/qwen"
	einoModel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

const (
	DefaultOpenAIBaseURL = "https://api.perplexity.ai"
	DefaultQwenBaseURL   = "https://dashscope.aliyuncs.com/compatible-mode/v1"
)

// Generator 是补全调用的最小接口，eino 的各家 ChatModel 都满足它
type Generator interface {
	Generate(ctx context.Context, input []*schema.Message, opts ...einoModel.Option) (*schema.Message, error)
}

// Factory 用每次请求解析出的凭证构造 Generator
type Factory func(ctx context.Context, apiKey string) (Generator, error)

// NewFactory 按 provider 返回对应的构造函数
func NewFactory(cfg config.LLMConfig) (Factory, error) {
	switch cfg.Provider {
	case "openai", "":
		return func(ctx context.Context, apiKey string) (Generator, error) {
			return newOpenAIChatModel(cfg, apiKey, newHTTPClient(cfg.DebugRequest)), nil
		}, nil
	case "ark":
		return func(ctx context.Context, apiKey string) (Generator, error) {
			return createArkModel(ctx, cfg, apiKey)
		}, nil
	case "qwen":
		return func(ctx context.Context, apiKey string) (Generator, error) {
			return createQwenModel(ctx, cfg, apiKey)
		}, nil
	default:
		return nil, fmt.Errorf("unsupported model provider: %s", cfg.Provider)
	}
}

func createArkModel(ctx context.Context, cfg config.LLMConfig, apiKey string) (Generator, error) {
	chatModel, err := ark.NewChatModel(ctx, &ark.ChatModelConfig{
		BaseURL: cfg.BaseURL,
		APIKey:  apiKey,
		Model:   cfg.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("create ark model: %w", err)
	}
	return chatModel, nil
}

func createQwenModel(ctx context.Context, cfg config.LLMConfig, apiKey string) (Generator, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultQwenBaseURL
	}

	chatModel, err := qwen.NewChatModel(ctx, &qwen.ChatModelConfig{
		BaseURL:    baseURL,
		APIKey:     apiKey,
		Model:      cfg.Model,
		HTTPClient: newHTTPClient(cfg.DebugRequest),
	})
	if err != nil {
		return nil, fmt.Errorf("create qwen model: %w", err)
	}
	return chatModel, nil
}

func newHTTPClient(debug bool) *http.Client {
	if !debug {
		return utils.NewHTTPClient(nil)
	}
	return utils.NewHTTPClient(NewDebugTransport(nil))
}

// DebugTransport 在 debug 级别记录发往补全接口的请求，敏感请求头会被隐藏
type DebugTransport struct {
	base http.RoundTripper
}

func NewDebugTransport(base http.RoundTripper) *DebugTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &DebugTransport{base: base}
}

func (t *DebugTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Method == http.MethodPost {
		t.logRequest(req)
	}

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		logger.Errorf("[llm debug] request to %s failed: %v", req.URL.Host, err)
		return nil, err
	}
	logger.Debugf("[llm debug] %s %s -> %d", req.Method, req.URL.Path, resp.StatusCode)
	return resp, nil
}

func (t *DebugTransport) logRequest(req *http.Request) {
	logger.Debugf("[llm debug] %s %s", req.Method, req.URL.String())
	for name, values := range req.Header {
		if isSensitiveHeader(name) {
			logger.Debugf("[llm debug]   %s: [REDACTED]", name)
		} else {
			logger.Debugf("[llm debug]   %s: %s", name, strings.Join(values, ", "))
		}
	}

	if req.Body == nil {
		return
	}
	body, err := io.ReadAll(req.Body)
	if err != nil {
		logger.Errorf("[llm debug] failed to read request body: %v", err)
		return
	}
	req.Body = io.NopCloser(bytes.NewReader(body))
	logger.Debugf("[llm debug] body (%d bytes): %s", len(body), body)
}

func isSensitiveHeader(name string) bool {
	for _, sensitive := range []string{"authorization", "x-api-key", "x-auth-token", "cookie"} {
		if strings.EqualFold(name, sensitive) {
			return true
		}
	}
	return false
}
