package ui

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"researchai/internal/model"
	"researchai/internal/utils"
)

var (
	ErrBackendNotConnected = errors.New("Backend not connected")
	ErrBackendNotReady     = errors.New("Backend not ready")
	ErrReportFailed        = errors.New("Failed to generate PDF")
)

// Backend 是会话依赖的服务端能力
type Backend interface {
	// Status 仅在服务端返回 connected:true 时返回 nil
	Status(ctx context.Context) error
	Chat(ctx context.Context, message string) (string, error)
	Report(ctx context.Context, entries []model.TranscriptEntry) ([]byte, error)
}

// HTTPBackend 通过 JSON 接口访问运行中的服务
type HTTPBackend struct {
	baseURL string
	client  *http.Client
}

func NewHTTPBackend(baseURL string, client *http.Client) *HTTPBackend {
	if client == nil {
		client = utils.NewHTTPClient(nil)
	}
	return &HTTPBackend{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

func (b *HTTPBackend) Status(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.baseURL+"/api/status", nil)
	if err != nil {
		return err
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBackendNotConnected, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return ErrBackendNotConnected
	}

	var status model.StatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil || !status.Connected {
		return ErrBackendNotReady
	}
	return nil
}

func (b *HTTPBackend) Chat(ctx context.Context, message string) (string, error) {
	resp, err := b.postJSON(ctx, "/api/chat", model.ChatRequest{Message: &message})
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errResp model.ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Error != "" {
			return "", errors.New(errResp.Error)
		}
		return "", fmt.Errorf("HTTP error! status: %d", resp.StatusCode)
	}

	var chatResp model.ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("decode chat response: %w", err)
	}
	return chatResp.Content, nil
}

func (b *HTTPBackend) Report(ctx context.Context, entries []model.TranscriptEntry) ([]byte, error) {
	history, err := json.Marshal(entries)
	if err != nil {
		return nil, err
	}

	resp, err := b.postJSON(ctx, "/api/generate-pdf", model.ReportRequest{ChatHistory: history})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, ErrReportFailed
	}

	return io.ReadAll(resp.Body)
}

func (b *HTTPBackend) postJSON(ctx context.Context, path string, body any) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	return b.client.Do(req)
}
