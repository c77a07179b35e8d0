package model

import "encoding/json"

// ChatRequest 是 /api/chat 的请求体
type ChatRequest struct {
	Message *string `json:"message"`
}

// ReportRequest 是 /api/generate-pdf 的请求体。
// ChatHistory 保留原始 JSON，以便区分缺失、null 与非数组。
type ReportRequest struct {
	ChatHistory json.RawMessage `json:"chatHistory"`
}

// TranscriptEntry 是报告中的一条对话记录（已去除标记）
type TranscriptEntry struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
