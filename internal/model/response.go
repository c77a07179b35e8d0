package model

type ChatResponse struct {
	Content string `json:"content"`
}

type StatusResponse struct {
	Connected bool `json:"connected"`
}

// ErrorResponse 统一的错误响应格式
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Details string `json:"details,omitempty"`
}
