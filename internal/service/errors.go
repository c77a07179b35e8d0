package service

import "errors"

// ErrCredentialMissing 表示服务端没有可用的 API 凭证
var ErrCredentialMissing = errors.New("API key not configured")

// UpstreamError 包装补全接口的任何失败（传输错误、非 2xx、空结果）
type UpstreamError struct {
	Err error
}

func (e *UpstreamError) Error() string {
	return "completion request failed: " + e.Err.Error()
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}
