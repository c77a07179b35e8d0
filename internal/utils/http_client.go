package utils

import (
	"net/http"
	"time"
)

// NewHTTPClient 返回不设整体超时的客户端；base 为空时使用带连接池参数的 Transport
func NewHTTPClient(base http.RoundTripper) *http.Client {
	if base == nil {
		base = &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		}
	}
	return &http.Client{Transport: base}
}
