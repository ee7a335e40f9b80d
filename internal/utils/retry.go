package utils

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"net/http"
	"slices"
	"time"
)

// RetryConfig 配置重试参数
type RetryConfig struct {
	// MaxRetries 最大重试次数（不含首次请求）
	MaxRetries int
	// InitialDelay 初始延迟时间
	InitialDelay time.Duration
	// MaxDelay 最大延迟时间
	MaxDelay time.Duration
	// BackoffMultiplier 退避倍数
	BackoffMultiplier float64
	// RetryableStatusCodes 需要重试的HTTP状态码
	RetryableStatusCodes []int
}

// DefaultRetryConfig 返回默认的重试配置
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxRetries:        2,
		InitialDelay:      500 * time.Millisecond,
		MaxDelay:          5 * time.Second,
		BackoffMultiplier: 2.0,
		RetryableStatusCodes: []int{
			http.StatusRequestTimeout,     // 408
			http.StatusTooManyRequests,    // 429
			http.StatusBadGateway,         // 502
			http.StatusServiceUnavailable, // 503
			http.StatusGatewayTimeout,     // 504
		},
	}
}

// RetryableHTTPClient 带重试机制的HTTP客户端
// 只给非核心的只读请求使用（例如 predict-future），聊天和提交请求不重试
type RetryableHTTPClient struct {
	client Doer
	config *RetryConfig
}

// NewRetryableHTTPClient 创建新的带重试机制的HTTP客户端
func NewRetryableHTTPClient(client Doer, config *RetryConfig) *RetryableHTTPClient {
	if config == nil {
		config = DefaultRetryConfig()
	}
	return &RetryableHTTPClient{
		client: client,
		config: config,
	}
}

// Do 执行HTTP请求，按配置重试
func (r *RetryableHTTPClient) Do(req *http.Request) (*http.Response, error) {
	// 请求体只能读一次，先整体读出来，每次尝试重新包装
	var body []byte
	if req.Body != nil && req.Body != http.NoBody {
		b, err := io.ReadAll(req.Body)
		req.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("读取请求体失败: %w", err)
		}
		body = b
	}

	ctx := req.Context()
	var lastErr error

	for attempt := 0; attempt <= r.config.MaxRetries; attempt++ {
		if attempt > 0 {
			timer := time.NewTimer(r.calculateDelay(attempt))
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil, ctx.Err()
			case <-timer.C:
			}
		}

		attemptReq := req.Clone(ctx)
		if body != nil {
			attemptReq.Body = io.NopCloser(bytes.NewReader(body))
			attemptReq.ContentLength = int64(len(body))
		}

		resp, err := r.client.Do(attemptReq)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			continue
		}

		if !r.shouldRetryStatus(resp.StatusCode) {
			return resp, nil
		}

		resp.Body.Close()
		lastErr = fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	return nil, fmt.Errorf("after %d retries: %w", r.config.MaxRetries, lastErr)
}

// calculateDelay 指数退避：initialDelay * multiplier^(attempt-1)，不超过 MaxDelay
func (r *RetryableHTTPClient) calculateDelay(attempt int) time.Duration {
	delay := float64(r.config.InitialDelay) * math.Pow(r.config.BackoffMultiplier, float64(attempt-1))
	if delay > float64(r.config.MaxDelay) {
		delay = float64(r.config.MaxDelay)
	}
	return time.Duration(delay)
}

func (r *RetryableHTTPClient) shouldRetryStatus(statusCode int) bool {
	return slices.Contains(r.config.RetryableStatusCodes, statusCode)
}
