package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/Zacy-Sokach/DayFlow/internal/schedule"
	"github.com/Zacy-Sokach/DayFlow/internal/utils"
)

const (
	pathConversation   = "/api/chat/conversation"
	pathConfirm        = "/api/chat/confirm"
	pathClear          = "/api/chat/clear"
	pathUpdateActivity = "/api/activities/update"
	pathDeleteActivity = "/api/activities/delete"
	pathPredictFuture  = "/api/predict-future"

	// HeaderRequestID 用于在服务端日志中关联请求
	HeaderRequestID = "X-Request-ID"
)

// APIError 表示 API 请求错误，包含状态码和错误信息
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API请求失败 (状态码: %d): %s", e.StatusCode, e.Message)
}

// 全局共享的HTTP客户端，实现连接池化
var (
	sharedHTTPClient *http.Client
	httpClientOnce   sync.Once
)

// getSharedHTTPClient 返回共享的HTTP客户端实例
// 超时交给传输层，核心调用不设置额外的超时和重试
func getSharedHTTPClient() *http.Client {
	httpClientOnce.Do(func() {
		sharedHTTPClient = &http.Client{
			Transport: &http.Transport{
				Proxy:                 http.ProxyFromEnvironment,
				MaxIdleConns:          20,
				MaxIdleConnsPerHost:   10,
				IdleConnTimeout:       90 * time.Second,
				ResponseHeaderTimeout: 60 * time.Second,
				TLSHandshakeTimeout:   10 * time.Second,
			},
		}
	})
	return sharedHTTPClient
}

// Option 定制 Client
type Option func(*Client)

// WithHTTPClient 替换底层 HTTP 客户端
func WithHTTPClient(d utils.Doer) Option {
	return func(c *Client) { c.client = d }
}

// WithRetryConfig 设置预测接口的重试参数
func WithRetryConfig(cfg *utils.RetryConfig) Option {
	return func(c *Client) { c.retry = cfg }
}

type Client struct {
	baseURL string
	client  utils.Doer
	retry   *utils.RetryConfig
	futures utils.Doer
}

// NewClient 创建 DayFlow 后端客户端
// baseURL 随部署环境不同，例如 http://localhost:3000
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  getSharedHTTPClient(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.futures = utils.NewRetryableHTTPClient(c.client, c.retry)
	return c
}

// Converse 发送一条聊天消息
func (c *Client) Converse(ctx context.Context, req ConversationRequest) (*ConversationResponse, error) {
	var resp ConversationResponse
	if err := c.post(ctx, c.client, pathConversation, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Confirm 提交待确认的方案
func (c *Client) Confirm(ctx context.Context, req ConfirmRequest) (*ConfirmResponse, error) {
	if req.Activities == nil {
		req.Activities = []schedule.Activity{}
	}
	if req.Actions == nil {
		req.Actions = []Action{}
	}
	var resp ConfirmResponse
	if err := c.post(ctx, c.client, pathConfirm, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ClearConversation 通知服务端重置会话
func (c *Client) ClearConversation(ctx context.Context, userID string) error {
	return c.post(ctx, c.client, pathClear, clearRequest{UserID: userID}, nil)
}

// UpdateActivity 保存手动编辑的活动，非 2xx 返回 *APIError
func (c *Client) UpdateActivity(ctx context.Context, req UpdateActivityRequest) error {
	return c.post(ctx, c.client, pathUpdateActivity, req, nil)
}

// DeleteActivity 删除活动，返回服务端的原始结果
func (c *Client) DeleteActivity(ctx context.Context, req DeleteActivityRequest) (map[string]any, error) {
	var result map[string]any
	if err := c.post(ctx, c.client, pathDeleteActivity, req, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// PredictFuture 获取未来情景预测，可重试的状态码会自动重试
func (c *Client) PredictFuture(ctx context.Context, s Session) ([]Future, error) {
	var resp futuresResponse
	if err := c.post(ctx, c.futures, pathPredictFuture, futuresRequest{Session: s}, &resp); err != nil {
		return nil, err
	}
	return resp.Futures, nil
}

func (c *Client) post(ctx context.Context, d utils.Doer, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("序列化请求失败: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("创建请求失败: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set(HeaderRequestID, ulid.Make().String())

	resp, err := d.Do(httpReq)
	if err != nil {
		return fmt.Errorf("请求失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    errorMessage(bodyBytes),
		}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("解析响应失败: %w", err)
	}
	return nil
}

// errorMessage 优先取响应体中的 error 字段
func errorMessage(body []byte) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		return payload.Error
	}
	return strings.TrimSpace(string(body))
}
