// Package external 对接外部语义推荐服务。
// 外部信号永远是 best-effort：任何失败都折叠为 ErrExternalUnavailable，
// 由调用方降级为空结果，绝不拖垮整次推荐。
package external

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rushteam/tourkit/core"
)

// SemanticClient 是外部语义推荐服务的 HTTP 客户端。
//
// 协议：
//   - GET  {base}/health    → {"status":"ok","indexed":true}
//   - POST {base}/recommend → {"results":[{"id":"...","score":0.87}]}
//
// 工程特征：
//   - 超时必须有界（健康探测和打分都要快速失败）
//   - 服务未就绪（indexed=false）视同不可用
//   - 返回分值裁剪到 0..1，上游量纲不可信
type SemanticClient struct {
	// Endpoint 服务端点，如 "http://localhost:8100"
	Endpoint string

	// Timeout 单次请求超时，默认 3s
	Timeout time.Duration

	// SkipHealthCheck 跳过健康探测（测试或已知健康的场景）
	SkipHealthCheck bool

	httpClient *http.Client
}

// NewSemanticClient 创建外部语义推荐客户端。
func NewSemanticClient(endpoint string, opts ...Option) *SemanticClient {
	c := &SemanticClient{
		Endpoint: endpoint,
		Timeout:  3 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.httpClient = &http.Client{Timeout: c.Timeout}
	return c
}

// Option 客户端配置选项
type Option func(*SemanticClient)

// WithTimeout 设置请求超时
func WithTimeout(timeout time.Duration) Option {
	return func(c *SemanticClient) {
		if timeout > 0 {
			c.Timeout = timeout
		}
	}
}

// WithoutHealthCheck 跳过健康探测
func WithoutHealthCheck() Option {
	return func(c *SemanticClient) {
		c.SkipHealthCheck = true
	}
}

// Name 实现 core.ExternalScorer 接口
func (c *SemanticClient) Name() string { return "semantic" }

// Score 实现 core.ExternalScorer 接口。
// 先探测健康（服务必须已完成索引），再发起打分请求。
// 任何一步失败都返回 ErrExternalUnavailable，不区分失败原因——
// 调用方只有"有信号/无信号"两种分支。
func (c *SemanticClient) Score(ctx context.Context, query string, limit int) ([]core.ExternalScore, error) {
	if c == nil || c.Endpoint == "" {
		return nil, core.ErrExternalUnavailable
	}

	if !c.SkipHealthCheck {
		if err := c.Health(ctx); err != nil {
			return nil, core.ErrExternalUnavailable
		}
	}

	body, err := json.Marshal(map[string]any{
		"query": query,
		"top_k": limit,
	})
	if err != nil {
		return nil, core.ErrExternalUnavailable
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint+"/recommend", bytes.NewReader(body))
	if err != nil {
		return nil, core.ErrExternalUnavailable
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, core.ErrExternalUnavailable
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, core.ErrExternalUnavailable
	}

	var result struct {
		Results []core.ExternalScore `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, core.ErrExternalUnavailable
	}

	// 分值裁剪到 0..1
	scores := make([]core.ExternalScore, 0, len(result.Results))
	for _, s := range result.Results {
		if s.ExhibitID == "" {
			continue
		}
		if s.Score < 0 {
			s.Score = 0
		} else if s.Score > 1 {
			s.Score = 1
		}
		scores = append(scores, s)
	}
	return scores, nil
}

// Health 健康探测：服务可达、返回 ok 且已完成索引才算健康。
func (c *SemanticClient) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.Endpoint+"/health", nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check failed: status=%d", resp.StatusCode)
	}

	var status struct {
		Status  string `json:"status"`
		Indexed bool   `json:"indexed"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return fmt.Errorf("decode health response: %w", err)
	}
	if status.Status != "ok" || !status.Indexed {
		return fmt.Errorf("service not ready: status=%s indexed=%v", status.Status, status.Indexed)
	}
	return nil
}

// 确保 SemanticClient 实现了 core.ExternalScorer 接口
var _ core.ExternalScorer = (*SemanticClient)(nil)
