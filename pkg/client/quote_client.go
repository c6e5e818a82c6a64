package client

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"marketplace_shipping_v1/internal/api/dto"
)

// APIError 服务端返回的非 2xx 响应
type APIError struct {
	StatusCode int
	Kind       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Kind != "" {
		return fmt.Sprintf("shipping api %d (%s): %s", e.StatusCode, e.Kind, e.Message)
	}
	return fmt.Sprintf("shipping api %d: %s", e.StatusCode, e.Message)
}

// Options 客户端选项
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	RetryCount int    // 只对网络错误和 5xx 重试
	Token      string // 运营接口 Bearer Token
	Debug      bool
}

// QuoteClient 运费服务 HTTP 客户端
type QuoteClient struct {
	http *resty.Client
}

// New 创建客户端
func New(opts Options) *QuoteClient {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}

	c := resty.New().
		SetBaseURL(strings.TrimRight(opts.BaseURL, "/")).
		SetDebug(opts.Debug).
		SetTimeout(opts.Timeout).
		SetHeader("User-Agent", "marketplace-shipping-client/1.0").
		SetRetryCount(opts.RetryCount).
		SetRetryWaitTime(200 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= http.StatusInternalServerError
		})
	if opts.Token != "" {
		c.SetAuthToken(opts.Token)
	}
	return &QuoteClient{http: c}
}

// Quote 计算运费报价
func (c *QuoteClient) Quote(ctx context.Context, req dto.QuoteReq) (*dto.QuoteResp, error) {
	var out dto.QuoteResp
	if err := c.do(ctx, http.MethodPost, "/api/v1/shipping/quotes", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ResolveZone 邮编解析配送区域
func (c *QuoteClient) ResolveZone(ctx context.Context, postalCode string) (*dto.ZoneResolveResp, error) {
	var out dto.ZoneResolveResp
	query := map[string]string{"postal_code": postalCode}
	if err := c.do(ctx, http.MethodGet, "/api/v1/shipping/zones/resolve", query, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpsertRate 新增或更新运费（需要运营 Token）
func (c *QuoteClient) UpsertRate(ctx context.Context, req dto.UpsertRateReq) (*dto.RateResp, error) {
	var out dto.RateResp
	if err := c.do(ctx, http.MethodPut, "/api/v1/shipping/rates", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FlushCache 失效缓存（需要运营 Token）
func (c *QuoteClient) FlushCache(ctx context.Context, req dto.FlushCacheReq) (*dto.FlushCacheResp, error) {
	var out dto.FlushCacheResp
	if err := c.do(ctx, http.MethodPost, "/api/v1/shipping/cache/flush", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *QuoteClient) do(ctx context.Context, method, path string, query map[string]string, body, out interface{}) error {
	var apiErr dto.ErrorResp
	r := c.http.R().
		SetContext(ctx).
		SetResult(out).
		SetError(&apiErr)
	if query != nil {
		r.SetQueryParams(query)
	}
	if body != nil {
		r.SetBody(body)
	}

	resp, err := r.Execute(method, path)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	if resp.IsError() {
		msg := apiErr.Error
		if msg == "" {
			msg = strings.TrimSpace(resp.String())
		}
		return &APIError{StatusCode: resp.StatusCode(), Kind: apiErr.Kind, Message: msg}
	}
	return nil
}
