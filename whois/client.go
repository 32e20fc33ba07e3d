package whois

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Resolver 是解析能力的统一入口。失败一律通过错误值返回，
// 由调用方决定是拒绝写入还是保留旧数据，不向外抛异常。
type Resolver interface {
	Resolve(ctx context.Context, domain string) (*Result, error)
}

// ErrTimeout 上游 WHOIS 查询超时。
var ErrTimeout = errors.New("whois 查询超时")

// ErrIncomplete 上游有响应但抽取不到可用的日期字段。
var ErrIncomplete = errors.New("whois 结果缺少关键字段")

// UpstreamError 上游返回非成功状态码。
type UpstreamError struct {
	Status int
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("whois 服务返回 %d", e.Status)
}

// HTTPResolver 调用文本型 WHOIS 服务，带硬超时并在超时后取消请求。
type HTTPResolver struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
	Client    *http.Client
}

func NewHTTPResolver(baseURL string, timeout time.Duration) *HTTPResolver {
	return &HTTPResolver{
		BaseURL:   baseURL,
		Timeout:   timeout,
		UserAgent: "Mozilla/5.0 (WHOIS API Service)",
	}
}

func (r *HTTPResolver) Resolve(ctx context.Context, domain string) (*Result, error) {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	endpoint := strings.TrimSuffix(r.BaseURL, "/") + "/" + url.PathEscape(domain)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("构造 whois 请求失败: %w", err)
	}
	req.Header.Set("User-Agent", r.UserAgent)

	client := r.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, ErrTimeout
		}
		return nil, fmt.Errorf("whois 请求失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &UpstreamError{Status: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, ErrTimeout
		}
		return nil, fmt.Errorf("读取 whois 响应失败: %w", err)
	}
	return Extract(string(body)), nil
}
