package whois

import (
	"context"
	"errors"
	"time"
)

// TimeoutResolver 给上游解析器加一层硬超时。HTTPResolver 自带超时，
// RDAP 和 43 端口的查询只响应 ctx 取消，必须在外面设好截止时间。
type TimeoutResolver struct {
	Upstream Resolver
	Timeout  time.Duration
}

func (t TimeoutResolver) Resolve(ctx context.Context, domain string) (*Result, error) {
	timeout := t.Timeout
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	result, err := t.Upstream.Resolve(ctx, domain)
	if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return nil, ErrTimeout
	}
	return result, err
}
