package whois

import (
	"context"
	"fmt"
	"strings"

	likewhois "github.com/likexian/whois"
	whoisparser "github.com/likexian/whois-parser"
	"github.com/openrdap/rdap"
)

// RDAPResolver 走结构化的 RDAP 协议，不依赖文本抽取。
// RDAP 事件里通常没有注册商 URL，结果可能不含注册商信息。
type RDAPResolver struct {
	Client *rdap.Client
}

func NewRDAPResolver() *RDAPResolver {
	return &RDAPResolver{Client: &rdap.Client{}}
}

func (r *RDAPResolver) Resolve(ctx context.Context, domain string) (*Result, error) {
	type reply struct {
		d   *rdap.Domain
		err error
	}
	ch := make(chan reply, 1)
	go func() {
		d, err := r.Client.QueryDomain(domain)
		ch <- reply{d: d, err: err}
	}()

	select {
	case <-ctx.Done():
		if ctx.Err() == context.DeadlineExceeded {
			return nil, ErrTimeout
		}
		return nil, ctx.Err()
	case res := <-ch:
		if res.err != nil {
			return nil, fmt.Errorf("rdap 查询失败: %w", res.err)
		}
		out := &Result{Domain: strings.ToLower(domain)}
		for _, event := range res.d.Events {
			switch {
			case strings.EqualFold(event.Action, "expiration"):
				out.ExpiryDate = event.Date
			case strings.EqualFold(event.Action, "registration"):
				out.CreationDate = event.Date
			case strings.EqualFold(event.Action, "last changed"):
				out.UpdatedDate = event.Date
			}
		}
		for _, ns := range res.d.Nameservers {
			if ns.LDHName != "" {
				out.NameServers = append(out.NameServers, strings.ToLower(ns.LDHName))
			}
		}
		return out, nil
	}
}

// Port43Resolver 直连 43 端口查询，再用 whois-parser 解析成结构化结果。
type Port43Resolver struct{}

func (Port43Resolver) Resolve(ctx context.Context, domain string) (*Result, error) {
	type reply struct {
		raw string
		err error
	}
	ch := make(chan reply, 1)
	go func() {
		raw, err := likewhois.Whois(domain)
		ch <- reply{raw: raw, err: err}
	}()

	select {
	case <-ctx.Done():
		if ctx.Err() == context.DeadlineExceeded {
			return nil, ErrTimeout
		}
		return nil, ctx.Err()
	case res := <-ch:
		if res.err != nil {
			return nil, fmt.Errorf("whois 查询失败: %w", res.err)
		}
		parsed, err := whoisparser.Parse(res.raw)
		if err != nil {
			// 结构化解析不了就退回正则抽取，行为与文本服务一致
			return Extract(res.raw), nil
		}
		out := &Result{}
		if parsed.Domain != nil {
			out.Domain = strings.ToLower(parsed.Domain.Domain)
			out.CreationDate = parsed.Domain.CreatedDate
			out.UpdatedDate = parsed.Domain.UpdatedDate
			out.ExpiryDate = parsed.Domain.ExpirationDate
			for _, ns := range parsed.Domain.NameServers {
				out.NameServers = append(out.NameServers, strings.ToLower(ns))
			}
		}
		if parsed.Registrar != nil {
			out.Registrar = parsed.Registrar.Name
			out.RegistrarURL = parsed.Registrar.ReferralURL
		}
		return out, nil
	}
}

// ChainResolver 依次尝试多个来源，返回第一个关键字段齐全的结果。
// 默认顺序是 RDAP 优先、43 端口兜底。
type ChainResolver struct {
	Resolvers []Resolver
}

func (c *ChainResolver) Resolve(ctx context.Context, domain string) (*Result, error) {
	var lastErr error
	for _, r := range c.Resolvers {
		result, err := r.Resolve(ctx, domain)
		if err != nil {
			lastErr = err
			continue
		}
		if result.Complete() {
			return result, nil
		}
		lastErr = ErrIncomplete
	}
	if lastErr == nil {
		lastErr = ErrIncomplete
	}
	return nil, lastErr
}
