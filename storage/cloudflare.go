package storage

import (
	"context"
	"errors"
	"fmt"

	cloudflare "github.com/cloudflare/cloudflare-go"
)

// CloudflareKV 把 Workers KV 命名空间用作后端，
// 与原有部署共用同一份数据。
type CloudflareKV struct {
	api       *cloudflare.API
	account   *cloudflare.ResourceContainer
	namespace string
}

func NewCloudflareKV(apiToken, accountID, namespaceID string) (*CloudflareKV, error) {
	if apiToken == "" || accountID == "" || namespaceID == "" {
		return nil, errors.New("cloudflare KV 配置不完整")
	}
	api, err := cloudflare.NewWithAPIToken(apiToken)
	if err != nil {
		return nil, fmt.Errorf("初始化 cloudflare 客户端失败: %w", err)
	}
	return &CloudflareKV{
		api:       api,
		account:   cloudflare.AccountIdentifier(accountID),
		namespace: namespaceID,
	}, nil
}

func (s *CloudflareKV) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.api.GetWorkersKV(ctx, s.account, cloudflare.GetWorkersKVParams{
		NamespaceID: s.namespace,
		Key:         key,
	})
	if err != nil {
		var notFound *cloudflare.NotFoundError
		if errors.As(err, &notFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("读取 KV %s 失败: %w", key, err)
	}
	return data, nil
}

func (s *CloudflareKV) Put(ctx context.Context, key string, value []byte) error {
	_, err := s.api.WriteWorkersKVEntry(ctx, s.account, cloudflare.WriteWorkersKVEntryParams{
		NamespaceID: s.namespace,
		Key:         key,
		Value:       value,
	})
	if err != nil {
		return fmt.Errorf("写入 KV %s 失败: %w", key, err)
	}
	return nil
}

func (s *CloudflareKV) Delete(ctx context.Context, key string) error {
	_, err := s.api.DeleteWorkersKVEntry(ctx, s.account, cloudflare.DeleteWorkersKVEntryParams{
		NamespaceID: s.namespace,
		Key:         key,
	})
	if err != nil {
		var notFound *cloudflare.NotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("删除 KV %s 失败: %w", key, err)
	}
	return nil
}
