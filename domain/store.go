package domain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"DomainCheck/storage"
	"DomainCheck/tools"
	"DomainCheck/whois"
)

// recordsKey 整个域名列表存在一个键下，与原有 KV 布局一致。
const recordsKey = "DOMAIN_LIST"

// unknownRegistrar 自动填充查不到注册商时的占位值。
const unknownRegistrar = "未知"

// Store 管理域名记录的读写，负责唯一性、必填项校验和改名冲突检测。
// 没有事务概念：两个并发写会竞争最后的整表落盘，先检查后写入
// 的窗口保持与原实现一致；要强一致需要在 KV.Put 处换成 CAS。
type Store struct {
	KV       storage.KV
	Resolver whois.Resolver
}

func NewStore(kv storage.KV, resolver whois.Resolver) *Store {
	return &Store{KV: kv, Resolver: resolver}
}

// List 返回全量记录快照，顺序由存储决定，排序是展示层的事。
func (s *Store) List(ctx context.Context) ([]Record, error) {
	data, err := s.KV.Get(ctx, recordsKey)
	if errors.Is(err, storage.ErrNotFound) {
		return []Record{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("读取域名列表失败: %w", err)
	}
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("域名列表数据损坏: %w", err)
	}
	return records, nil
}

func (s *Store) save(ctx context.Context, records []Record) error {
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("编码域名列表失败: %w", err)
	}
	if err := s.KV.Put(ctx, recordsKey, data); err != nil {
		return fmt.Errorf("保存域名列表失败: %w", err)
	}
	return nil
}

// Upsert 新增或编辑一条记录。一级域名缺到期日期时先尝试 WHOIS
// 自动填充：新增时填充失败直接拒绝，编辑时保留旧数据继续。
func (s *Store) Upsert(ctx context.Context, sub Submission) (Record, error) {
	sub.Record.normalize()
	if sub.Record.Domain == "" || !tools.ValidDomainName(sub.Record.Domain) {
		return Record{}, &BadDomainError{Domain: sub.Record.Domain}
	}

	identity := sub.OriginalDomain
	if identity == "" {
		identity = sub.Record.Domain
	}

	records, err := s.List(ctx)
	if err != nil {
		return Record{}, err
	}

	existingIdx := -1
	for i, r := range records {
		if r.Domain == identity {
			existingIdx = i
			break
		}
	}
	isEdit := existingIdx >= 0

	if sub.Record.IsPrimary() && sub.Record.ExpirationDate == "" {
		log.Printf("[store] autofill_start domain=%s", sub.Record.Domain)
		if err := s.autofill(ctx, &sub.Record); err != nil {
			if !isEdit {
				log.Printf("[store] autofill_failed domain=%s err=%v", sub.Record.Domain, err)
				return Record{}, &ValidationError{Reason: "WHOIS查询失败，请手动输入注册信息。"}
			}
			// 编辑已有记录：填充失败不覆盖旧值，照常合并
			log.Printf("[store] autofill_skip domain=%s err=%v", sub.Record.Domain, err)
		}
	}

	var final Record
	if isEdit {
		final = merge(records[existingIdx], sub.Record)
	} else {
		final = sub.Record
	}

	if err := final.validate(); err != nil {
		return Record{}, err
	}

	if isEdit {
		for i, r := range records {
			if i != existingIdx && r.Domain == final.Domain {
				return Record{}, &ConflictError{Domain: final.Domain}
			}
		}
		records[existingIdx] = final
	} else {
		for _, r := range records {
			if r.Domain == final.Domain {
				return Record{}, &ConflictError{Domain: final.Domain}
			}
		}
		records = append(records, final)
	}

	if err := s.save(ctx, records); err != nil {
		return Record{}, err
	}
	return final, nil
}

// autofill 通过解析器补全一级域名的日期和注册商信息。
func (s *Store) autofill(ctx context.Context, r *Record) error {
	if s.Resolver == nil {
		return errors.New("未配置 whois 解析器")
	}
	result, err := s.Resolver.Resolve(ctx, r.Domain)
	if err != nil {
		return err
	}
	if !result.Complete() {
		return whois.ErrIncomplete
	}
	r.RegistrationDate = tools.NormalizeDate(result.CreationDate)
	r.ExpirationDate = tools.NormalizeDate(result.ExpiryDate)
	r.Registrar = result.Registrar
	r.RegistrarURL = result.RegistrarURL
	if r.Registrar == "" {
		r.Registrar = unknownRegistrar
	}
	if r.RegistrarURL == "" {
		r.RegistrarURL = unknownRegistrar
	}
	log.Printf("[store] autofill_ok domain=%s expiry=%s", r.Domain, r.ExpirationDate)
	return nil
}

// DeleteMany 删除列表中出现的所有域名，返回实际删除数。
// 一个都没匹配返回 0，由调用方决定报 404，批量内互不影响。
func (s *Store) DeleteMany(ctx context.Context, domains []string) (int, error) {
	records, err := s.List(ctx)
	if err != nil {
		return 0, err
	}
	drop := make(map[string]struct{}, len(domains))
	for _, d := range domains {
		drop[d] = struct{}{}
	}
	kept := records[:0]
	for _, r := range records {
		if _, ok := drop[r.Domain]; !ok {
			kept = append(kept, r)
		}
	}
	deleted := len(records) - len(kept)
	if deleted == 0 {
		return 0, nil
	}
	if err := s.save(ctx, kept); err != nil {
		return 0, err
	}
	return deleted, nil
}

// ReplaceAll 无条件整表替换，导入/恢复用，只要求是个列表。
func (s *Store) ReplaceAll(ctx context.Context, records []Record) (int, error) {
	if records == nil {
		records = []Record{}
	}
	if err := s.save(ctx, records); err != nil {
		return 0, err
	}
	return len(records), nil
}
