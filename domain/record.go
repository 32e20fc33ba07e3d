package domain

import (
	"fmt"
	"strings"

	"DomainCheck/tools"
)

// Record 是一个被跟踪的域名条目，domain 在全库内唯一。
// groups 只给前端过滤用，这里当作不透明字符串保存。
type Record struct {
	Domain           string `json:"domain"`
	RegistrationDate string `json:"registrationDate"`
	ExpirationDate   string `json:"expirationDate"`
	Registrar        string `json:"registrar"`
	RegistrarURL     string `json:"registrarURL"`
	RegisterAccount  string `json:"registerAccount,omitempty"`
	Groups           string `json:"groups,omitempty"`
}

// Submission 是新增/编辑请求体：完整的记录字段加 originalDomain，
// 改名时用 originalDomain 定位旧记录。
type Submission struct {
	Record
	OriginalDomain string `json:"originalDomain,omitempty"`
}

// IsPrimary 判断记录是否一级域名，一级域名才允许 WHOIS 自动填充。
// 标签数启发式见 tools.IsPrimaryDomain，.co.uk 这类后缀会被误判。
func (r Record) IsPrimary() bool {
	return tools.IsPrimaryDomain(r.Domain)
}

// ValidationError 信息不完整或格式不对，对应 422。
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// ConflictError 域名标识冲突，对应 409。
type ConflictError struct {
	Domain string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("域名已存在: %s", e.Domain)
}

// BadDomainError 域名语法不合法，对应 400。
type BadDomainError struct {
	Domain string
}

func (e *BadDomainError) Error() string {
	return fmt.Sprintf("域名格式无效: %s", e.Domain)
}

// normalize 统一大小写和空白，并把日期换算到基准时区。
func (r *Record) normalize() {
	r.Domain = strings.ToLower(strings.TrimSpace(r.Domain))
	if r.RegistrationDate != "" {
		r.RegistrationDate = tools.NormalizeDate(r.RegistrationDate)
	}
	if r.ExpirationDate != "" {
		r.ExpirationDate = tools.NormalizeDate(r.ExpirationDate)
	}
	r.Registrar = strings.TrimSpace(r.Registrar)
	r.RegistrarURL = strings.TrimSpace(r.RegistrarURL)
}

// validate 按分类检查必填项：子域名四项全必填，
// 一级域名经过自动填充后至少要有到期日期。
func (r Record) validate() error {
	if r.IsPrimary() {
		if r.ExpirationDate == "" {
			return &ValidationError{Reason: "信息不完整：到期时间为必填项。"}
		}
		return nil
	}
	if r.RegistrationDate == "" || r.ExpirationDate == "" || r.Registrar == "" || r.RegistrarURL == "" {
		return &ValidationError{Reason: "信息不完整：注册/到期时间、注册商名称和URL为必填项。"}
	}
	return nil
}

// merge 把提交的字段覆盖到已有记录上，留空的字段保持原值。
func merge(existing Record, submitted Record) Record {
	out := existing
	out.Domain = submitted.Domain
	if submitted.RegistrationDate != "" {
		out.RegistrationDate = submitted.RegistrationDate
	}
	if submitted.ExpirationDate != "" {
		out.ExpirationDate = submitted.ExpirationDate
	}
	if submitted.Registrar != "" {
		out.Registrar = submitted.Registrar
	}
	if submitted.RegistrarURL != "" {
		out.RegistrarURL = submitted.RegistrarURL
	}
	if submitted.RegisterAccount != "" {
		out.RegisterAccount = submitted.RegisterAccount
	}
	if submitted.Groups != "" {
		out.Groups = submitted.Groups
	}
	return out
}
