package whois

import (
	"regexp"
	"strings"
)

// Result 是一次解析得到的结构化 WHOIS 数据。
// 日期保留上游原始写法，由调用方统一换算时区和格式。
type Result struct {
	Domain       string   `json:"domain"`
	CreationDate string   `json:"creationDate"`
	UpdatedDate  string   `json:"updatedDate"`
	ExpiryDate   string   `json:"expiryDate"`
	Registrar    string   `json:"registrar"`
	RegistrarURL string   `json:"registrarUrl"`
	NameServers  []string `json:"nameServers"`
}

// Complete 判断关键字段是否齐全，决定结果能否用于自动填充。
func (r *Result) Complete() bool {
	return r != nil && r.CreationDate != "" && r.ExpiryDate != ""
}

var (
	domainNameRe   = regexp.MustCompile(`(?i)Domain Name:\s*([^\n]+)`)
	creationDateRe = regexp.MustCompile(`(?i)Creation Date:\s*([^\n]+)`)
	updatedDateRe  = regexp.MustCompile(`(?i)Updated Date:\s*([^\n]+)`)
	expiryDateRe   = regexp.MustCompile(`(?i)Registry Expiry Date:\s*([^\n]+)`)
	// 注册商名称只取标签后的第一个词。多词名称会被截断，
	// 但观察到的数据里注册商基本是单词，够用。
	registrarRe    = regexp.MustCompile(`(?i)Registrar:\s*([^\s,，]+)`)
	registrarURLRe = regexp.MustCompile(`(?i)Registrar URL:\s*([^\n]+)`)
	nameServerRe   = regexp.MustCompile(`(?i)Name Server:\s*([^\n]+)`)
)

// Extract 从原始 WHOIS 文本中抽取结构化字段。
// 每个字段独立匹配，缺失互不影响；永远返回结果对象，
// 关键字段是否为空由调用方判断。
func Extract(raw string) *Result {
	r := &Result{}
	if m := domainNameRe.FindStringSubmatch(raw); m != nil {
		r.Domain = strings.ToLower(strings.TrimSpace(m[1]))
	}
	if m := creationDateRe.FindStringSubmatch(raw); m != nil {
		r.CreationDate = strings.TrimSpace(m[1])
	}
	if m := updatedDateRe.FindStringSubmatch(raw); m != nil {
		r.UpdatedDate = strings.TrimSpace(m[1])
	}
	if m := expiryDateRe.FindStringSubmatch(raw); m != nil {
		r.ExpiryDate = strings.TrimSpace(m[1])
	}
	if m := registrarRe.FindStringSubmatch(raw); m != nil {
		r.Registrar = strings.TrimSpace(m[1])
	}
	if m := registrarURLRe.FindStringSubmatch(raw); m != nil {
		r.RegistrarURL = strings.TrimSpace(m[1])
	}

	seen := make(map[string]struct{})
	for _, m := range nameServerRe.FindAllStringSubmatch(raw, -1) {
		ns := strings.ToLower(strings.TrimSpace(m[1]))
		if ns == "" {
			continue
		}
		if _, ok := seen[ns]; ok {
			continue
		}
		seen[ns] = struct{}{}
		r.NameServers = append(r.NameServers, ns)
	}
	return r
}
