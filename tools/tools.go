package tools

import (
	"regexp"
	"strings"
	"time"
)

// Reference 是统一的日期基准时区（UTC+8）。
// 所有日期都换算到这个时区再截断到 YYYY-MM-DD，
// 保证同一天内任何时刻的比较结果一致。
var Reference = time.FixedZone("UTC+8", 8*60*60)

const DateLayout = "2006-01-02"

var dateLayouts = []string{
	DateLayout,
	"2006/01/02",
	"2006.01.02",
	"02-Jan-2006",
	"Jan 02, 2006",
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05Z",
	"2006-01-02 15:04:05",
}

// ParseDate 尽力解析常见的日期写法，返回基准时区下的日期。
func ParseDate(raw string) (time.Time, bool) {
	cleaned := strings.TrimSpace(strings.Trim(raw, ":"))
	cleaned = strings.Join(strings.Fields(cleaned), " ")
	if cleaned == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, cleaned); err == nil {
			return DayOf(t), true
		}
	}
	return time.Time{}, false
}

// NormalizeDate 把任意可解析的日期串规范成基准时区下的 YYYY-MM-DD。
// 解析失败时原样返回，由调用方决定如何处理。
func NormalizeDate(raw string) string {
	t, ok := ParseDate(raw)
	if !ok {
		return strings.TrimSpace(raw)
	}
	return t.Format(DateLayout)
}

// DayOf 把一个时刻截断到基准时区的当日零点。
func DayOf(t time.Time) time.Time {
	t = t.In(Reference)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, Reference)
}

// Today 返回基准时区下的今天（YYYY-MM-DD）。
func Today(now time.Time) string {
	return DayOf(now).Format(DateLayout)
}

// IsPrimaryDomain 用按点分段数 ≤2 的粗略标准判断一级域名。
// 多级公共后缀（如 .co.uk）会被误判为子域名，这里有意保持
// 与线上数据一致的行为，不引入公共后缀表。
func IsPrimaryDomain(domain string) bool {
	return len(strings.Split(domain, ".")) <= 2
}

var labelPattern = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]*[a-z0-9])?$`)
var tldPattern = regexp.MustCompile(`^[a-z]{2,}$`)

// ValidDomainName 校验域名语法：小写字母数字与连字符组成的标签，
// 不允许首尾连字符和连续连字符，末级标签至少两个字母。
func ValidDomainName(domain string) bool {
	domain = strings.ToLower(strings.TrimSpace(domain))
	labels := strings.Split(domain, ".")
	if len(labels) < 2 {
		return false
	}
	for _, label := range labels {
		if !labelPattern.MatchString(label) || strings.Contains(label, "--") {
			return false
		}
	}
	return tldPattern.MatchString(labels[len(labels)-1])
}
