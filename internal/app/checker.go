package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"DomainCheck/domain"
	"DomainCheck/storage"
	"DomainCheck/telegram"
	"DomainCheck/tools"
)

// ErrMissingDependencies 组件没装配齐就触发检查。
var ErrMissingDependencies = errors.New("缺少必需的依赖")

const markerKeyPrefix = "notify:"

// Expiring 是单次检查里命中提醒窗口的域名摘要，给触发方汇报用。
type Expiring struct {
	Domain          string `json:"domain"`
	ExpirationDate  string `json:"expirationDate"`
	DaysRemaining   int    `json:"daysRemaining"`
	Registrar       string `json:"registrar"`
	RegistrarURL    string `json:"registrarURL"`
	RegisterAccount string `json:"registerAccount"`
	Groups          string `json:"groups"`
}

// RecordLister 是检查器对记录存储的唯一依赖。
type RecordLister interface {
	List(ctx context.Context) ([]domain.Record, error)
}

// ExpiryChecker 扫一遍记录，对进入提醒窗口的域名每天最多发一条
// Telegram 通知。幂等标记（notify:<域名> → 当天日期）在发送尝试之后
// 写入，发送与落标记之间崩溃最多造成次日一条重复，属于接受的
// "每天至多一次、尽力而为" 语义。
type ExpiryChecker struct {
	Store     RecordLister
	Markers   storage.KV
	Sender    telegram.Sender
	AlertDays int

	// Now 可注入，测试里固定日期用。
	Now func() time.Time
}

func (c *ExpiryChecker) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

// RunCheck 执行一轮检查，返回本轮发出提醒的域名。
// 单条记录的求值或发送失败只记日志，不影响后续记录。
func (c *ExpiryChecker) RunCheck(ctx context.Context) ([]Expiring, error) {
	if c.Store == nil || c.Markers == nil || c.Sender == nil {
		return nil, ErrMissingDependencies
	}

	records, err := c.Store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("读取域名列表失败: %w", err)
	}
	if len(records) == 0 {
		log.Printf("[expiry] no_records_skip")
		return nil, nil
	}

	asOf := c.now()
	today := tools.Today(asOf)
	var notified []Expiring

	for _, r := range records {
		ev := Evaluate(r.RegistrationDate, r.ExpirationDate, asOf, c.AlertDays)
		if ev.Status == StatusDataMissing {
			log.Printf("[expiry] bad_date_skip domain=%s expiry=%q", r.Domain, r.ExpirationDate)
			continue
		}
		// 只有即将到期才提醒；已过期保持沉默，避免天天轰炸
		if ev.Status != StatusExpiringSoon {
			continue
		}

		if c.sentToday(ctx, r.Domain, today) {
			log.Printf("[expiry] already_notified domain=%s date=%s", r.Domain, today)
			continue
		}

		if err := c.Sender.Send(ctx, formatAlert(r, ev.DaysRemaining)); err != nil {
			// 尽力而为：投递失败不重试也不回滚，本条仍计入已尝试
			log.Printf("[expiry] send_failed domain=%s err=%v", r.Domain, err)
		}
		if err := c.Markers.Put(ctx, markerKeyPrefix+r.Domain, []byte(today)); err != nil {
			log.Printf("[expiry] marker_write_failed domain=%s err=%v", r.Domain, err)
		}

		notified = append(notified, Expiring{
			Domain:          r.Domain,
			ExpirationDate:  r.ExpirationDate,
			DaysRemaining:   ev.DaysRemaining,
			Registrar:       r.Registrar,
			RegistrarURL:    r.RegistrarURL,
			RegisterAccount: orNA(r.RegisterAccount),
			Groups:          orNA(r.Groups),
		})
		log.Printf("[expiry] notified domain=%s days=%d", r.Domain, ev.DaysRemaining)
	}
	return notified, nil
}

// sentToday 读幂等标记，值等于今天日期就跳过。读失败按未发送处理，
// 宁可多发一条也不漏报。
func (c *ExpiryChecker) sentToday(ctx context.Context, domainName, today string) bool {
	data, err := c.Markers.Get(ctx, markerKeyPrefix+domainName)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			log.Printf("[expiry] marker_read_failed domain=%s err=%v", domainName, err)
		}
		return false
	}
	return string(data) == today
}

func formatAlert(r domain.Record, days int) string {
	return fmt.Sprintf(`<b>🚨 域名到期提醒 🚨</b>
====================
🌐 域名: <code>%s</code>
♻️ 将在 <b>%d天</b> 后过期！
📅 过期日期: %s
🔗 注册商: <a href="%s">%s</a>
👤 注册账号: <code>%s</code>
--------------------------`,
		r.Domain, days, r.ExpirationDate, r.RegistrarURL, r.Registrar, orNA(r.RegisterAccount))
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
