package app

import (
	"time"

	"DomainCheck/tools"
)

// Status 是一条记录在某个日期下的到期状态。
type Status string

const (
	StatusNormal       Status = "normal"
	StatusExpiringSoon Status = "expiring"
	StatusExpired      Status = "expired"
	StatusDataMissing  Status = "missing"
)

// Evaluation 是一次纯函数求值的结果。日期缺失或解析不了时
// DaysKnown / ProgressKnown 为 false，对应值无意义。
type Evaluation struct {
	Status          Status
	DaysRemaining   int
	DaysKnown       bool
	ProgressPercent float64
	ProgressKnown   bool
}

// Evaluate 按基准时区的日界计算剩余天数、状态和生命周期进度。
// 同一天内任何时刻求值结果相同；任何输入都不会 panic。
func Evaluate(registrationDate, expirationDate string, asOf time.Time, threshold int) Evaluation {
	expiry, ok := tools.ParseDate(expirationDate)
	if !ok {
		return Evaluation{Status: StatusDataMissing}
	}

	today := tools.DayOf(asOf)
	days := int(expiry.Sub(today).Hours() / 24)

	ev := Evaluation{DaysRemaining: days, DaysKnown: true}
	switch {
	case days <= 0:
		ev.Status = StatusExpired
	case days <= threshold:
		ev.Status = StatusExpiringSoon
	default:
		ev.Status = StatusNormal
	}

	if reg, ok := tools.ParseDate(registrationDate); ok {
		total := expiry.Sub(reg).Hours()
		if total > 0 {
			elapsed := today.Sub(reg).Hours()
			pct := elapsed / total * 100
			if pct < 0 {
				pct = 0
			}
			if pct > 100 {
				pct = 100
			}
			ev.ProgressPercent = pct
			ev.ProgressKnown = true
		}
	}
	return ev
}
