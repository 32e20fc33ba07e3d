package scheduler

import (
	"context"
	"log"
	"time"

	"DomainCheck/tools"
)

// DailyScheduler 每天在基准时区的固定时刻触发一次任务。
type DailyScheduler struct {
	Hour int
	Min  int
}

func NewDailyScheduler(hour, min int) *DailyScheduler {
	return &DailyScheduler{Hour: hour, Min: min}
}

func (s *DailyScheduler) nextFire(now time.Time) time.Time {
	now = now.In(tools.Reference)
	next := time.Date(now.Year(), now.Month(), now.Day(), s.Hour, s.Min, 0, 0, tools.Reference)
	if !next.After(now) {
		next = next.Add(24 * time.Hour)
	}
	return next
}

// Run 阻塞运行，直到 ctx 取消。任务自身的失败只记日志，
// 不会中断调度循环。
func (s *DailyScheduler) Run(ctx context.Context, task func(context.Context) error) error {
	for {
		next := s.nextFire(time.Now())
		log.Printf("[cron] next_fire at=%s", next.Format(time.RFC3339))

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
			if err := task(ctx); err != nil {
				log.Printf("[cron] task_failed err=%v", err)
			}
		}
	}
}
