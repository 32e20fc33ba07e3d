package app

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"DomainCheck/domain"
	"DomainCheck/storage"
	"DomainCheck/tools"
)

type fakeLister struct {
	records []domain.Record
	err     error
}

func (f *fakeLister) List(_ context.Context) ([]domain.Record, error) {
	return f.records, f.err
}

type recordingSender struct {
	messages []string
	err      error
}

func (s *recordingSender) Send(_ context.Context, msg string) error {
	s.messages = append(s.messages, msg)
	return s.err
}

func newChecker(records []domain.Record, sender *recordingSender, now time.Time) *ExpiryChecker {
	return &ExpiryChecker{
		Store:     &fakeLister{records: records},
		Markers:   storage.NewMemory(),
		Sender:    sender,
		AlertDays: 30,
		Now:       func() time.Time { return now },
	}
}

func TestRunCheckNotifiesExpiring(t *testing.T) {
	now := time.Date(2025, 1, 1, 10, 0, 0, 0, tools.Reference)
	sender := &recordingSender{}
	checker := newChecker([]domain.Record{
		{Domain: "soon.com", ExpirationDate: "2025-01-20", Registrar: "Reg", RegistrarURL: "https://reg.example"},
		{Domain: "safe.com", ExpirationDate: "2026-01-01"},
	}, sender, now)

	got, err := checker.RunCheck(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 notified domain, got %d", len(got))
	}
	if got[0].Domain != "soon.com" || got[0].DaysRemaining != 19 {
		t.Errorf("notified = %+v", got[0])
	}
	if len(sender.messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(sender.messages))
	}
}

func TestRunCheckAtMostOncePerDay(t *testing.T) {
	now := time.Date(2025, 1, 1, 10, 0, 0, 0, tools.Reference)
	sender := &recordingSender{}
	checker := newChecker([]domain.Record{
		{Domain: "soon.com", ExpirationDate: "2025-01-20"},
	}, sender, now)

	if _, err := checker.RunCheck(context.Background()); err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	got, err := checker.RunCheck(context.Background())
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("same-day rerun notified %d domains, want 0", len(got))
	}
	if len(sender.messages) != 1 {
		t.Fatalf("expected 1 message total, got %d", len(sender.messages))
	}

	// 次日同一域名仍在窗口内，再发一次
	checker.Now = func() time.Time { return now.Add(24 * time.Hour) }
	got, err = checker.RunCheck(context.Background())
	if err != nil {
		t.Fatalf("next-day run failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("next-day run notified %d domains, want 1", len(got))
	}
	if len(sender.messages) != 2 {
		t.Fatalf("expected 2 messages total, got %d", len(sender.messages))
	}
}

func TestRunCheckExpiredStaysSilent(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, tools.Reference)
	sender := &recordingSender{}
	checker := newChecker([]domain.Record{
		{Domain: "gone.com", ExpirationDate: "2025-01-01"},
	}, sender, now)

	got, err := checker.RunCheck(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 || len(sender.messages) != 0 {
		t.Fatalf("expired domain must not notify, got %d / %d", len(got), len(sender.messages))
	}
}

func TestRunCheckBadDateSkipped(t *testing.T) {
	now := time.Date(2025, 1, 1, 10, 0, 0, 0, tools.Reference)
	sender := &recordingSender{}
	checker := newChecker([]domain.Record{
		{Domain: "broken.com", ExpirationDate: "not-a-date"},
		{Domain: "soon.com", ExpirationDate: "2025-01-20"},
	}, sender, now)

	got, err := checker.RunCheck(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].Domain != "soon.com" {
		t.Fatalf("expected only soon.com notified, got %+v", got)
	}
}

func TestRunCheckSendFailureStillCounts(t *testing.T) {
	now := time.Date(2025, 1, 1, 10, 0, 0, 0, tools.Reference)
	sender := &recordingSender{err: errors.New("telegram down")}
	checker := newChecker([]domain.Record{
		{Domain: "soon.com", ExpirationDate: "2025-01-20"},
	}, sender, now)

	got, err := checker.RunCheck(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("failed send must still be reported, got %d", len(got))
	}

	// 标记已写入，当天不再重试
	got, _ = checker.RunCheck(context.Background())
	if len(got) != 0 {
		t.Fatalf("same-day retry after failed send notified %d, want 0", len(got))
	}
}

func TestRunCheckMissingDependencies(t *testing.T) {
	checker := &ExpiryChecker{}
	if _, err := checker.RunCheck(context.Background()); !errors.Is(err, ErrMissingDependencies) {
		t.Fatalf("expected ErrMissingDependencies, got %v", err)
	}
}

func TestFormatAlertContent(t *testing.T) {
	msg := formatAlert(domain.Record{
		Domain:         "soon.com",
		ExpirationDate: "2025-01-20",
		Registrar:      "Reg",
		RegistrarURL:   "https://reg.example",
	}, 19)
	for _, want := range []string{"soon.com", "19天", "2025-01-20", "https://reg.example", "N/A"} {
		if !strings.Contains(msg, want) {
			t.Errorf("alert message missing %q:\n%s", want, msg)
		}
	}
}
