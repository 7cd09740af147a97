package health

import (
	"context"
	"errors"
	"testing"
)

type mockPinger struct{ err error }

func (m *mockPinger) Ping(_ context.Context) error { return m.err }

type mockChecker struct{ err error }

func (m *mockChecker) HealthCheck(_ context.Context) error { return m.err }

type mockCounter struct{ n int }

func (m *mockCounter) Count() int { return m.n }

func TestCheck_AllHealthy(t *testing.T) {
	svc := New(&mockPinger{}, &mockChecker{}, &mockCounter{n: 42})
	report := svc.Check(context.Background())

	if report.Status != Healthy {
		t.Errorf("status = %s, expected ok", report.Status)
	}
	if report.Checks["cache"] != CheckOK || report.Checks["embedding"] != CheckOK {
		t.Errorf("unexpected checks: %v", report.Checks)
	}
	if report.IndexEntries != 42 {
		t.Errorf("IndexEntries = %d, expected 42", report.IndexEntries)
	}
}

func TestCheck_CacheDown(t *testing.T) {
	svc := New(&mockPinger{err: errors.New("refused")}, &mockChecker{}, &mockCounter{})
	report := svc.Check(context.Background())

	if report.Status != Degraded {
		t.Errorf("status = %s, expected degraded", report.Status)
	}
	if report.Checks["cache"] != CheckError {
		t.Errorf("cache check = %s, expected error", report.Checks["cache"])
	}
}

func TestCheck_EmbeddingDown(t *testing.T) {
	svc := New(nil, &mockChecker{err: errors.New("api down")}, &mockCounter{})
	report := svc.Check(context.Background())

	if report.Status != Degraded {
		t.Errorf("status = %s, expected degraded", report.Status)
	}
	if _, ok := report.Checks["cache"]; ok {
		t.Error("nil cache must not produce a check")
	}
}

func TestCheck_NothingConfigured(t *testing.T) {
	svc := New(nil, nil, nil)
	report := svc.Check(context.Background())

	if report.Status != Healthy {
		t.Errorf("status = %s, expected ok with no checks", report.Status)
	}
	if len(report.Checks) != 0 {
		t.Errorf("expected no checks, got %v", report.Checks)
	}
}
