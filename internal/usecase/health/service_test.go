package health

import (
	"context"
	"errors"
	"testing"
)

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

type stubChecker struct{ err error }

func (s stubChecker) HealthCheck(context.Context) error { return s.err }

func TestCheck_AllHealthy(t *testing.T) {
	svc := New(stubPinger{}, stubChecker{})
	report := svc.Check(context.Background())

	if report.Status != Healthy {
		t.Errorf("status = %s, want %s", report.Status, Healthy)
	}
	if report.Checks["store"] != CheckOK || report.Checks["registry"] != CheckOK {
		t.Errorf("checks = %v", report.Checks)
	}
}

func TestCheck_StoreDown(t *testing.T) {
	svc := New(stubPinger{err: errors.New("connection refused")}, stubChecker{})
	report := svc.Check(context.Background())

	if report.Status != Degraded {
		t.Errorf("status = %s, want %s", report.Status, Degraded)
	}
	if report.Checks["store"] != CheckError {
		t.Errorf("store check = %s, want %s", report.Checks["store"], CheckError)
	}
}

func TestCheck_NilRegistrySkipped(t *testing.T) {
	svc := New(stubPinger{}, nil)
	report := svc.Check(context.Background())

	if _, ok := report.Checks["registry"]; ok {
		t.Error("registry check must be skipped when no checker is configured")
	}
	if report.Status != Healthy {
		t.Errorf("status = %s, want %s", report.Status, Healthy)
	}
}
