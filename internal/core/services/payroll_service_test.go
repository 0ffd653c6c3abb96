package services

import (
	"testing"

	"altn-timeclock/internal/core/domain"
)

func newPayrollFixture(t *testing.T, client *fakeSyncClient) (*PayrollService, *SyncService) {
	t.Helper()
	store := newTestStore(t)
	roster := NewRosterService(client)
	if err := roster.Refresh(); err != nil {
		t.Fatalf("roster refresh failed: %v", err)
	}
	syncSvc := NewSyncService(store, client, 3)
	reconcile := NewReconcileService(store, syncSvc, roster)
	return NewPayrollService(reconcile, roster), syncSvc
}

func TestPayrollReportSplitsWeeks(t *testing.T) {
	client := kioskClient()
	// Pay period for Wed Jan 17: Sat Jan 6 through now, split at Jan 13
	client.remoteEvents = []domain.ClockEvent{
		remoteEv(1, 1, "100", domain.ActionClockIn, domain.UnixMs(at(8, 9))),
		remoteEv(2, 1, "100", domain.ActionClockOut, domain.UnixMs(at(8, 17))),
		remoteEv(3, 1, "100", domain.ActionClockIn, domain.UnixMs(at(15, 9))),
		remoteEv(4, 1, "100", domain.ActionClockOut, domain.UnixMs(at(15, 12))),
	}

	payroll, syncSvc := newPayrollFixture(t, client)
	if err := syncSvc.Refresh(wed); err != nil {
		t.Fatalf("sync refresh failed: %v", err)
	}

	report, err := payroll.Report(wed)
	if err != nil {
		t.Fatalf("Report failed: %v", err)
	}

	if !report.PeriodStart.Equal(at(6, 0)) {
		t.Fatalf("expected period start Jan 6, got %v", report.PeriodStart)
	}
	if len(report.Lines) != 1 {
		t.Fatalf("expected 1 payroll line, got %d", len(report.Lines))
	}

	line := report.Lines[0]
	if line.EmployeeID != 1 || line.Name != "Ann Lee" {
		t.Fatalf("unexpected line: %+v", line)
	}
	if line.Week1Hours != 8 || line.Week2Hours != 3 {
		t.Fatalf("expected 8h/3h split, got %v/%v", line.Week1Hours, line.Week2Hours)
	}
	if line.TotalHours != 11 || line.Overtime != 0 {
		t.Fatalf("expected 11h total no overtime, got %v total %v ot", line.TotalHours, line.Overtime)
	}
}

func TestPayrollReportOvertime(t *testing.T) {
	client := kioskClient()
	// One continuous 44 hour span in week 1
	client.remoteEvents = []domain.ClockEvent{
		remoteEv(1, 1, "100", domain.ActionClockIn, domain.UnixMs(at(8, 0))),
		remoteEv(2, 1, "100", domain.ActionClockOut, domain.UnixMs(at(9, 20))),
	}

	payroll, syncSvc := newPayrollFixture(t, client)
	if err := syncSvc.Refresh(wed); err != nil {
		t.Fatalf("sync refresh failed: %v", err)
	}

	report, err := payroll.Report(wed)
	if err != nil {
		t.Fatalf("Report failed: %v", err)
	}
	if len(report.Lines) != 1 {
		t.Fatalf("expected 1 payroll line, got %d", len(report.Lines))
	}

	line := report.Lines[0]
	if line.Week1Hours != 44 {
		t.Fatalf("expected 44h in week 1, got %v", line.Week1Hours)
	}
	if line.RegularHours != 40 || line.Overtime != 4 {
		t.Fatalf("expected 40 regular + 4 overtime, got %v + %v", line.RegularHours, line.Overtime)
	}
}

func TestPayrollReportSkipsAdminsAndIdle(t *testing.T) {
	client := kioskClient()
	// Only the admin (Bob, level 1) has events
	client.remoteEvents = []domain.ClockEvent{
		remoteEv(1, 2, "100", domain.ActionClockIn, domain.UnixMs(at(15, 9))),
		remoteEv(2, 2, "100", domain.ActionClockOut, domain.UnixMs(at(15, 17))),
	}

	payroll, syncSvc := newPayrollFixture(t, client)
	if err := syncSvc.Refresh(wed); err != nil {
		t.Fatalf("sync refresh failed: %v", err)
	}

	report, err := payroll.Report(wed)
	if err != nil {
		t.Fatalf("Report failed: %v", err)
	}
	if len(report.Lines) != 0 {
		t.Fatalf("expected no payroll lines, got %+v", report.Lines)
	}
}

func TestHoursForEmployee(t *testing.T) {
	client := kioskClient()
	client.remoteEvents = []domain.ClockEvent{
		remoteEv(1, 1, "100", domain.ActionClockIn, domain.UnixMs(at(15, 9))),
		remoteEv(2, 1, "100", domain.ActionClockOut, domain.UnixMs(at(15, 17))),
	}

	payroll, syncSvc := newPayrollFixture(t, client)
	if err := syncSvc.Refresh(wed); err != nil {
		t.Fatalf("sync refresh failed: %v", err)
	}

	hours, err := payroll.HoursForEmployee(1, wed)
	if err != nil {
		t.Fatalf("HoursForEmployee failed: %v", err)
	}
	if hours != 8 {
		t.Fatalf("expected 8 hours, got %v", hours)
	}
}
