package services

import (
	"sort"
	"time"

	"altn-timeclock/internal/core/domain"
)

// Hours above this per week are paid as overtime
const overtimeWeeklyHours = 40.0

// PayrollLine is one employee's totals for a pay period
type PayrollLine struct {
	EmployeeID   int64   `json:"employee_id"`
	Name         string  `json:"name"`
	Phone        string  `json:"phone,omitempty"`
	Week1Hours   float64 `json:"week1_hours"`
	Week2Hours   float64 `json:"week2_hours"`
	RegularHours float64 `json:"regular_hours"`
	Overtime     float64 `json:"overtime_hours"`
	TotalHours   float64 `json:"total_hours"`
}

// PayrollReport covers the two-week pay period ending the upcoming Friday
type PayrollReport struct {
	PeriodStart time.Time     `json:"period_start"`
	PeriodEnd   time.Time     `json:"period_end"`
	Lines       []PayrollLine `json:"lines"`
}

// PayrollService builds pay-period reports from the reconciled events
type PayrollService struct {
	reconcile *ReconcileService
	roster    *RosterService
}

// NewPayrollService creates a new payroll service
func NewPayrollService(reconcile *ReconcileService, roster *RosterService) *PayrollService {
	return &PayrollService{reconcile: reconcile, roster: roster}
}

// Report computes per-employee hours for the pay period containing now.
// The period runs thirteen days before the upcoming Friday through now;
// overtime is time above forty hours in either week.
func (s *PayrollService) Report(now time.Time) (*PayrollReport, error) {
	start, end := payPeriodBounds(now)
	weekSplit := start.AddDate(0, 0, 7)

	startMs := domain.UnixMs(start)
	splitMs := domain.UnixMs(weekSplit)
	endMs := domain.UnixMs(end)

	report := &PayrollReport{
		PeriodStart: start,
		PeriodEnd:   end,
		Lines:       make([]PayrollLine, 0),
	}

	for _, emp := range s.roster.Employees() {
		if !emp.IsStaff() {
			continue
		}

		week1, err := s.reconcile.HoursWorkedBetween(emp.ID, startMs, splitMs)
		if err != nil {
			return nil, err
		}
		week2, err := s.reconcile.HoursWorkedBetween(emp.ID, splitMs, endMs)
		if err != nil {
			return nil, err
		}
		if week1 == 0 && week2 == 0 {
			continue
		}

		regular := clampWeek(week1) + clampWeek(week2)
		total := week1 + week2

		report.Lines = append(report.Lines, PayrollLine{
			EmployeeID:   emp.ID,
			Name:         emp.FullName(),
			Phone:        emp.Phone,
			Week1Hours:   week1,
			Week2Hours:   week2,
			RegularHours: regular,
			Overtime:     total - regular,
			TotalHours:   total,
		})
	}

	sort.Slice(report.Lines, func(i, j int) bool {
		return report.Lines[i].Name < report.Lines[j].Name
	})
	return report, nil
}

// HoursForEmployee returns one employee's total hours in the current pay period
func (s *PayrollService) HoursForEmployee(employeeID int64, now time.Time) (float64, error) {
	start, end := payPeriodBounds(now)
	return s.reconcile.HoursWorkedBetween(employeeID, domain.UnixMs(start), domain.UnixMs(end))
}

func clampWeek(hours float64) float64 {
	if hours > overtimeWeeklyHours {
		return overtimeWeeklyHours
	}
	return hours
}
