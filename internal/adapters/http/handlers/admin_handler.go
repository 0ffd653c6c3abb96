package handlers

import (
	"errors"
	"strconv"
	"time"

	"altn-timeclock/internal/adapters/persistence/repositories"
	"altn-timeclock/internal/core/domain"
	"altn-timeclock/internal/core/services"
	"altn-timeclock/internal/pkg/pagination"
	"altn-timeclock/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AdminHandler handles the admin section: event browsing, payroll
// reports, change requests, and manual sweep/sync triggers.
type AdminHandler struct {
	events           repositories.EventRepository
	reconcileService *services.ReconcileService
	payrollService   *services.PayrollService
	syncService      *services.SyncService
	autoClockOut     *services.AutoClockOutService
	rosterService    *services.RosterService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(
	events repositories.EventRepository,
	reconcileService *services.ReconcileService,
	payrollService *services.PayrollService,
	syncService *services.SyncService,
	autoClockOut *services.AutoClockOutService,
	rosterService *services.RosterService,
) *AdminHandler {
	return &AdminHandler{
		events:           events,
		reconcileService: reconcileService,
		payrollService:   payrollService,
		syncService:      syncService,
		autoClockOut:     autoClockOut,
		rosterService:    rosterService,
	}
}

// eventResponse is one event row in the admin browser
type eventResponse struct {
	LocalID    int64              `json:"local_id"`
	ServerID   *int64             `json:"server_id,omitempty"`
	EmployeeID int64              `json:"employee_id"`
	LocationID string             `json:"location_id"`
	Action     domain.ClockAction `json:"action"`
	Timestamp  int64              `json:"timestamp"`
	Synced     bool               `json:"synced"`
}

// ListEvents returns a page of stored events, newest first.
// Query params: page, limit, employee_id (0 or absent means all).
func (h *AdminHandler) ListEvents(c *fiber.Ctx) error {
	params := pagination.GetParams(c)
	employeeID, _ := strconv.ParseInt(c.Query("employee_id", "0"), 10, 64)

	events, total, err := h.events.List(params.Offset, params.Limit, employeeID)
	if err != nil {
		return response.InternalServerError(c, "Failed to load events")
	}

	rows := make([]eventResponse, 0, len(events))
	for _, ev := range events {
		rows = append(rows, eventResponse{
			LocalID:    ev.LocalID,
			ServerID:   ev.ServerID,
			EmployeeID: ev.EmployeeID,
			LocationID: ev.LocationID,
			Action:     ev.Action,
			Timestamp:  ev.Timestamp,
			Synced:     ev.Synced,
		})
	}

	return response.Success(c, "Events retrieved", pagination.NewResponse(rows, params, total))
}

// WeeklyGroups returns the recent weekly shift groups. employee_id 0
// means every employee, pairs merged per week.
func (h *AdminHandler) WeeklyGroups(c *fiber.Ctx) error {
	employeeID, _ := strconv.ParseInt(c.Query("employee_id", "0"), 10, 64)

	groups, err := h.reconcileService.WeeklyGroups(employeeID, time.Now())
	if err != nil {
		return response.InternalServerError(c, "Failed to load weekly groups")
	}

	return response.Success(c, "Weekly groups retrieved", fiber.Map{
		"weeks": toWeekGroupResponses(groups, time.Now()),
	})
}

// PayrollReport returns per-employee hours for the current pay period
func (h *AdminHandler) PayrollReport(c *fiber.Ctx) error {
	report, err := h.payrollService.Report(time.Now())
	if err != nil {
		return response.InternalServerError(c, "Failed to build payroll report")
	}

	return response.Success(c, "Payroll report retrieved", report)
}

// Hours returns one employee's worked hours inside [start, end).
// Query params: employee_id, start, end (milliseconds since epoch).
func (h *AdminHandler) Hours(c *fiber.Ctx) error {
	employeeID, _ := strconv.ParseInt(c.Query("employee_id"), 10, 64)
	startMs, _ := strconv.ParseInt(c.Query("start"), 10, 64)
	endMs, _ := strconv.ParseInt(c.Query("end"), 10, 64)

	if employeeID == 0 {
		return response.BadRequest(c, "Employee ID is required")
	}
	if startMs <= 0 || endMs <= startMs {
		return response.BadRequest(c, "Valid start and end are required")
	}

	hours, err := h.reconcileService.HoursWorkedBetween(employeeID, startMs, endMs)
	if err != nil {
		return response.InternalServerError(c, "Failed to compute hours")
	}

	return response.Success(c, "Hours computed", fiber.Map{
		"employee_id": employeeID,
		"start":       startMs,
		"end":         endMs,
		"hours":       hours,
	})
}

// UpdateEventRequest represents an admin correction of a stored event
type UpdateEventRequest struct {
	LocationID string `json:"location_id"`
	Action     string `json:"action"`
	Timestamp  int64  `json:"timestamp"`
}

// UpdateEvent corrects a stored event in place. If the event already
// has a server id the correction is also forwarded upstream as a
// change request, so both copies converge.
func (h *AdminHandler) UpdateEvent(c *fiber.Ctx) error {
	localID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || localID <= 0 {
		return response.BadRequest(c, "Invalid event id")
	}

	var req UpdateEventRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	action := domain.ClockAction(req.Action)
	if action != domain.ActionClockIn && action != domain.ActionClockOut {
		return response.BadRequest(c, "Action must be clock_in or clock_out")
	}
	if req.Timestamp <= 0 {
		return response.BadRequest(c, "Timestamp is required")
	}

	event, err := h.events.ByLocalID(localID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return response.NotFound(c, "Event not found")
		}
		return response.InternalServerError(c, "Failed to load event")
	}

	event.LocationID = req.LocationID
	event.Action = action
	event.Timestamp = req.Timestamp

	if err := h.events.Update(*event); err != nil {
		return response.InternalServerError(c, "Failed to update event")
	}

	if event.ServerID != nil {
		cr := domain.ChangeRequest{
			ServerID:   *event.ServerID,
			EmployeeID: event.EmployeeID,
			LocationID: event.LocationID,
			Action:     event.Action,
			Timestamp:  event.Timestamp,
		}
		if err := h.syncService.SubmitChangeRequest(cr); err != nil {
			switch {
			case errors.Is(err, domain.ErrUpstreamRejected):
				return response.Conflict(c, "Updated locally but rejected by server")
			case errors.Is(err, domain.ErrUpstreamUnavailable):
				return response.BadGateway(c, "Updated locally, server unreachable")
			default:
				return response.InternalServerError(c, "Updated locally, upstream submit failed")
			}
		}
	}

	return response.Success(c, "Event updated", eventResponse{
		LocalID:    event.LocalID,
		ServerID:   event.ServerID,
		EmployeeID: event.EmployeeID,
		LocationID: event.LocationID,
		Action:     event.Action,
		Timestamp:  event.Timestamp,
		Synced:     event.Synced,
	})
}

// ClearEvents wipes the local event store. Destructive, owner only.
func (h *AdminHandler) ClearEvents(c *fiber.Ctx) error {
	if err := h.events.Clear(); err != nil {
		return response.InternalServerError(c, "Failed to clear events")
	}
	return response.Success(c, "Event store cleared", nil)
}

// ChangeRequestBody represents an admin edit of a synced event
type ChangeRequestBody struct {
	ServerID   int64  `json:"server_id"`
	EmployeeID int64  `json:"employee_id"`
	LocationID string `json:"location_id"`
	Action     string `json:"action"`
	Timestamp  int64  `json:"timestamp"`
}

// SubmitChangeRequest forwards an event correction to the upstream
// server. Corrections apply remotely; the next sync pulls them back.
func (h *AdminHandler) SubmitChangeRequest(c *fiber.Ctx) error {
	var req ChangeRequestBody
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.ServerID == 0 {
		return response.BadRequest(c, "Server ID is required")
	}
	action := domain.ClockAction(req.Action)
	if action != domain.ActionClockIn && action != domain.ActionClockOut {
		return response.BadRequest(c, "Action must be clock_in or clock_out")
	}
	if req.Timestamp <= 0 {
		return response.BadRequest(c, "Timestamp is required")
	}

	cr := domain.ChangeRequest{
		ServerID:   req.ServerID,
		EmployeeID: req.EmployeeID,
		LocationID: req.LocationID,
		Action:     action,
		Timestamp:  req.Timestamp,
	}

	if err := h.syncService.SubmitChangeRequest(cr); err != nil {
		switch {
		case errors.Is(err, domain.ErrUpstreamRejected):
			return response.Conflict(c, "Change request rejected by server")
		case errors.Is(err, domain.ErrUpstreamUnavailable):
			return response.BadGateway(c, "Server unreachable, try again later")
		default:
			return response.InternalServerError(c, "Failed to submit change request")
		}
	}

	return response.Success(c, "Change request submitted", nil)
}

// TriggerSweep runs the auto clock-out sweep immediately
func (h *AdminHandler) TriggerSweep(c *fiber.Ctx) error {
	closed, err := h.autoClockOut.Sweep(time.Now())
	if err != nil {
		return response.InternalServerError(c, "Sweep failed")
	}

	return response.Success(c, "Sweep completed", fiber.Map{
		"closed": closed,
	})
}

// TriggerSync pushes the unsynced backlog and refreshes the remote view
func (h *AdminHandler) TriggerSync(c *fiber.Ctx) error {
	h.syncService.PushUnsynced()

	if err := h.syncService.Refresh(time.Now()); err != nil {
		if errors.Is(err, domain.ErrUpstreamUnavailable) {
			return response.BadGateway(c, "Server unreachable, try again later")
		}
		return response.InternalServerError(c, "Sync failed")
	}

	return response.Success(c, "Sync completed", nil)
}

// RefreshRoster re-fetches the employee roster and locations
func (h *AdminHandler) RefreshRoster(c *fiber.Ctx) error {
	if err := h.rosterService.Refresh(); err != nil {
		if errors.Is(err, domain.ErrUpstreamUnavailable) {
			return response.BadGateway(c, "Server unreachable, try again later")
		}
		return response.InternalServerError(c, "Roster refresh failed")
	}

	return response.Success(c, "Roster refreshed", fiber.Map{
		"employees": len(h.rosterService.Employees()),
		"locations": len(h.rosterService.Locations()),
	})
}
