package handlers

import (
	"errors"
	"time"

	"altn-timeclock/internal/core/domain"
	"altn-timeclock/internal/core/services"
	"altn-timeclock/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// ClockHandler handles the kiosk endpoints: clock in/out, the
// currently-clocked-in board, shift history, and the roster lists.
type ClockHandler struct {
	clockService     *services.ClockService
	reconcileService *services.ReconcileService
	rosterService    *services.RosterService
}

// NewClockHandler creates a new clock handler
func NewClockHandler(
	clockService *services.ClockService,
	reconcileService *services.ReconcileService,
	rosterService *services.RosterService,
) *ClockHandler {
	return &ClockHandler{
		clockService:     clockService,
		reconcileService: reconcileService,
		rosterService:    rosterService,
	}
}

// ClockRequest represents a kiosk clock in/out request body
type ClockRequest struct {
	EmployeeID int64  `json:"employee_id"`
	LocationID string `json:"location_id"`
	Action     string `json:"action"`
	Passcode   string `json:"passcode"`
}

// HistoryRequest represents a shift history request body. It is a POST
// because the passcode travels in the body.
type HistoryRequest struct {
	EmployeeID int64  `json:"employee_id"`
	Passcode   string `json:"passcode"`
}

// Clock handles a clock in/out
func (h *ClockHandler) Clock(c *fiber.Ctx) error {
	var req ClockRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.EmployeeID == 0 {
		return response.BadRequest(c, "Employee ID is required")
	}
	if req.Passcode == "" {
		return response.BadRequest(c, "Passcode is required")
	}

	input := services.ClockInput{
		EmployeeID: req.EmployeeID,
		LocationID: req.LocationID,
		Action:     domain.ClockAction(req.Action),
		Passcode:   req.Passcode,
	}

	event, err := h.clockService.Clock(input, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidAction):
			return response.BadRequest(c, "Action must be clock_in or clock_out")
		case errors.Is(err, domain.ErrLocationRequired):
			return response.BadRequest(c, "Location is required")
		case errors.Is(err, domain.ErrEmployeeNotFound):
			return response.NotFound(c, "Employee not found")
		case errors.Is(err, domain.ErrInvalidPasscode):
			return response.Unauthorized(c, "Invalid passcode")
		case errors.Is(err, domain.ErrAlreadyClockedIn):
			return response.Conflict(c, "Already clocked in")
		case errors.Is(err, domain.ErrNotClockedIn):
			return response.Conflict(c, "Not clocked in")
		default:
			return response.InternalServerError(c, "Failed to record clock event")
		}
	}

	return response.Created(c, "Clock event recorded", fiber.Map{
		"local_id":    event.LocalID,
		"employee_id": event.EmployeeID,
		"location_id": event.LocationID,
		"action":      event.Action,
		"timestamp":   event.Timestamp,
		"synced":      event.Synced,
	})
}

// ClockedIn returns the currently-clocked-in board
func (h *ClockHandler) ClockedIn(c *fiber.Ctx) error {
	entries, err := h.reconcileService.CurrentlyClockedIn()
	if err != nil {
		return response.InternalServerError(c, "Failed to load clocked-in list")
	}

	return response.Success(c, "Clocked-in list retrieved", fiber.Map{
		"entries": entries,
		"count":   len(entries),
	})
}

// History returns the employee's recent weekly shift groups
func (h *ClockHandler) History(c *fiber.Ctx) error {
	var req HistoryRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.EmployeeID == 0 {
		return response.BadRequest(c, "Employee ID is required")
	}
	if req.Passcode == "" {
		return response.BadRequest(c, "Passcode is required")
	}

	groups, err := h.clockService.History(req.EmployeeID, req.Passcode, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrEmployeeNotFound):
			return response.NotFound(c, "Employee not found")
		case errors.Is(err, domain.ErrInvalidPasscode):
			return response.Unauthorized(c, "Invalid passcode")
		default:
			return response.InternalServerError(c, "Failed to load history")
		}
	}

	return response.Success(c, "History retrieved", fiber.Map{
		"weeks": toWeekGroupResponses(groups, time.Now()),
	})
}

// Employees returns the cached roster for the kiosk picker
func (h *ClockHandler) Employees(c *fiber.Ctx) error {
	employees := h.rosterService.Employees()

	list := make([]fiber.Map, 0, len(employees))
	for _, emp := range employees {
		list = append(list, fiber.Map{
			"id":         emp.ID,
			"name":       emp.FullName(),
			"user_level": emp.UserLevel,
		})
	}

	return response.Success(c, "Employees retrieved", fiber.Map{
		"employees": list,
	})
}

// Locations returns the cached location list
func (h *ClockHandler) Locations(c *fiber.Ctx) error {
	locations := h.rosterService.Locations()

	list := make([]fiber.Map, 0, len(locations))
	for _, loc := range locations {
		list = append(list, fiber.Map{
			"id":        loc.ID,
			"name":      loc.Name,
			"franchise": loc.Franchise,
			"key":       loc.Key(),
		})
	}

	return response.Success(c, "Locations retrieved", fiber.Map{
		"locations": list,
	})
}

// toWeekGroupResponses flattens weekly groups for the JSON response
func toWeekGroupResponses(groups []domain.WeekGroup, now time.Time) []fiber.Map {
	out := make([]fiber.Map, 0, len(groups))
	for _, g := range groups {
		pairs := make([]fiber.Map, 0, len(g.Pairs))
		var totalHours float64
		for _, p := range g.Pairs {
			pair := fiber.Map{
				"employee_id": p.In.EmployeeID,
				"location_id": p.In.LocationID,
				"in":          p.In.Timestamp,
				"hours":       p.Duration(now).Hours(),
			}
			if p.Out != nil {
				pair["out"] = p.Out.Timestamp
			}
			pairs = append(pairs, pair)
			totalHours += p.Duration(now).Hours()
		}
		out = append(out, fiber.Map{
			"id":          g.ID,
			"start":       g.Start,
			"end":         g.End,
			"pairs":       pairs,
			"total_hours": totalHours,
		})
	}
	return out
}
