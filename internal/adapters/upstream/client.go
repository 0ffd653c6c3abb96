// Package upstream talks to the HQ timeclock server over HTTP/JSON.
package upstream

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"altn-timeclock/internal/core/domain"
)

// Client pushes clock events to the upstream server and fetches the
// merged remote view, the employee roster and the location list.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates an upstream client
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// pushRequest is the POST /clock-event body
type pushRequest struct {
	LocalID    int64  `json:"localID"`
	EmployeeID int64  `json:"employeeID"`
	LocationID string `json:"locationID"`
	Action     string `json:"action"`
	Timestamp  int64  `json:"timestamp"`
}

// pushResponse carries the server-assigned event id
type pushResponse struct {
	ID *int64 `json:"id"`
}

// remoteEvent is one row of GET /get-clock-events. Remote events carry
// only the server id plus the natural-key fields.
type remoteEvent struct {
	ID         int64  `json:"id"`
	EmployeeID int64  `json:"employeeID"`
	LocationID string `json:"locationID"`
	Action     string `json:"action"`
	Timestamp  int64  `json:"timestamp"`
}

// remoteEmployee is one row of GET /get-employees
type remoteEmployee struct {
	ID         int64   `json:"id"`
	FirstName  string  `json:"firstName"`
	LastName   string  `json:"lastName"`
	Phone      string  `json:"phone"`
	Password   *string `json:"password"`
	UserLevel  int     `json:"userlevel"`
	LocationID *string `json:"locationID"`
}

// remoteLocation is one row of GET /get-locations
type remoteLocation struct {
	ID          int64   `json:"id"`
	Location    string  `json:"location"`
	Franchise   *string `json:"franchise"`
	LocationNum *string `json:"locationNum"`
}

// changeRequestBody is the POST /clock-event-requests body
type changeRequestBody struct {
	ID         int64  `json:"id"`
	EmployeeID int64  `json:"employeeID"`
	LocationID string `json:"locationID"`
	Action     string `json:"action"`
	Timestamp  int64  `json:"timestamp"`
}

// changeRequestResponse is the POST /clock-event-requests response
type changeRequestResponse struct {
	Success bool `json:"success"`
}

// Push sends one local event upstream and returns the server-assigned id
func (c *Client) Push(event domain.ClockEvent) (int64, error) {
	body := pushRequest{
		LocalID:    event.LocalID,
		EmployeeID: event.EmployeeID,
		LocationID: event.LocationID,
		Action:     string(event.Action),
		Timestamp:  event.Timestamp,
	}

	var result pushResponse
	if err := c.postJSON("/clock-event", body, &result); err != nil {
		return 0, err
	}
	if result.ID == nil {
		return 0, fmt.Errorf("%w: push response missing id", domain.ErrUpstreamDecode)
	}
	return *result.ID, nil
}

// FetchEventsSince returns the remote events with timestamp >= sinceMs.
// Events materialized from this call are already synced by definition.
func (c *Client) FetchEventsSince(sinceMs int64) ([]domain.ClockEvent, error) {
	var rows []remoteEvent
	url := fmt.Sprintf("%s/get-clock-events?since=%d", c.baseURL, sinceMs)
	if err := c.getJSON(url, &rows); err != nil {
		return nil, err
	}

	events := make([]domain.ClockEvent, 0, len(rows))
	for _, row := range rows {
		serverID := row.ID
		events = append(events, domain.ClockEvent{
			ServerID:   &serverID,
			EmployeeID: row.EmployeeID,
			LocationID: row.LocationID,
			Action:     domain.ClockAction(row.Action),
			Timestamp:  row.Timestamp,
			Synced:     true,
		})
	}
	return events, nil
}

// FetchEmployees returns the full roster; the caller filters access levels
func (c *Client) FetchEmployees() ([]domain.Employee, error) {
	var rows []remoteEmployee
	if err := c.getJSON(c.baseURL+"/get-employees", &rows); err != nil {
		return nil, err
	}

	employees := make([]domain.Employee, 0, len(rows))
	for _, row := range rows {
		passcode := ""
		if row.Password != nil {
			passcode = *row.Password
		}
		employees = append(employees, domain.Employee{
			ID:         row.ID,
			FirstName:  row.FirstName,
			LastName:   row.LastName,
			Phone:      row.Phone,
			Passcode:   passcode,
			UserLevel:  row.UserLevel,
			LocationID: row.LocationID,
		})
	}
	return employees, nil
}

// FetchLocations returns the location list
func (c *Client) FetchLocations() ([]domain.Location, error) {
	var rows []remoteLocation
	if err := c.getJSON(c.baseURL+"/get-locations", &rows); err != nil {
		return nil, err
	}

	locations := make([]domain.Location, 0, len(rows))
	for _, row := range rows {
		locations = append(locations, domain.Location{
			ID:          row.ID,
			Name:        row.Location,
			Franchise:   row.Franchise,
			LocationNum: row.LocationNum,
		})
	}
	return locations, nil
}

// SendChangeRequest submits an admin edit for upstream approval
func (c *Client) SendChangeRequest(cr domain.ChangeRequest) error {
	body := changeRequestBody{
		ID:         cr.ServerID,
		EmployeeID: cr.EmployeeID,
		LocationID: cr.LocationID,
		Action:     string(cr.Action),
		Timestamp:  cr.Timestamp,
	}

	var result changeRequestResponse
	if err := c.postJSON("/clock-event-requests", body, &result); err != nil {
		return err
	}
	if !result.Success {
		return domain.ErrUpstreamRejected
	}
	return nil
}

func (c *Client) postJSON(path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, out)
}

func (c *Client) getJSON(url string, out interface{}) error {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: status %d", domain.ErrUpstreamUnavailable, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrUpstreamDecode, err)
	}
	return nil
}
