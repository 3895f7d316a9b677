// ABOUTME: Role-specific API calls for admin, HR, and driver dashboards
// ABOUTME: Every call here is authenticated with the session's bearer token

package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Booking represents a cab booking
type Booking struct {
	ID           int64  `json:"id,omitempty"`
	EmployeeName string `json:"employeeName"`
	Pickup       string `json:"pickup"`
	DropLocation string `json:"dropLocation"`
	PickupTime   string `json:"pickupTime"`
	CabType      string `json:"cabType"`
	BookingDate  string `json:"bookingDate,omitempty"`
	Status       string `json:"status,omitempty"`
	HREmail      string `json:"hrEmail"`
	DriverEmail  string `json:"driverEmail,omitempty"`
	CreatedAt    string `json:"createdAt,omitempty"`
	DurationMin  int    `json:"durationMin"`
	Completed    bool   `json:"completed,omitempty"`
}

// pickupLayouts are the timestamp shapes the backend is known to emit
var pickupLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
}

// PickupAt parses PickupTime as local time
func (b Booking) PickupAt() (time.Time, bool) {
	for _, layout := range pickupLayouts {
		if t, err := time.ParseInLocation(layout, b.PickupTime, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Driver represents a registered cab driver
type Driver struct {
	ID        int64  `json:"id,omitempty"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	CabType   string `json:"cabType"`
	Available bool   `json:"available,omitempty"`
}

// ListBookings calls GET /admin/bookings
func (c *Client) ListBookings(ctx context.Context) ([]Booking, error) {
	var bookings []Booking
	if err := c.getJSON(ctx, "/admin/bookings", nil, &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

// ListDrivers calls GET /admin/view-drivers
func (c *Client) ListDrivers(ctx context.Context) ([]Driver, error) {
	var drivers []Driver
	if err := c.getJSON(ctx, "/admin/view-drivers", nil, &drivers); err != nil {
		return nil, err
	}
	return drivers, nil
}

// AddDriver calls POST /admin/add-driver
func (c *Client) AddDriver(ctx context.Context, d Driver) (string, error) {
	return c.sendText(ctx, http.MethodPost, "/admin/add-driver", d)
}

// CreateBooking calls POST /hr/book
func (c *Client) CreateBooking(ctx context.Context, b Booking) (string, error) {
	return c.sendText(ctx, http.MethodPost, "/hr/book", b)
}

// MyBookings calls GET /hr/mybookings for the given HR email
func (c *Client) MyBookings(ctx context.Context, email string) ([]Booking, error) {
	var bookings []Booking
	if err := c.getJSON(ctx, "/hr/mybookings", url.Values{"email": {email}}, &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

// MyTrips calls GET /driver/mytrips for the given driver email
func (c *Client) MyTrips(ctx context.Context, email string) ([]Booking, error) {
	var trips []Booking
	if err := c.getJSON(ctx, "/driver/mytrips", url.Values{"email": {email}}, &trips); err != nil {
		return nil, err
	}
	return trips, nil
}

// CompleteTrip calls PUT /driver/complete-trip/{id}
func (c *Client) CompleteTrip(ctx context.Context, bookingID int64) (string, error) {
	return c.sendText(ctx, http.MethodPut, "/driver/complete-trip/"+strconv.FormatInt(bookingID, 10), nil)
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	resp, err := c.do(ctx, http.MethodGet, path, query, nil, true)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("invalid response from backend: %w", err)
	}
	return nil
}

func (c *Client) sendText(ctx context.Context, method, path string, body any) (string, error) {
	resp, err := c.do(ctx, method, path, nil, body, true)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	return readText(resp.Body)
}

// StatusLabel normalises a booking status for display
func StatusLabel(status string) string {
	lower := strings.ToLower(status)
	switch {
	case strings.Contains(lower, "completed"):
		return "Completed"
	case strings.Contains(lower, "pending"):
		return "Pending"
	case strings.Contains(lower, "assigned"):
		return "Assigned"
	}
	return status
}

// TripLabel describes a driver's trip relative to now
func TripLabel(b Booking, now time.Time) string {
	if b.Completed {
		return "Completed"
	}
	if at, ok := b.PickupAt(); ok && at.After(now) {
		return "Upcoming"
	}
	return "In Progress"
}
