// ABOUTME: Tests for role-specific booking and driver endpoints
// ABOUTME: Verifies bearer token propagation, query params, and status labels

package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestListBookings_SendsBearerToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/admin/bookings" {
			t.Errorf("expected path /admin/bookings, got %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok-1" {
			t.Errorf("expected bearer header, got %q", got)
		}
		json.NewEncoder(w).Encode([]Booking{{ID: 1, EmployeeName: "Ann", Status: "PENDING"}})
	}))
	defer server.Close()

	c := New(server.URL, WithTokenSource(func() string { return "tok-1" }))
	bookings, err := c.ListBookings(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bookings) != 1 || bookings[0].EmployeeName != "Ann" {
		t.Errorf("unexpected bookings %+v", bookings)
	}
}

func TestListDrivers_NoTokenOmitsHeader(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "" {
			t.Error("expected no Authorization header without a token")
		}
		json.NewEncoder(w).Encode([]Driver{{ID: 3, Name: "Dee", Available: true}})
	}))
	defer server.Close()

	c := New(server.URL, WithTokenSource(func() string { return "" }))
	drivers, err := c.ListDrivers(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(drivers) != 1 || !drivers[0].Available {
		t.Errorf("unexpected drivers %+v", drivers)
	}
}

func TestMyBookings_EmailQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/hr/mybookings" {
			t.Errorf("expected path /hr/mybookings, got %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("email"); got != "hr+1@corp.com" {
			t.Errorf("expected email query, got %q", got)
		}
		json.NewEncoder(w).Encode([]Booking{})
	}))
	defer server.Close()

	c := New(server.URL)
	bookings, err := c.MyBookings(context.Background(), "hr+1@corp.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bookings) != 0 {
		t.Errorf("expected no bookings, got %d", len(bookings))
	}
}

func TestCompleteTrip(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("expected PUT, got %s", r.Method)
		}
		if r.URL.Path != "/driver/complete-trip/42" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte("Trip marked as completed"))
	}))
	defer server.Close()

	c := New(server.URL)
	ack, err := c.CompleteTrip(context.Background(), 42)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ack != "Trip marked as completed" {
		t.Errorf("unexpected ack %q", ack)
	}
}

func TestCreateBooking_Forbidden(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	c := New(server.URL)
	_, err := c.CreateBooking(context.Background(), Booking{EmployeeName: "Ann"})

	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusForbidden {
		t.Errorf("expected 403 APIError, got %v", err)
	}
}

func TestStatusLabel(t *testing.T) {
	tests := []struct {
		status string
		want   string
	}{
		{"COMPLETED", "Completed"},
		{"pending assignment", "Pending"},
		{"Assigned", "Assigned"},
		{"CANCELLED", "CANCELLED"},
		{"", ""},
	}

	for _, tc := range tests {
		t.Run(tc.status, func(t *testing.T) {
			if got := StatusLabel(tc.status); got != tc.want {
				t.Errorf("StatusLabel(%q) = %q, want %q", tc.status, got, tc.want)
			}
		})
	}
}

func TestTripLabel(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.Local)

	tests := []struct {
		name    string
		booking Booking
		want    string
	}{
		{"completed wins", Booking{Completed: true, PickupTime: "2030-01-01T10:00"}, "Completed"},
		{"future pickup", Booking{PickupTime: "2025-03-01T13:00"}, "Upcoming"},
		{"past pickup", Booking{PickupTime: "2025-03-01T11:00:00"}, "In Progress"},
		{"unparseable", Booking{PickupTime: "soon"}, "In Progress"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := TripLabel(tc.booking, now); got != tc.want {
				t.Errorf("TripLabel() = %q, want %q", got, tc.want)
			}
		})
	}
}
