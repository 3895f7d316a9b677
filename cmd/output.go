// ABOUTME: Human-readable table rendering shared by the role commands
// ABOUTME: Uses lipgloss tables so CLI output matches the TUI's look

package cmd

import (
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/markalston/cabdesk/internal/client"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...)
}

// formatBookings renders bookings with status(b) in the last column
func formatBookings(bookings []client.Booking, status func(client.Booking) string) string {
	t := newTable("ID", "Employee", "Pickup", "Drop", "Pickup Time", "Cab", "Duration", "Status")
	for _, b := range bookings {
		t.Row(
			strconv.FormatInt(b.ID, 10),
			b.EmployeeName,
			b.Pickup,
			b.DropLocation,
			b.PickupTime,
			b.CabType,
			strconv.Itoa(b.DurationMin)+" min",
			status(b),
		)
	}
	return t.String()
}

// formatDrivers renders the driver roster
func formatDrivers(drivers []client.Driver) string {
	t := newTable("ID", "Name", "Email", "Cab", "Status")
	for _, d := range drivers {
		availability := "Busy"
		if d.Available {
			availability = "Available"
		}
		t.Row(strconv.FormatInt(d.ID, 10), d.Name, d.Email, d.CabType, availability)
	}
	return t.String()
}

func adminStatus(b client.Booking) string {
	return client.StatusLabel(b.Status)
}

func hrStatus(b client.Booking) string {
	if b.Completed {
		return "Completed"
	}
	return "Pending"
}

func tripStatus(now time.Time) func(client.Booking) string {
	return func(b client.Booking) string {
		return client.TripLabel(b, now)
	}
}
