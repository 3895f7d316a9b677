// ABOUTME: Shared pieces of the role dashboards: API surfaces, messages, and table helpers
// ABOUTME: Each dashboard is a bubbletea model the app swaps in after routing

package dashboard

import (
	"context"
	"errors"
	"strconv"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/markalston/cabdesk/internal/client"
	"github.com/markalston/cabdesk/internal/session"
	"github.com/markalston/cabdesk/internal/tui/styles"
)

// AdminAPI is what the admin dashboard calls; *client.Client satisfies it
type AdminAPI interface {
	ListBookings(ctx context.Context) ([]client.Booking, error)
	ListDrivers(ctx context.Context) ([]client.Driver, error)
	AddDriver(ctx context.Context, d client.Driver) (string, error)
}

// HRAPI is what the HR dashboard calls
type HRAPI interface {
	MyBookings(ctx context.Context, email string) ([]client.Booking, error)
	CreateBooking(ctx context.Context, b client.Booking) (string, error)
}

// DriverAPI is what the driver dashboard calls
type DriverAPI interface {
	MyTrips(ctx context.Context, email string) ([]client.Booking, error)
	CompleteTrip(ctx context.Context, bookingID int64) (string, error)
}

// NoticeMsg asks the app to show a transient notification
type NoticeMsg struct {
	Text  string
	Error bool
}

func notice(text string, isErr bool) tea.Cmd {
	return func() tea.Msg { return NoticeMsg{Text: text, Error: isErr} }
}

// failure builds an error notice, preferring the server's own message
func failure(fallback string, err error) tea.Cmd {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return notice(fallback+": "+apiErr.Message, true)
	}
	return notice(fallback, true)
}

// Model is the interface the app uses for whichever dashboard is active
type Model interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (Model, tea.Cmd)
	View() string
	SetSize(width, height int)
	// Editing reports whether a form has focus and should receive every key
	Editing() bool
	Shortcuts() []string
}

// newTable builds a focused bubbles table in the app palette
func newTable(columns []table.Column, height int) table.Model {
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(max(3, height)),
	)
	t.SetStyles(styles.TableStyles())
	return t
}

func bookingRow(b client.Booking, status string) table.Row {
	return table.Row{
		strconv.FormatInt(b.ID, 10),
		b.EmployeeName,
		b.Pickup,
		b.DropLocation,
		b.PickupTime,
		b.CabType,
		strconv.Itoa(b.DurationMin) + " min",
		status,
	}
}

func bookingColumns(width int, lastTitle string) []table.Column {
	// id, employee, pickup, drop, time, cab, duration, status
	fixed := 6 + 17 + 10 + 9 + 12
	flex := max(30, width-fixed-8*2)
	return []table.Column{
		{Title: "ID", Width: 6},
		{Title: "Employee", Width: flex / 3},
		{Title: "Pickup", Width: flex / 3},
		{Title: "Drop", Width: flex - 2*(flex/3)},
		{Title: "Pickup Time", Width: 17},
		{Title: "Cab", Width: 10},
		{Title: "Duration", Width: 9},
		{Title: lastTitle, Width: 12},
	}
}

// New returns the dashboard for the user's role, or the unknown-role view
func New(ctx context.Context, api *client.Client, user session.UserProfile) Model {
	switch user.Role {
	case session.RoleAdmin:
		return NewAdmin(ctx, api)
	case session.RoleHR:
		return NewHR(ctx, api, user.Email)
	case session.RoleDriver:
		return NewDriver(ctx, api, user.Email)
	}
	return NewUnknown(user.Role)
}
