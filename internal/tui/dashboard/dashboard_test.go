// ABOUTME: Tests for the role dashboards using in-memory API fakes
// ABOUTME: Commands are executed directly and their messages fed back into Update

package dashboard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/markalston/cabdesk/internal/client"
	"github.com/markalston/cabdesk/internal/forms"
	"github.com/markalston/cabdesk/internal/session"
)

type tickMsg struct{}

type fakeAPI struct {
	mu sync.Mutex

	bookings []client.Booking
	drivers  []client.Driver
	trips    []client.Booking

	listErr error

	added     []client.Driver
	created   []client.Booking
	completed []int64
	emails    []string
}

func (f *fakeAPI) ListBookings(context.Context) ([]client.Booking, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.bookings, nil
}

func (f *fakeAPI) ListDrivers(context.Context) ([]client.Driver, error) {
	return f.drivers, nil
}

func (f *fakeAPI) AddDriver(_ context.Context, d client.Driver) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.added = append(f.added, d)
	return "Driver added", nil
}

func (f *fakeAPI) MyBookings(_ context.Context, email string) ([]client.Booking, error) {
	f.mu.Lock()
	f.emails = append(f.emails, email)
	f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.bookings, nil
}

func (f *fakeAPI) CreateBooking(_ context.Context, b client.Booking) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, b)
	return "Booking created", nil
}

func (f *fakeAPI) MyTrips(_ context.Context, email string) ([]client.Booking, error) {
	f.mu.Lock()
	f.emails = append(f.emails, email)
	f.mu.Unlock()
	return f.trips, nil
}

func (f *fakeAPI) CompleteTrip(_ context.Context, id int64) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.completed = append(f.completed, id)
	return "Trip completed", nil
}

// messages runs cmd and flattens any batch into the resulting messages
func messages(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, messages(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

func findNotice(t *testing.T, msgs []tea.Msg) NoticeMsg {
	t.Helper()
	for _, m := range msgs {
		if n, ok := m.(NoticeMsg); ok {
			return n
		}
	}
	t.Fatalf("expected a NoticeMsg in %v", msgs)
	return NoticeMsg{}
}

func TestNew_PicksDashboardByRole(t *testing.T) {
	ctx := context.Background()
	api := client.New("http://localhost:8080")

	tests := []struct {
		role session.Role
		want string
	}{
		{session.RoleAdmin, "*dashboard.Admin"},
		{session.RoleHR, "*dashboard.HR"},
		{session.RoleDriver, "*dashboard.Driver"},
		{session.RoleUnknown, "*dashboard.Unknown"},
	}

	for _, tc := range tests {
		t.Run(tc.role.String(), func(t *testing.T) {
			m := New(ctx, api, session.UserProfile{Email: "a@corp.com", Role: tc.role})
			if got := fmt.Sprintf("%T", m); got != tc.want {
				t.Errorf("New(%s) = %s, want %s", tc.role, got, tc.want)
			}
		})
	}
}

func TestAdmin_LoadsBookingsAndDrivers(t *testing.T) {
	api := &fakeAPI{
		bookings: []client.Booking{
			{ID: 1, EmployeeName: "Ann", Status: "PENDING", DurationMin: 30},
			{ID: 2, EmployeeName: "Bob", Status: "Completed", DurationMin: 45},
		},
		drivers: []client.Driver{
			{ID: 7, Name: "Dev", Email: "dev@corp.com", CabType: "SUV", Available: true},
			{ID: 8, Name: "Eve", Email: "eve@corp.com", CabType: "Sedan"},
		},
	}
	a := NewAdmin(context.Background(), api)
	a.SetSize(120, 40)

	msgs := messages(a.Init())
	if len(msgs) != 1 {
		t.Fatalf("expected one load message, got %d", len(msgs))
	}
	loaded, ok := msgs[0].(AdminLoadedMsg)
	if !ok {
		t.Fatalf("expected AdminLoadedMsg, got %T", msgs[0])
	}
	if loaded.Err != nil {
		t.Fatalf("unexpected error: %v", loaded.Err)
	}

	a.Update(loaded)
	view := a.View()
	for _, want := range []string{"Bookings", "Drivers", "Available", "Ann", "Pending"} {
		if !strings.Contains(view, want) {
			t.Errorf("admin view missing %q", want)
		}
	}

	a.Update(tea.KeyMsg{Type: tea.KeyTab})
	view = a.View()
	if !strings.Contains(view, "dev@corp.com") {
		t.Error("expected driver table after tab")
	}
	if !strings.Contains(view, "Busy") {
		t.Error("expected unavailable driver to show Busy")
	}
}

func TestAdmin_LoadFailureRaisesNotice(t *testing.T) {
	api := &fakeAPI{listErr: &client.APIError{StatusCode: 500, Message: "db down"}}
	a := NewAdmin(context.Background(), api)

	msgs := messages(a.Init())
	_, cmd := a.Update(msgs[0])
	n := findNotice(t, messages(cmd))
	if !n.Error {
		t.Error("expected error notice")
	}
	if n.Text != "Failed to load dashboard data: db down" {
		t.Errorf("unexpected notice %q", n.Text)
	}
}

func TestAdmin_AddDriverForm(t *testing.T) {
	api := &fakeAPI{}
	a := NewAdmin(context.Background(), api)

	a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("a")})
	if !a.Editing() {
		t.Fatal("expected add-driver form to open")
	}

	a.draft.Name = " Dev "
	a.draft.Email = "dev@corp.com"
	a.draft.CabType = "SUV"
	a.form.State = huh.StateCompleted

	_, cmd := a.Update(tickMsg{})
	if a.Editing() {
		t.Error("expected form to close after submit")
	}
	msgs := messages(cmd)
	added, ok := msgs[0].(DriverAddedMsg)
	if !ok {
		t.Fatalf("expected DriverAddedMsg, got %T", msgs[0])
	}
	if len(api.added) != 1 || api.added[0].Name != "Dev" {
		t.Fatalf("unexpected added drivers %+v", api.added)
	}

	_, cmd = a.Update(added)
	n := findNotice(t, messages(cmd))
	if n.Error || n.Text != "Driver added successfully" {
		t.Errorf("unexpected notice %+v", n)
	}
}

func TestAdmin_AddDriverValidation(t *testing.T) {
	api := &fakeAPI{}
	a := NewAdmin(context.Background(), api)
	a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("a")})

	a.draft.Email = "not-an-email"
	a.form.State = huh.StateCompleted
	a.Update(tickMsg{})

	if !a.Editing() {
		t.Error("expected form to stay open on invalid input")
	}
	if a.formErr == "" {
		t.Error("expected a validation message")
	}
	if len(api.added) != 0 {
		t.Error("invalid driver must not be sent")
	}
}

func TestAdmin_EscCancelsForm(t *testing.T) {
	a := NewAdmin(context.Background(), &fakeAPI{})
	a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("a")})
	a.Update(tea.KeyMsg{Type: tea.KeyEsc})

	if a.Editing() {
		t.Error("expected esc to close the form")
	}
}

func TestHR_LoadsOwnBookings(t *testing.T) {
	api := &fakeAPI{bookings: []client.Booking{
		{ID: 1, EmployeeName: "Ann", Completed: true},
		{ID: 2, EmployeeName: "Bob"},
		{ID: 3, EmployeeName: "Cat"},
	}}
	h := NewHR(context.Background(), api, "hr@corp.com")
	h.SetSize(120, 40)

	msgs := messages(h.Init())
	h.Update(msgs[0])

	if len(api.emails) != 1 || api.emails[0] != "hr@corp.com" {
		t.Errorf("expected bookings requested for hr@corp.com, got %v", api.emails)
	}
	view := h.View()
	for _, want := range []string{"Total", "Completed", "Pending", "Bob"} {
		if !strings.Contains(view, want) {
			t.Errorf("hr view missing %q", want)
		}
	}
}

func TestHR_LoadFailure(t *testing.T) {
	h := NewHR(context.Background(), &fakeAPI{listErr: errors.New("connection refused")}, "hr@corp.com")

	msgs := messages(h.Init())
	_, cmd := h.Update(msgs[0])
	n := findNotice(t, messages(cmd))
	if !n.Error || n.Text != "Failed to load bookings" {
		t.Errorf("unexpected notice %+v", n)
	}
}

func TestHR_BookingForm(t *testing.T) {
	api := &fakeAPI{}
	h := NewHR(context.Background(), api, "hr@corp.com")

	h.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("n")})
	if !h.Editing() {
		t.Fatal("expected booking form to open")
	}
	if h.duration != "30" {
		t.Errorf("expected default duration 30, got %q", h.duration)
	}

	h.draft = bookingDraft()
	h.duration = " 45 "
	h.form.State = huh.StateCompleted

	_, cmd := h.Update(tickMsg{})
	msgs := messages(cmd)
	created, ok := msgs[0].(BookingCreatedMsg)
	if !ok {
		t.Fatalf("expected BookingCreatedMsg, got %T", msgs[0])
	}
	if len(api.created) != 1 {
		t.Fatalf("expected one booking, got %d", len(api.created))
	}
	got := api.created[0]
	if got.HREmail != "hr@corp.com" || got.DurationMin != 45 {
		t.Errorf("unexpected booking %+v", got)
	}

	_, cmd = h.Update(created)
	n := findNotice(t, messages(cmd))
	if n.Text != "Booking created successfully!" {
		t.Errorf("unexpected notice %q", n.Text)
	}
}

func TestHR_BookingFormRejectsBadDuration(t *testing.T) {
	api := &fakeAPI{}
	h := NewHR(context.Background(), api, "hr@corp.com")
	h.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("n")})

	h.draft = bookingDraft()
	h.duration = "half an hour"
	h.form.State = huh.StateCompleted
	h.Update(tickMsg{})

	if !h.Editing() {
		t.Error("expected form to stay open")
	}
	if !strings.Contains(h.formErr, "duration") {
		t.Errorf("unexpected error %q", h.formErr)
	}
	if len(api.created) != 0 {
		t.Error("booking must not be sent")
	}
}

func TestHR_BookingFormRejectsPastPickup(t *testing.T) {
	api := &fakeAPI{}
	h := NewHR(context.Background(), api, "hr@corp.com")
	h.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("n")})

	h.draft = bookingDraft()
	h.draft.PickupTime = time.Now().Add(-time.Hour).Format("2006-01-02T15:04")
	h.duration = "30"
	h.form.State = huh.StateCompleted
	h.Update(tickMsg{})

	if !h.Editing() {
		t.Error("expected form to stay open for a past pickup time")
	}
	if len(api.created) != 0 {
		t.Error("booking must not be sent")
	}
}

func bookingDraft() forms.Booking {
	var b forms.Booking
	b.EmployeeName = "Ann"
	b.Pickup = "Office"
	b.DropLocation = "Airport"
	b.PickupTime = time.Now().Add(2 * time.Hour).Format("2006-01-02T15:04")
	b.CabType = "Sedan"
	return b
}

func TestDriver_SplitsTrips(t *testing.T) {
	api := &fakeAPI{trips: []client.Booking{
		{ID: 1, EmployeeName: "Ann", PickupTime: "2020-01-01T09:00"},
		{ID: 2, EmployeeName: "Bob", Completed: true},
		{ID: 3, EmployeeName: "Cat", PickupTime: "2999-01-01T09:00"},
	}}
	d := NewDriver(context.Background(), api, "drv@corp.com")
	d.SetSize(120, 40)

	msgs := messages(d.Init())
	d.Update(msgs[0])

	if len(d.active) != 2 || len(d.completed) != 1 {
		t.Fatalf("expected 2 active and 1 completed, got %d/%d", len(d.active), len(d.completed))
	}
	view := d.View()
	for _, want := range []string{"Active Trips (2)", "Completed Trips (1)", "In Progress", "Upcoming"} {
		if !strings.Contains(view, want) {
			t.Errorf("driver view missing %q", want)
		}
	}
}

func TestDriver_CompleteSelectedTrip(t *testing.T) {
	api := &fakeAPI{trips: []client.Booking{
		{ID: 11, EmployeeName: "Ann"},
		{ID: 12, EmployeeName: "Bob"},
	}}
	d := NewDriver(context.Background(), api, "drv@corp.com")
	d.SetSize(120, 40)
	d.Update(messages(d.Init())[0])

	d.Update(tea.KeyMsg{Type: tea.KeyDown})
	_, cmd := d.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("c")})
	msgs := messages(cmd)
	done, ok := msgs[0].(TripCompletedMsg)
	if !ok {
		t.Fatalf("expected TripCompletedMsg, got %T", msgs[0])
	}
	if done.ID != 12 {
		t.Errorf("expected trip 12 completed, got %d", done.ID)
	}

	_, cmd = d.Update(done)
	n := findNotice(t, messages(cmd))
	if n.Error || n.Text != "Trip marked as completed!" {
		t.Errorf("unexpected notice %+v", n)
	}
}

func TestDriver_CompleteWithNoActiveTrips(t *testing.T) {
	d := NewDriver(context.Background(), &fakeAPI{}, "drv@corp.com")
	d.Update(messages(d.Init())[0])

	if _, cmd := d.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("c")}); cmd != nil {
		t.Error("expected no command without active trips")
	}
}

func TestUnknown_View(t *testing.T) {
	u := NewUnknown(session.RoleUnknown)
	u.SetSize(80, 20)

	if !strings.Contains(u.View(), "Your account role is not recognized. Please contact support.") {
		t.Error("expected unknown-role message")
	}
	if u.Editing() {
		t.Error("unknown view never edits")
	}
}
