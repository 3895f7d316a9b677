// ABOUTME: HR dashboard showing the bookings made by the logged-in HR user
// ABOUTME: Hosts the create-booking form and the total/completed/pending summary

package dashboard

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/markalston/cabdesk/internal/client"
	"github.com/markalston/cabdesk/internal/forms"
	"github.com/markalston/cabdesk/internal/tui/icons"
	"github.com/markalston/cabdesk/internal/tui/styles"
	"github.com/markalston/cabdesk/internal/tui/widgets"
)

// HRBookingsMsg carries the HR user's bookings
type HRBookingsMsg struct {
	Bookings []client.Booking
	Err      error
}

// BookingCreatedMsg reports the outcome of the booking form
type BookingCreatedMsg struct {
	Ack string
	Err error
}

// HR shows and creates bookings for one HR user
type HR struct {
	ctx   context.Context
	api   HRAPI
	email string

	bookings []client.Booking
	loading  bool
	loaded   bool
	table    table.Model

	form     *huh.Form
	draft    forms.Booking
	duration string
	formErr  string

	width  int
	height int
}

func NewHR(ctx context.Context, api HRAPI, email string) *HR {
	return &HR{
		ctx:   ctx,
		api:   api,
		email: email,
		table: newTable(bookingColumns(0, "Status"), 10),
	}
}

// Init implements tea.Model
func (h *HR) Init() tea.Cmd {
	return h.load()
}

func (h *HR) load() tea.Cmd {
	h.loading = true
	ctx, api, email := h.ctx, h.api, h.email
	return func() tea.Msg {
		bookings, err := api.MyBookings(ctx, email)
		return HRBookingsMsg{Bookings: bookings, Err: err}
	}
}

// Update implements the dashboard Model
func (h *HR) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case HRBookingsMsg:
		h.loading = false
		if msg.Err != nil {
			return h, failure("Failed to load bookings", msg.Err)
		}
		h.loaded = true
		h.bookings = msg.Bookings
		h.refreshTable()
		return h, nil

	case BookingCreatedMsg:
		if msg.Err != nil {
			return h, failure("Failed to create booking", msg.Err)
		}
		return h, tea.Batch(notice("Booking created successfully!", false), h.load())

	case tea.KeyMsg:
		if h.form != nil {
			if msg.String() == "esc" {
				h.form = nil
				h.formErr = ""
				return h, nil
			}
			return h.updateForm(msg)
		}
		switch msg.String() {
		case "r":
			return h, h.load()
		case "n":
			return h, h.openForm()
		}
		var cmd tea.Cmd
		h.table, cmd = h.table.Update(msg)
		return h, cmd
	}

	if h.form != nil {
		return h.updateForm(msg)
	}
	return h, nil
}

func (h *HR) openForm() tea.Cmd {
	h.draft = forms.Booking{}
	h.duration = strconv.Itoa(forms.DefaultDurationMin)
	h.formErr = ""
	h.form = h.createForm()
	return h.form.Init()
}

func (h *HR) createForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Employee name").
				Value(&h.draft.EmployeeName),
			huh.NewInput().
				Title("Pickup location").
				Value(&h.draft.Pickup),
			huh.NewInput().
				Title("Drop location").
				Value(&h.draft.DropLocation),
			huh.NewInput().
				Title("Pickup time").
				Description("YYYY-MM-DDTHH:MM, must be in the future").
				Placeholder(time.Now().Add(time.Hour).Format("2006-01-02T15:04")).
				Value(&h.draft.PickupTime),
			huh.NewInput().
				Title("Cab type").
				Placeholder("e.g., Sedan, SUV, Luxury").
				Value(&h.draft.CabType),
			huh.NewInput().
				Title("Duration (minutes)").
				Value(&h.duration),
		).Title("Book a cab"),
	).WithTheme(styles.FormTheme()).WithShowHelp(false)
}

func (h *HR) updateForm(msg tea.Msg) (Model, tea.Cmd) {
	form, cmd := h.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		h.form = f
	}
	if h.form.State != huh.StateCompleted {
		return h, cmd
	}

	if err := h.finishDraft(); err != nil {
		h.formErr = err.Error()
		h.form = h.createForm()
		return h, h.form.Init()
	}

	h.form = nil
	h.formErr = ""
	ctx, api, booking := h.ctx, h.api, h.draft.Client(h.email)
	return h, func() tea.Msg {
		ack, err := api.CreateBooking(ctx, booking)
		return BookingCreatedMsg{Ack: ack, Err: err}
	}
}

// finishDraft parses the free-text duration and validates the whole form
func (h *HR) finishDraft() error {
	d, err := strconv.Atoi(strings.TrimSpace(h.duration))
	if err != nil {
		return errors.New("duration must be a whole number of minutes")
	}
	h.draft.DurationMin = d
	return h.draft.Validate()
}

func (h *HR) refreshTable() {
	rows := make([]table.Row, 0, len(h.bookings))
	for _, b := range h.bookings {
		status := "Pending"
		if b.Completed {
			status = "Completed"
		}
		rows = append(rows, bookingRow(b, status))
	}
	h.table.SetRows(rows)
}

// SetSize resizes the table to fit the content area
func (h *HR) SetSize(width, height int) {
	h.width = width
	h.height = height
	h.table.SetColumns(bookingColumns(width, "Status"))
	h.table.SetHeight(max(3, height-9))
	if h.form != nil {
		h.form = h.form.WithWidth(min(60, width))
	}
}

// Editing reports whether the booking form is open
func (h *HR) Editing() bool {
	return h.form != nil
}

// Shortcuts lists the keys shown in the footer
func (h *HR) Shortcuts() []string {
	if h.form != nil {
		return []string{"Enter Next", "Esc Cancel"}
	}
	return []string{"n New booking", "r Refresh", "l Logout", "q Quit"}
}

// View implements the dashboard Model
func (h *HR) View() string {
	var sb strings.Builder

	stats := client.SummarizeBookings(h.bookings)
	cfg := widgets.DefaultMetricBlockConfig()
	sb.WriteString(widgets.StatRow(
		widgets.CountBlock(icons.Booking, "Total", stats.Total, "bookings", cfg),
		widgets.CountBlock(icons.CheckOK, "Completed", stats.Completed, "trips done", cfg),
		widgets.CountBlock(icons.Pending, "Pending", stats.Pending, "awaiting pickup", cfg),
	))
	sb.WriteString("\n\n")

	if h.form != nil {
		if h.formErr != "" {
			sb.WriteString(styles.StatusCritical.Render(h.formErr))
			sb.WriteString("\n\n")
		}
		sb.WriteString(h.form.View())
		return sb.String()
	}

	sb.WriteString(styles.Subtitle.Render(icons.Booking.String() + " My Bookings"))
	sb.WriteString("\n")
	switch {
	case h.loading && !h.loaded:
		sb.WriteString(styles.Subtitle.Render("Loading..."))
	case len(h.bookings) == 0:
		sb.WriteString(styles.Subtitle.Render("No bookings yet. Press n to book a cab."))
	default:
		sb.WriteString(h.table.View())
	}
	return sb.String()
}
