// ABOUTME: Driver dashboard splitting assigned trips into active and completed
// ABOUTME: The selected active trip can be marked completed with a single key

package dashboard

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/markalston/cabdesk/internal/client"
	"github.com/markalston/cabdesk/internal/tui/icons"
	"github.com/markalston/cabdesk/internal/tui/styles"
	"github.com/markalston/cabdesk/internal/tui/widgets"
)

// DriverTripsMsg carries the driver's trips
type DriverTripsMsg struct {
	Trips []client.Booking
	Err   error
}

// TripCompletedMsg reports the outcome of completing a trip
type TripCompletedMsg struct {
	ID  int64
	Ack string
	Err error
}

// Driver shows one driver's trips
type Driver struct {
	ctx   context.Context
	api   DriverAPI
	email string
	now   func() time.Time

	active     []client.Booking
	completed  []client.Booking
	loading    bool
	loaded     bool
	completing bool

	activeTable table.Model
	doneTable   table.Model

	width  int
	height int
}

func NewDriver(ctx context.Context, api DriverAPI, email string) *Driver {
	d := &Driver{
		ctx:         ctx,
		api:         api,
		email:       email,
		now:         time.Now,
		activeTable: newTable(bookingColumns(0, "Status"), 6),
		doneTable:   newTable(bookingColumns(0, "Status"), 4),
	}
	d.doneTable.Blur()
	return d
}

// Init implements tea.Model
func (d *Driver) Init() tea.Cmd {
	return d.load()
}

func (d *Driver) load() tea.Cmd {
	d.loading = true
	ctx, api, email := d.ctx, d.api, d.email
	return func() tea.Msg {
		trips, err := api.MyTrips(ctx, email)
		return DriverTripsMsg{Trips: trips, Err: err}
	}
}

// Update implements the dashboard Model
func (d *Driver) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case DriverTripsMsg:
		d.loading = false
		if msg.Err != nil {
			return d, failure("Failed to load trips", msg.Err)
		}
		d.loaded = true
		d.active, d.completed = client.SplitTrips(msg.Trips)
		d.refreshTables()
		return d, nil

	case TripCompletedMsg:
		d.completing = false
		if msg.Err != nil {
			return d, failure("Failed to complete trip", msg.Err)
		}
		return d, tea.Batch(notice("Trip marked as completed!", false), d.load())

	case tea.KeyMsg:
		switch msg.String() {
		case "r":
			return d, d.load()
		case "c":
			return d, d.completeSelected()
		}
		var cmd tea.Cmd
		d.activeTable, cmd = d.activeTable.Update(msg)
		return d, cmd
	}
	return d, nil
}

// completeSelected marks the highlighted active trip as completed
func (d *Driver) completeSelected() tea.Cmd {
	if d.completing || len(d.active) == 0 {
		return nil
	}
	idx := d.activeTable.Cursor()
	if idx < 0 || idx >= len(d.active) {
		return nil
	}
	d.completing = true
	ctx, api, id := d.ctx, d.api, d.active[idx].ID
	return func() tea.Msg {
		ack, err := api.CompleteTrip(ctx, id)
		return TripCompletedMsg{ID: id, Ack: ack, Err: err}
	}
}

func (d *Driver) refreshTables() {
	now := d.now()
	rows := make([]table.Row, 0, len(d.active))
	for _, b := range d.active {
		rows = append(rows, bookingRow(b, client.TripLabel(b, now)))
	}
	d.activeTable.SetRows(rows)
	if d.activeTable.Cursor() >= len(rows) {
		d.activeTable.SetCursor(max(0, len(rows)-1))
	}

	done := make([]table.Row, 0, len(d.completed))
	for _, b := range d.completed {
		done = append(done, bookingRow(b, "Completed"))
	}
	d.doneTable.SetRows(done)
}

// SetSize splits the content height between the two tables
func (d *Driver) SetSize(width, height int) {
	d.width = width
	d.height = height
	avail := max(6, height-12)
	d.activeTable.SetColumns(bookingColumns(width, "Status"))
	d.activeTable.SetHeight(max(3, avail*3/5))
	d.doneTable.SetColumns(bookingColumns(width, "Status"))
	d.doneTable.SetHeight(max(3, avail-avail*3/5))
}

// Editing is always false; the driver view has no forms
func (d *Driver) Editing() bool {
	return false
}

// Shortcuts lists the keys shown in the footer
func (d *Driver) Shortcuts() []string {
	return []string{"c Complete trip", "r Refresh", "l Logout", "q Quit"}
}

// View implements the dashboard Model
func (d *Driver) View() string {
	var sb strings.Builder

	cfg := widgets.DefaultMetricBlockConfig()
	sb.WriteString(widgets.StatRow(
		widgets.CountBlock(icons.Cab, "Active", len(d.active), "trips", cfg),
		widgets.CountBlock(icons.CheckOK, "Completed", len(d.completed), "trips", cfg),
	))
	sb.WriteString("\n\n")

	if d.loading && !d.loaded {
		sb.WriteString(styles.Subtitle.Render("Loading..."))
		return sb.String()
	}

	sb.WriteString(styles.Subtitle.Render(icons.Cab.String() + " Active Trips (" + strconv.Itoa(len(d.active)) + ")"))
	sb.WriteString("\n")
	if len(d.active) == 0 {
		sb.WriteString(styles.Subtitle.Render("No active trips"))
	} else {
		sb.WriteString(d.activeTable.View())
	}
	sb.WriteString("\n\n")

	sb.WriteString(styles.Subtitle.Render(icons.CheckOK.String() + " Completed Trips (" + strconv.Itoa(len(d.completed)) + ")"))
	sb.WriteString("\n")
	if len(d.completed) == 0 {
		sb.WriteString(styles.Subtitle.Render("No completed trips yet"))
	} else {
		sb.WriteString(d.doneTable.View())
	}
	return sb.String()
}
