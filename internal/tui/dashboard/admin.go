// ABOUTME: Admin dashboard listing every booking and driver
// ABOUTME: Loads both lists concurrently and hosts the add-driver form

package dashboard

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/markalston/cabdesk/internal/client"
	"github.com/markalston/cabdesk/internal/forms"
	"github.com/markalston/cabdesk/internal/tui/icons"
	"github.com/markalston/cabdesk/internal/tui/styles"
	"github.com/markalston/cabdesk/internal/tui/widgets"
	"golang.org/x/sync/errgroup"
)

// AdminLoadedMsg carries both admin lists; Err is the first failure
type AdminLoadedMsg struct {
	Bookings []client.Booking
	Drivers  []client.Driver
	Err      error
}

// DriverAddedMsg reports the outcome of the add-driver form
type DriverAddedMsg struct {
	Ack string
	Err error
}

type adminTab int

const (
	tabBookings adminTab = iota
	tabDrivers
)

// Admin shows all bookings and drivers
type Admin struct {
	ctx context.Context
	api AdminAPI

	bookings []client.Booking
	drivers  []client.Driver
	loading  bool
	loaded   bool

	tab          adminTab
	bookingTable table.Model
	driverTable  table.Model

	form    *huh.Form
	draft   forms.Driver
	formErr string

	width  int
	height int
}

func NewAdmin(ctx context.Context, api AdminAPI) *Admin {
	a := &Admin{ctx: ctx, api: api}
	a.bookingTable = newTable(bookingColumns(0, "Status"), 10)
	a.driverTable = newTable(driverColumns(0), 10)
	a.driverTable.Blur()
	return a
}

// Init implements tea.Model
func (a *Admin) Init() tea.Cmd {
	return a.load()
}

func (a *Admin) load() tea.Cmd {
	a.loading = true
	ctx, api := a.ctx, a.api
	return func() tea.Msg {
		var msg AdminLoadedMsg
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			bookings, err := api.ListBookings(gctx)
			msg.Bookings = bookings
			return err
		})
		g.Go(func() error {
			drivers, err := api.ListDrivers(gctx)
			msg.Drivers = drivers
			return err
		})
		msg.Err = g.Wait()
		return msg
	}
}

// Update implements the dashboard Model
func (a *Admin) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case AdminLoadedMsg:
		a.loading = false
		if msg.Err != nil {
			return a, failure("Failed to load dashboard data", msg.Err)
		}
		a.loaded = true
		a.bookings = msg.Bookings
		a.drivers = msg.Drivers
		a.refreshTables()
		return a, nil

	case DriverAddedMsg:
		if msg.Err != nil {
			return a, failure("Failed to add driver", msg.Err)
		}
		return a, tea.Batch(notice("Driver added successfully", false), a.load())

	case tea.KeyMsg:
		if a.form != nil {
			if msg.String() == "esc" {
				a.form = nil
				a.formErr = ""
				return a, nil
			}
			return a.updateForm(msg)
		}
		return a.handleKey(msg)
	}

	if a.form != nil {
		return a.updateForm(msg)
	}
	return a, nil
}

func (a *Admin) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "tab":
		if a.tab == tabBookings {
			a.tab = tabDrivers
			a.bookingTable.Blur()
			a.driverTable.Focus()
		} else {
			a.tab = tabBookings
			a.driverTable.Blur()
			a.bookingTable.Focus()
		}
		return a, nil
	case "r":
		return a, a.load()
	case "a":
		return a, a.openForm()
	}

	var cmd tea.Cmd
	if a.tab == tabBookings {
		a.bookingTable, cmd = a.bookingTable.Update(msg)
	} else {
		a.driverTable, cmd = a.driverTable.Update(msg)
	}
	return a, cmd
}

func (a *Admin) openForm() tea.Cmd {
	a.draft = forms.Driver{}
	a.formErr = ""
	a.form = a.createForm()
	return a.form.Init()
}

func (a *Admin) createForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Driver name").
				Placeholder("John Doe").
				Value(&a.draft.Name),
			huh.NewInput().
				Title("Email").
				Placeholder("driver@example.com").
				Value(&a.draft.Email),
			huh.NewInput().
				Title("Cab type").
				Placeholder("e.g., Sedan, SUV, Luxury").
				Value(&a.draft.CabType),
		).Title("Add driver"),
	).WithTheme(styles.FormTheme()).WithShowHelp(false)
}

func (a *Admin) updateForm(msg tea.Msg) (Model, tea.Cmd) {
	form, cmd := a.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.form = f
	}
	if a.form.State != huh.StateCompleted {
		return a, cmd
	}

	if err := a.draft.Validate(); err != nil {
		a.formErr = err.Error()
		a.form = a.createForm()
		return a, a.form.Init()
	}

	a.form = nil
	a.formErr = ""
	ctx, api, driver := a.ctx, a.api, a.draft.Client()
	return a, func() tea.Msg {
		ack, err := api.AddDriver(ctx, driver)
		return DriverAddedMsg{Ack: ack, Err: err}
	}
}

func (a *Admin) refreshTables() {
	rows := make([]table.Row, 0, len(a.bookings))
	for _, b := range a.bookings {
		rows = append(rows, bookingRow(b, client.StatusLabel(b.Status)))
	}
	a.bookingTable.SetRows(rows)

	driverRows := make([]table.Row, 0, len(a.drivers))
	for _, d := range a.drivers {
		availability := "Busy"
		if d.Available {
			availability = "Available"
		}
		driverRows = append(driverRows, table.Row{
			strconv.FormatInt(d.ID, 10),
			d.Name,
			d.Email,
			d.CabType,
			availability,
		})
	}
	a.driverTable.SetRows(driverRows)
}

func driverColumns(width int) []table.Column {
	flex := max(40, width-6-12-12-5*2)
	return []table.Column{
		{Title: "ID", Width: 6},
		{Title: "Name", Width: flex / 2},
		{Title: "Email", Width: flex - flex/2},
		{Title: "Cab", Width: 12},
		{Title: "Status", Width: 12},
	}
}

// SetSize resizes the tables to fit the content area
func (a *Admin) SetSize(width, height int) {
	a.width = width
	a.height = height
	tableHeight := height - 10
	a.bookingTable.SetColumns(bookingColumns(width, "Status"))
	a.bookingTable.SetHeight(max(3, tableHeight))
	a.driverTable.SetColumns(driverColumns(width))
	a.driverTable.SetHeight(max(3, tableHeight))
	if a.form != nil {
		a.form = a.form.WithWidth(min(60, width))
	}
}

// Editing reports whether the add-driver form is open
func (a *Admin) Editing() bool {
	return a.form != nil
}

// Shortcuts lists the keys shown in the footer
func (a *Admin) Shortcuts() []string {
	if a.form != nil {
		return []string{"Enter Next", "Esc Cancel"}
	}
	return []string{"tab Switch", "a Add driver", "r Refresh", "l Logout", "q Quit"}
}

// View implements the dashboard Model
func (a *Admin) View() string {
	var sb strings.Builder

	cfg := widgets.DefaultMetricBlockConfig()
	sb.WriteString(widgets.StatRow(
		widgets.CountBlock(icons.Booking, "Bookings", len(a.bookings), "all time", cfg),
		widgets.CountBlock(icons.Driver, "Drivers", len(a.drivers), "registered", cfg),
		widgets.CountBlock(icons.CheckOK, "Available", client.CountAvailable(a.drivers), "ready now", cfg),
	))
	sb.WriteString("\n\n")

	if a.form != nil {
		if a.formErr != "" {
			sb.WriteString(styles.StatusCritical.Render(a.formErr))
			sb.WriteString("\n\n")
		}
		sb.WriteString(a.form.View())
		return sb.String()
	}

	sb.WriteString(a.renderTabs())
	sb.WriteString("\n")

	switch {
	case a.loading && !a.loaded:
		sb.WriteString(styles.Subtitle.Render("Loading..."))
	case a.tab == tabBookings && len(a.bookings) == 0:
		sb.WriteString(styles.Subtitle.Render("No bookings found"))
	case a.tab == tabDrivers && len(a.drivers) == 0:
		sb.WriteString(styles.Subtitle.Render("No drivers found"))
	case a.tab == tabBookings:
		sb.WriteString(a.bookingTable.View())
	default:
		sb.WriteString(a.driverTable.View())
	}
	return sb.String()
}

func (a *Admin) renderTabs() string {
	active := lipgloss.NewStyle().Foreground(styles.Primary).Bold(true).Underline(true)
	inactive := lipgloss.NewStyle().Foreground(styles.Muted)

	bookings := fmt.Sprintf("%s All Bookings", icons.Booking.String())
	drivers := fmt.Sprintf("%s Drivers", icons.Driver.String())
	if a.tab == tabBookings {
		return active.Render(bookings) + "   " + inactive.Render(drivers)
	}
	return inactive.Render(bookings) + "   " + active.Render(drivers)
}
