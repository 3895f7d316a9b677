// ABOUTME: Root bubbletea model for the TUI application
// ABOUTME: Follows session snapshots through the router and swaps the active screen

package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/markalston/cabdesk/internal/client"
	"github.com/markalston/cabdesk/internal/debuglog"
	"github.com/markalston/cabdesk/internal/router"
	"github.com/markalston/cabdesk/internal/session"
	"github.com/markalston/cabdesk/internal/tui/auth"
	"github.com/markalston/cabdesk/internal/tui/dashboard"
	"github.com/markalston/cabdesk/internal/tui/icons"
	"github.com/markalston/cabdesk/internal/tui/recentlogins"
	"github.com/markalston/cabdesk/internal/tui/styles"
	"github.com/markalston/cabdesk/internal/tui/widgets"
)

// Layout constants
const (
	minTerminalWidth = 80 // Frame never renders narrower than this
	panelPadding     = 4  // Total horizontal padding from panel borders (2 each side)
	authPanelWidth   = 64
)

// noticeTTL is how long a notification stays on screen
const noticeTTL = 4 * time.Second

// hydratedMsg is sent once the manager has restored any stored session
type hydratedMsg struct {
	state session.State
}

// snapshotMsg carries a session change from the manager subscription
type snapshotMsg struct {
	snap session.Snapshot
}

// loginResultMsg is sent when a login attempt finishes
type loginResultMsg struct {
	err error
}

// registerResultMsg is sent when registration (and its auto-login) finishes
type registerResultMsg struct {
	email string
	err   error
}

// noticeExpiredMsg clears the notice with the matching id
type noticeExpiredMsg struct {
	id int
}

type notification struct {
	id    int
	text  string
	isErr bool
}

// App is the root model for the TUI
type App struct {
	ctx     context.Context
	manager *session.Manager
	api     *client.Client
	now     func() time.Time

	snap         session.Snapshot
	view         router.View
	showRegister bool
	lastEmail    string
	recent       *recentlogins.RecentLogins

	snapshots   <-chan session.Snapshot
	unsubscribe func()

	// Child models
	login     *auth.Login
	register  *auth.Register
	dashboard dashboard.Model

	notice     *notification
	noticeSeq  int
	lastUpdate time.Time

	width  int
	height int
}

// Option configures an App
type Option func(*App)

// WithRecentLogins pre-fills the login form from r and records successful logins
func WithRecentLogins(r *recentlogins.RecentLogins) Option {
	return func(a *App) {
		a.recent = r
	}
}

// New creates a new TUI application bound to manager
func New(ctx context.Context, manager *session.Manager, api *client.Client, opts ...Option) *App {
	a := &App{
		ctx:     ctx,
		manager: manager,
		api:     api,
		now:     time.Now,
		snap:    session.Snapshot{State: session.StateLoading},
		view:    router.ViewLoading,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.recent != nil {
		a.lastEmail = a.recent.Latest()
	}
	return a
}

// Init implements tea.Model
func (a *App) Init() tea.Cmd {
	a.snapshots, a.unsubscribe = a.manager.Subscribe()
	return tea.Batch(a.hydrate(), waitForSnapshot(a.snapshots))
}

func (a *App) hydrate() tea.Cmd {
	ctx, m := a.ctx, a.manager
	return func() tea.Msg {
		return hydratedMsg{state: m.Hydrate(ctx)}
	}
}

// waitForSnapshot blocks until the manager publishes a change
func waitForSnapshot(ch <-chan session.Snapshot) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		snap, ok := <-ch
		if !ok {
			return nil
		}
		return snapshotMsg{snap: snap}
	}
}

// Update implements tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.resizeChildren()
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case hydratedMsg:
		l := debuglog.Get()
		l.Debug().Str("state", msg.state.String()).Msg("hydrated")
		return a, a.apply(a.manager.Snapshot())

	case snapshotMsg:
		// A delivered snapshot can trail a logout already applied from a key
		// press, so route on the manager's current state
		l := debuglog.Get()
		l.Debug().Str("state", msg.snap.State.String()).Msg("session changed")
		return a, tea.Batch(a.apply(a.manager.Snapshot()), waitForSnapshot(a.snapshots))

	case auth.ShowRegisterMsg:
		a.showRegister = true
		return a, a.apply(a.snap)

	case auth.ShowLoginMsg:
		a.showRegister = false
		return a, a.apply(a.snap)

	case auth.LoginSubmittedMsg:
		a.lastEmail = msg.Email
		return a, a.submitLogin(msg.Email, msg.Password)

	case auth.RegisterSubmittedMsg:
		a.lastEmail = strings.TrimSpace(msg.Form.Email)
		return a, a.submitRegister(msg.Form.Session())

	case loginResultMsg:
		return a, a.handleLoginResult(msg.err)

	case registerResultMsg:
		return a, a.handleRegisterResult(msg)

	case dashboard.NoticeMsg:
		return a, a.showNotice(msg.Text, msg.Error)

	case noticeExpiredMsg:
		if a.notice != nil && a.notice.id == msg.id {
			a.notice = nil
		}
		return a, nil

	case dashboard.AdminLoadedMsg, dashboard.HRBookingsMsg, dashboard.DriverTripsMsg:
		if loadSucceeded(msg) {
			a.lastUpdate = a.now()
		}
	}

	return a.forward(msg)
}

// forward hands msg to whichever child owns the current view
func (a *App) forward(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch {
	case a.view == router.ViewLogin && a.login != nil:
		_, cmd := a.login.Update(msg)
		return a, cmd
	case a.view == router.ViewRegister && a.register != nil:
		_, cmd := a.register.Update(msg)
		return a, cmd
	case a.view.IsDashboard() && a.dashboard != nil:
		model, cmd := a.dashboard.Update(msg)
		a.dashboard = model
		return a, cmd
	}
	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Handle global quit
	if msg.String() == "ctrl+c" {
		return a, tea.Quit
	}

	switch {
	case a.view == router.ViewLoading:
		if msg.String() == "q" {
			return a, tea.Quit
		}
		return a, nil

	case a.view.IsDashboard():
		if a.dashboard != nil && a.dashboard.Editing() {
			return a.forward(msg)
		}
		switch msg.String() {
		case "q":
			return a, tea.Quit
		case "l":
			a.manager.Logout(a.ctx)
			return a, a.apply(a.manager.Snapshot())
		case "esc":
			a.notice = nil
			return a, nil
		}
	}

	return a.forward(msg)
}

// apply re-routes on a new snapshot, rebuilding the screen only when the
// view or the logged-in user changed
func (a *App) apply(snap session.Snapshot) tea.Cmd {
	prev := a.snap
	a.snap = snap
	view := router.Route(snap, a.showRegister)
	if view == a.view && sameUser(prev.User, snap.User) && a.hasScreen(view) {
		return nil
	}
	l := debuglog.Get()
	l.Debug().Str("from", a.view.String()).Str("to", view.String()).Msg("route")
	a.view = view

	switch view {
	case router.ViewLogin:
		a.dashboard = nil
		a.register = nil
		a.lastUpdate = time.Time{}
		a.login = auth.NewLogin(a.lastEmail)
		a.login.SetWidth(a.authWidth())
		return a.login.Init()

	case router.ViewRegister:
		a.dashboard = nil
		a.login = nil
		a.register = auth.NewRegister()
		a.register.SetWidth(a.authWidth())
		return a.register.Init()

	case router.ViewLoading:
		return nil
	}

	a.login = nil
	a.register = nil
	a.lastUpdate = time.Time{}
	a.dashboard = dashboard.New(a.ctx, a.api, *snap.User)
	a.dashboard.SetSize(a.dashboardWidth()-panelPadding, a.contentHeight())
	return a.dashboard.Init()
}

func (a *App) hasScreen(view router.View) bool {
	switch view {
	case router.ViewLogin:
		return a.login != nil
	case router.ViewRegister:
		return a.register != nil
	case router.ViewLoading:
		return true
	}
	return a.dashboard != nil
}

func sameUser(x, y *session.UserProfile) bool {
	if x == nil || y == nil {
		return x == y
	}
	return *x == *y
}

func (a *App) submitLogin(email, password string) tea.Cmd {
	ctx, m := a.ctx, a.manager
	return func() tea.Msg {
		return loginResultMsg{err: m.Login(ctx, email, password)}
	}
}

func (a *App) submitRegister(r session.Registration) tea.Cmd {
	ctx, m := a.ctx, a.manager
	return func() tea.Msg {
		return registerResultMsg{email: r.Email, err: m.Register(ctx, r)}
	}
}

func (a *App) handleLoginResult(err error) tea.Cmd {
	switch {
	case err == nil:
		a.rememberLogin()
		return a.apply(a.manager.Snapshot())
	case errors.Is(err, session.ErrSuperseded):
		return nil
	}
	debuglog.Error("login", err)
	if a.login != nil {
		return a.login.Fail(userMessage(err))
	}
	return a.showNotice(userMessage(err), true)
}

// rememberLogin records the signed-in email for next time
func (a *App) rememberLogin() {
	user := a.manager.CurrentUser()
	if a.recent == nil || user == nil {
		return
	}
	if err := a.recent.Add(user.Email); err != nil {
		debuglog.Warn("saving recent logins: %v", err)
	}
}

func (a *App) handleRegisterResult(msg registerResultMsg) tea.Cmd {
	switch {
	case msg.err == nil:
		a.rememberLogin()
		return a.apply(a.manager.Snapshot())
	case errors.Is(msg.err, session.ErrSuperseded):
		return nil
	case errors.Is(msg.err, session.ErrRegisteredNotLoggedIn):
		debuglog.Error("auto-login after registration", msg.err)
		a.lastEmail = msg.email
		a.showRegister = false
		return tea.Batch(
			a.apply(a.manager.Snapshot()),
			a.showNotice("Account created. Please sign in.", false),
		)
	}
	debuglog.Error("register", msg.err)
	if a.register != nil {
		return a.register.Fail(userMessage(msg.err))
	}
	return a.showNotice(userMessage(msg.err), true)
}

// userMessage extracts the one-line message meant for the user
func userMessage(err error) string {
	var se *session.Error
	if errors.As(err, &se) {
		return se.Message
	}
	return err.Error()
}

func loadSucceeded(msg tea.Msg) bool {
	switch m := msg.(type) {
	case dashboard.AdminLoadedMsg:
		return m.Err == nil
	case dashboard.HRBookingsMsg:
		return m.Err == nil
	case dashboard.DriverTripsMsg:
		return m.Err == nil
	}
	return false
}

func (a *App) showNotice(text string, isErr bool) tea.Cmd {
	a.noticeSeq++
	id := a.noticeSeq
	a.notice = &notification{id: id, text: text, isErr: isErr}
	return tea.Tick(noticeTTL, func(time.Time) tea.Msg {
		return noticeExpiredMsg{id: id}
	})
}

func (a *App) resizeChildren() {
	if a.login != nil {
		a.login.SetWidth(a.authWidth())
	}
	if a.register != nil {
		a.register.SetWidth(a.authWidth())
	}
	if a.dashboard != nil {
		a.dashboard.SetSize(a.dashboardWidth()-panelPadding, a.contentHeight())
	}
}

// View implements tea.Model
func (a *App) View() string {
	var content string

	switch a.view {
	case router.ViewLoading:
		content = a.viewLoading()
	case router.ViewLogin:
		content = a.viewAuth("Sign in", a.login)
	case router.ViewRegister:
		content = a.viewAuth("Create account", a.register)
	default:
		content = a.viewDashboard()
	}

	if a.notice != nil {
		content = a.renderNotice() + "\n" + content
	}
	return a.wrapWithFrame(content)
}

func (a *App) viewLoading() string {
	return styles.Panel.Width(a.dashboardWidth()).Render(
		styles.Subtitle.Render(icons.Pending.String() + " Loading session..."),
	)
}

func (a *App) viewAuth(title string, form interface{ View() string }) string {
	body := styles.Title.Render(icons.Lock.String()+" "+title) + "\n\n"
	if form != nil {
		body += form.View()
	}
	return styles.ActivePanel.Width(a.authWidth()).Render(body)
}

func (a *App) viewDashboard() string {
	if a.dashboard == nil {
		return styles.Panel.Width(a.dashboardWidth()).Render("Loading...")
	}
	var title string
	switch a.view {
	case router.ViewAdmin:
		title = icons.Admin.String() + " Admin Dashboard"
	case router.ViewHR:
		title = icons.HR.String() + " HR Dashboard"
	case router.ViewDriver:
		title = icons.Driver.String() + " Driver Dashboard"
	default:
		return a.dashboard.View()
	}
	body := styles.Title.Render(title) + "\n\n" + a.dashboard.View()
	return styles.ActivePanel.Width(a.dashboardWidth()).Render(body)
}

func (a *App) renderNotice() string {
	if a.notice.isErr {
		return styles.NoticeError.Render(icons.Critical.String() + " " + a.notice.text)
	}
	return styles.NoticeOK.Render(icons.CheckOK.String() + " " + a.notice.text)
}

// frameWidth is one less than the terminal so the border never wraps,
// clamped to the minimum usable width
func (a *App) frameWidth() int {
	return max(a.width-1, minTerminalWidth)
}

// dashboardWidth calculates the width for the dashboard pane
func (a *App) dashboardWidth() int {
	return a.frameWidth() - panelPadding
}

func (a *App) authWidth() int {
	return min(authPanelWidth, a.dashboardWidth())
}

// contentHeight calculates the height available for dashboard content
func (a *App) contentHeight() int {
	// Header, blank line, panel border and padding (4), blank line, footer
	return a.height - 8
}

// renderHeader creates the header bar with app branding and the signed-in user
func (a *App) renderHeader() string {
	width := a.frameWidth()

	borderStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	titleStyle := lipgloss.NewStyle().Foreground(styles.Primary).Bold(true)
	contextStyle := lipgloss.NewStyle().Foreground(styles.Secondary)

	leftText := fmt.Sprintf(" %s %s ", icons.App.String(), titleStyle.Render("Cab Desk"))

	rightText := ""
	if a.snap.IsAuthenticated() {
		user := a.snap.User
		rightText = " " + icons.User.String() + " " + contextStyle.Render(user.Email) + " " + widgets.RoleBadge(user.Role)
		if expiry := a.tokenExpiry(); expiry != "" {
			rightText += " " + lipgloss.NewStyle().Foreground(styles.Muted).Render(expiry)
		}
		rightText += " "
	}

	leftWidth := lipgloss.Width(leftText)
	rightWidth := lipgloss.Width(rightText)
	fillWidth := width - 4 - leftWidth - rightWidth // -4 for ╭─ and ─╮
	if fillWidth < 0 {
		rightText = ""
		fillWidth = max(0, width-4-leftWidth)
	}

	fill := strings.Repeat("─", fillWidth)
	return borderStyle.Render("╭─") + leftText + borderStyle.Render(fill) + rightText + borderStyle.Render("─╮")
}

// tokenExpiry describes when the stored token lapses; opaque tokens show nothing
func (a *App) tokenExpiry() string {
	info, ok := session.InspectToken(a.manager.Token())
	if !ok || info.ExpiresAt.IsZero() {
		return ""
	}
	now := a.now()
	if info.Expired(now) {
		return "token expired"
	}
	return "expires in " + formatDuration(info.ExpiresAt.Sub(now))
}

// renderFooter creates the footer with keyboard shortcuts and status
func (a *App) renderFooter() string {
	width := a.frameWidth()

	borderStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	keyStyle := lipgloss.NewStyle().Foreground(styles.Primary)
	labelStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	statusStyle := lipgloss.NewStyle().Foreground(styles.Secondary)

	var styledShortcuts []string
	for _, s := range a.shortcuts() {
		parts := strings.SplitN(s, " ", 2)
		if len(parts) == 2 {
			label := parts[1]
			if icon, ok := shortcutIcons[label]; ok {
				label = icon.String() + " " + label
			}
			styledShortcuts = append(styledShortcuts, keyStyle.Render(parts[0])+" "+labelStyle.Render(label))
		} else {
			styledShortcuts = append(styledShortcuts, s)
		}
	}
	leftText := " " + strings.Join(styledShortcuts, "  ") + " "

	rightText := ""
	if !a.lastUpdate.IsZero() && a.view.IsDashboard() {
		rightText = " " + statusStyle.Render(icons.Clock.String()+" Updated "+a.formatTimeSince(a.lastUpdate)) + " "
	}

	leftWidth := lipgloss.Width(leftText)
	rightWidth := lipgloss.Width(rightText)
	fillWidth := width - 4 - leftWidth - rightWidth // -4 for ╰─ and ─╯
	if fillWidth < 0 {
		rightText = ""
		fillWidth = max(0, width-4-leftWidth)
	}

	fill := strings.Repeat("─", fillWidth)
	return borderStyle.Render("╰─") + leftText + borderStyle.Render(fill) + rightText + borderStyle.Render("─╯")
}

// shortcutIcons decorates footer labels
var shortcutIcons = map[string]icons.Icon{
	"Refresh":     icons.Refresh,
	"Add driver":  icons.Add,
	"New booking": icons.Add,
	"Register":    icons.User,
	"Back":        icons.Back,
	"Cancel":      icons.Back,
	"Logout":      icons.Logout,
	"Quit":        icons.Quit,
}

func (a *App) shortcuts() []string {
	switch a.view {
	case router.ViewLoading:
		return []string{"q Quit"}
	case router.ViewLogin:
		return []string{"Enter Next", "ctrl+r Register", "ctrl+c Quit"}
	case router.ViewRegister:
		return []string{"Enter Next", "Esc Back", "ctrl+c Quit"}
	}
	if a.dashboard != nil {
		return a.dashboard.Shortcuts()
	}
	return []string{"l Logout", "q Quit"}
}

// formatTimeSince formats a duration since the given time in human-readable form
func (a *App) formatTimeSince(t time.Time) string {
	d := a.now().Sub(t)
	if d < 5*time.Second {
		return "just now"
	}
	return formatDuration(d) + " ago"
}

func formatDuration(d time.Duration) string {
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 48*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	}
	return fmt.Sprintf("%dd", int(d.Hours()/24))
}

// wrapWithFrame wraps content with header and footer
func (a *App) wrapWithFrame(content string) string {
	var sb strings.Builder

	sb.WriteString(a.renderHeader())
	sb.WriteString("\n")
	sb.WriteString(content)
	sb.WriteString("\n")
	sb.WriteString(a.renderFooter())

	return sb.String()
}

// Close releases the session subscription
func (a *App) Close() {
	if a.unsubscribe != nil {
		a.unsubscribe()
		a.unsubscribe = nil
	}
}

// Run starts the TUI and blocks until the user quits or ctx is cancelled
func Run(ctx context.Context, manager *session.Manager, api *client.Client, opts ...Option) error {
	app := New(ctx, manager, api, opts...)
	defer app.Close()

	p := tea.NewProgram(
		app,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)
	_, err := p.Run()
	return err
}
