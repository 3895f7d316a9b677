// ABOUTME: Login screen as a bubbletea model wrapping a huh form
// ABOUTME: Emits SubmittedMsg with the credentials; the app performs the login

package auth

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/markalston/cabdesk/internal/tui/styles"
)

// LoginSubmittedMsg carries credentials from a completed login form
type LoginSubmittedMsg struct {
	Email    string
	Password string
}

// ShowRegisterMsg asks the app to switch to the registration view
type ShowRegisterMsg struct{}

// Login collects an email and password
type Login struct {
	form     *huh.Form
	email    string
	password string
	errMsg   string
	busy     bool
	width    int
}

// NewLogin creates a login form, pre-filling email if given
func NewLogin(email string) *Login {
	l := &Login{email: email}
	l.form = l.createForm()
	return l
}

func (l *Login) createForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Email").
				Placeholder("you@company.com").
				Value(&l.email).
				Validate(required("email")),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&l.password).
				Validate(required("password")),
		).Title("Sign in").
			Description("Enter your credentials to access your dashboard"),
	).WithTheme(styles.FormTheme()).WithShowHelp(false)
}

// Init implements tea.Model
func (l *Login) Init() tea.Cmd {
	return l.form.Init()
}

// Update implements tea.Model
func (l *Login) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		if l.busy {
			return l, nil
		}
		if key.String() == "ctrl+r" {
			return l, func() tea.Msg { return ShowRegisterMsg{} }
		}
	}

	form, cmd := l.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		l.form = f
	}

	if l.form.State == huh.StateCompleted && !l.busy {
		l.busy = true
		l.errMsg = ""
		submitted := LoginSubmittedMsg{Email: strings.TrimSpace(l.email), Password: l.password}
		return l, func() tea.Msg { return submitted }
	}
	return l, cmd
}

// Fail shows errMsg and resets the form for another attempt
func (l *Login) Fail(errMsg string) tea.Cmd {
	l.errMsg = errMsg
	l.busy = false
	l.password = ""
	l.form = l.createForm()
	return l.form.Init()
}

// Busy reports whether a login is in flight
func (l *Login) Busy() bool {
	return l.busy
}

// SetWidth sets the render width
func (l *Login) SetWidth(width int) {
	l.width = width
	l.form = l.form.WithWidth(formWidth(width))
}

// View implements tea.Model
func (l *Login) View() string {
	var sb strings.Builder
	if l.errMsg != "" {
		sb.WriteString(styles.StatusCritical.Render(l.errMsg))
		sb.WriteString("\n\n")
	}
	if l.busy {
		sb.WriteString(styles.Subtitle.Render("Signing in..."))
		return sb.String()
	}
	sb.WriteString(l.form.View())
	sb.WriteString(styles.Help.Render("ctrl+r create an account"))
	return sb.String()
}

func required(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return errRequired(field)
		}
		return nil
	}
}

type errRequired string

func (e errRequired) Error() string {
	return string(e) + " is required"
}

func formWidth(width int) int {
	if width <= 0 || width > 60 {
		return 60
	}
	return width
}
