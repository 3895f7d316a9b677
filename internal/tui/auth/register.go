// ABOUTME: Registration screen as a bubbletea model wrapping a huh form
// ABOUTME: Validates locally before emitting RegisterSubmittedMsg

package auth

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/markalston/cabdesk/internal/forms"
	"github.com/markalston/cabdesk/internal/session"
	"github.com/markalston/cabdesk/internal/tui/styles"
)

// RegisterSubmittedMsg carries a locally valid registration
type RegisterSubmittedMsg struct {
	Form forms.Registration
}

// ShowLoginMsg asks the app to switch back to the login view
type ShowLoginMsg struct{}

var roleOptions = []huh.Option[string]{
	huh.NewOption("HR", string(session.RoleHR)),
	huh.NewOption("Driver", string(session.RoleDriver)),
	huh.NewOption("Admin", string(session.RoleAdmin)),
}

// Register collects a new account
type Register struct {
	form   *huh.Form
	values forms.Registration
	errMsg string
	busy   bool
	width  int
}

// NewRegister creates an empty registration form
func NewRegister() *Register {
	r := &Register{values: forms.Registration{Role: string(session.RoleHR)}}
	r.form = r.createForm()
	return r
}

func (r *Register) createForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Username").
				Value(&r.values.Username),
			huh.NewInput().
				Title("Email").
				Placeholder("you@company.com").
				Value(&r.values.Email),
			huh.NewSelect[string]().
				Title("Role").
				Options(roleOptions...).
				Value(&r.values.Role),
			huh.NewInput().
				Title("Password").
				Description("At least 6 characters").
				EchoMode(huh.EchoModePassword).
				Value(&r.values.Password),
			huh.NewInput().
				Title("Confirm password").
				EchoMode(huh.EchoModePassword).
				Value(&r.values.Confirm),
		).Title("Create account"),
	).WithTheme(styles.FormTheme()).WithShowHelp(false)
}

// Init implements tea.Model
func (r *Register) Init() tea.Cmd {
	return r.form.Init()
}

// Update implements tea.Model
func (r *Register) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		if r.busy {
			return r, nil
		}
		if key.String() == "esc" {
			return r, func() tea.Msg { return ShowLoginMsg{} }
		}
	}

	form, cmd := r.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		r.form = f
	}

	if r.form.State == huh.StateCompleted && !r.busy {
		if err := r.values.Validate(); err != nil {
			return r, r.Fail(err.Error())
		}
		r.busy = true
		r.errMsg = ""
		submitted := RegisterSubmittedMsg{Form: r.values}
		return r, func() tea.Msg { return submitted }
	}
	return r, cmd
}

// Fail shows errMsg and reopens the form with the passwords cleared
func (r *Register) Fail(errMsg string) tea.Cmd {
	r.errMsg = errMsg
	r.busy = false
	r.values.Password = ""
	r.values.Confirm = ""
	r.form = r.createForm()
	return r.form.Init()
}

// SetWidth sets the render width
func (r *Register) SetWidth(width int) {
	r.width = width
	r.form = r.form.WithWidth(formWidth(width))
}

// View implements tea.Model
func (r *Register) View() string {
	var sb strings.Builder
	if r.errMsg != "" {
		sb.WriteString(styles.StatusCritical.Render(r.errMsg))
		sb.WriteString("\n\n")
	}
	if r.busy {
		sb.WriteString(styles.Subtitle.Render("Creating account..."))
		return sb.String()
	}
	sb.WriteString(r.form.View())
	sb.WriteString(styles.Help.Render("esc back to sign in"))
	return sb.String()
}
