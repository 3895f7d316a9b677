// ABOUTME: Fallback screen for users whose role the client does not recognise
// ABOUTME: Explains the situation; logout is handled by the app

package dashboard

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/markalston/cabdesk/internal/session"
	"github.com/markalston/cabdesk/internal/tui/icons"
	"github.com/markalston/cabdesk/internal/tui/styles"
)

// Unknown is shown to users whose role the client does not recognise
type Unknown struct {
	role  session.Role
	width int
}

func NewUnknown(role session.Role) *Unknown {
	return &Unknown{role: role}
}

func (u *Unknown) Init() tea.Cmd { return nil }

func (u *Unknown) Update(tea.Msg) (Model, tea.Cmd) { return u, nil }

func (u *Unknown) SetSize(width, _ int) { u.width = width }

func (u *Unknown) Editing() bool { return false }

func (u *Unknown) Shortcuts() []string { return []string{"l Logout", "q Quit"} }

func (u *Unknown) View() string {
	var sb strings.Builder
	sb.WriteString(styles.StatusWarning.Render(icons.Warning.String() + " Unknown Role"))
	sb.WriteString("\n\n")
	sb.WriteString("Your account role is not recognized. Please contact support.")
	sb.WriteString("\n")
	sb.WriteString(styles.Help.Render("You can still log out and sign in with another account."))
	return styles.Panel.Width(max(40, u.width-4)).Render(sb.String())
}
