// Package tui renders the client screens. The root model owns nothing but
// navigation: on every message it re-evaluates the route guard against the
// session snapshot and hands control to whichever screen the decision
// names.
package tui

import (
	"context"
	"log/slog"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tandahq/tanda/internal/client/connectivity"
	"github.com/tandahq/tanda/internal/client/domain"
	"github.com/tandahq/tanda/internal/client/guard"
	"github.com/tandahq/tanda/internal/client/lock"
	"github.com/tandahq/tanda/internal/client/session"
)

type Model struct {
	sessions *session.Store
	lockCtl  *lock.Controller
	observer *connectivity.Observer
	logger   *slog.Logger

	// requestedPath is the current navigation target; empty means the
	// role's home. returnTo preserves the target across a sign-in
	// redirect.
	requestedPath string
	returnTo      string

	signIn     signInModel
	pinSetup   pinSetupModel
	lockScreen lockScreenModel
	home       homeModel
}

func NewModel(
	sessions *session.Store,
	lockCtl *lock.Controller,
	observer *connectivity.Observer,
	logger *slog.Logger,
) Model {
	return Model{
		sessions:   sessions,
		lockCtl:    lockCtl,
		observer:   observer,
		logger:     logger,
		signIn:     newSignInModel(sessions),
		pinSetup:   newPinSetupModel(sessions),
		lockScreen: newLockScreenModel(lockCtl),
		home:       newHomeModel(sessions, observer),
	}
}

func (m Model) Init() tea.Cmd {
	sessions := m.sessions
	return tea.Batch(
		textinput.Blink,
		func() tea.Msg {
			sessions.Initialize(context.Background())
			return initDoneMsg{}
		},
	)
}

// path resolves the navigation target, defaulting to the role's home view.
func (m Model) path() string {
	if m.requestedPath != "" {
		return m.requestedPath
	}
	snap := m.sessions.Snapshot()
	if snap.User != nil && snap.User.Role == domain.RoleOrganizer {
		return guard.PathOrganizer
	}
	return guard.PathMember
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

	case tea.BlurMsg:
		// Losing the terminal's focus ends the foreground lifetime; the
		// next re-entry demands the PIN again.
		m.lockCtl.Relock()
		return m, nil

	case signInResultMsg:
		var cmd tea.Cmd
		m.signIn, cmd = m.signIn.Update(msg)
		if msg.err == nil && m.returnTo != "" {
			// Sign-in succeeded: resume the originally requested path.
			m.requestedPath = m.returnTo
			m.returnTo = ""
		}
		return m, cmd

	case pinSetupResultMsg:
		var cmd tea.Cmd
		m.pinSetup, cmd = m.pinSetup.Update(msg)
		if msg.err == nil {
			m.requestedPath = ""
		}
		return m, cmd

	case logoutResultMsg:
		var cmds []tea.Cmd
		var cmd tea.Cmd
		m.lockScreen, cmd = m.lockScreen.Update(msg)
		cmds = append(cmds, cmd)
		m.home, cmd = m.home.Update(msg)
		cmds = append(cmds, cmd)
		if msg.err == nil {
			m.requestedPath = ""
			m.returnTo = ""
		}
		return m, tea.Batch(cmds...)

	case ConnectivityMsg:
		var cmd tea.Cmd
		m.home, cmd = m.home.Update(msg)
		return m, cmd

	case StateChangedMsg:
		var cmd tea.Cmd
		m.lockScreen, cmd = m.lockScreen.Update(msg)
		return m, cmd

	case initDoneMsg:
		return m, nil
	}

	// Route everything else to the screen the guard would render.
	result := guard.Evaluate(m.sessions.Snapshot(), m.path())
	switch result.Decision {
	case guard.ShowLoading:
		return m, nil

	case guard.RedirectToSignIn:
		// Carry only an explicitly requested path; the role default is
		// meaningless before the user is known and resolves after
		// sign-in.
		m.returnTo = m.requestedPath
		var cmd tea.Cmd
		m.signIn, cmd = m.signIn.Update(msg)
		return m, cmd

	case guard.RedirectToPinSetup:
		var cmd tea.Cmd
		m.pinSetup, cmd = m.pinSetup.Update(msg)
		return m, cmd

	default:
		if m.lockCtl.Locked() {
			var cmd tea.Cmd
			m.lockScreen, cmd = m.lockScreen.Update(msg)
			return m, cmd
		}
		var cmd tea.Cmd
		m.home, cmd = m.home.Update(msg)
		return m, cmd
	}
}

func (m Model) View() string {
	result := guard.Evaluate(m.sessions.Snapshot(), m.path())
	switch result.Decision {
	case guard.ShowLoading:
		return screenStyle.Render(subtitleStyle.Render("loading..."))
	case guard.RedirectToSignIn:
		return m.signIn.View()
	case guard.RedirectToPinSetup:
		return m.pinSetup.View()
	default:
		if m.lockCtl.Locked() {
			return m.lockScreen.View()
		}
		return m.home.View()
	}
}
