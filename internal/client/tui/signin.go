package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tandahq/tanda/internal/client/session"
)

// signInModel is the email/password screen. Submission runs asynchronously;
// failures surface through the session store's error field.
type signInModel struct {
	sessions *session.Store

	email      textinput.Model
	password   textinput.Model
	submitting bool
}

func newSignInModel(sessions *session.Store) signInModel {
	email := textinput.New()
	email.Placeholder = "email"
	email.CharLimit = 120
	email.Width = 32
	email.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.EchoMode = textinput.EchoPassword
	password.CharLimit = 120
	password.Width = 32

	return signInModel{sessions: sessions, email: email, password: password}
}

func (m signInModel) Update(msg tea.Msg) (signInModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "tab", "shift+tab", "up", "down":
			if m.email.Focused() {
				m.email.Blur()
				m.password.Focus()
			} else {
				m.password.Blur()
				m.email.Focus()
			}
			return m, textinput.Blink

		case "enter":
			if m.email.Focused() {
				m.email.Blur()
				m.password.Focus()
				return m, textinput.Blink
			}
			if m.submitting {
				return m, nil
			}
			email := strings.TrimSpace(m.email.Value())
			password := m.password.Value()
			if email == "" || password == "" {
				return m, nil
			}
			m.submitting = true
			sessions := m.sessions
			return m, func() tea.Msg {
				err := sessions.SignIn(context.Background(), email, password)
				return signInResultMsg{err: err}
			}
		}

	case signInResultMsg:
		m.submitting = false
		if msg.err != nil {
			m.password.SetValue("")
		}
		return m, nil
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.email, cmd = m.email.Update(msg)
	cmds = append(cmds, cmd)
	m.password, cmd = m.password.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m signInModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("tanda"))
	b.WriteString("\n")
	b.WriteString(subtitleStyle.Render("sign in to your savings group"))
	b.WriteString("\n\n")
	b.WriteString(m.email.View())
	b.WriteString("\n")
	b.WriteString(m.password.View())
	b.WriteString("\n\n")

	if m.submitting {
		b.WriteString(subtitleStyle.Render("signing in..."))
	} else if errMsg := m.sessions.Snapshot().Err; errMsg != "" {
		b.WriteString(errorStyle.Render(errMsg))
	}

	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render("tab: switch field • enter: sign in • ctrl+c: quit"))

	return screenStyle.Render(b.String())
}
