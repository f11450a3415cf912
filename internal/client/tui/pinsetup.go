package tui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tandahq/tanda/internal/client/session"
	"github.com/tandahq/tanda/pkg/pincred"
)

var errNonDigit = errors.New("pin input accepts digits only")

// pinSetupModel is the choose-a-PIN screen shown while the identity's PIN
// state is pending. Two masked entries must match before the hash is
// written to the provider.
type pinSetupModel struct {
	sessions *session.Store

	choose  textinput.Model
	confirm textinput.Model
	message string
	saving  bool
}

func newPinSetupModel(sessions *session.Store) pinSetupModel {
	choose := newPinInput("choose a 4-digit PIN")
	choose.Focus()
	confirm := newPinInput("confirm your PIN")

	return pinSetupModel{sessions: sessions, choose: choose, confirm: confirm}
}

func newPinInput(placeholder string) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.EchoMode = textinput.EchoPassword
	ti.CharLimit = pincred.PinLength
	ti.Width = 24
	// Masked entry is digits only; anything else is dropped, not rejected.
	ti.Validate = func(s string) error {
		for _, r := range s {
			if r < '0' || r > '9' {
				return errNonDigit
			}
		}
		return nil
	}
	return ti
}

func (m pinSetupModel) Update(msg tea.Msg) (pinSetupModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "tab", "shift+tab", "up", "down":
			if m.choose.Focused() {
				m.choose.Blur()
				m.confirm.Focus()
			} else {
				m.confirm.Blur()
				m.choose.Focus()
			}
			return m, textinput.Blink

		case "enter":
			if m.choose.Focused() {
				m.choose.Blur()
				m.confirm.Focus()
				return m, textinput.Blink
			}
			return m.submit()
		}

	case pinSetupResultMsg:
		m.saving = false
		if msg.err != nil {
			m.message = "Could not save your PIN, try again"
			m.choose.SetValue("")
			m.confirm.SetValue("")
			m.confirm.Blur()
			m.choose.Focus()
		}
		return m, nil
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.choose, cmd = m.choose.Update(msg)
	cmds = append(cmds, cmd)
	m.confirm, cmd = m.confirm.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m pinSetupModel) submit() (pinSetupModel, tea.Cmd) {
	if m.saving {
		return m, nil
	}

	pin := m.choose.Value()
	if len(pin) != pincred.PinLength {
		m.message = "PIN must be exactly 4 digits"
		return m, nil
	}
	if pin != m.confirm.Value() {
		m.message = "PINs do not match"
		m.confirm.SetValue("")
		return m, nil
	}

	hash, err := pincred.Hash(pin)
	if err != nil {
		m.message = "Could not save your PIN, try again"
		return m, nil
	}

	m.saving = true
	m.message = ""
	sessions := m.sessions
	return m, func() tea.Msg {
		return pinSetupResultMsg{err: sessions.SetupPin(context.Background(), hash)}
	}
}

func (m pinSetupModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("set up your PIN"))
	b.WriteString("\n")
	b.WriteString(subtitleStyle.Render("it locks this device, not your account"))
	b.WriteString("\n\n")
	b.WriteString(m.choose.View())
	b.WriteString("\n")
	b.WriteString(m.confirm.View())
	b.WriteString("\n\n")

	if m.saving {
		b.WriteString(subtitleStyle.Render("saving..."))
	} else if m.message != "" {
		b.WriteString(errorStyle.Render(m.message))
	}

	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render("enter: continue • ctrl+c: quit"))

	return screenStyle.Render(b.String())
}
