package tui

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tandahq/tanda/internal/client/lock"
	"github.com/tandahq/tanda/pkg/pincred"
)

// lockScreenModel renders the PIN re-entry screen. Input handling lives in
// the lock controller; this model only translates keys and draws.
type lockScreenModel struct {
	lock       *lock.Controller
	verifying  bool
	loggingOut bool
}

func newLockScreenModel(controller *lock.Controller) lockScreenModel {
	return lockScreenModel{lock: controller}
}

func (m lockScreenModel) Update(msg tea.Msg) (lockScreenModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "backspace":
			m.lock.Backspace()
			return m, nil

		case "enter":
			if !m.lock.CanSubmit() || m.verifying {
				return m, nil
			}
			// Verification is CPU-bound (argon2); keep it off the render
			// loop.
			m.verifying = true
			controller := m.lock
			return m, func() tea.Msg {
				controller.Submit()
				return StateChangedMsg{}
			}

		case "ctrl+l":
			// Log out and switch account: always available, bypasses the
			// PIN entirely.
			if m.loggingOut {
				return m, nil
			}
			m.loggingOut = true
			controller := m.lock
			return m, func() tea.Msg {
				return logoutResultMsg{err: controller.Logout(context.Background())}
			}

		default:
			if msg.Type == tea.KeyRunes {
				for _, r := range msg.Runes {
					m.lock.Append(r)
				}
			}
			return m, nil
		}

	case StateChangedMsg:
		m.verifying = false

	case logoutResultMsg:
		m.loggingOut = false
	}

	return m, nil
}

func (m lockScreenModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("locked"))
	b.WriteString("\n")
	b.WriteString(subtitleStyle.Render("enter your PIN to continue"))
	b.WriteString("\n\n")

	entered := len(m.lock.Input())
	dots := make([]string, 0, pincred.PinLength)
	for i := range pincred.PinLength {
		if i < entered {
			dots = append(dots, "●")
		} else {
			dots = append(dots, "○")
		}
	}
	b.WriteString(pinBoxStyle.Render(strings.Join(dots, " ")))
	b.WriteString("\n\n")

	switch {
	case m.verifying:
		b.WriteString(subtitleStyle.Render("verifying..."))
	case m.loggingOut:
		b.WriteString(subtitleStyle.Render("signing out..."))
	case m.lock.Message() != "":
		b.WriteString(errorStyle.Render(m.lock.Message()))
	}

	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render("enter: unlock • ctrl+l: log out and switch account • ctrl+c: quit"))

	return screenStyle.Render(b.String())
}
