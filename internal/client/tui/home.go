package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tandahq/tanda/internal/client/connectivity"
	"github.com/tandahq/tanda/internal/client/domain"
	"github.com/tandahq/tanda/internal/client/session"
)

// homeModel is the signed-in shell. The payment views it hosts are fed by
// the group/payment services; here it shows the session identity and the
// sync banner the connectivity observer drives.
type homeModel struct {
	sessions   *session.Store
	observer   *connectivity.Observer
	online     bool
	loggingOut bool
}

func newHomeModel(sessions *session.Store, observer *connectivity.Observer) homeModel {
	return homeModel{
		sessions: sessions,
		observer: observer,
		online:   observer.IsOnline(),
	}
}

func (m homeModel) Update(msg tea.Msg) (homeModel, tea.Cmd) {
	switch msg := msg.(type) {
	case ConnectivityMsg:
		m.online = msg.Online
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "r":
			observer := m.observer
			return m, func() tea.Msg {
				return ConnectivityMsg{Online: observer.Refresh(context.Background())}
			}

		case "ctrl+l":
			if m.loggingOut {
				return m, nil
			}
			m.loggingOut = true
			sessions := m.sessions
			return m, func() tea.Msg {
				return logoutResultMsg{err: sessions.Logout(context.Background())}
			}
		}

	case logoutResultMsg:
		m.loggingOut = false
	}

	return m, nil
}

func (m homeModel) View() string {
	snap := m.sessions.Snapshot()

	var b strings.Builder
	b.WriteString(titleStyle.Render("tanda"))
	b.WriteString("\n")

	if !m.online {
		b.WriteString(bannerStyle.Render("offline — changes will sync when you reconnect"))
		b.WriteString("\n")
	}

	if snap.User != nil {
		role := "member"
		if snap.User.Role == domain.RoleOrganizer {
			role = "organizer"
		}
		b.WriteString(fmt.Sprintf("%s (%s)\n\n", snap.User.DisplayName, role))
	}

	b.WriteString(subtitleStyle.Render("your groups and payments load here"))
	b.WriteString("\n")

	if snap.Err != "" {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(snap.Err))
		b.WriteString("\n")
	}

	if m.loggingOut {
		b.WriteString("\n")
		b.WriteString(subtitleStyle.Render("signing out..."))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("r: refresh sync status • ctrl+l: log out • ctrl+c: quit"))

	return screenStyle.Render(b.String())
}
