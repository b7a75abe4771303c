package cmd

import (
	"encoding/hex"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/andrei-cloud/go_hsm/pkg/scp"
)

var (
	stepStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	errStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	doneStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

type replayStep struct {
	plainHex   string
	wrappedHex string
	chainHex   string
	err        string
}

type sessionReplayModel struct {
	secInfo *scp.SecurityInfo
	apdus   [][]byte
	steps   []replayStep
	cursor  int
	done    bool
	quit    bool
}

func newSessionReplayModel(secInfo *scp.SecurityInfo, apdus [][]byte) sessionReplayModel {
	return sessionReplayModel{secInfo: secInfo, apdus: apdus}
}

func (m sessionReplayModel) Init() tea.Cmd {
	return nil
}

func (m sessionReplayModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "ctrl+c", "q":
		m.quit = true

		return m, tea.Quit
	case "enter", " ", "n":
		if m.done {
			return m, nil
		}

		apdu := m.apdus[len(m.steps)]
		wrapped, err := scp.Wrap(apdu, m.secInfo)

		step := replayStep{plainHex: hex.EncodeToString(apdu)}
		if err != nil {
			step.err = err.Error()
		} else {
			step.wrappedHex = hex.EncodeToString(wrapped)
			step.chainHex = hex.EncodeToString(m.secInfo.LastCMAC)
		}
		m.steps = append(m.steps, step)

		if len(m.steps) == len(m.apdus) {
			m.done = true
		}
	}

	return m, nil
}

func (m sessionReplayModel) View() string {
	var b strings.Builder

	fmt.Fprintf(&b, "session %s  protocol %s  level %v\n", m.secInfo.SessionID, m.secInfo.Protocol, m.secInfo.SecurityLvl)
	b.WriteString(strings.Repeat("-", 60) + "\n")

	for i, s := range m.steps {
		fmt.Fprint(&b, stepStyle.Render(fmt.Sprintf("step %d", i+1)))
		fmt.Fprintf(&b, "  plain:   %s\n", s.plainHex)
		if s.err != "" {
			fmt.Fprint(&b, errStyle.Render("  error:   "+s.err))
			b.WriteString("\n")
		} else {
			fmt.Fprintf(&b, "  wrapped: %s\n", s.wrappedHex)
			fmt.Fprintf(&b, "  chain:   %s\n", s.chainHex)
		}
	}

	if m.quit {
		return b.String()
	}

	if m.done {
		b.WriteString(doneStyle.Render("\nall apdus replayed. press q to quit.\n"))
	} else {
		b.WriteString(helpStyle.Render(fmt.Sprintf("\n%d/%d wrapped — press enter/n for next, q to quit\n", len(m.steps), len(m.apdus))))
	}

	return b.String()
}

func runSessionReplay(secInfo *scp.SecurityInfo, apdus [][]byte) error {
	p := tea.NewProgram(newSessionReplayModel(secInfo, apdus))
	_, err := p.Run()

	return err
}
