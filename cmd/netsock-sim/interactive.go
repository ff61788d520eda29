package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/wippyai/netsock/driver"
)

const historySize = 8

type interactiveModel struct {
	err     error
	d       *driver.Driver
	result  string
	history []string
	input   textinput.Model
}

func newInteractiveModel(d *driver.Driver) *interactiveModel {
	ti := textinput.New()
	ti.Placeholder = "listen tcp 80"
	ti.Prompt = "> "
	ti.Width = 60
	ti.Focus()
	return &interactiveModel{d: d, input: ti}
}

func (m *interactiveModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit

		case "ctrl+t":
			// shortcut: one second forward, then tick
			m.d.Advance(time.Second)
			res := m.d.Tick()
			m.result = fmt.Sprintf("t+1s: polled %v, recycled %d", res.Polled, res.Recycled)
			m.err = nil
			return m, nil

		case "enter":
			line := strings.TrimSpace(m.input.Value())
			m.input.SetValue("")
			if line == "" {
				return m, nil
			}
			if line == "quit" || line == "exit" {
				return m, tea.Quit
			}
			m.record(line)
			m.result, m.err = execLine(m.d, line)
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *interactiveModel) record(line string) {
	m.history = append(m.history, line)
	if len(m.history) > historySize {
		m.history = m.history[len(m.history)-historySize:]
	}
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("netsock simulator"))
	b.WriteString(" ")
	b.WriteString(m.d.Now().Format(time.TimeOnly))
	b.WriteString("\n\n")

	b.WriteString(renderTable(m.d.Snapshot(), false))
	b.WriteString("\n\n")

	for _, h := range m.history {
		b.WriteString(helpStyle.Render("  " + h))
		b.WriteString("\n")
	}

	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	switch {
	case m.err != nil:
		b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	case m.result != "":
		b.WriteString(resultStyle.Render(m.result))
	}
	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render("enter run • help commands • ctrl+t advance 1s and tick • esc quit"))

	return b.String()
}

func runInteractive(d *driver.Driver) error {
	p := tea.NewProgram(newInteractiveModel(d), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
