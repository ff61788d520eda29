package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/wippyai/netsock/socket"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#87CEEB"))

	leasedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFD700"))

	closedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// plainOutput disables styling, set when stdout is not a terminal.
var plainOutput bool

var columns = []string{"HANDLE", "TYPE", "STATE", "BUFFERED", "WINDOW", "AVAIL"}

var cellStyle = lipgloss.NewStyle().PaddingRight(2)

// renderTable formats a socket snapshot, one row per socket.
func renderTable(rows []socket.Status, plain bool) string {
	if len(rows) == 0 {
		return "no sockets"
	}

	cells := make([][]string, 0, len(rows))
	for _, r := range rows {
		cells = append(cells, []string{
			fmt.Sprint(r.Handle),
			r.Type,
			r.State,
			fmt.Sprint(r.Buffered),
			fmt.Sprint(r.Window),
			fmt.Sprint(r.AvailableData),
		})
	}

	t := table.New().
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderHeader(false).
		BorderColumn(false).
		Headers(columns...).
		Rows(cells...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if plain {
				return cellStyle
			}
			switch {
			case row == table.HeaderRow:
				return headerStyle.PaddingRight(2)
			case rows[row].Leased:
				return leasedStyle.PaddingRight(2)
			case rows[row].State == "shutdown_for_write":
				return closedStyle.PaddingRight(2)
			}
			return cellStyle
		})
	return t.String()
}
