package monitor

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/thoukydides/fantasiad"
)

type model struct {
	table table.Model
}

func newTUI() *model {
	columns := []table.Column{
		{Title: "Fans", Width: 24},
		{Title: "Address", Width: 16},
		{Title: "State", Width: 14},
		{Title: "Scheduler", Width: 14},
		{Title: "Last transmission", Width: 40},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(false),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		Foreground(lipgloss.Color("#00afff")).
		BorderForeground(lipgloss.Color("#00afff")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("#ffffff")).
		Bold(false)
	t.SetStyles(s)

	return &model{
		table: t,
	}
}

func (m *model) Init() tea.Cmd {
	return nil
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.table.SetWidth(msg.Width)
		m.table.SetHeight(msg.Height)
	case []fantasiad.Status:
		m.table.SetRows(rows(msg))
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}
	}
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *model) View() string {
	return m.table.View()
}

// rows expects statuses already ordered by the daemon.
func rows(statuses []fantasiad.Status) []table.Row {
	rows := make([]table.Row, 0, len(statuses))
	for _, s := range statuses {
		state := "Off"
		if s.State.On {
			state = "On " + s.State.Speed.String()
		}

		last := "-"
		if s.Last != nil {
			outcome := "ok"
			if s.Last.Error != "" {
				outcome = s.Last.Error
			}
			last = fmt.Sprintf("%s %s %s", s.Last.At.Local().Format("15:04:05"), s.Last.Button, outcome)
		}

		rows = append(rows, table.Row{
			fmt.Sprintf("%s(%s)", s.ID, s.Name),
			s.Serial,
			state,
			s.Phase.String(),
			last,
		})
	}

	return rows
}
