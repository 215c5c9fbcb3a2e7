package cli

import (
	"fmt"
	"os"
	"sort"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/atelier/pkg/application"
)

var timelineCmd = &cobra.Command{
	Use:   "timeline",
	Short: "Interactive timeline of scheduled items",
	RunE: func(cmd *cobra.Command, args []string) error {
		if os.Getenv("ATELIER_SKIP_TIMELINE_RUN") == "true" {
			return nil
		}
		p := tea.NewProgram(initialTimelineModel())
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("timeline run failed: %w", err)
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(timelineCmd)
}

var timelineBaseStyle = lipgloss.NewStyle().
	BorderStyle(lipgloss.NormalBorder()).
	BorderForeground(lipgloss.Color("240"))

var timelineHeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("#FAFAFA")).
	Background(lipgloss.Color("#5F5FD7")).
	PaddingLeft(1).
	PaddingRight(1)

type timelineModel struct {
	table  table.Model
	studio string
	totals application.Totals
	err    error
}

func initialTimelineModel() timelineModel {
	services, err := loadServicesForCurrentDir()
	if err != nil {
		return timelineModel{err: err}
	}
	defer services.Close()

	items := services.Mirrors.Snapshots()
	sort.SliceStable(items, func(i, j int) bool {
		ti, tj := items[i].Task, items[j].Task
		switch {
		case ti == nil && tj == nil:
			return items[i].ID < items[j].ID
		case ti == nil:
			return false
		case tj == nil:
			return true
		default:
			return ti.StartDate.Before(tj.StartDate)
		}
	})

	columns := []table.Column{
		{Title: "Item", Width: 28},
		{Title: "Start", Width: 12},
		{Title: "End", Width: 12},
		{Title: "Days", Width: 5},
		{Title: "Status", Width: 10},
		{Title: "Crew", Width: 18},
	}

	rows := []table.Row{}
	for _, item := range items {
		start, end, days, status := "-", "-", "-", "unscheduled"
		if item.Task != nil {
			start = item.Task.StartDate.Format("2006-01-02")
			end = item.Task.EndDate.Format("2006-01-02")
			days = fmt.Sprintf("%d", item.Task.DurationDays)
			status = string(item.Task.Status)
		}
		crewName := "-"
		if item.Crew != nil {
			crewName = item.Crew.Name
		} else if item.CrewMemberID != "" {
			crewName = item.CrewMemberID
		}
		rows = append(rows, table.Row{item.Name, start, end, days, status, crewName})
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(12),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240"))
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229"))
	t.SetStyles(s)

	studio := services.Config.StudioName
	if studio == "" {
		studio = "atelier"
	}

	return timelineModel{
		table:  t,
		studio: studio,
		totals: services.Stats.Totals(),
	}
}

func (m timelineModel) Init() tea.Cmd { return nil }

func (m timelineModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}
	}
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m timelineModel) View() string {
	if m.err != nil {
		return fmt.Sprintf("Error loading timeline: %v\nPress q to quit.", m.err)
	}

	header := timelineHeaderStyle.Render(m.studio)
	summary := fmt.Sprintf("%d items  %d scheduled  %d completed  %d pending",
		m.totals.Items, m.totals.Scheduled, m.totals.Completed, m.totals.Pending)

	return timelineBaseStyle.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header,
			summary,
			m.table.View(),
			"[q] Quit  [Up/Down] Navigate",
		),
	) + "\n"
}
