package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/leveler/pkg/calendar"
	"github.com/matzehuels/leveler/pkg/pipeline"
	"github.com/matzehuels/leveler/pkg/render/gantt"
	"github.com/matzehuels/leveler/pkg/schedule"
)

// viewCommand creates the view command, an interactive schedule browser.
func (c *CLI) viewCommand() *cobra.Command {
	var (
		flags   projectFlags
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "view [project]",
		Short: "Browse a leveled schedule interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runView(cmd.Context(), args[0], flags, noCache)
		},
	}
	flags.register(cmd)
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runView(ctx context.Context, input string, flags projectFlags, noCache bool) error {
	p, err := flags.load(input, time.Now())
	if err != nil {
		return err
	}
	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	result, err := runner.Execute(ctx, p, flags.options(c.Logger))
	if err != nil {
		return err
	}
	if len(result.Schedule) == 0 {
		c.printInfo("Project has no tasks")
		return nil
	}

	_, err = tea.NewProgram(newScheduleModel(result), tea.WithContext(ctx), tea.WithAltScreen()).Run()
	return err
}

// =============================================================================
// scheduleModel - Interactive schedule browser
// =============================================================================

var (
	viewHeaderStyle   = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	viewSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	viewCriticalStyle = lipgloss.NewStyle().Foreground(colorRed)
	viewDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

type scheduleModel struct {
	result    *pipeline.Result
	tasks     []schedule.ScheduledTask
	cursor    int
	offset    int
	height    int // visible table rows
	width     int
	showGantt bool
}

func newScheduleModel(result *pipeline.Result) scheduleModel {
	return scheduleModel{
		result: result,
		tasks:  result.Schedule,
		height: 15,
		width:  100,
	}
}

func (m scheduleModel) Init() tea.Cmd {
	return nil
}

func (m scheduleModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			m.move(-1)
		case "down", "j":
			m.move(1)
		case "home":
			m.move(-len(m.tasks))
		case "end":
			m.move(len(m.tasks))
		case "g":
			m.showGantt = !m.showGantt
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = max(msg.Height-16, 5)
		m.move(0)
	}
	return m, nil
}

// move shifts the cursor by delta and keeps it inside the visible window.
func (m *scheduleModel) move(delta int) {
	if len(m.tasks) == 0 {
		return
	}
	m.cursor = min(max(m.cursor+delta, 0), len(m.tasks)-1)
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+m.height {
		m.offset = m.cursor - m.height + 1
	}
}

func (m scheduleModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Schedule"))
	b.WriteString(viewDimStyle.Render(fmt.Sprintf("  %d tasks · duration %d · makespan %d",
		len(m.tasks), m.result.Duration, m.result.Makespan)))
	b.WriteString("\n")
	b.WriteString(viewDimStyle.Render("↑/↓ navigate  g gantt  q quit"))
	b.WriteString("\n\n")

	if m.showGantt {
		b.WriteString(gantt.Gantt(m.tasks, gantt.Options{MaxWidth: max(m.width-30, 20), ShowDates: true}))
	} else {
		b.WriteString(m.tableView())
	}
	b.WriteString("\n\n")
	b.WriteString(m.detailView())
	return b.String()
}

func (m scheduleModel) tableView() string {
	end := min(m.offset+m.height, len(m.tasks))
	rows := make([][]string, 0, end-m.offset)
	for i := m.offset; i < end; i++ {
		t := m.tasks[i]
		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{
			cursor,
			t.ID,
			calendar.FormatDate(t.StartDate),
			calendar.FormatDate(t.EndDate),
			strconv.Itoa(t.DurationDays),
			strconv.Itoa(t.Slack),
			strconv.Itoa(t.Delay()),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(viewDimStyle).
		Headers("", "Task", "Start", "End", "Days", "Slack", "Delay").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return viewHeaderStyle
			}
			idx := m.offset + row
			if idx >= len(m.tasks) {
				return lipgloss.NewStyle()
			}
			style := lipgloss.NewStyle()
			if m.tasks[idx].Critical {
				style = viewCriticalStyle
			}
			if idx == m.cursor {
				style = style.Bold(true)
				if !m.tasks[idx].Critical {
					style = viewSelectedStyle
				}
			}
			return style
		})

	return t.Render() + "\n" + viewDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.cursor+1, len(m.tasks)))
}

// detailView describes the task under the cursor.
func (m scheduleModel) detailView() string {
	if len(m.tasks) == 0 {
		return ""
	}
	t := m.tasks[m.cursor]

	name := t.ID
	if t.Name != "" {
		name += " " + viewDimStyle.Render(t.Name)
	}
	lines := []string{
		viewSelectedStyle.Render(name),
		fmt.Sprintf("ES %d  EF %d  LS %d  LF %d  slack %d", t.EarliestStart, t.EarliestFinish, t.LatestStart, t.LatestFinish, t.Slack),
		fmt.Sprintf("placed [%d,%d)  %s → %s", t.StartSlot, t.EndSlot, calendar.FormatDate(t.StartDate), calendar.FormatDate(t.EndDate)),
		"depends on: " + listOrDash(t.DependsOn),
		"resources:  " + listOrDash(t.RequiredResources),
	}
	if t.Critical {
		lines = append(lines, viewCriticalStyle.Render("on the critical path"))
	}
	if d := t.Delay(); d > 0 {
		lines = append(lines, StyleWarning.Render(fmt.Sprintf("delayed %d days by resource contention", d)))
	}
	return strings.Join(lines, "\n")
}

func listOrDash(items []string) string {
	if len(items) == 0 {
		return "—"
	}
	return strings.Join(items, ", ")
}
