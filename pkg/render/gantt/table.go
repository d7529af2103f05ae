package gantt

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/leveler/pkg/calendar"
	"github.com/matzehuels/leveler/pkg/cpm"
	"github.com/matzehuels/leveler/pkg/project"
	"github.com/matzehuels/leveler/pkg/schedule"
)

var styleHeader = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Bold(true)

// Table renders the leveled schedule with dates, CPM timing and the delay
// introduced by leveling.
func Table(tasks []schedule.ScheduledTask) string {
	rows := make([][]string, len(tasks))
	for i, t := range tasks {
		rows[i] = []string{
			t.ID,
			t.Name,
			strconv.Itoa(t.DurationDays),
			calendar.FormatDate(t.StartDate),
			calendar.FormatDate(t.EndDate),
			strconv.Itoa(t.EarliestStart),
			strconv.Itoa(t.LatestStart),
			strconv.Itoa(t.Slack),
			strconv.Itoa(t.Delay()),
			criticalMark(t.Critical),
		}
	}
	return newTable(rows, func(row int) bool { return tasks[row].Critical }).
		Headers("ID", "Name", "Days", "Start", "End", "ES", "LS", "Slack", "Delay", "Critical").
		Render()
}

// TimingTable renders CPM timing for tasks in input order.
func TimingTable(tasks []project.Task, timing map[string]cpm.TaskTiming) string {
	rows := make([][]string, len(tasks))
	for i, t := range tasks {
		ts := timing[t.ID]
		rows[i] = []string{
			t.ID,
			t.Name,
			strconv.Itoa(t.DurationDays),
			strconv.Itoa(ts.EarliestStart),
			strconv.Itoa(ts.EarliestFinish),
			strconv.Itoa(ts.LatestStart),
			strconv.Itoa(ts.LatestFinish),
			strconv.Itoa(ts.Slack),
			criticalMark(ts.Critical),
		}
	}
	return newTable(rows, func(row int) bool { return timing[tasks[row].ID].Critical }).
		Headers("ID", "Name", "Days", "ES", "EF", "LS", "LF", "Slack", "Critical").
		Render()
}

func newTable(rows [][]string, critical func(row int) bool) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styleDim).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			base := lipgloss.NewStyle().Padding(0, 1)
			if row == table.HeaderRow {
				return styleHeader.Padding(0, 1)
			}
			if row >= 0 && row < len(rows) && critical(row) {
				return base.Foreground(colorCritical)
			}
			return base
		})
}

func criticalMark(c bool) string {
	if c {
		return "yes"
	}
	return ""
}
