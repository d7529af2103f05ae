// Package gantt draws leveled schedules for the terminal: a Gantt timeline
// and a detail table, both styled with lipgloss.
package gantt

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/leveler/pkg/calendar"
	"github.com/matzehuels/leveler/pkg/schedule"
)

// DefaultMaxWidth is the chart width used when Options.MaxWidth is unset.
const DefaultMaxWidth = 80

// Bar glyphs.
const (
	glyphBusy      = '█'
	glyphDelay     = '░'
	glyphIdle      = '·'
	glyphMilestone = '◆'
)

var (
	colorCritical = lipgloss.Color("167")
	colorNormal   = lipgloss.Color("36")
	colorDim      = lipgloss.Color("240")

	styleCritical = lipgloss.NewStyle().Foreground(colorCritical)
	styleNormal   = lipgloss.NewStyle().Foreground(colorNormal)
	styleDim      = lipgloss.NewStyle().Foreground(colorDim)
)

// Options configures Gantt.
type Options struct {
	// MaxWidth caps the number of timeline columns. Longer schedules are
	// compressed so that one column covers several slots.
	MaxWidth int

	// ShowDates appends each task's start and end date to its row.
	ShowDates bool
}

// Gantt renders tasks as a text timeline, one row per task in the given
// order. Occupied slots are drawn as full blocks, the gap between a task's
// earliest start and its leveled start as light shade, and zero-duration
// tasks as a diamond. Critical tasks are styled red.
func Gantt(tasks []schedule.ScheduledTask, opts Options) string {
	if len(tasks) == 0 {
		return styleDim.Render("(no tasks)") + "\n"
	}

	maxWidth := opts.MaxWidth
	if maxWidth <= 0 {
		maxWidth = DefaultMaxWidth
	}
	span := max(schedule.Makespan(tasks), 1)
	scale := ceilDiv(span, maxWidth)
	cols := ceilDiv(span, scale)

	labelWidth := 0
	for _, t := range tasks {
		labelWidth = max(labelWidth, lipgloss.Width(t.ID))
	}
	pad := strings.Repeat(" ", labelWidth+1)

	var b strings.Builder
	b.WriteString(pad + styleDim.Render(axis(cols, scale)) + "\n")

	for _, t := range tasks {
		style := styleNormal
		if t.Critical {
			style = styleCritical
		}
		line := fmt.Sprintf("%-*s %s", labelWidth, t.ID, style.Render(bar(t, cols, scale)))
		if opts.ShowDates {
			line += "  " + styleDim.Render(calendar.FormatDate(t.StartDate)+" → "+calendar.FormatDate(t.EndDate))
		}
		b.WriteString(line + "\n")
	}

	legend := fmt.Sprintf("%c scheduled  %c delayed  %c milestone", glyphBusy, glyphDelay, glyphMilestone)
	if scale > 1 {
		legend += fmt.Sprintf("  (1 column = %d days)", scale)
	}
	b.WriteString(pad + styleDim.Render(legend) + "\n")
	return b.String()
}

// bar draws one task's row. Column c covers slots [c*scale, (c+1)*scale).
func bar(t schedule.ScheduledTask, cols, scale int) string {
	row := make([]rune, cols)
	for c := range row {
		lo, hi := c*scale, (c+1)*scale
		switch {
		case overlaps(lo, hi, t.StartSlot, t.EndSlot):
			row[c] = glyphBusy
		case overlaps(lo, hi, t.EarliestStart, t.StartSlot):
			row[c] = glyphDelay
		default:
			row[c] = glyphIdle
		}
	}
	if t.DurationDays == 0 {
		row[min(t.StartSlot/scale, cols-1)] = glyphMilestone
	}
	return string(row)
}

// axis labels every tenth column with its slot number.
func axis(cols, scale int) string {
	row := []rune(strings.Repeat(" ", cols))
	for c := 0; c < cols; c += 10 {
		label := strconv.Itoa(c * scale)
		if c+len(label) > cols {
			break
		}
		copy(row[c:], []rune(label))
	}
	return strings.TrimRight(string(row), " ")
}

func overlaps(lo, hi, start, end int) bool {
	return start < end && start < hi && lo < end
}

func ceilDiv(a, b int) int {
	return max((a+b-1)/b, 1)
}
