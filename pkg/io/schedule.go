package io

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/matzehuels/leveler/pkg/calendar"
	"github.com/matzehuels/leveler/pkg/cpm"
	errs "github.com/matzehuels/leveler/pkg/errors"
	"github.com/matzehuels/leveler/pkg/project"
	"github.com/matzehuels/leveler/pkg/schedule"
)

// scheduleColumns is the header of a schedule CSV export.
var scheduleColumns = []string{
	"id", "name", "durationDays", "dependsOn", "requiredResources",
	"start", "end",
	"earliestStart", "earliestFinish", "latestStart", "latestFinish", "slack", "critical",
}

// ScheduleRecord is the serialized form of a scheduled task.
type ScheduleRecord struct {
	TaskRecord     `bson:",inline"`
	Start          string `json:"start" bson:"start"`
	End            string `json:"end" bson:"end"`
	StartSlot      int    `json:"startSlot" bson:"startSlot"`
	EndSlot        int    `json:"endSlot" bson:"endSlot"`
	EarliestStart  int    `json:"earliestStart" bson:"earliestStart"`
	EarliestFinish int    `json:"earliestFinish" bson:"earliestFinish"`
	LatestStart    int    `json:"latestStart" bson:"latestStart"`
	LatestFinish   int    `json:"latestFinish" bson:"latestFinish"`
	Slack          int    `json:"slack" bson:"slack"`
	Critical       bool   `json:"critical" bson:"critical"`
}

// NewScheduleRecords converts scheduled tasks to their serialized form.
func NewScheduleRecords(tasks []schedule.ScheduledTask) []ScheduleRecord {
	out := make([]ScheduleRecord, len(tasks))
	for i, t := range tasks {
		out[i] = ScheduleRecord{
			TaskRecord:     TaskRecord(t.Task.Clone()),
			Start:          calendar.FormatDate(t.StartDate),
			End:            calendar.FormatDate(t.EndDate),
			StartSlot:      t.StartSlot,
			EndSlot:        t.EndSlot,
			EarliestStart:  t.EarliestStart,
			EarliestFinish: t.EarliestFinish,
			LatestStart:    t.LatestStart,
			LatestFinish:   t.LatestFinish,
			Slack:          t.Slack,
			Critical:       t.Critical,
		}
	}
	return out
}

// ScheduledTask converts r back to a scheduled task.
func (r ScheduleRecord) ScheduledTask() (schedule.ScheduledTask, error) {
	start, err := calendar.ParseDate(r.Start)
	if err != nil {
		return schedule.ScheduledTask{}, errs.Wrap(errs.ErrCodeInvalidFormat, err, "task %s: start %q", r.ID, r.Start)
	}
	end, err := calendar.ParseDate(r.End)
	if err != nil {
		return schedule.ScheduledTask{}, errs.Wrap(errs.ErrCodeInvalidFormat, err, "task %s: end %q", r.ID, r.End)
	}
	return schedule.ScheduledTask{
		Task: project.Task(r.TaskRecord).Clone(),
		TaskTiming: cpm.TaskTiming{
			EarliestStart:  r.EarliestStart,
			EarliestFinish: r.EarliestFinish,
			LatestStart:    r.LatestStart,
			LatestFinish:   r.LatestFinish,
			Slack:          r.Slack,
			Critical:       r.Critical,
		},
		StartSlot: r.StartSlot,
		EndSlot:   r.EndSlot,
		StartDate: start,
		EndDate:   end,
	}, nil
}

// WriteScheduleJSON writes tasks as an indented JSON array.
func WriteScheduleJSON(w io.Writer, tasks []schedule.ScheduledTask) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(NewScheduleRecords(tasks)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ReadScheduleJSON reads a schedule written by WriteScheduleJSON.
func ReadScheduleJSON(r io.Reader) ([]schedule.ScheduledTask, error) {
	var records []ScheduleRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "decode schedule")
	}
	out := make([]schedule.ScheduledTask, len(records))
	for i, rec := range records {
		st, err := rec.ScheduledTask()
		if err != nil {
			return nil, err
		}
		out[i] = st
	}
	return out, nil
}

// WriteScheduleCSV writes tasks as CSV, one row per task in placement order.
func WriteScheduleCSV(w io.Writer, tasks []schedule.ScheduledTask) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(scheduleColumns); err != nil {
		return err
	}
	for _, t := range tasks {
		row := append(taskFields(t.Task),
			calendar.FormatDate(t.StartDate),
			calendar.FormatDate(t.EndDate),
			strconv.Itoa(t.EarliestStart),
			strconv.Itoa(t.EarliestFinish),
			strconv.Itoa(t.LatestStart),
			strconv.Itoa(t.LatestFinish),
			strconv.Itoa(t.Slack),
			strconv.FormatBool(t.Critical),
		)
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteSchedule writes tasks in format. Only JSON and CSV are supported.
func WriteSchedule(w io.Writer, tasks []schedule.ScheduledTask, format Format) error {
	switch format {
	case FormatJSON:
		return WriteScheduleJSON(w, tasks)
	case FormatCSV:
		return WriteScheduleCSV(w, tasks)
	default:
		return errs.New(errs.ErrCodeUnsupported, "schedules can be exported as json or csv, not %s", format)
	}
}

// ExportSchedule writes tasks to path, choosing the format from the file
// extension.
func ExportSchedule(path string, tasks []schedule.ScheduledTask) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	if format != FormatJSON && format != FormatCSV {
		return errs.New(errs.ErrCodeUnsupported, "schedules can be exported as .json or .csv, not %s", path)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteSchedule(f, tasks, format); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
