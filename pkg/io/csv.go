package io

import (
	"encoding/csv"
	"errors"
	"io"
	"strconv"
	"strings"

	errs "github.com/matzehuels/leveler/pkg/errors"
	"github.com/matzehuels/leveler/pkg/project"
)

// taskColumns is the header of a task CSV file.
var taskColumns = []string{"id", "name", "durationDays", "dependsOn", "requiredResources"}

// listSep separates entries of a list column.
const listSep = ";"

// ReadCSV reads tasks from a CSV file with a header row. Only the id and
// durationDays columns are required; column order is free. The returned
// project has no start date.
func ReadCSV(r io.Reader) (project.Project, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return project.Project{}, errs.New(errs.ErrCodeInvalidFormat, "csv: missing header row")
	}
	if err != nil {
		return project.Project{}, errs.Wrap(errs.ErrCodeInvalidFormat, err, "csv: read header")
	}

	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	for _, required := range []string{"id", "durationDays"} {
		if _, ok := col[required]; !ok {
			return project.Project{}, errs.New(errs.ErrCodeInvalidFormat, "csv: missing column %q", required)
		}
	}

	field := func(rec []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var tasks []project.Task
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return project.Project{}, errs.Wrap(errs.ErrCodeInvalidFormat, err, "csv: read row")
		}
		line, _ := cr.FieldPos(0)

		id := field(rec, "id")
		if id == "" && strings.TrimSpace(strings.Join(rec, "")) == "" {
			continue
		}

		raw := field(rec, "durationDays")
		duration := 0
		if raw != "" {
			duration, err = strconv.Atoi(raw)
			if err != nil {
				return project.Project{}, errs.Wrap(errs.ErrCodeInvalidFormat, err, "csv line %d: durationDays %q is not an integer", line, raw)
			}
		}

		tasks = append(tasks, project.Task{
			ID:                id,
			Name:              field(rec, "name"),
			DurationDays:      duration,
			DependsOn:         splitList(field(rec, "dependsOn")),
			RequiredResources: splitList(field(rec, "requiredResources")),
		})
	}

	return project.Project{
		Resources: project.ResourcesInUse(tasks),
		Tasks:     tasks,
	}, nil
}

// WriteTasksCSV writes tasks in the format read by ReadCSV.
func WriteTasksCSV(w io.Writer, tasks []project.Task) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(taskColumns); err != nil {
		return err
	}
	for _, t := range tasks {
		if err := cw.Write(taskFields(t)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func taskFields(t project.Task) []string {
	return []string{
		t.ID,
		t.Name,
		strconv.Itoa(t.DurationDays),
		strings.Join(t.DependsOn, listSep),
		strings.Join(t.RequiredResources, listSep),
	}
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, listSep) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
