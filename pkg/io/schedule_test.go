package io

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	errs "github.com/matzehuels/leveler/pkg/errors"
	"github.com/matzehuels/leveler/pkg/project"
	"github.com/matzehuels/leveler/pkg/schedule"
)

func leveled(t *testing.T) []schedule.ScheduledTask {
	t.Helper()
	p := project.Project{
		StartDate: time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC),
		Tasks: []project.Task{
			{ID: "D", Name: "Dashboard", DurationDays: 3, RequiredResources: []string{"FE"}},
			{ID: "E", DurationDays: 3, RequiredResources: []string{"FE"}},
		},
	}
	out, err := schedule.Level(p)
	if err != nil {
		t.Fatalf("Level() error = %v", err)
	}
	return out
}

func TestWriteScheduleCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteScheduleCSV(&buf, leveled(t)); err != nil {
		t.Fatalf("WriteScheduleCSV() error = %v", err)
	}

	want := strings.Join([]string{
		"id,name,durationDays,dependsOn,requiredResources,start,end,earliestStart,earliestFinish,latestStart,latestFinish,slack,critical",
		"D,Dashboard,3,,FE,2025-01-03,2025-01-06,0,3,0,3,0,true",
		"E,,3,,FE,2025-01-06,2025-01-09,0,3,0,3,0,true",
	}, "\n") + "\n"
	if got := buf.String(); got != want {
		t.Errorf("WriteScheduleCSV() =\n%s\nwant\n%s", got, want)
	}
}

func TestScheduleJSON(t *testing.T) {
	tasks := leveled(t)

	var buf bytes.Buffer
	if err := WriteScheduleJSON(&buf, tasks); err != nil {
		t.Fatalf("WriteScheduleJSON() error = %v", err)
	}
	if !strings.Contains(buf.String(), `"start": "2025-01-06"`) {
		t.Errorf("JSON output missing formatted date:\n%s", buf.String())
	}

	got, err := ReadScheduleJSON(&buf)
	if err != nil {
		t.Fatalf("ReadScheduleJSON() error = %v", err)
	}
	if !reflect.DeepEqual(got, tasks) {
		t.Errorf("ReadScheduleJSON() = %+v, want %+v", got, tasks)
	}
}

func TestReadScheduleJSONBadDate(t *testing.T) {
	in := `[{"id": "a", "durationDays": 1, "start": "soon", "end": "2025-01-02"}]`
	if _, err := ReadScheduleJSON(strings.NewReader(in)); !errs.Is(err, errs.ErrCodeInvalidFormat) {
		t.Errorf("ReadScheduleJSON() error = %v, want INVALID_FORMAT", err)
	}
}

func TestExportSchedule(t *testing.T) {
	dir := t.TempDir()
	tasks := leveled(t)

	for _, name := range []string{"out.csv", "out.json"} {
		path := filepath.Join(dir, name)
		if err := ExportSchedule(path, tasks); err != nil {
			t.Fatalf("ExportSchedule(%s) error = %v", name, err)
		}
		data, err := os.ReadFile(path)
		if err != nil || len(data) == 0 {
			t.Errorf("ExportSchedule(%s) wrote %d bytes, err %v", name, len(data), err)
		}
	}

	if err := ExportSchedule(filepath.Join(dir, "out.toml"), tasks); !errs.Is(err, errs.ErrCodeUnsupported) {
		t.Errorf("ExportSchedule(.toml) error = %v, want UNSUPPORTED", err)
	}
}
