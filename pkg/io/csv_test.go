package io

import (
	"bytes"
	"reflect"
	"strings"
	"testing"

	errs "github.com/matzehuels/leveler/pkg/errors"
	"github.com/matzehuels/leveler/pkg/project"
)

func TestReadCSV(t *testing.T) {
	in := `id,name,durationDays,dependsOn,requiredResources
A,Design,3,,DS
B,Backend,2,A,BE;DS
C,Frontend,4,A;B, FE ; BE

D,,0,,
`
	p, err := ReadCSV(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadCSV() error = %v", err)
	}

	want := []project.Task{
		{ID: "A", Name: "Design", DurationDays: 3, RequiredResources: []string{"DS"}},
		{ID: "B", Name: "Backend", DurationDays: 2, DependsOn: []string{"A"}, RequiredResources: []string{"BE", "DS"}},
		{ID: "C", Name: "Frontend", DurationDays: 4, DependsOn: []string{"A", "B"}, RequiredResources: []string{"FE", "BE"}},
		{ID: "D", DurationDays: 0},
	}
	if !reflect.DeepEqual(p.Tasks, want) {
		t.Errorf("Tasks = %+v, want %+v", p.Tasks, want)
	}
	if want := []string{"BE", "DS", "FE"}; !reflect.DeepEqual(p.Resources, want) {
		t.Errorf("Resources = %v, want %v", p.Resources, want)
	}
	if !p.StartDate.IsZero() {
		t.Errorf("StartDate = %v, want zero", p.StartDate)
	}
}

func TestReadCSVColumnOrder(t *testing.T) {
	in := "durationDays,id\n2,x\n"
	p, err := ReadCSV(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadCSV() error = %v", err)
	}
	if len(p.Tasks) != 1 || p.Tasks[0].ID != "x" || p.Tasks[0].DurationDays != 2 {
		t.Errorf("Tasks = %+v", p.Tasks)
	}
}

func TestReadCSVErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"missing id column", "name,durationDays\nx,1\n"},
		{"missing duration column", "id,name\nx,y\n"},
		{"bad duration", "id,durationDays\nx,three\n"},
		{"unterminated quote", "id,durationDays\n\"x,1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(tt.input))
			if !errs.Is(err, errs.ErrCodeInvalidFormat) {
				t.Errorf("ReadCSV() error = %v, want INVALID_FORMAT", err)
			}
		})
	}
}

func TestWriteTasksCSV(t *testing.T) {
	tasks := []project.Task{
		{ID: "A", Name: "Design, phase 1", DurationDays: 3, RequiredResources: []string{"DS"}},
		{ID: "B", DurationDays: 2, DependsOn: []string{"A"}, RequiredResources: []string{"BE", "DS"}},
	}

	var buf bytes.Buffer
	if err := WriteTasksCSV(&buf, tasks); err != nil {
		t.Fatalf("WriteTasksCSV() error = %v", err)
	}

	want := "id,name,durationDays,dependsOn,requiredResources\n" +
		"A,\"Design, phase 1\",3,,DS\n" +
		"B,,2,A,BE;DS\n"
	if got := buf.String(); got != want {
		t.Errorf("WriteTasksCSV() =\n%s\nwant\n%s", got, want)
	}

	p, err := ReadCSV(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(p.Tasks, tasks) {
		t.Errorf("read back %+v, want %+v", p.Tasks, tasks)
	}
}
