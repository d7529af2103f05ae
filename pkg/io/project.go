package io

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/leveler/pkg/calendar"
	errs "github.com/matzehuels/leveler/pkg/errors"
	"github.com/matzehuels/leveler/pkg/project"
)

// ProjectFile is the serialized form of a project shared by the JSON, YAML,
// TOML and BSON encodings.
type ProjectFile struct {
	StartDate    string       `json:"startDate,omitempty" yaml:"startDate,omitempty" toml:"startDate,omitempty" bson:"startDate,omitempty"`
	StartDateISO string       `json:"startDateISO,omitempty" yaml:"startDateISO,omitempty" toml:"startDateISO,omitempty" bson:"-"`
	Resources    []string     `json:"resources,omitempty" yaml:"resources,omitempty" toml:"resources,omitempty" bson:"resources,omitempty"`
	SkipWeekends bool         `json:"skipWeekends,omitempty" yaml:"skipWeekends,omitempty" toml:"skipWeekends,omitempty" bson:"skipWeekends,omitempty"`
	Tasks        []TaskRecord `json:"tasks" yaml:"tasks" toml:"tasks" bson:"tasks"`
}

// TaskRecord is the serialized form of a task.
type TaskRecord struct {
	ID                string   `json:"id" yaml:"id" toml:"id" bson:"id"`
	Name              string   `json:"name,omitempty" yaml:"name,omitempty" toml:"name,omitempty" bson:"name,omitempty"`
	DurationDays      int      `json:"durationDays" yaml:"durationDays" toml:"durationDays" bson:"durationDays"`
	DependsOn         []string `json:"dependsOn,omitempty" yaml:"dependsOn,omitempty" toml:"dependsOn,omitempty" bson:"dependsOn,omitempty"`
	RequiredResources []string `json:"requiredResources,omitempty" yaml:"requiredResources,omitempty" toml:"requiredResources,omitempty" bson:"requiredResources,omitempty"`
}

// NewProjectFile converts p to its serialized form. A zero start date is
// omitted.
func NewProjectFile(p project.Project) ProjectFile {
	f := ProjectFile{
		Resources:    p.Resources,
		SkipWeekends: p.SkipWeekends,
		Tasks:        make([]TaskRecord, len(p.Tasks)),
	}
	if !p.StartDate.IsZero() {
		f.StartDate = calendar.FormatDate(p.StartDate)
	}
	for i, t := range p.Tasks {
		f.Tasks[i] = TaskRecord(t.Clone())
	}
	return f
}

// Project converts f back to a project. startDate wins over startDateISO
// when both are set.
func (f ProjectFile) Project() (project.Project, error) {
	p := project.Project{
		Resources:    f.Resources,
		SkipWeekends: f.SkipWeekends,
		Tasks:        make([]project.Task, len(f.Tasks)),
	}

	raw := f.StartDate
	if raw == "" {
		raw = f.StartDateISO
	}
	if raw != "" {
		d, err := calendar.ParseDate(raw)
		if err != nil {
			return project.Project{}, errs.Wrap(errs.ErrCodeInvalidFormat, err, "start date %q is not YYYY-MM-DD", raw)
		}
		p.StartDate = d
	}

	for i, t := range f.Tasks {
		p.Tasks[i] = project.Task(t).Clone()
	}
	return p, nil
}

// Decode reads a project in format from r.
func Decode(r io.Reader, format Format) (project.Project, error) {
	if format == FormatCSV {
		return ReadCSV(r)
	}

	var f ProjectFile
	var err error
	switch format {
	case FormatJSON:
		err = json.NewDecoder(r).Decode(&f)
	case FormatYAML:
		err = yaml.NewDecoder(r).Decode(&f)
		if errors.Is(err, io.EOF) {
			err = nil
		}
	case FormatTOML:
		_, err = toml.NewDecoder(r).Decode(&f)
	default:
		return project.Project{}, errs.New(errs.ErrCodeUnsupported, "unsupported format %q", format)
	}
	if err != nil {
		return project.Project{}, errs.Wrap(errs.ErrCodeInvalidFormat, err, "decode %s project", format)
	}
	return f.Project()
}

// ReadJSON reads a JSON project from r.
func ReadJSON(r io.Reader) (project.Project, error) { return Decode(r, FormatJSON) }

// ReadYAML reads a YAML project from r.
func ReadYAML(r io.Reader) (project.Project, error) { return Decode(r, FormatYAML) }

// ReadTOML reads a TOML project from r.
func ReadTOML(r io.Reader) (project.Project, error) { return Decode(r, FormatTOML) }

// ReadProjectFile reads the project file at path, choosing the decoder from
// the file extension.
func ReadProjectFile(path string) (project.Project, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return project.Project{}, err
	}
	if err := errs.ValidatePath(path); err != nil {
		return project.Project{}, err
	}

	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return project.Project{}, errs.Wrap(errs.ErrCodeFileNotFound, err, "project file %s", path)
	}
	if err != nil {
		return project.Project{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Decode(f, format)
}

// Encode writes p to w in format. CSV output holds the tasks only.
func Encode(w io.Writer, p project.Project, format Format) error {
	f := NewProjectFile(p)
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(f)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(f); err != nil {
			return err
		}
		return enc.Close()
	case FormatTOML:
		return toml.NewEncoder(w).Encode(f)
	case FormatCSV:
		return WriteTasksCSV(w, p.Tasks)
	default:
		return errs.New(errs.ErrCodeUnsupported, "unsupported format %q", format)
	}
}

// CanonicalJSON returns a compact JSON encoding of p that depends only on
// the project's content. It is the input of project hashes.
func CanonicalJSON(p project.Project) ([]byte, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(NewProjectFile(p)); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
