package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/leveler/pkg/buildinfo"
	"github.com/matzehuels/leveler/pkg/cpm"
	"github.com/matzehuels/leveler/pkg/pipeline"
	"github.com/matzehuels/leveler/pkg/project"
	"github.com/matzehuels/leveler/pkg/store"

	errs "github.com/matzehuels/leveler/pkg/errors"
	pkgio "github.com/matzehuels/leveler/pkg/io"
)

type criticalPathResponse struct {
	ProjectDuration int                       `json:"projectDuration"`
	Tasks           map[string]cpm.TaskTiming `json:"tasks"`
	CriticalPath    []string                  `json:"criticalPath"`
}

type scheduleResponse struct {
	ProjectDuration int                    `json:"projectDuration"`
	Makespan        int                    `json:"makespan"`
	CriticalPath    []string               `json:"criticalPath"`
	ProjectHash     string                 `json:"projectHash"`
	CacheHit        bool                   `json:"cacheHit"`
	Tasks           []pkgio.ScheduleRecord `json:"tasks"`
}

type projectRequest struct {
	Name    string            `json:"name"`
	Project pkgio.ProjectFile `json:"project"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	body := buildinfo.Info()
	body["status"] = "ok"
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) handleCriticalPath(w http.ResponseWriter, r *http.Request) {
	p, err := s.readProject(w, r)
	if err != nil {
		writeError(w, err)
		return
	}
	res, err := s.runner.Analyze(r.Context(), p, s.options(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, criticalPathResponse{
		ProjectDuration: res.Duration,
		Tasks:           res.Timing,
		CriticalPath:    nonNil(res.CriticalPath),
	})
}

func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	p, err := s.readProject(w, r)
	if err != nil {
		writeError(w, err)
		return
	}
	result, err := s.runner.Execute(r.Context(), p, s.options(r))
	if err != nil {
		writeError(w, err)
		return
	}
	s.writeSchedule(w, r, result)
}

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var req projectRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	if _, err := req.Project.Project(); err != nil {
		writeError(w, err)
		return
	}

	doc := &store.Document{Name: req.Name, Project: req.Project}
	if _, err := s.store.Save(r.Context(), doc); err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Location", "/v1/projects/"+doc.ID)
	writeJSON(w, http.StatusCreated, doc)
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	docs, err := s.store.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"projects": docs})
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	doc, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleScheduleProject schedules a stored project and records the outcome
// on the document.
func (s *Server) handleScheduleProject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	doc, err := s.store.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	p, err := doc.Project.Project()
	if err != nil {
		writeError(w, err)
		return
	}

	result, err := s.runner.Execute(ctx, p.WithStartDate(s.today()), s.options(r))
	if err != nil {
		writeError(w, err)
		return
	}

	doc.Summary = &store.Summary{
		ProjectHash:  result.ProjectHash,
		Duration:     result.Duration,
		Makespan:     result.Makespan,
		CriticalPath: result.CriticalPath,
		ScheduledAt:  time.Now().UTC(),
	}
	if _, err := s.store.Save(ctx, doc); err != nil {
		s.logger.Warn("saving schedule summary failed", "id", doc.ID, "err", err)
	}
	s.writeSchedule(w, r, result)
}

func (s *Server) writeSchedule(w http.ResponseWriter, r *http.Request, result *pipeline.Result) {
	switch format := r.URL.Query().Get("format"); format {
	case "", pipeline.FormatJSON:
		writeJSON(w, http.StatusOK, scheduleResponse{
			ProjectDuration: result.Duration,
			Makespan:        result.Makespan,
			CriticalPath:    nonNil(result.CriticalPath),
			ProjectHash:     result.ProjectHash,
			CacheHit:        result.CacheHit,
			Tasks:           pkgio.NewScheduleRecords(result.Schedule),
		})
	case pipeline.FormatCSV:
		var buf bytes.Buffer
		if err := pkgio.WriteScheduleCSV(&buf, result.Schedule); err != nil {
			writeError(w, err)
			return
		}
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(buf.Bytes())
	default:
		writeError(w, errs.New(errs.ErrCodeInvalidFormat, "unsupported schedule format %q (want json or csv)", format))
	}
}

// readProject decodes the request body as a project in the format named by
// its Content-Type. Projects without a start date start today.
func (s *Server) readProject(w http.ResponseWriter, r *http.Request) (project.Project, error) {
	format, err := bodyFormat(r.Header.Get("Content-Type"))
	if err != nil {
		return project.Project{}, err
	}
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	p, err := pkgio.Decode(body, format)
	if err != nil {
		return project.Project{}, err
	}
	return p.WithStartDate(s.today()), nil
}

func (s *Server) options(r *http.Request) pipeline.Options {
	strict, _ := strconv.ParseBool(r.URL.Query().Get("strict"))
	refresh, _ := strconv.ParseBool(r.URL.Query().Get("refresh"))
	return pipeline.Options{StrictResources: strict, Refresh: refresh}
}

func bodyFormat(contentType string) (pkgio.Format, error) {
	if contentType == "" {
		return pkgio.FormatJSON, nil
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "", errs.Wrap(errs.ErrCodeInvalidFormat, err, "bad content type %q", contentType)
	}
	switch {
	case mt == "application/json" || strings.HasSuffix(mt, "+json"):
		return pkgio.FormatJSON, nil
	case strings.Contains(mt, "yaml"):
		return pkgio.FormatYAML, nil
	case strings.Contains(mt, "toml"):
		return pkgio.FormatTOML, nil
	case mt == "text/csv":
		return pkgio.FormatCSV, nil
	}
	return "", errs.New(errs.ErrCodeInvalidFormat, "unsupported content type %q", mt)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return errs.Wrap(errs.ErrCodeInvalidInput, err, "request body too large")
		}
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidFormat, err, "decode request body")
	}
	return nil
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
