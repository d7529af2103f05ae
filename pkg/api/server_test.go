package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/leveler/pkg/cache"
	"github.com/matzehuels/leveler/pkg/observability"
	"github.com/matzehuels/leveler/pkg/pipeline"
	"github.com/matzehuels/leveler/pkg/store"

	errs "github.com/matzehuels/leveler/pkg/errors"
)

const launchJSON = `{
  "startDate": "2025-01-06",
  "resources": ["FE", "BE"],
  "tasks": [
    {"id": "A", "durationDays": 3, "requiredResources": ["BE"]},
    {"id": "D", "durationDays": 3, "dependsOn": ["A"], "requiredResources": ["FE"]},
    {"id": "E", "durationDays": 3, "dependsOn": ["A"], "requiredResources": ["FE"]}
  ]
}`

func newTestServer(t *testing.T, st store.Store) *httptest.Server {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	logger := log.New(io.Discard)
	s := New(Options{
		Runner: pipeline.NewRunner(c, nil, logger),
		Store:  st,
		Logger: logger,
	})
	s.today = func() time.Time { return time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC) }

	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func do(t *testing.T, method, url, contentType, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t, nil)
	resp := do(t, http.MethodGet, ts.URL+"/healthz", "", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if body := decode[map[string]string](t, resp); body["status"] != "ok" {
		t.Errorf("body = %v", body)
	}
}

func TestCriticalPath(t *testing.T) {
	ts := newTestServer(t, nil)
	resp := do(t, http.MethodPost, ts.URL+"/v1/critical-path", "application/json", launchJSON)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	got := decode[criticalPathResponse](t, resp)
	if got.ProjectDuration != 6 {
		t.Errorf("projectDuration = %d, want 6", got.ProjectDuration)
	}
	if strings.Join(got.CriticalPath, ",") != "A,D,E" {
		t.Errorf("criticalPath = %v, want [A D E]", got.CriticalPath)
	}
	if d := got.Tasks["D"]; d.EarliestStart != 3 || d.LatestFinish != 6 || !d.Critical {
		t.Errorf("timing[D] = %+v", d)
	}
}

func TestSchedule(t *testing.T) {
	ts := newTestServer(t, nil)
	resp := do(t, http.MethodPost, ts.URL+"/v1/schedule", "application/json", launchJSON)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	got := decode[scheduleResponse](t, resp)
	if got.ProjectDuration != 6 || got.Makespan != 9 {
		t.Errorf("duration/makespan = %d/%d, want 6/9", got.ProjectDuration, got.Makespan)
	}
	if len(got.Tasks) != 3 {
		t.Fatalf("got %d tasks, want 3", len(got.Tasks))
	}
	e := got.Tasks[2]
	if e.ID != "E" || e.StartSlot != 6 || e.Start != "2025-01-12" || e.End != "2025-01-15" {
		t.Errorf("E = %+v", e)
	}
	if got.CacheHit {
		t.Error("first request should not be a cache hit")
	}

	again := decode[scheduleResponse](t, do(t, http.MethodPost, ts.URL+"/v1/schedule", "", launchJSON))
	if !again.CacheHit || again.ProjectHash != got.ProjectHash {
		t.Errorf("second request: cacheHit=%v hash=%s, want hit with %s", again.CacheHit, again.ProjectHash, got.ProjectHash)
	}
}

func TestScheduleCSV(t *testing.T) {
	ts := newTestServer(t, nil)
	resp := do(t, http.MethodPost, ts.URL+"/v1/schedule?format=csv", "application/json", launchJSON)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("Content-Type = %q", ct)
	}
	body, _ := io.ReadAll(resp.Body)
	lines := strings.Split(strings.TrimSpace(string(body)), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want header + 3", len(lines))
	}
	if !strings.HasPrefix(lines[0], "id,name,durationDays,dependsOn,requiredResources,start,end") {
		t.Errorf("header = %q", lines[0])
	}
}

func TestScheduleYAMLBody(t *testing.T) {
	ts := newTestServer(t, nil)
	body := `startDate: "2025-01-06"
tasks:
  - id: A
    durationDays: 2
  - id: B
    durationDays: 1
    dependsOn: [A]
`
	resp := do(t, http.MethodPost, ts.URL+"/v1/schedule", "application/yaml", body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if got := decode[scheduleResponse](t, resp); got.Makespan != 3 {
		t.Errorf("makespan = %d, want 3", got.Makespan)
	}
}

func TestScheduleDefaultsStartDate(t *testing.T) {
	ts := newTestServer(t, nil)
	body := `{"tasks":[{"id":"A","durationDays":1}]}`
	got := decode[scheduleResponse](t, do(t, http.MethodPost, ts.URL+"/v1/schedule", "", body))
	if len(got.Tasks) != 1 || got.Tasks[0].Start != "2025-03-03" {
		t.Errorf("tasks = %+v, want start 2025-03-03", got.Tasks)
	}
}

func TestScheduleErrors(t *testing.T) {
	ts := newTestServer(t, nil)

	tests := []struct {
		name        string
		path        string
		contentType string
		body        string
		wantStatus  int
		wantCode    errs.Code
	}{
		{
			name:       "cycle",
			path:       "/v1/schedule",
			body:       `{"tasks":[{"id":"A","durationDays":1,"dependsOn":["B"]},{"id":"B","durationDays":1,"dependsOn":["A"]}]}`,
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   errs.ErrCodeCycleDetected,
		},
		{
			name:       "unknown dependency",
			path:       "/v1/critical-path",
			body:       `{"tasks":[{"id":"A","durationDays":1,"dependsOn":["ghost"]}]}`,
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   errs.ErrCodeUnknownDependency,
		},
		{
			name:       "negative duration",
			path:       "/v1/schedule",
			body:       `{"tasks":[{"id":"A","durationDays":-1}]}`,
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   errs.ErrCodeInvalidDuration,
		},
		{
			name:       "duration beyond the limit",
			path:       "/v1/schedule",
			body:       `{"skipWeekends":true,"tasks":[{"id":"A","durationDays":50000000}]}`,
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   errs.ErrCodeInvalidDuration,
		},
		{
			name:       "duplicate task",
			path:       "/v1/schedule",
			body:       `{"tasks":[{"id":"A","durationDays":1},{"id":"A","durationDays":2}]}`,
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   errs.ErrCodeDuplicateTask,
		},
		{
			name:       "strict resources",
			path:       "/v1/schedule?strict=true",
			body:       `{"resources":["FE"],"tasks":[{"id":"A","durationDays":1,"requiredResources":["QA"]}]}`,
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   errs.ErrCodeUnknownResource,
		},
		{
			name:       "malformed json",
			path:       "/v1/schedule",
			body:       `{"tasks":`,
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   errs.ErrCodeInvalidFormat,
		},
		{
			name:        "unsupported content type",
			path:        "/v1/schedule",
			contentType: "application/xml",
			body:        `<project/>`,
			wantStatus:  http.StatusUnprocessableEntity,
			wantCode:    errs.ErrCodeInvalidFormat,
		},
		{
			name:       "unsupported output format",
			path:       "/v1/schedule?format=xml",
			body:       launchJSON,
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   errs.ErrCodeInvalidFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, http.MethodPost, ts.URL+tt.path, tt.contentType, tt.body)
			if resp.StatusCode != tt.wantStatus {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			body := decode[errorBody](t, resp)
			if body.Code != string(tt.wantCode) {
				t.Errorf("code = %q, want %q", body.Code, tt.wantCode)
			}
			if body.Message == "" {
				t.Error("message should not be empty")
			}
		})
	}
}

func TestProjectsWithoutStore(t *testing.T) {
	ts := newTestServer(t, nil)
	resp := do(t, http.MethodGet, ts.URL+"/v1/projects", "", "")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestProjectLifecycle(t *testing.T) {
	st := store.NewMemoryStore()
	ts := newTestServer(t, st)

	body := fmt.Sprintf(`{"name":"launch","project":%s}`, launchJSON)
	resp := do(t, http.MethodPost, ts.URL+"/v1/projects", "application/json", body)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d, want 201", resp.StatusCode)
	}
	created := decode[store.Document](t, resp)
	if created.ID == "" || created.Name != "launch" || len(created.Project.Tasks) != 3 {
		t.Fatalf("created = %+v", created)
	}
	if loc := resp.Header.Get("Location"); loc != "/v1/projects/"+created.ID {
		t.Errorf("Location = %q", loc)
	}

	list := decode[map[string][]store.Document](t, do(t, http.MethodGet, ts.URL+"/v1/projects", "", ""))
	if len(list["projects"]) != 1 || list["projects"][0].ID != created.ID {
		t.Errorf("list = %+v", list)
	}

	resp = do(t, http.MethodPost, ts.URL+"/v1/projects/"+created.ID+"/schedule", "", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("schedule status = %d, want 200", resp.StatusCode)
	}
	if got := decode[scheduleResponse](t, resp); got.Makespan != 9 {
		t.Errorf("makespan = %d, want 9", got.Makespan)
	}

	resp = do(t, http.MethodGet, ts.URL+"/v1/projects/"+created.ID, "", "")
	doc := decode[store.Document](t, resp)
	if doc.Summary == nil || doc.Summary.Makespan != 9 || doc.Summary.Duration != 6 {
		t.Errorf("summary = %+v, want makespan 9 and duration 6", doc.Summary)
	}

	resp = do(t, http.MethodDelete, ts.URL+"/v1/projects/"+created.ID, "", "")
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("delete status = %d, want 204", resp.StatusCode)
	}

	resp = do(t, http.MethodGet, ts.URL+"/v1/projects/"+created.ID, "", "")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("get after delete status = %d, want 404", resp.StatusCode)
	}
	if body := decode[errorBody](t, resp); body.Code != string(errs.ErrCodeNotFound) {
		t.Errorf("code = %q, want NOT_FOUND", body.Code)
	}
}

func TestCreateProjectRejectsBadDate(t *testing.T) {
	ts := newTestServer(t, store.NewMemoryStore())
	body := `{"name":"x","project":{"startDate":"06/01/2025","tasks":[]}}`
	resp := do(t, http.MethodPost, ts.URL+"/v1/projects", "application/json", body)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", resp.StatusCode)
	}
}

func TestCORSPreflight(t *testing.T) {
	ts := newTestServer(t, nil)
	req, _ := http.NewRequest(http.MethodOptions, ts.URL+"/v1/schedule", nil)
	req.Header.Set("Origin", "https://planner.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{errs.New(errs.ErrCodeCycleDetected, "cycle"), http.StatusUnprocessableEntity},
		{errs.New(errs.ErrCodeInvalidInput, "bad"), http.StatusUnprocessableEntity},
		{errs.New(errs.ErrCodeNotFound, "gone"), http.StatusNotFound},
		{fmt.Errorf("get: %w", store.ErrNotFound), http.StatusNotFound},
		{errs.New(errs.ErrCodeInternal, "boom"), http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := StatusFor(tt.err); got != tt.want {
			t.Errorf("StatusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

type countingHTTPHooks struct {
	mu        sync.Mutex
	requests  int
	responses map[int]int
}

func (h *countingHTTPHooks) OnRequest(context.Context, string, string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.requests++
}

func (h *countingHTTPHooks) OnResponse(_ context.Context, _, _ string, status int, _ time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.responses[status]++
}

func TestHTTPHooks(t *testing.T) {
	hooks := &countingHTTPHooks{responses: map[int]int{}}
	observability.SetHTTPHooks(hooks)
	t.Cleanup(observability.Reset)

	ts := newTestServer(t, nil)
	do(t, http.MethodGet, ts.URL+"/healthz", "", "")
	do(t, http.MethodGet, ts.URL+"/missing", "", "")

	hooks.mu.Lock()
	defer hooks.mu.Unlock()
	if hooks.requests != 2 {
		t.Errorf("requests = %d, want 2", hooks.requests)
	}
	if hooks.responses[http.StatusOK] != 1 || hooks.responses[http.StatusNotFound] != 1 {
		t.Errorf("responses = %v, want one 200 and one 404", hooks.responses)
	}
}
