package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"daily-tasks/internal/clock"
	"daily-tasks/internal/model"
	"daily-tasks/internal/repository"
	"daily-tasks/internal/service"
)

const today = "2026-10-14"

func newTestServer(t *testing.T) (*httptest.Server, *repository.Store) {
	t.Helper()
	db, err := repository.NewDB(filepath.Join(t.TempDir(), "api.db"))
	if err != nil {
		t.Fatalf("NewDB failed: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	store := repository.NewStore(db)
	cal := clock.Fixed(time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC))

	srv := NewServer(Services{
		Users:      service.NewUserService(store),
		Tasks:      service.NewTaskService(store, cal),
		Projects:   service.NewProjectService(store, cal),
		CarryOver:  service.NewCarryOverService(store, cal),
		Archive:    service.NewProjectArchiveService(store, cal),
		Reconciler: service.NewReconciler(store.Tasks, cal.Now),
	})
	ts := httptest.NewServer(srv.Handler([]string{"https://app.example"}, io.Discard))
	t.Cleanup(ts.Close)
	return ts, store
}

func do(t *testing.T, ts *httptest.Server, method, path string, body interface{}, out interface{}) int {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, ts.URL+path, reader)
	if err != nil {
		t.Fatalf("NewRequest failed: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s %s: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

func TestHealthz(t *testing.T) {
	t.Parallel()
	ts, _ := newTestServer(t)
	var body map[string]string
	if code := do(t, ts, http.MethodGet, "/healthz", nil, &body); code != http.StatusOK || body["status"] != "ok" {
		t.Errorf("healthz = %d %v", code, body)
	}
}

func TestCreateAndListTasks(t *testing.T) {
	t.Parallel()
	ts, _ := newTestServer(t)

	var created model.Task
	if code := do(t, ts, http.MethodPost, "/users/u1/tasks", createTaskRequest{Content: "write tests"}, &created); code != http.StatusCreated {
		t.Fatalf("create status = %d", code)
	}
	if created.DateCreated != today || created.ID == "" {
		t.Errorf("unexpected task %+v", created)
	}

	var bad errorBody
	if code := do(t, ts, http.MethodPost, "/users/u1/tasks", createTaskRequest{Content: " "}, &bad); code != http.StatusBadRequest || bad.Field != "content" {
		t.Errorf("empty content = %d %+v", code, bad)
	}

	var view service.DayView
	if code := do(t, ts, http.MethodGet, "/users/u1/tasks", nil, &view); code != http.StatusOK {
		t.Fatalf("list status = %d", code)
	}
	if view.Date != today || len(view.Tasks) != 1 || view.Tasks[0].ID != created.ID {
		t.Errorf("unexpected view %+v", view)
	}

	var toggled model.Task
	if code := do(t, ts, http.MethodPost, "/users/u1/tasks/"+created.ID+"/toggle", nil, &toggled); code != http.StatusOK || !toggled.Completed {
		t.Errorf("toggle = %d %+v", code, toggled)
	}
	if code := do(t, ts, http.MethodPost, "/users/u1/tasks/ghost/toggle", nil, nil); code != http.StatusNotFound {
		t.Errorf("toggle missing = %d", code)
	}
	if code := do(t, ts, http.MethodGet, "/users/u1/tasks?date=14.10.2026", nil, nil); code != http.StatusBadRequest {
		t.Errorf("bad date = %d", code)
	}
}

func TestCarryOverEndpoint(t *testing.T) {
	t.Parallel()
	ts, store := newTestServer(t)
	if err := store.Tasks.CreateBatch(context.Background(), []model.Task{{UserID: "u1", DateCreated: "2026-10-13", Content: "Email Bob"}}); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	var first map[string]interface{}
	if code := do(t, ts, http.MethodPost, "/users/u1/carry-over", nil, &first); code != http.StatusOK {
		t.Fatalf("carry-over status = %d", code)
	}
	for _, key := range []string{"carriedTasks", "totalCarried", "highPriorityTasks", "archivedTasks"} {
		if _, ok := first[key]; !ok {
			t.Errorf("result missing %q: %v", key, first)
		}
	}
	if first["totalCarried"].(float64) != 1 {
		t.Errorf("totalCarried = %v", first["totalCarried"])
	}

	var second service.CarryOverResult
	do(t, ts, http.MethodPost, "/users/u1/carry-over", nil, &second)
	if second.TotalCarried != 0 || !second.AlreadyRan {
		t.Errorf("second run = %+v", second)
	}
}

func TestReconcileEndpoint(t *testing.T) {
	t.Parallel()
	ts, _ := newTestServer(t)
	settings := model.Settings{CompletionBehavior: model.BehaviorHide}
	if code := do(t, ts, http.MethodPut, "/users/u1/settings", settings, nil); code != http.StatusOK {
		t.Fatalf("settings status = %d", code)
	}

	var res service.ReconcileResult
	req := reconcileRequest{Next: []model.Task{{ID: "tmp-a", Content: "A"}, {ID: "tmp-b", Content: "B"}}}
	if code := do(t, ts, http.MethodPut, "/users/u1/tasks", req, &res); code != http.StatusOK || len(res.Created) != 2 {
		t.Fatalf("reconcile = %d %+v", code, &res)
	}

	var view service.DayView
	do(t, ts, http.MethodGet, "/users/u1/tasks", nil, &view)
	prev := view.Tasks
	if len(prev) != 2 {
		t.Fatalf("view = %+v", view)
	}

	var hidden service.ReconcileResult
	req = reconcileRequest{Date: today, Previous: prev, Next: prev[1:]}
	if code := do(t, ts, http.MethodPut, "/users/u1/tasks", req, &hidden); code != http.StatusOK {
		t.Fatalf("reconcile = %d", code)
	}
	if len(hidden.HiddenCompleted) != 1 || len(hidden.Deleted) != 0 {
		t.Errorf("A should be hidden, got %+v", &hidden)
	}

	do(t, ts, http.MethodGet, "/users/u1/tasks", nil, &view)
	if len(view.Tasks) != 1 || view.Tasks[0].Content != "B" {
		t.Errorf("hide view = %+v", view.Tasks)
	}
}

func TestProjectsEndpoints(t *testing.T) {
	t.Parallel()
	ts, _ := newTestServer(t)

	var project model.Project
	if code := do(t, ts, http.MethodPost, "/users/u1/projects", createProjectRequest{Title: "garden"}, &project); code != http.StatusCreated {
		t.Fatalf("create project = %d", code)
	}
	var task model.Task
	do(t, ts, http.MethodPost, "/users/u1/tasks", createTaskRequest{Content: "seeds", ProjectID: &project.ID}, &task)

	var list []model.Project
	do(t, ts, http.MethodGet, "/users/u1/projects", nil, &list)
	if len(list) != 1 || list[0].TaskCount != 1 {
		t.Errorf("projects = %+v", list)
	}

	var view service.ProjectView
	if code := do(t, ts, http.MethodGet, "/users/u1/projects/"+project.ID, nil, &view); code != http.StatusOK || len(view.Tasks) != 1 {
		t.Errorf("open project = %d %+v", code, view)
	}

	do(t, ts, http.MethodPost, "/users/u1/tasks/"+task.ID+"/toggle", nil, nil)
	var archived service.ProjectArchiveResult
	do(t, ts, http.MethodPost, "/users/u1/projects/auto-archive", nil, &archived)
	if archived.CompletedProjects != 1 {
		t.Errorf("auto-archive = %+v", archived)
	}

	if code := do(t, ts, http.MethodDelete, "/users/u1/projects/"+project.ID, nil, nil); code != http.StatusNoContent {
		t.Errorf("delete = %d", code)
	}
	if code := do(t, ts, http.MethodGet, "/users/u1/projects/"+project.ID, nil, nil); code != http.StatusNotFound {
		t.Errorf("open deleted = %d", code)
	}
}

func TestSettingsValidation(t *testing.T) {
	t.Parallel()
	ts, _ := newTestServer(t)

	var settings model.Settings
	do(t, ts, http.MethodGet, "/users/u1/settings", nil, &settings)
	if settings.CompletionBehavior != model.BehaviorStayVisible || settings.OverloadThreshold != model.DefaultOverloadThreshold {
		t.Errorf("defaults = %+v", settings)
	}
	if code := do(t, ts, http.MethodPut, "/users/u1/settings", map[string]string{"task_completion_behavior": "explode"}, nil); code != http.StatusBadRequest {
		t.Errorf("bad behavior = %d", code)
	}
	if code := do(t, ts, http.MethodPut, "/users/u1/profile", map[string]string{"timezone": "Nowhere/Land"}, nil); code != http.StatusBadRequest {
		t.Errorf("bad timezone = %d", code)
	}
}

func TestCORSPreflight(t *testing.T) {
	t.Parallel()
	ts, _ := newTestServer(t)
	req, _ := http.NewRequest(http.MethodOptions, ts.URL+"/users/u1/tasks", nil)
	req.Header.Set("Origin", "https://app.example")
	req.Header.Set("Access-Control-Request-Method", "PUT")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("preflight failed: %v", err)
	}
	resp.Body.Close()
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "https://app.example" {
		t.Errorf("allow origin = %q", got)
	}
}
