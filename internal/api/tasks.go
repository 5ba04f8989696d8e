package api

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"daily-tasks/internal/model"
	"daily-tasks/internal/service"
)

type taskIDsRequest struct {
	TaskIDs []string `json:"task_ids"`
}

type createTaskRequest struct {
	Content   string  `json:"content"`
	ProjectID *string `json:"project_id"`
}

type reconcileRequest struct {
	Date      string       `json:"date"`
	ProjectID *string      `json:"project_id"`
	Previous  []model.Task `json:"previous"`
	Next      []model.Task `json:"next"`
}

type reconcileFailure struct {
	errorBody
	ClientID string                   `json:"client_id"`
	Result   *service.ReconcileResult `json:"result"`
}

type quadrantRequest struct {
	Quadrant *model.Quadrant `json:"eisenhower_quadrant"`
}

// handleListTasks returns today's arranged view, or the stored list of
// another date when ?date= is given.
func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)
	date := r.URL.Query().Get("date")
	if date == "" || date == s.svc.Tasks.Day(user).Today {
		view, err := s.svc.Tasks.Today(r.Context(), user)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, view)
		return
	}
	tasks, err := s.svc.Tasks.ListForDate(r.Context(), user, date, false)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, service.DayView{Date: date, Tasks: tasks})
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req createTaskRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	task, err := s.svc.Tasks.CreateTask(r.Context(), userFrom(r), req.Content, req.ProjectID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

// handleReconcile applies an edited list. A failed creation answers 409 with
// what was applied so the client can roll back.
func (s *Server) handleReconcile(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)
	var req reconcileRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	scope := service.Scope{Date: req.Date, ProjectID: req.ProjectID}
	if scope.Date == "" && scope.ProjectID == nil {
		scope.Date = s.svc.Tasks.Day(user).Today
	}

	res, err := s.svc.Reconciler.Reconcile(r.Context(), user.ID, scope, user.Settings, req.Previous, req.Next)
	var createErr *service.CreateError
	if errors.As(err, &createErr) {
		writeJSON(w, http.StatusConflict, reconcileFailure{
			errorBody: errorBody{Error: createErr.Error()},
			ClientID:  createErr.ClientID,
			Result:    res,
		})
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	task, err := s.svc.Tasks.ToggleTask(r.Context(), userFrom(r), mux.Vars(r)["taskID"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) handleQuadrant(w http.ResponseWriter, r *http.Request) {
	var req quadrantRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	task, err := s.svc.Tasks.SetQuadrant(r.Context(), userFrom(r), mux.Vars(r)["taskID"], req.Quadrant)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Tasks.DeleteTask(r.Context(), userFrom(r), mux.Vars(r)["taskID"]); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleIncomplete(w http.ResponseWriter, r *http.Request) {
	days, err := intQuery(r, "days")
	if err != nil {
		writeError(w, err)
		return
	}
	tasks, err := s.svc.Tasks.ListIncomplete(r.Context(), userFrom(r), days)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tasksOrEmpty(tasks))
}

func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.svc.Tasks.Suggestions(r.Context(), userFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tasksOrEmpty(tasks))
}

func (s *Server) handleArchived(w http.ResponseWriter, r *http.Request) {
	limit, err := intQuery(r, "limit")
	if err != nil {
		writeError(w, err)
		return
	}
	tasks, err := s.svc.Tasks.ListArchived(r.Context(), userFrom(r), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tasksOrEmpty(tasks))
}

func (s *Server) handleRestore(w http.ResponseWriter, r *http.Request) {
	var req taskIDsRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	tasks, err := s.svc.Tasks.RestoreTasks(r.Context(), userFrom(r), req.TaskIDs)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (s *Server) handleMoveToDaily(w http.ResponseWriter, r *http.Request) {
	var req taskIDsRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	tasks, err := s.svc.Tasks.MoveToDaily(r.Context(), userFrom(r), req.TaskIDs)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (s *Server) handleCarrySelected(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)
	var req taskIDsRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	res, err := s.svc.CarryOver.CarrySelected(r.Context(), user.ID, req.TaskIDs, s.svc.Tasks.Day(user).Location())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleCarryOver(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)
	res, err := s.svc.CarryOver.CarryOver(r.Context(), user.ID, s.svc.Tasks.Day(user).Location())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	days, err := s.svc.Tasks.History(r.Context(), userFrom(r), q.Get("from"), q.Get("to"))
	if err != nil {
		writeError(w, err)
		return
	}
	if days == nil {
		days = []model.DaySummary{}
	}
	writeJSON(w, http.StatusOK, days)
}

// handleHistoryDay returns everything stored for a date, archived included.
func (s *Server) handleHistoryDay(w http.ResponseWriter, r *http.Request) {
	date := mux.Vars(r)["date"]
	tasks, err := s.svc.Tasks.ListForDate(r.Context(), userFrom(r), date, true)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, service.DayView{Date: date, Tasks: tasksOrEmpty(tasks)})
}

func tasksOrEmpty(tasks []model.Task) []model.Task {
	if tasks == nil {
		return []model.Task{}
	}
	return tasks
}
