// Package api exposes the task engines over HTTP for the web client.
package api

import (
	"context"
	"io"
	"net/http"

	gorillahandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"daily-tasks/internal/model"
	"daily-tasks/internal/service"
)

// Services are the dependencies the handlers call into.
type Services struct {
	Users      *service.UserService
	Tasks      *service.TaskService
	Projects   *service.ProjectService
	CarryOver  *service.CarryOverService
	Archive    *service.ProjectArchiveService
	Reconciler *service.Reconciler
}

// Server routes requests to the services.
type Server struct {
	svc    Services
	router *mux.Router
}

func NewServer(svc Services) *Server {
	s := &Server{svc: svc, router: mux.NewRouter()}
	s.routes()
	return s
}

func (s *Server) routes() {
	r := s.router
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	u := r.PathPrefix("/users/{userID}").Subrouter()
	u.Use(s.loadUser)

	u.HandleFunc("/tasks", s.handleListTasks).Methods(http.MethodGet)
	u.HandleFunc("/tasks", s.handleCreateTask).Methods(http.MethodPost)
	u.HandleFunc("/tasks", s.handleReconcile).Methods(http.MethodPut)
	u.HandleFunc("/tasks/incomplete", s.handleIncomplete).Methods(http.MethodGet)
	u.HandleFunc("/tasks/suggestions", s.handleSuggestions).Methods(http.MethodGet)
	u.HandleFunc("/tasks/archived", s.handleArchived).Methods(http.MethodGet)
	u.HandleFunc("/tasks/restore", s.handleRestore).Methods(http.MethodPost)
	u.HandleFunc("/tasks/carry", s.handleCarrySelected).Methods(http.MethodPost)
	u.HandleFunc("/tasks/move-to-daily", s.handleMoveToDaily).Methods(http.MethodPost)
	u.HandleFunc("/tasks/{taskID}/toggle", s.handleToggle).Methods(http.MethodPost)
	u.HandleFunc("/tasks/{taskID}/quadrant", s.handleQuadrant).Methods(http.MethodPut)
	u.HandleFunc("/tasks/{taskID}", s.handleDeleteTask).Methods(http.MethodDelete)

	u.HandleFunc("/history", s.handleHistory).Methods(http.MethodGet)
	u.HandleFunc("/history/{date}", s.handleHistoryDay).Methods(http.MethodGet)
	u.HandleFunc("/carry-over", s.handleCarryOver).Methods(http.MethodPost)

	u.HandleFunc("/projects", s.handleListProjects).Methods(http.MethodGet)
	u.HandleFunc("/projects", s.handleCreateProject).Methods(http.MethodPost)
	u.HandleFunc("/projects/archived", s.handleArchivedProjects).Methods(http.MethodGet)
	u.HandleFunc("/projects/auto-archive", s.handleAutoArchive).Methods(http.MethodPost)
	u.HandleFunc("/projects/{projectID}", s.handleOpenProject).Methods(http.MethodGet)
	u.HandleFunc("/projects/{projectID}", s.handleDeleteProject).Methods(http.MethodDelete)
	u.HandleFunc("/projects/{projectID}/archive", s.handleArchiveProject).Methods(http.MethodPost)
	u.HandleFunc("/projects/{projectID}/unarchive", s.handleUnarchiveProject).Methods(http.MethodPost)

	u.HandleFunc("/settings", s.handleGetSettings).Methods(http.MethodGet)
	u.HandleFunc("/settings", s.handleUpdateSettings).Methods(http.MethodPut)
	u.HandleFunc("/profile", s.handleGetProfile).Methods(http.MethodGet)
	u.HandleFunc("/profile", s.handleUpdateProfile).Methods(http.MethodPut)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Handler wraps the router with CORS for origins and access logging to out.
func (s *Server) Handler(origins []string, out io.Writer) http.Handler {
	headers := gorillahandlers.AllowedHeaders([]string{"X-Requested-With", "Content-Type", "Authorization"})
	methods := gorillahandlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	cors := gorillahandlers.CORS(headers, methods, gorillahandlers.AllowedOrigins(origins))
	return gorillahandlers.LoggingHandler(out, cors(s.router))
}

type userKey struct{}

// loadUser resolves {userID} to a profile, creating it on first sight.
func (s *Server) loadUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := s.svc.Users.EnsureUser(r.Context(), mux.Vars(r)["userID"])
		if err != nil {
			writeError(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey{}, user)))
	})
}

func userFrom(r *http.Request) *model.User {
	return r.Context().Value(userKey{}).(*model.User)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
