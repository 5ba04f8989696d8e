package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"daily-tasks/internal/model"
)

type createProjectRequest struct {
	Title string `json:"title"`
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := s.svc.Projects.ListActive(r.Context(), userFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, projectsOrEmpty(projects))
}

func (s *Server) handleArchivedProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := s.svc.Projects.ListArchived(r.Context(), userFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, projectsOrEmpty(projects))
}

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var req createProjectRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	project, err := s.svc.Projects.CreateProject(r.Context(), userFrom(r), req.Title)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, project)
}

func (s *Server) handleOpenProject(w http.ResponseWriter, r *http.Request) {
	view, err := s.svc.Projects.OpenProject(r.Context(), userFrom(r), mux.Vars(r)["projectID"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleArchiveProject(w http.ResponseWriter, r *http.Request) {
	project, err := s.svc.Projects.ArchiveProject(r.Context(), userFrom(r), mux.Vars(r)["projectID"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

func (s *Server) handleUnarchiveProject(w http.ResponseWriter, r *http.Request) {
	project, err := s.svc.Projects.UnarchiveProject(r.Context(), userFrom(r), mux.Vars(r)["projectID"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Projects.DeleteProject(r.Context(), userFrom(r), mux.Vars(r)["projectID"]); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAutoArchive(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)
	res, err := s.svc.Archive.AutoArchive(r.Context(), user.ID, user.Settings)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func projectsOrEmpty(projects []model.Project) []model.Project {
	if projects == nil {
		return []model.Project{}
	}
	return projects
}
