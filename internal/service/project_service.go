package service

import (
	"context"
	"log"
	"strings"

	"daily-tasks/internal/clock"
	"daily-tasks/internal/model"
	"daily-tasks/internal/repository"
)

// ProjectView is an opened project with its current tasks.
type ProjectView struct {
	Project model.Project `json:"project"`
	Tasks   []model.Task  `json:"tasks"`
}

// ProjectService manages user projects.
type ProjectService struct {
	store    *repository.Store
	calendar *clock.Calendar
}

func NewProjectService(store *repository.Store, calendar *clock.Calendar) *ProjectService {
	return &ProjectService{store: store, calendar: calendar}
}

func (s *ProjectService) CreateProject(ctx context.Context, user *model.User, title string) (*model.Project, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, &repository.ValidationError{Field: "title", Reason: "is required"}
	}
	day := s.calendar.Day(userLocation(user, s.calendar.Location()))
	project := model.Project{
		UserID:       user.ID,
		Title:        title,
		DateCreated:  day.Today,
		LastAccessed: day.Now,
	}
	if err := s.store.Projects.Create(ctx, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

func (s *ProjectService) ListActive(ctx context.Context, user *model.User) ([]model.Project, error) {
	return s.store.Projects.ListActive(ctx, user.ID)
}

func (s *ProjectService) ListArchived(ctx context.Context, user *model.User) ([]model.Project, error) {
	return s.store.Projects.ListArchived(ctx, user.ID)
}

// OpenProject bumps last_accessed and returns the project with its tasks.
func (s *ProjectService) OpenProject(ctx context.Context, user *model.User, projectID string) (*ProjectView, error) {
	if err := s.store.Projects.Touch(ctx, user.ID, projectID, s.calendar.Now()); err != nil {
		return nil, err
	}
	project, err := s.store.Projects.FindByID(ctx, user.ID, projectID)
	if err != nil {
		return nil, err
	}
	tasks, err := s.store.Tasks.ListByProject(ctx, user.ID, projectID)
	if err != nil {
		return nil, err
	}
	return &ProjectView{Project: *project, Tasks: tasks}, nil
}

// ArchiveProject archives one project. Archiving an archived project is a
// no-op.
func (s *ProjectService) ArchiveProject(ctx context.Context, user *model.User, projectID string) (*model.Project, error) {
	if _, err := s.store.Projects.FindByID(ctx, user.ID, projectID); err != nil {
		return nil, err
	}
	if _, err := s.store.Projects.ArchiveMany(ctx, user.ID, []string{projectID}); err != nil {
		return nil, err
	}
	return s.store.Projects.FindByID(ctx, user.ID, projectID)
}

func (s *ProjectService) UnarchiveProject(ctx context.Context, user *model.User, projectID string) (*model.Project, error) {
	if err := s.store.Projects.Unarchive(ctx, user.ID, projectID, s.calendar.Now()); err != nil {
		return nil, err
	}
	return s.store.Projects.FindByID(ctx, user.ID, projectID)
}

// DeleteProject removes the project and all of its tasks.
func (s *ProjectService) DeleteProject(ctx context.Context, user *model.User, projectID string) error {
	if err := s.store.Projects.Delete(ctx, user.ID, projectID); err != nil {
		return err
	}
	log.Printf("[info] deleted project %s for %s", projectID, user.ID)
	return nil
}
