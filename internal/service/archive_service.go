package service

import (
	"context"
	"fmt"
	"log"

	"daily-tasks/internal/clock"
	"daily-tasks/internal/model"
	"daily-tasks/internal/repository"
)

// ProjectArchiveResult reports how many projects each sweep archived.
type ProjectArchiveResult struct {
	CompletedProjects int `json:"completedProjects"`
	InactiveProjects  int `json:"inactiveProjects"`
}

// Total is the number of projects archived by both sweeps.
func (r ProjectArchiveResult) Total() int {
	return r.CompletedProjects + r.InactiveProjects
}

// ProjectArchiveService archives finished and stale projects.
type ProjectArchiveService struct {
	store    *repository.Store
	calendar *clock.Calendar
}

func NewProjectArchiveService(store *repository.Store, calendar *clock.Calendar) *ProjectArchiveService {
	return &ProjectArchiveService{store: store, calendar: calendar}
}

// AutoArchive runs two sweeps over userID's active projects. When enabled in
// settings, projects whose every non-archived task is completed are archived
// first. Then projects not accessed for ProjectAutoArchiveDays are archived.
// Each project is counted once, by the sweep that archived it.
func (s *ProjectArchiveService) AutoArchive(ctx context.Context, userID string, settings model.Settings) (*ProjectArchiveResult, error) {
	if userID == "" {
		return nil, &repository.ValidationError{Field: "user_id", Reason: "is required"}
	}
	settings = settings.Normalize()
	result := &ProjectArchiveResult{}

	if settings.ArchiveCompletedProjects() {
		projects, err := s.store.Projects.ListActiveWithTasks(ctx, userID)
		if err != nil {
			return nil, err
		}
		var done []string
		for _, p := range projects {
			if p.AllActiveCompleted() {
				done = append(done, p.ID)
			}
		}
		n, err := s.store.Projects.ArchiveMany(ctx, userID, done)
		if err != nil {
			return nil, fmt.Errorf("archive completed projects: %w", err)
		}
		result.CompletedProjects = int(n)
	}

	cutoff := s.calendar.Now().AddDate(0, 0, -settings.ProjectAutoArchiveDays)
	stale, err := s.store.Projects.ListInactiveIDs(ctx, userID, cutoff)
	if err != nil {
		return nil, err
	}
	n, err := s.store.Projects.ArchiveMany(ctx, userID, stale)
	if err != nil {
		return nil, fmt.Errorf("archive inactive projects: %w", err)
	}
	result.InactiveProjects = int(n)

	if result.Total() > 0 {
		log.Printf("[info] archived %d completed and %d inactive projects for %s",
			result.CompletedProjects, result.InactiveProjects, userID)
	}
	return result, nil
}
