package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"daily-tasks/internal/clock"
	"daily-tasks/internal/model"
	"daily-tasks/internal/repository"
)

// DefaultIncompleteDays is how far back manual carry-over looks.
const DefaultIncompleteDays = 7

// DayView is a day's list as the user should see it.
type DayView struct {
	Date     string       `json:"date"`
	Tasks    []model.Task `json:"tasks"`
	Overload string       `json:"overload,omitempty"`
}

// TaskService wraps task-related business logic.
type TaskService struct {
	store    *repository.Store
	calendar *clock.Calendar
}

func NewTaskService(store *repository.Store, calendar *clock.Calendar) *TaskService {
	return &TaskService{store: store, calendar: calendar}
}

// Day resolves the user's calendar snapshot.
func (s *TaskService) Day(user *model.User) clock.Day {
	return s.calendar.Day(userLocation(user, s.calendar.Location()))
}

// CreateTask adds a task to today's list, or to a project when projectID is
// set. Opening a project through a new task counts as an access.
func (s *TaskService) CreateTask(ctx context.Context, user *model.User, content string, projectID *string) (*model.Task, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, &repository.ValidationError{Field: "content", Reason: "is required"}
	}
	day := s.Day(user)

	if projectID != nil {
		project, err := s.store.Projects.FindByID(ctx, user.ID, *projectID)
		if err != nil {
			return nil, err
		}
		if project.Archived {
			return nil, &repository.ValidationError{Field: "project_id", Reason: "project is archived"}
		}
		if err := s.store.Projects.Touch(ctx, user.ID, project.ID, day.Now); err != nil {
			return nil, err
		}
	}

	task := model.Task{
		UserID:      user.ID,
		ProjectID:   projectID,
		Content:     content,
		DateCreated: day.Today,
	}
	if err := s.store.Tasks.Create(ctx, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// Today returns today's daily list arranged for the user's completion
// behavior, with the overload hint when the list is long.
func (s *TaskService) Today(ctx context.Context, user *model.User) (*DayView, error) {
	day := s.Day(user)
	tasks, err := s.store.Tasks.ListDaily(ctx, user.ID, day.Today)
	if err != nil {
		return nil, err
	}
	settings := user.Settings.Normalize()
	return &DayView{
		Date:     day.Today,
		Tasks:    model.ArrangeForView(tasks, settings.CompletionBehavior),
		Overload: settings.OverloadMessage(len(tasks)),
	}, nil
}

// ListForDate returns the stored daily list of date without arranging it.
func (s *TaskService) ListForDate(ctx context.Context, user *model.User, date string, includeArchived bool) ([]model.Task, error) {
	if _, err := clock.ParseDate(date); err != nil {
		return nil, &repository.ValidationError{Field: "date", Reason: err.Error()}
	}
	return s.store.Tasks.ListForDate(ctx, user.ID, date, includeArchived)
}

// ToggleTask flips completion and stamps or clears the completion time.
func (s *TaskService) ToggleTask(ctx context.Context, user *model.User, taskID string) (*model.Task, error) {
	task, err := s.store.Tasks.FindByID(ctx, user.ID, taskID)
	if err != nil {
		return nil, err
	}
	done := !task.Completed
	updated, err := s.store.Tasks.Update(ctx, user.ID, taskID, model.TaskPatch{Completed: &done, At: s.calendar.Now()})
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, repository.ErrNotFound
	}
	return updated, nil
}

// SetQuadrant assigns or clears the Eisenhower quadrant of a task.
func (s *TaskService) SetQuadrant(ctx context.Context, user *model.User, taskID string, q *model.Quadrant) (*model.Task, error) {
	if q != nil && !q.Valid() {
		return nil, &repository.ValidationError{Field: "eisenhower_quadrant", Reason: fmt.Sprintf("unknown quadrant %d", *q)}
	}
	updated, err := s.store.Tasks.Update(ctx, user.ID, taskID, model.TaskPatch{EisenhowerQuadrant: &q})
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, repository.ErrNotFound
	}
	return updated, nil
}

// DeleteTask removes a task completely.
func (s *TaskService) DeleteTask(ctx context.Context, user *model.User, taskID string) error {
	if _, err := s.store.Tasks.FindByID(ctx, user.ID, taskID); err != nil {
		return err
	}
	return s.store.Tasks.Delete(ctx, user.ID, taskID)
}

// ListIncomplete returns unfinished daily tasks of the daysBack days before
// today, newest first and most-delayed first within a day.
func (s *TaskService) ListIncomplete(ctx context.Context, user *model.User, daysBack int) ([]model.Task, error) {
	if daysBack <= 0 {
		daysBack = DefaultIncompleteDays
	}
	return s.store.Tasks.ListIncomplete(ctx, user.ID, s.Day(user).DaysBack(daysBack))
}

// Suggestions returns the incomplete tasks worth carrying by hand: those
// already carried at least once. Empty when smart suggestions are off.
func (s *TaskService) Suggestions(ctx context.Context, user *model.User) ([]model.Task, error) {
	if !user.Settings.Normalize().SmartSuggestions() {
		return []model.Task{}, nil
	}
	tasks, err := s.ListIncomplete(ctx, user, DefaultIncompleteDays)
	if err != nil {
		return nil, err
	}
	out := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.CarryOverCount >= 1 {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *TaskService) ListArchived(ctx context.Context, user *model.User, limit int) ([]model.Task, error) {
	return s.store.Tasks.ListArchived(ctx, user.ID, limit)
}

// RestoreTasks brings archived tasks back into today's list, appended.
func (s *TaskService) RestoreTasks(ctx context.Context, user *model.User, taskIDs []string) ([]model.Task, error) {
	return s.moveToToday(ctx, user, taskIDs, "restored")
}

// MoveToDaily detaches project tasks and appends them to today's list.
func (s *TaskService) MoveToDaily(ctx context.Context, user *model.User, taskIDs []string) ([]model.Task, error) {
	return s.moveToToday(ctx, user, taskIDs, "moved to daily")
}

func (s *TaskService) moveToToday(ctx context.Context, user *model.User, taskIDs []string, verb string) ([]model.Task, error) {
	if len(taskIDs) == 0 {
		return []model.Task{}, nil
	}
	day := s.Day(user)
	moved, err := s.store.Tasks.MoveToDate(ctx, user.ID, taskIDs, day.Today)
	if err != nil {
		return nil, err
	}
	log.Printf("[info] %d tasks %s for %s", len(moved), verb, user.ID)
	if moved == nil {
		moved = []model.Task{}
	}
	return moved, nil
}

// History returns per-day completion summaries between from and to. An
// empty range means the 30 days up to today.
func (s *TaskService) History(ctx context.Context, user *model.User, from, to string) ([]model.DaySummary, error) {
	day := s.Day(user)
	if to == "" {
		to = day.Today
	}
	if from == "" {
		from = day.DaysAgo(30)
	}
	for field, v := range map[string]string{"from": from, "to": to} {
		if _, err := clock.ParseDate(v); err != nil {
			return nil, &repository.ValidationError{Field: field, Reason: err.Error()}
		}
	}
	if from > to {
		return nil, &repository.ValidationError{Field: "from", Reason: "must not be after to"}
	}
	return s.store.Tasks.DailySummaries(ctx, user.ID, from, to)
}

// userLocation is the user's zone, or fallback when unset or unknown.
func userLocation(user *model.User, fallback *time.Location) *time.Location {
	if user == nil {
		return fallback
	}
	return clock.LoadLocation(user.Timezone, fallback)
}
