package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"

	"daily-tasks/internal/model"
)

// TaskRepository handles CRUD for tasks. Every query is scoped to one user.
type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) daily(ctx context.Context, userID string) *gorm.DB {
	return r.db.WithContext(ctx).Model(&model.Task{}).
		Where("user_id = ? AND project_id IS NULL", userID)
}

// ListDaily returns the non-archived daily tasks of date in stored order.
func (r *TaskRepository) ListDaily(ctx context.Context, userID, date string) ([]model.Task, error) {
	return r.ListForDate(ctx, userID, date, false)
}

// ListForDate returns the daily tasks of date, optionally with archived ones.
func (r *TaskRepository) ListForDate(ctx context.Context, userID, date string, includeArchived bool) ([]model.Task, error) {
	q := r.daily(ctx, userID).Where("date_created = ?", date)
	if !includeArchived {
		q = q.Where("archived = ?", false)
	}
	var tasks []model.Task
	if err := q.Order("position ASC").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list tasks for %s: %w", date, err)
	}
	return tasks, nil
}

// ListByProject returns the non-archived tasks of a project in stored order.
func (r *TaskRepository) ListByProject(ctx context.Context, userID, projectID string) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND project_id = ? AND archived = ?", userID, projectID, false).
		Order("position ASC").
		Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list project tasks: %w", err)
	}
	return tasks, nil
}

// ListArchived returns archived daily tasks, most recent date first.
func (r *TaskRepository) ListArchived(ctx context.Context, userID string, limit int) ([]model.Task, error) {
	if limit <= 0 {
		limit = 50
	}
	var tasks []model.Task
	if err := r.daily(ctx, userID).
		Where("archived = ?", true).
		Order("date_created DESC").Order("position ASC").
		Limit(limit).
		Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list archived tasks: %w", err)
	}
	return tasks, nil
}

// ListIncomplete returns non-archived, incomplete daily tasks created on any
// of dates, newest date first and most-delayed first within a date.
func (r *TaskRepository) ListIncomplete(ctx context.Context, userID string, dates []string) ([]model.Task, error) {
	if len(dates) == 0 {
		return nil, nil
	}
	var tasks []model.Task
	if err := r.daily(ctx, userID).
		Where("date_created IN ? AND completed = ? AND archived = ?", dates, false, false).
		Order("date_created DESC").Order("carry_over_count DESC").Order("position ASC").
		Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list incomplete tasks: %w", err)
	}
	return tasks, nil
}

// DailySummaries aggregates daily tasks between from and to inclusive,
// archived ones included, most recent date first.
func (r *TaskRepository) DailySummaries(ctx context.Context, userID, from, to string) ([]model.DaySummary, error) {
	var rows []model.DaySummary
	if err := r.daily(ctx, userID).
		Select("date_created AS date, COUNT(*) AS total_tasks, SUM(CASE WHEN completed THEN 1 ELSE 0 END) AS completed_tasks").
		Where("date_created >= ? AND date_created <= ?", from, to).
		Group("date_created").
		Order("date_created DESC").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("summarize tasks: %w", err)
	}
	for i := range rows {
		if rows[i].TotalTasks > 0 {
			rows[i].CompletionRate = (rows[i].CompletedTasks*200 + rows[i].TotalTasks) / (2 * rows[i].TotalTasks)
		}
	}
	return rows, nil
}

// Contents returns the set of contents already present in date's daily list.
func (r *TaskRepository) Contents(ctx context.Context, userID, date string) (map[string]struct{}, error) {
	var contents []string
	if err := r.daily(ctx, userID).
		Where("date_created = ? AND archived = ?", date, false).
		Pluck("content", &contents).Error; err != nil {
		return nil, fmt.Errorf("list task contents: %w", err)
	}
	set := make(map[string]struct{}, len(contents))
	for _, c := range contents {
		set[c] = struct{}{}
	}
	return set, nil
}

// NextOrder returns the position after the last task of a group. Daily tasks
// group by date; project tasks group by project regardless of date.
func (r *TaskRepository) NextOrder(ctx context.Context, userID, date string, projectID *string) (int, error) {
	q := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("user_id = ? AND archived = ?", userID, false)
	if projectID == nil {
		q = q.Where("project_id IS NULL AND date_created = ?", date)
	} else {
		q = q.Where("project_id = ?", *projectID)
	}
	var max sql.NullInt64
	if err := q.Select("MAX(position)").Scan(&max).Error; err != nil {
		return 0, fmt.Errorf("next task order: %w", err)
	}
	if !max.Valid {
		return 0, nil
	}
	return int(max.Int64) + 1, nil
}

// Create inserts a task at the end of its group.
func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	if err := validateTask(task); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		next, err := NewTaskRepository(tx).NextOrder(ctx, task.UserID, task.DateCreated, task.ProjectID)
		if err != nil {
			return err
		}
		task.Order = next
		if err := tx.Create(task).Error; err != nil {
			return fmt.Errorf("create task: %w", err)
		}
		return nil
	})
}

// CreateBatch inserts tasks in one statement, keeping their given order.
// Either every task is inserted or none is.
func (r *TaskRepository) CreateBatch(ctx context.Context, tasks []model.Task) error {
	if len(tasks) == 0 {
		return nil
	}
	for i := range tasks {
		if err := validateTask(&tasks[i]); err != nil {
			return err
		}
	}
	if err := r.db.WithContext(ctx).Create(&tasks).Error; err != nil {
		return fmt.Errorf("create tasks: %w", err)
	}
	return nil
}

// FindByID returns ErrNotFound when the task does not belong to the user.
func (r *TaskRepository) FindByID(ctx context.Context, userID, taskID string) (*model.Task, error) {
	var task model.Task
	err := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, taskID).First(&task).Error
	switch {
	case err == nil:
		return &task, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, ErrNotFound
	default:
		return nil, fmt.Errorf("find task: %w", err)
	}
}

// Update applies patch and returns the stored task. A task that no longer
// exists yields (nil, nil): concurrent deletion is expected and not an error.
func (r *TaskRepository) Update(ctx context.Context, userID, taskID string, patch model.TaskPatch) (*model.Task, error) {
	task, err := r.FindByID(ctx, userID, taskID)
	if errors.Is(err, ErrNotFound) {
		log.Printf("[warn] task %s not found, skipping update", taskID)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if patch.Empty() {
		return task, nil
	}

	patch.Apply(task)
	res := r.db.WithContext(ctx).Model(task).
		Where("user_id = ?", userID).
		Select(patchColumns(patch)).
		Updates(task)
	if res.Error != nil {
		return nil, fmt.Errorf("update task: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		log.Printf("[warn] task %s vanished during update", taskID)
		return nil, nil
	}
	return task, nil
}

// Delete removes a task for the given user.
func (r *TaskRepository) Delete(ctx context.Context, userID, taskID string) error {
	if err := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, taskID).
		Delete(&model.Task{}).Error; err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

// DeleteMany removes tasks for the given user and reports how many went.
func (r *TaskRepository) DeleteMany(ctx context.Context, userID string, taskIDs []string) (int64, error) {
	if len(taskIDs) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Where("user_id = ? AND id IN ?", userID, taskIDs).Delete(&model.Task{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete tasks: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// Reorder sets each task's position to its index in taskIDs. Ids that are
// missing or belong to someone else are logged and skipped.
func (r *TaskRepository) Reorder(ctx context.Context, userID string, taskIDs []string) error {
	db := r.db.WithContext(ctx)
	for i, id := range taskIDs {
		res := db.Model(&model.Task{}).Where("user_id = ? AND id = ?", userID, id).Update("position", i)
		if res.Error != nil {
			return fmt.Errorf("reorder task %s: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			log.Printf("[warn] task %s not found during reorder", id)
		}
	}
	return nil
}

// ReorderGroup places taskIDs first in their group and renumbers the rest of
// the group's non-archived tasks after them in their stored order, so
// positions stay contiguous even when the caller only sees part of the list.
// Ids outside the group are logged and skipped.
func (r *TaskRepository) ReorderGroup(ctx context.Context, userID, date string, projectID *string, taskIDs []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx.Model(&model.Task{}).Where("user_id = ? AND archived = ?", userID, false)
		if projectID == nil {
			q = q.Where("project_id IS NULL AND date_created = ?", date)
		} else {
			q = q.Where("project_id = ?", *projectID)
		}
		var group []string
		if err := q.Order("position ASC").Pluck("id", &group).Error; err != nil {
			return fmt.Errorf("list task group: %w", err)
		}

		inGroup := make(map[string]bool, len(group))
		for _, id := range group {
			inGroup[id] = true
		}
		seq := make([]string, 0, len(group))
		for _, id := range taskIDs {
			if !inGroup[id] {
				log.Printf("[warn] task %s is not in the reordered list, skipping", id)
				continue
			}
			inGroup[id] = false
			seq = append(seq, id)
		}
		for _, id := range group {
			if inGroup[id] {
				seq = append(seq, id)
			}
		}
		return NewTaskRepository(tx).Reorder(ctx, userID, seq)
	})
}

// SetArchived flips the archived flag on tasks of the given user.
func (r *TaskRepository) SetArchived(ctx context.Context, userID string, taskIDs []string, archived bool) (int64, error) {
	if len(taskIDs) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("user_id = ? AND id IN ?", userID, taskIDs).
		Update("archived", archived)
	if res.Error != nil {
		return 0, fmt.Errorf("set archived: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// ArchiveDailyBefore archives every non-archived daily task created before
// date, completed or not.
func (r *TaskRepository) ArchiveDailyBefore(ctx context.Context, userID, date string) (int64, error) {
	res := r.daily(ctx, userID).
		Where("date_created < ? AND archived = ?", date, false).
		Update("archived", true)
	if res.Error != nil {
		return 0, fmt.Errorf("archive old tasks: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// MoveToDate appends tasks to date's daily list: they are unarchived,
// detached from any project and placed after the current last task, in the
// given order. Ids that do not belong to the user are skipped.
func (r *TaskRepository) MoveToDate(ctx context.Context, userID string, taskIDs []string, date string) ([]model.Task, error) {
	var moved []model.Task
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := NewTaskRepository(tx)
		next, err := repo.NextOrder(ctx, userID, date, nil)
		if err != nil {
			return err
		}
		for _, id := range taskIDs {
			res := tx.Model(&model.Task{}).Where("user_id = ? AND id = ?", userID, id).
				Updates(map[string]interface{}{
					"archived":     false,
					"project_id":   nil,
					"date_created": date,
					"position":     next,
				})
			if res.Error != nil {
				return fmt.Errorf("move task %s: %w", id, res.Error)
			}
			if res.RowsAffected == 0 {
				log.Printf("[warn] task %s not found, skipping move", id)
				continue
			}
			next++
			task, err := repo.FindByID(ctx, userID, id)
			if err != nil {
				return err
			}
			moved = append(moved, *task)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return moved, nil
}

// patchColumns lists the columns patch writes. Untouched columns are left
// out so concurrent reorders and updates do not overwrite each other.
func patchColumns(patch model.TaskPatch) []string {
	cols := []string{"updated_at"}
	if patch.Content != nil {
		cols = append(cols, "content")
	}
	if patch.Completed != nil {
		cols = append(cols, "completed", "date_completed")
	}
	if patch.Order != nil {
		cols = append(cols, "position")
	}
	if patch.Archived != nil {
		cols = append(cols, "archived")
	}
	if patch.DateCreated != nil {
		cols = append(cols, "date_created")
	}
	if patch.EisenhowerQuadrant != nil {
		cols = append(cols, "eisenhower_quadrant")
	}
	return cols
}

func validateTask(task *model.Task) error {
	if err := required("user_id", task.UserID); err != nil {
		return err
	}
	return required("date_created", task.DateCreated)
}
