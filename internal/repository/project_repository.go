package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"daily-tasks/internal/model"
)

// ProjectRepository manages projects.
type ProjectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

const projectWithCount = "projects.*, (SELECT COUNT(*) FROM tasks WHERE tasks.project_id = projects.id AND tasks.archived = ?) AS task_count"

func (r *ProjectRepository) Create(ctx context.Context, project *model.Project) error {
	if err := required("user_id", project.UserID); err != nil {
		return err
	}
	if err := required("title", project.Title); err != nil {
		return err
	}
	project.LastAccessed = project.LastAccessed.UTC()
	if err := r.db.WithContext(ctx).Create(project).Error; err != nil {
		return fmt.Errorf("create project: %w", err)
	}
	return nil
}

// FindByID returns the project with its task count, or ErrNotFound.
func (r *ProjectRepository) FindByID(ctx context.Context, userID, projectID string) (*model.Project, error) {
	var project model.Project
	err := r.db.WithContext(ctx).Select(projectWithCount, false).
		Where("user_id = ? AND id = ?", userID, projectID).
		First(&project).Error
	switch {
	case err == nil:
		return &project, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, ErrNotFound
	default:
		return nil, fmt.Errorf("find project: %w", err)
	}
}

// ListActive returns non-archived projects, most recently opened first.
func (r *ProjectRepository) ListActive(ctx context.Context, userID string) ([]model.Project, error) {
	var projects []model.Project
	if err := r.db.WithContext(ctx).Select(projectWithCount, false).
		Where("user_id = ? AND archived = ?", userID, false).
		Order("last_accessed DESC").
		Find(&projects).Error; err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return projects, nil
}

// ListArchived returns archived projects, most recently changed first.
func (r *ProjectRepository) ListArchived(ctx context.Context, userID string) ([]model.Project, error) {
	var projects []model.Project
	if err := r.db.WithContext(ctx).Select(projectWithCount, false).
		Where("user_id = ? AND archived = ?", userID, true).
		Order("updated_at DESC").
		Find(&projects).Error; err != nil {
		return nil, fmt.Errorf("list archived projects: %w", err)
	}
	return projects, nil
}

// ListActiveWithTasks returns non-archived projects with all their tasks loaded.
func (r *ProjectRepository) ListActiveWithTasks(ctx context.Context, userID string) ([]model.Project, error) {
	var projects []model.Project
	if err := r.db.WithContext(ctx).
		Preload("Tasks").
		Where("user_id = ? AND archived = ?", userID, false).
		Find(&projects).Error; err != nil {
		return nil, fmt.Errorf("list projects with tasks: %w", err)
	}
	return projects, nil
}

// ListInactiveIDs returns ids of non-archived projects last opened before
// cutoff. Access times are stored in UTC so they compare as text.
func (r *ProjectRepository) ListInactiveIDs(ctx context.Context, userID string, cutoff time.Time) ([]string, error) {
	var ids []string
	if err := r.db.WithContext(ctx).Model(&model.Project{}).
		Where("user_id = ? AND archived = ? AND last_accessed < ?", userID, false, cutoff.UTC()).
		Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("list inactive projects: %w", err)
	}
	return ids, nil
}

// Touch records that the project was opened at at.
func (r *ProjectRepository) Touch(ctx context.Context, userID, projectID string, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&model.Project{}).
		Where("user_id = ? AND id = ?", userID, projectID).
		Update("last_accessed", at.UTC())
	if res.Error != nil {
		return fmt.Errorf("touch project: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ArchiveMany archives the still-active projects among ids.
func (r *ProjectRepository) ArchiveMany(ctx context.Context, userID string, projectIDs []string) (int64, error) {
	if len(projectIDs) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Model(&model.Project{}).
		Where("user_id = ? AND archived = ? AND id IN ?", userID, false, projectIDs).
		Update("archived", true)
	if res.Error != nil {
		return 0, fmt.Errorf("archive projects: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// Unarchive restores a project and counts the restore as an access.
func (r *ProjectRepository) Unarchive(ctx context.Context, userID, projectID string, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&model.Project{}).
		Where("user_id = ? AND id = ?", userID, projectID).
		Updates(map[string]interface{}{"archived": false, "last_accessed": at.UTC()})
	if res.Error != nil {
		return fmt.Errorf("unarchive project: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a project and every task in it.
func (r *ProjectRepository) Delete(ctx context.Context, userID, projectID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ? AND project_id = ?", userID, projectID).
			Delete(&model.Task{}).Error; err != nil {
			return fmt.Errorf("delete project tasks: %w", err)
		}
		res := tx.Where("user_id = ? AND id = ?", userID, projectID).Delete(&model.Project{})
		if res.Error != nil {
			return fmt.Errorf("delete project: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}
