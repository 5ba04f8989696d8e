package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"daily-tasks/internal/model"
)

// AttemptRepository records which days carry-over already ran.
type AttemptRepository struct {
	db *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) *AttemptRepository {
	return &AttemptRepository{db: db}
}

func (r *AttemptRepository) Exists(ctx context.Context, userID, date string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.CarryOverAttempt{}).
		Where("user_id = ? AND attempt_date = ?", userID, date).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("check carry-over attempt: %w", err)
	}
	return count > 0, nil
}

// Record inserts the attempt. The (user, date) pair is unique, so a second
// insert fails with ErrDuplicateAttempt.
func (r *AttemptRepository) Record(ctx context.Context, userID, date string) error {
	attempt := model.CarryOverAttempt{UserID: userID, AttemptDate: date}
	err := r.db.WithContext(ctx).Create(&attempt).Error
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicateAttempt
	default:
		return fmt.Errorf("record carry-over attempt: %w", err)
	}
}

// PurgeBefore deletes the user's attempts dated before date.
func (r *AttemptRepository) PurgeBefore(ctx context.Context, userID, date string) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND attempt_date < ?", userID, date).
		Delete(&model.CarryOverAttempt{})
	if res.Error != nil {
		return 0, fmt.Errorf("purge carry-over attempts: %w", res.Error)
	}
	return res.RowsAffected, nil
}
