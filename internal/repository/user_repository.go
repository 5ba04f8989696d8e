package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"daily-tasks/internal/model"
)

// UserRepository handles CRUD for users.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Ensure returns the user with id, creating a profile with default settings
// when none exists yet.
func (r *UserRepository) Ensure(ctx context.Context, id, email string) (*model.User, error) {
	if err := required("user_id", id); err != nil {
		return nil, err
	}
	var user model.User
	db := r.db.WithContext(ctx)
	err := db.Where("id = ?", id).First(&user).Error
	switch {
	case err == nil:
		user.Settings = user.Settings.Normalize()
		return &user, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		user = model.User{ID: id, Email: email, Settings: model.DefaultSettings()}
		if err := db.Create(&user).Error; err != nil {
			return nil, fmt.Errorf("create user: %w", err)
		}
		return &user, nil
	default:
		return nil, fmt.Errorf("find user: %w", err)
	}
}

// UpsertFromTelegram finds or creates the user linked to a Telegram chat.
func (r *UserRepository) UpsertFromTelegram(ctx context.Context, chatID int64, timezone string) (*model.User, error) {
	var user model.User
	db := r.db.WithContext(ctx)
	err := db.Where("telegram_chat_id = ?", chatID).First(&user).Error
	switch {
	case err == nil:
		return &user, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		user = model.User{TelegramChatID: &chatID, Timezone: timezone, Settings: model.DefaultSettings()}
		if err := db.Create(&user).Error; err != nil {
			return nil, fmt.Errorf("create user: %w", err)
		}
		return &user, nil
	default:
		return nil, fmt.Errorf("find user: %w", err)
	}
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	switch {
	case err == nil:
		user.Settings = user.Settings.Normalize()
		return &user, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, ErrNotFound
	default:
		return nil, fmt.Errorf("find user: %w", err)
	}
}

func (r *UserRepository) ListAll(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	for i := range users {
		users[i].Settings = users[i].Settings.Normalize()
	}
	return users, nil
}

// UpdateSettings stores normalized settings for the user.
func (r *UserRepository) UpdateSettings(ctx context.Context, id string, settings model.Settings) (*model.User, error) {
	user, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	user.Settings = settings.Normalize()
	if err := r.db.WithContext(ctx).Model(user).Select("settings", "updated_at").Updates(user).Error; err != nil {
		return nil, fmt.Errorf("update settings: %w", err)
	}
	return user, nil
}

// SetTimezone stores the IANA zone the user's calendar dates are kept in.
func (r *UserRepository) SetTimezone(ctx context.Context, id, timezone string) error {
	res := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Update("timezone", timezone)
	if res.Error != nil {
		return fmt.Errorf("set timezone: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *UserRepository) CompleteOnboarding(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Update("onboarding_completed", true)
	if res.Error != nil {
		return fmt.Errorf("complete onboarding: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
