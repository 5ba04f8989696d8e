package service

import (
	"context"

	"daily-tasks/internal/clock"
	"daily-tasks/internal/model"
	"daily-tasks/internal/repository"
)

// UserService keeps profiles and their settings.
type UserService struct {
	store *repository.Store
}

func NewUserService(store *repository.Store) *UserService {
	return &UserService{store: store}
}

// EnsureUser returns the profile for id, creating one with default settings
// on first sight.
func (s *UserService) EnsureUser(ctx context.Context, id string) (*model.User, error) {
	return s.store.Users.Ensure(ctx, id, "")
}

// UpdateSettings validates settings and stores them with defaults filled in.
func (s *UserService) UpdateSettings(ctx context.Context, userID string, settings model.Settings) (*model.User, error) {
	if err := settings.Validate(); err != nil {
		return nil, &repository.ValidationError{Field: "settings", Reason: err.Error()}
	}
	return s.store.Users.UpdateSettings(ctx, userID, settings)
}

// SetTimezone stores an IANA zone for the user's calendar.
func (s *UserService) SetTimezone(ctx context.Context, userID, timezone string) error {
	if timezone != "" && clock.LoadLocation(timezone, nil).String() != timezone {
		return &repository.ValidationError{Field: "timezone", Reason: "unknown zone " + timezone}
	}
	return s.store.Users.SetTimezone(ctx, userID, timezone)
}

func (s *UserService) CompleteOnboarding(ctx context.Context, userID string) error {
	return s.store.Users.CompleteOnboarding(ctx, userID)
}
