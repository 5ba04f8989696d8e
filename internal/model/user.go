package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User owns tasks, projects and settings.
type User struct {
	ID                  string   `gorm:"primaryKey;type:text" json:"id"`
	Email               string   `json:"email"`
	Timezone            string   `json:"timezone"`
	TelegramChatID      *int64   `gorm:"uniqueIndex" json:"telegram_chat_id,omitempty"`
	Settings            Settings `gorm:"serializer:json" json:"settings"`
	OnboardingCompleted bool     `json:"onboarding_completed"`
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.Settings = u.Settings.Normalize()
	return nil
}
