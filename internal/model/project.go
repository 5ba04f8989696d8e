package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Project groups tasks outside the daily list.
type Project struct {
	ID           string    `gorm:"primaryKey;type:text" json:"id"`
	UserID       string    `gorm:"type:text;not null;index" json:"user_id"`
	Title        string    `gorm:"not null" json:"title"`
	DateCreated  string    `gorm:"type:text;not null" json:"date_created"`
	LastAccessed time.Time `gorm:"index" json:"last_accessed"`
	Archived     bool      `gorm:"index" json:"archived"`
	TaskCount    int       `gorm:"->;-:migration" json:"task_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Tasks        []Task    `gorm:"foreignKey:ProjectID" json:"-"`
}

func (p *Project) BeforeCreate(*gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// AllActiveCompleted reports whether the project has at least one
// non-archived task and every such task is completed. Tasks must be loaded.
func (p Project) AllActiveCompleted() bool {
	active := 0
	for _, task := range p.Tasks {
		if task.Archived {
			continue
		}
		if !task.Completed {
			return false
		}
		active++
	}
	return active > 0
}
