package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Quadrant is an Eisenhower priority bucket, 1 through 4.
type Quadrant int

const (
	QuadrantDoFirst Quadrant = iota + 1
	QuadrantSchedule
	QuadrantDelegate
	QuadrantEliminate
)

// Valid reports whether q is one of the four buckets.
func (q Quadrant) Valid() bool {
	return q >= QuadrantDoFirst && q <= QuadrantEliminate
}

// Task is a single to-do item. A task without a project is a daily task for
// its DateCreated.
type Task struct {
	ID                 string     `gorm:"primaryKey;type:text" json:"id"`
	UserID             string     `gorm:"type:text;not null;index:idx_task_scope,priority:1" json:"user_id"`
	ProjectID          *string    `gorm:"type:text;index" json:"project_id"`
	Content            string     `gorm:"not null" json:"content"`
	DateCreated        string     `gorm:"type:text;not null;index:idx_task_scope,priority:2" json:"date_created"`
	DateCompleted      *time.Time `json:"date_completed"`
	Completed          bool       `json:"completed"`
	Archived           bool       `gorm:"index" json:"archived"`
	Order              int        `gorm:"column:position;not null" json:"order"`
	CarryOverCount     int        `gorm:"not null" json:"carry_over_count"`
	EisenhowerQuadrant *Quadrant  `json:"eisenhower_quadrant"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// BeforeCreate assigns an opaque id when the caller did not supply one.
func (t *Task) BeforeCreate(*gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// IsDaily reports whether the task belongs to the daily list.
func (t Task) IsDaily() bool { return t.ProjectID == nil }

// SetCompleted flips the completion flag and keeps DateCompleted in step:
// stamped on false->true, cleared on true->false, untouched otherwise.
func (t *Task) SetCompleted(done bool, at time.Time) {
	switch {
	case done && !t.Completed:
		stamp := at
		t.DateCompleted = &stamp
	case !done && t.Completed:
		t.DateCompleted = nil
	}
	t.Completed = done
}

// CarryCopy returns a fresh, incomplete copy of t dated for date. The carry
// counter is bumped and the quadrant survives.
func (t Task) CarryCopy(date string, order int) Task {
	return Task{
		UserID:             t.UserID,
		Content:            t.Content,
		DateCreated:        date,
		Order:              order,
		CarryOverCount:     t.CarryOverCount + 1,
		EisenhowerQuadrant: t.EisenhowerQuadrant,
	}
}

// TaskPatch lists the mutable fields of a task; nil fields are left alone.
type TaskPatch struct {
	Content            *string
	Completed          *bool
	Order              *int
	Archived           *bool
	DateCreated        *string
	EisenhowerQuadrant **Quadrant

	// At stamps a completion transition; zero means time.Now.
	At time.Time
}

// Empty reports whether the patch changes nothing.
func (p TaskPatch) Empty() bool {
	return p.Content == nil && p.Completed == nil && p.Order == nil &&
		p.Archived == nil && p.DateCreated == nil && p.EisenhowerQuadrant == nil
}

// Apply writes the patch onto t.
func (p TaskPatch) Apply(t *Task) {
	if p.Content != nil {
		t.Content = *p.Content
	}
	if p.Completed != nil {
		at := p.At
		if at.IsZero() {
			at = time.Now()
		}
		t.SetCompleted(*p.Completed, at)
	}
	if p.Order != nil {
		t.Order = *p.Order
	}
	if p.Archived != nil {
		t.Archived = *p.Archived
	}
	if p.DateCreated != nil {
		t.DateCreated = *p.DateCreated
	}
	if p.EisenhowerQuadrant != nil {
		t.EisenhowerQuadrant = *p.EisenhowerQuadrant
	}
}

// DaySummary aggregates one calendar date of daily tasks.
type DaySummary struct {
	Date           string `json:"date"`
	TotalTasks     int    `json:"total_tasks"`
	CompletedTasks int    `json:"completed_tasks"`
	CompletionRate int    `json:"completion_rate"`
}
