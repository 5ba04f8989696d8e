package model

import "time"

// CarryOverAttempt marks that carry-over already ran for a user on a date.
type CarryOverAttempt struct {
	ID          uint   `gorm:"primaryKey"`
	UserID      string `gorm:"type:text;not null;uniqueIndex:idx_attempt_user_date,priority:1"`
	AttemptDate string `gorm:"type:text;not null;uniqueIndex:idx_attempt_user_date,priority:2"`
	CreatedAt   time.Time
}
