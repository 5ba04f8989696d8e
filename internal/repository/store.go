package repository

import (
	"context"

	"gorm.io/gorm"
)

// Store bundles the repositories sharing one database handle.
type Store struct {
	db       *gorm.DB
	Users    *UserRepository
	Tasks    *TaskRepository
	Projects *ProjectRepository
	Attempts *AttemptRepository
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:       db,
		Users:    NewUserRepository(db),
		Tasks:    NewTaskRepository(db),
		Projects: NewProjectRepository(db),
		Attempts: NewAttemptRepository(db),
	}
}

// Transaction runs fn against a store bound to a single transaction. The
// transaction commits when fn returns nil and rolls back otherwise.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}
