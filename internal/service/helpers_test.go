package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"daily-tasks/internal/clock"
	"daily-tasks/internal/model"
	"daily-tasks/internal/repository"
)

const (
	today     = "2026-10-14"
	yesterday = "2026-10-13"
	twoAgo    = "2026-10-12"
)

var testNow = time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) *repository.Store {
	t.Helper()
	db, err := repository.NewDB(filepath.Join(t.TempDir(), "tasks.db"))
	if err != nil {
		t.Fatalf("NewDB failed: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return repository.NewStore(db)
}

func testCalendar() *clock.Calendar {
	return clock.Fixed(testNow)
}

// seed inserts tasks as given, order and counters included.
func seed(t *testing.T, s *repository.Store, tasks ...model.Task) []model.Task {
	t.Helper()
	if err := s.Tasks.CreateBatch(context.Background(), tasks); err != nil {
		t.Fatalf("seed tasks: %v", err)
	}
	return tasks
}

func daily(userID, date, content string, order int) model.Task {
	return model.Task{UserID: userID, DateCreated: date, Content: content, Order: order}
}

func listDaily(t *testing.T, s *repository.Store, userID, date string) []model.Task {
	t.Helper()
	tasks, err := s.Tasks.ListDaily(context.Background(), userID, date)
	if err != nil {
		t.Fatalf("ListDaily(%s) failed: %v", date, err)
	}
	return tasks
}

func assertContiguous(t *testing.T, tasks []model.Task) {
	t.Helper()
	for i, task := range tasks {
		if task.Order != i {
			got := make([]int, len(tasks))
			for j, tt := range tasks {
				got[j] = tt.Order
			}
			t.Fatalf("orders not contiguous: %v", got)
		}
	}
}

func ensureUser(t *testing.T, s *repository.Store, id string) *model.User {
	t.Helper()
	user, err := s.Users.Ensure(context.Background(), id, "")
	if err != nil {
		t.Fatalf("Ensure(%s) failed: %v", id, err)
	}
	return user
}

func clockAt(now time.Time) *clock.Calendar {
	return clock.Fixed(now)
}
