package service

import (
	"context"
	"errors"
	"log"
	"time"

	"daily-tasks/internal/clock"
	"daily-tasks/internal/model"
	"daily-tasks/internal/repository"
)

// HighPriorityCarryCount is the carry counter at which a task is flagged.
const HighPriorityCarryCount = 2

// CarryOverResult summarizes one carry-over run.
type CarryOverResult struct {
	Date              string       `json:"date"`
	CarriedTasks      []model.Task `json:"carriedTasks"`
	TotalCarried      int          `json:"totalCarried"`
	HighPriorityTasks []model.Task `json:"highPriorityTasks"`
	ArchivedTasks     int          `json:"archivedTasks"`
	// AlreadyRan is set when an attempt for the date was already recorded
	// and the run did nothing.
	AlreadyRan bool `json:"alreadyRan"`
}

// CarryOverService moves yesterday's unfinished daily tasks into today.
type CarryOverService struct {
	store    *repository.Store
	calendar *clock.Calendar
}

func NewCarryOverService(store *repository.Store, calendar *clock.Calendar) *CarryOverService {
	return &CarryOverService{store: store, calendar: calendar}
}

// CarryOver runs the daily policy for userID with dates resolved in loc:
// tasks older than yesterday are archived, yesterday's incomplete tasks are
// copied into today unless today already has the same content, and the day
// is recorded so later calls are no-ops.
//
// The whole run is one transaction. The attempt row is unique per user and
// date, so when two runs race the loser rolls back and reports AlreadyRan.
func (s *CarryOverService) CarryOver(ctx context.Context, userID string, loc *time.Location) (*CarryOverResult, error) {
	if userID == "" {
		return nil, &repository.ValidationError{Field: "user_id", Reason: "is required"}
	}
	day := s.calendar.Day(loc)
	result := &CarryOverResult{Date: day.Today}

	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		done, err := tx.Attempts.Exists(ctx, userID, day.Today)
		if err != nil {
			return err
		}
		if done {
			result.AlreadyRan = true
			return nil
		}

		archived, err := tx.Tasks.ArchiveDailyBefore(ctx, userID, day.Yesterday)
		if err != nil {
			return err
		}
		result.ArchivedTasks = int(archived)

		incomplete, err := tx.Tasks.ListIncomplete(ctx, userID, []string{day.Yesterday})
		if err != nil {
			return err
		}
		if len(incomplete) > 0 {
			carried, err := carryInto(ctx, tx.Tasks, userID, day.Today, incomplete)
			if err != nil {
				return err
			}
			result.CarriedTasks = carried
		}

		return tx.Attempts.Record(ctx, userID, day.Today)
	})
	if errors.Is(err, repository.ErrDuplicateAttempt) {
		log.Printf("[info] carry-over for %s on %s lost the race to another run", userID, day.Today)
		return &CarryOverResult{Date: day.Today, AlreadyRan: true}, nil
	}
	if err != nil {
		return nil, err
	}

	if result.AlreadyRan {
		log.Printf("[info] carry-over already ran for %s on %s", userID, day.Today)
		return result, nil
	}
	result.finish()
	log.Printf("[info] carry-over for %s on %s: carried %d (%d high priority), archived %d",
		userID, day.Today, result.TotalCarried, len(result.HighPriorityTasks), result.ArchivedTasks)
	return result, nil
}

// CarrySelected copies the chosen incomplete daily tasks into today, with the
// same rules as the daily run. It does not record an attempt.
func (s *CarryOverService) CarrySelected(ctx context.Context, userID string, taskIDs []string, loc *time.Location) (*CarryOverResult, error) {
	if userID == "" {
		return nil, &repository.ValidationError{Field: "user_id", Reason: "is required"}
	}
	day := s.calendar.Day(loc)
	result := &CarryOverResult{Date: day.Today}

	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		var picked []model.Task
		seen := make(map[string]bool, len(taskIDs))
		for _, id := range taskIDs {
			if seen[id] {
				continue
			}
			seen[id] = true
			task, err := tx.Tasks.FindByID(ctx, userID, id)
			if errors.Is(err, repository.ErrNotFound) {
				log.Printf("[warn] task %s not found, skipping manual carry", id)
				continue
			}
			if err != nil {
				return err
			}
			if !task.IsDaily() || task.Completed || task.DateCreated >= day.Today {
				continue
			}
			picked = append(picked, *task)
		}
		if len(picked) == 0 {
			return nil
		}
		carried, err := carryInto(ctx, tx.Tasks, userID, day.Today, picked)
		if err != nil {
			return err
		}
		result.CarriedTasks = carried
		return nil
	})
	if err != nil {
		return nil, err
	}
	result.finish()
	return result, nil
}

// carryInto creates today's copies of tasks whose content is not already
// present today, appended after today's last task in one batch insert.
func carryInto(ctx context.Context, tasks *repository.TaskRepository, userID, today string, from []model.Task) ([]model.Task, error) {
	existing, err := tasks.Contents(ctx, userID, today)
	if err != nil {
		return nil, err
	}
	next, err := tasks.NextOrder(ctx, userID, today, nil)
	if err != nil {
		return nil, err
	}

	copies := make([]model.Task, 0, len(from))
	for _, task := range from {
		if _, dup := existing[task.Content]; dup {
			continue
		}
		copies = append(copies, task.CarryCopy(today, next))
		next++
	}
	if err := tasks.CreateBatch(ctx, copies); err != nil {
		return nil, err
	}
	return copies, nil
}

func (r *CarryOverResult) finish() {
	if r.CarriedTasks == nil {
		r.CarriedTasks = []model.Task{}
	}
	r.TotalCarried = len(r.CarriedTasks)
	r.HighPriorityTasks = []model.Task{}
	for _, task := range r.CarriedTasks {
		if task.CarryOverCount >= HighPriorityCarryCount {
			r.HighPriorityTasks = append(r.HighPriorityTasks, task)
		}
	}
}
