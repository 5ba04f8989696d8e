package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"daily-tasks/internal/clock"
	"daily-tasks/internal/model"
	"daily-tasks/internal/repository"
)

// AttemptRetentionDays is how long carry-over attempts are kept.
const AttemptRetentionDays = 30

// Notifier delivers a maintenance summary to a user.
type Notifier interface {
	Notify(ctx context.Context, user model.User, text string) error
}

// MaintenanceReport is the outcome of one user's maintenance run.
type MaintenanceReport struct {
	UserID         string                `json:"userId"`
	CarryOver      *CarryOverResult      `json:"carryOver"`
	Projects       *ProjectArchiveResult `json:"projects"`
	PurgedAttempts int64                 `json:"purgedAttempts"`
}

// MaintenanceService runs the daily engines for every user.
type MaintenanceService struct {
	store    *repository.Store
	calendar *clock.Calendar
	carry    *CarryOverService
	archive  *ProjectArchiveService
	notifier Notifier
}

func NewMaintenanceService(store *repository.Store, calendar *clock.Calendar, carry *CarryOverService, archive *ProjectArchiveService) *MaintenanceService {
	return &MaintenanceService{store: store, calendar: calendar, carry: carry, archive: archive}
}

// SetNotifier enables summaries after runs that changed something.
func (s *MaintenanceService) SetNotifier(n Notifier) {
	s.notifier = n
}

// RunUser carries over the user's tasks in their own zone, archives projects
// with their settings and purges old attempts.
func (s *MaintenanceService) RunUser(ctx context.Context, user model.User) (*MaintenanceReport, error) {
	loc := userLocation(&user, s.calendar.Location())
	report := &MaintenanceReport{UserID: user.ID}

	carry, err := s.carry.CarryOver(ctx, user.ID, loc)
	if err != nil {
		return nil, fmt.Errorf("carry over: %w", err)
	}
	report.CarryOver = carry

	projects, err := s.archive.AutoArchive(ctx, user.ID, user.Settings)
	if err != nil {
		return report, fmt.Errorf("archive projects: %w", err)
	}
	report.Projects = projects

	purged, err := s.store.Attempts.PurgeBefore(ctx, user.ID, s.calendar.Day(loc).DaysAgo(AttemptRetentionDays))
	if err != nil {
		return report, fmt.Errorf("purge attempts: %w", err)
	}
	report.PurgedAttempts = purged

	s.notify(ctx, user, report)
	return report, nil
}

// RunAll runs maintenance for every user. One user's failure does not stop
// the others; all failures are joined into the returned error.
func (s *MaintenanceService) RunAll(ctx context.Context) ([]MaintenanceReport, error) {
	users, err := s.store.Users.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	var reports []MaintenanceReport
	var errs []error
	for _, user := range users {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		report, err := s.RunUser(ctx, user)
		if err != nil {
			log.Printf("[error] maintenance for %s: %v", user.ID, err)
			errs = append(errs, fmt.Errorf("user %s: %w", user.ID, err))
			continue
		}
		reports = append(reports, *report)
	}
	log.Printf("[info] maintenance finished for %d of %d users", len(reports), len(users))
	return reports, errors.Join(errs...)
}

func (s *MaintenanceService) notify(ctx context.Context, user model.User, report *MaintenanceReport) {
	if s.notifier == nil || user.TelegramChatID == nil {
		return
	}
	if report.CarryOver == nil || report.CarryOver.AlreadyRan {
		return
	}
	text := CarryOverSummary(report.CarryOver, report.Projects)
	if text == "" {
		return
	}
	if err := s.notifier.Notify(ctx, user, text); err != nil {
		log.Printf("[warn] notify %s: %v", user.ID, err)
	}
}
