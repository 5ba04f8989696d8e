package cli

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"daily-tasks/internal/clock"
	"daily-tasks/internal/config"
	"daily-tasks/internal/repository"
	"daily-tasks/internal/service"
)

// app holds the services one process runs with.
type app struct {
	cfg         config.Config
	db          *gorm.DB
	store       *repository.Store
	calendar    *clock.Calendar
	users       *service.UserService
	tasks       *service.TaskService
	projects    *service.ProjectService
	carryOver   *service.CarryOverService
	archive     *service.ProjectArchiveService
	reconciler  *service.Reconciler
	reminders   *service.ReminderService
	maintenance *service.MaintenanceService
}

func newApp(cfg config.Config) (*app, error) {
	db, err := repository.NewDB(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	store := repository.NewStore(db)
	calendar := clock.New(time.Now, cfg.DefaultTimezone)

	a := &app{
		cfg:        cfg,
		db:         db,
		store:      store,
		calendar:   calendar,
		users:      service.NewUserService(store),
		tasks:      service.NewTaskService(store, calendar),
		projects:   service.NewProjectService(store, calendar),
		carryOver:  service.NewCarryOverService(store, calendar),
		archive:    service.NewProjectArchiveService(store, calendar),
		reconciler: service.NewReconciler(store.Tasks, calendar.Now),
	}
	a.reminders = service.NewReminderService(a.tasks)
	a.maintenance = service.NewMaintenanceService(store, calendar, a.carryOver, a.archive)
	return a, nil
}

func loadApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return newApp(cfg)
}

func (a *app) Close() error {
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
