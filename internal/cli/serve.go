package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"daily-tasks/internal/api"
	"daily-tasks/internal/bot"
	"daily-tasks/internal/service"
)

const (
	jobTimeout      = 5 * time.Minute
	shutdownTimeout = 10 * time.Second
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API, the maintenance scheduler and the Telegram bot",
	Long: `Run the HTTP API and the maintenance job on MAINTENANCE_SCHEDULE.

When TELEGRAM_TOKEN is set the bot is started too. It receives maintenance
summaries and, with DAILY_SUMMARY_TIME, sends every linked chat its list.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides HTTP_ADDR)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.Close()

	addr := a.cfg.HTTPAddr
	if serveAddr != "" {
		addr = serveAddr
	}

	var telegramBot *bot.Bot
	if a.cfg.BotEnabled() {
		// Chats created with an empty zone follow the server default.
		zone := a.cfg.DefaultTimezone.String()
		if a.cfg.DefaultTimezone == time.Local {
			zone = ""
		}
		telegramBot, err = bot.New(a.cfg.TelegramToken, bot.Services{
			Users:     a.store.Users,
			Accounts:  a.users,
			Tasks:     a.tasks,
			CarryOver: a.carryOver,
			Reminders: a.reminders,
		}, zone)
		if err != nil {
			return fmt.Errorf("start bot: %w", err)
		}
		a.maintenance.SetNotifier(telegramBot)
	}

	scheduler, err := a.schedule(ctx, telegramBot)
	if err != nil {
		return err
	}
	scheduler.Start()
	defer scheduler.Stop()

	srv := api.NewServer(api.Services{
		Users:      a.users,
		Tasks:      a.tasks,
		Projects:   a.projects,
		CarryOver:  a.carryOver,
		Archive:    a.archive,
		Reconciler: a.reconciler,
	})
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(a.cfg.CORSAllowedOrigins, os.Stdout),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("[info] http listening on %s", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})
	if telegramBot != nil {
		g.Go(func() error {
			return telegramBot.Start(gctx)
		})
	}

	err = g.Wait()
	log.Println("[info] shutdown complete")
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// schedule registers the maintenance job and, with a bot, the daily summary.
func (a *app) schedule(ctx context.Context, telegramBot *bot.Bot) (*service.SchedulerService, error) {
	s := service.NewSchedulerService(a.cfg.DefaultTimezone)

	id, err := s.ScheduleSpec(a.cfg.MaintenanceSchedule, func() {
		jobCtx, cancel := context.WithTimeout(ctx, jobTimeout)
		defer cancel()
		if _, err := a.maintenance.RunAll(jobCtx); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("[error] maintenance: %v", err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("schedule maintenance: %w", err)
	}
	log.Printf("[info] maintenance scheduled %q, next run %s", a.cfg.MaintenanceSchedule, s.Next(id).Format(time.RFC3339))

	if telegramBot == nil || a.cfg.DailySummaryTime == "" {
		return s, nil
	}
	id, err = s.ScheduleDaily(a.cfg.DailySummaryTime, func() {
		jobCtx, cancel := context.WithTimeout(ctx, jobTimeout)
		defer cancel()
		if err := telegramBot.SendDailySummaries(jobCtx); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("[error] daily summaries: %v", err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("schedule daily summary: %w", err)
	}
	log.Printf("[info] daily summary scheduled at %s, next run %s", a.cfg.DailySummaryTime, s.Next(id).Format(time.RFC3339))
	return s, nil
}
