package service

import (
	"context"
	"fmt"
	"html"
	"strings"

	"daily-tasks/internal/model"
)

// ReminderService builds human-readable summaries for chat notifications.
type ReminderService struct {
	tasks *TaskService
}

func NewReminderService(tasks *TaskService) *ReminderService {
	return &ReminderService{tasks: tasks}
}

// DailySummary renders today's list for the user as Telegram HTML.
func (s *ReminderService) DailySummary(ctx context.Context, user *model.User) (string, error) {
	view, err := s.tasks.Today(ctx, user)
	if err != nil {
		return "", err
	}

	var builder strings.Builder
	builder.WriteString("📋 <b>Today</b>\n")
	builder.WriteString(fmt.Sprintf("🗓 %s\n\n", view.Date))

	if len(view.Tasks) == 0 {
		builder.WriteString("— nothing planned yet\n")
	}
	for _, task := range view.Tasks {
		builder.WriteString(formatTask(task))
	}
	if view.Overload != "" {
		builder.WriteString("\n⚖️ ")
		builder.WriteString(html.EscapeString(view.Overload))
		builder.WriteByte('\n')
	}
	return strings.TrimSpace(builder.String()), nil
}

// CarryOverSummary renders the outcome of a maintenance run. It is empty when
// nothing was carried or archived.
func CarryOverSummary(carry *CarryOverResult, projects *ProjectArchiveResult) string {
	var builder strings.Builder

	if carry != nil && carry.TotalCarried > 0 {
		builder.WriteString(fmt.Sprintf("♻️ <b>Carried over %d tasks into %s</b>\n", carry.TotalCarried, carry.Date))
		for _, task := range carry.CarriedTasks {
			builder.WriteString(formatTask(task))
		}
		if n := len(carry.HighPriorityTasks); n > 0 {
			builder.WriteString(fmt.Sprintf("\n⚠️ %d of them keep slipping. Do them first or drop them.\n", n))
		}
	}
	if carry != nil && carry.ArchivedTasks > 0 {
		builder.WriteString(fmt.Sprintf("\n🗄 Archived %d old tasks.\n", carry.ArchivedTasks))
	}
	if projects != nil && projects.Total() > 0 {
		builder.WriteString(fmt.Sprintf("\n📁 Archived %d finished and %d inactive projects.\n",
			projects.CompletedProjects, projects.InactiveProjects))
	}
	return strings.TrimSpace(builder.String())
}

func formatTask(task model.Task) string {
	var sb strings.Builder

	icon := "🟢"
	switch {
	case task.Completed:
		icon = "✅"
	case task.CarryOverCount >= HighPriorityCarryCount:
		icon = "⚠️"
	case task.CarryOverCount > 0:
		icon = "⏳"
	}
	sb.WriteString(fmt.Sprintf("%s %s", icon, html.EscapeString(strings.TrimSpace(task.Content))))

	if task.CarryOverCount > 0 {
		sb.WriteString(fmt.Sprintf(" <i>(carried %d×)</i>", task.CarryOverCount))
	}
	if task.EisenhowerQuadrant != nil {
		sb.WriteString(fmt.Sprintf(" <i>[Q%d]</i>", int(*task.EisenhowerQuadrant)))
	}

	sb.WriteByte('\n')
	return sb.String()
}
