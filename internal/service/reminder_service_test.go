package service

import (
	"context"
	"strings"
	"testing"

	"daily-tasks/internal/model"
)

func TestDailySummary(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	user := ensureUser(t, s, "u1")

	slipping := daily("u1", today, "<b>tax</b> forms", 1)
	slipping.CarryOverCount = 2
	seed(t, s, daily("u1", today, "walk", 0), slipping)

	text, err := NewReminderService(NewTaskService(s, testCalendar())).DailySummary(context.Background(), user)
	if err != nil {
		t.Fatalf("DailySummary failed: %v", err)
	}
	for _, want := range []string{today, "🟢 walk", "⚠️ &lt;b&gt;tax&lt;/b&gt; forms", "carried 2×"} {
		if !strings.Contains(text, want) {
			t.Errorf("summary missing %q:\n%s", want, text)
		}
	}
}

func TestCarryOverSummary(t *testing.T) {
	t.Parallel()
	if got := CarryOverSummary(&CarryOverResult{}, &ProjectArchiveResult{}); got != "" {
		t.Errorf("empty run should render nothing, got %q", got)
	}

	res := &CarryOverResult{
		Date:          today,
		CarriedTasks:  []model.Task{{Content: "a", CarryOverCount: 1}, {Content: "b", CarryOverCount: 3}},
		ArchivedTasks: 4,
	}
	res.finish()
	text := CarryOverSummary(res, &ProjectArchiveResult{InactiveProjects: 1})
	for _, want := range []string{"Carried over 2 tasks", "1 of them keep slipping", "Archived 4 old tasks", "0 finished and 1 inactive"} {
		if !strings.Contains(text, want) {
			t.Errorf("summary missing %q:\n%s", want, text)
		}
	}
}
