package service

import (
	"context"
	"sync"
	"testing"
	"time"
	_ "time/tzdata"

	"daily-tasks/internal/model"
)

func TestCarryOverEmailBob(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	svc := NewCarryOverService(s, testCalendar())
	ctx := context.Background()
	seed(t, s, daily("u1", yesterday, "Email Bob", 0))

	first, err := svc.CarryOver(ctx, "u1", time.UTC)
	if err != nil {
		t.Fatalf("CarryOver failed: %v", err)
	}
	if first.TotalCarried != 1 || first.AlreadyRan {
		t.Fatalf("first run = %+v", first)
	}
	carried := first.CarriedTasks[0]
	if carried.Content != "Email Bob" || carried.CarryOverCount != 1 || carried.DateCreated != today {
		t.Errorf("unexpected carried task %+v", carried)
	}
	if len(first.HighPriorityTasks) != 0 {
		t.Errorf("first carry should not be high priority")
	}

	second, err := svc.CarryOver(ctx, "u1", time.UTC)
	if err != nil {
		t.Fatalf("second CarryOver failed: %v", err)
	}
	if second.TotalCarried != 0 || second.ArchivedTasks != 0 || !second.AlreadyRan {
		t.Errorf("second run should be a no-op, got %+v", second)
	}
	if got := listDaily(t, s, "u1", today); len(got) != 1 {
		t.Errorf("today has %d tasks, want 1", len(got))
	}
}

func TestCarryOverSkipsDuplicateContent(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	svc := NewCarryOverService(s, testCalendar())
	ctx := context.Background()
	seed(t, s,
		daily("u1", yesterday, "Buy milk", 0),
		daily("u1", yesterday, "buy milk", 1),
		daily("u1", today, "Buy milk", 0),
	)

	res, err := svc.CarryOver(ctx, "u1", time.UTC)
	if err != nil {
		t.Fatalf("CarryOver failed: %v", err)
	}
	if res.TotalCarried != 1 || res.CarriedTasks[0].Content != "buy milk" {
		t.Fatalf("expected only the case-different task carried, got %+v", res.CarriedTasks)
	}
	tasks := listDaily(t, s, "u1", today)
	if len(tasks) != 2 {
		t.Fatalf("today has %d tasks, want 2", len(tasks))
	}
	assertContiguous(t, tasks)
}

func TestCarryOverKeepsIdenticalLeftovers(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	svc := NewCarryOverService(s, testCalendar())
	seed(t, s,
		daily("u1", yesterday, "Buy milk", 0),
		daily("u1", yesterday, "Buy milk", 1),
	)

	res, err := svc.CarryOver(context.Background(), "u1", time.UTC)
	if err != nil {
		t.Fatalf("CarryOver failed: %v", err)
	}
	if res.TotalCarried != 2 {
		t.Fatalf("TotalCarried = %d, want 2", res.TotalCarried)
	}
	tasks := listDaily(t, s, "u1", today)
	if len(tasks) != 2 || tasks[0].Content != "Buy milk" || tasks[1].Content != "Buy milk" {
		t.Fatalf("today = %+v", tasks)
	}
	assertContiguous(t, tasks)
}

func TestCarryOverArchivesOlderTasks(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	svc := NewCarryOverService(s, testCalendar())
	ctx := context.Background()

	done := daily("u1", twoAgo, "old done", 0)
	done.Completed = true
	seed(t, s, done, daily("u1", twoAgo, "old open", 1), daily("u1", yesterday, "fresh", 0))

	res, err := svc.CarryOver(ctx, "u1", time.UTC)
	if err != nil {
		t.Fatalf("CarryOver failed: %v", err)
	}
	if res.ArchivedTasks != 2 {
		t.Errorf("archived = %d, want 2", res.ArchivedTasks)
	}
	if res.TotalCarried != 1 || res.CarriedTasks[0].Content != "fresh" {
		t.Errorf("only yesterday's task should carry, got %+v", res.CarriedTasks)
	}
	if got := listDaily(t, s, "u1", twoAgo); len(got) != 0 {
		t.Errorf("old tasks still visible: %+v", got)
	}
}

func TestCarryOverHighPriorityAndOrder(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	svc := NewCarryOverService(s, testCalendar())
	ctx := context.Background()

	q := model.QuadrantDoFirst
	slipping := daily("u1", yesterday, "slipping", 1)
	slipping.CarryOverCount = 1
	slipping.EisenhowerQuadrant = &q
	seed(t, s,
		daily("u1", yesterday, "new", 0),
		slipping,
		daily("u1", today, "planned a", 0),
		daily("u1", today, "planned b", 1),
	)

	res, err := svc.CarryOver(ctx, "u1", time.UTC)
	if err != nil {
		t.Fatalf("CarryOver failed: %v", err)
	}
	if res.TotalCarried != 2 {
		t.Fatalf("carried = %d, want 2", res.TotalCarried)
	}
	// Most-delayed first.
	if res.CarriedTasks[0].Content != "slipping" || res.CarriedTasks[0].CarryOverCount != 2 {
		t.Errorf("unexpected first carried task %+v", res.CarriedTasks[0])
	}
	if len(res.HighPriorityTasks) != 1 || res.HighPriorityTasks[0].Content != "slipping" {
		t.Errorf("high priority = %+v", res.HighPriorityTasks)
	}
	if qq := res.CarriedTasks[0].EisenhowerQuadrant; qq == nil || *qq != model.QuadrantDoFirst {
		t.Error("quadrant should be preserved")
	}

	tasks := listDaily(t, s, "u1", today)
	if len(tasks) != 4 {
		t.Fatalf("today has %d tasks", len(tasks))
	}
	assertContiguous(t, tasks)
}

func TestCarryOverNothingToCarryStillRecords(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	svc := NewCarryOverService(s, testCalendar())
	ctx := context.Background()

	res, err := svc.CarryOver(ctx, "u1", time.UTC)
	if err != nil {
		t.Fatalf("CarryOver failed: %v", err)
	}
	if res.TotalCarried != 0 || res.AlreadyRan {
		t.Errorf("unexpected result %+v", res)
	}
	done, err := s.Attempts.Exists(ctx, "u1", today)
	if err != nil || !done {
		t.Errorf("attempt not recorded: %v %v", done, err)
	}

	// A task appearing later the same day is not carried.
	seed(t, s, daily("u1", yesterday, "late", 0))
	res, err = svc.CarryOver(ctx, "u1", time.UTC)
	if err != nil {
		t.Fatalf("CarryOver failed: %v", err)
	}
	if !res.AlreadyRan || res.TotalCarried != 0 {
		t.Errorf("second run should be skipped, got %+v", res)
	}
}

func TestCarryOverInUserZone(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	// 02:30 UTC on the 14th is the evening of the 13th in New York.
	svc := NewCarryOverService(s, clockAt(time.Date(2026, 10, 14, 2, 30, 0, 0, time.UTC)))
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("LoadLocation failed: %v", err)
	}
	seed(t, s, daily("u1", twoAgo, "from the 12th", 0))

	res, err := svc.CarryOver(context.Background(), "u1", ny)
	if err != nil {
		t.Fatalf("CarryOver failed: %v", err)
	}
	if res.Date != yesterday || res.TotalCarried != 1 || res.CarriedTasks[0].DateCreated != yesterday {
		t.Errorf("carry should land on the 13th, got %+v", res)
	}
}

func TestCarryOverConcurrentRunsCarryOnce(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	svc := NewCarryOverService(s, testCalendar())
	seed(t, s, daily("u1", yesterday, "once", 0))

	const runs = 8
	var wg sync.WaitGroup
	results := make([]*CarryOverResult, runs)
	errs := make([]error, runs)
	for i := 0; i < runs; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = svc.CarryOver(context.Background(), "u1", time.UTC)
		}(i)
	}
	wg.Wait()

	total := 0
	for i := range results {
		if errs[i] != nil {
			t.Fatalf("run %d failed: %v", i, errs[i])
		}
		total += results[i].TotalCarried
	}
	if total != 1 {
		t.Errorf("carried %d times, want once", total)
	}
	if got := listDaily(t, s, "u1", today); len(got) != 1 {
		t.Errorf("today has %d tasks, want 1", len(got))
	}
}

func TestCarryOverRequiresUser(t *testing.T) {
	t.Parallel()
	svc := NewCarryOverService(newTestStore(t), testCalendar())
	if _, err := svc.CarryOver(context.Background(), "", time.UTC); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestCarrySelected(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	svc := NewCarryOverService(s, testCalendar())
	ctx := context.Background()

	done := daily("u1", twoAgo, "finished", 1)
	done.Completed = true
	tasks := seed(t, s,
		daily("u1", twoAgo, "pick me", 0),
		done,
		daily("u1", today, "already today", 0),
	)

	res, err := svc.CarrySelected(ctx, "u1", []string{tasks[0].ID, tasks[1].ID, tasks[2].ID, "ghost"}, time.UTC)
	if err != nil {
		t.Fatalf("CarrySelected failed: %v", err)
	}
	if res.TotalCarried != 1 || res.CarriedTasks[0].Content != "pick me" || res.CarriedTasks[0].Order != 1 {
		t.Errorf("unexpected result %+v", res.CarriedTasks)
	}
	if done, _ := s.Attempts.Exists(ctx, "u1", today); done {
		t.Error("manual carry must not record an attempt")
	}
}
