package service

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"daily-tasks/internal/clock"
	"daily-tasks/internal/model"
	"daily-tasks/internal/repository"
)

// TaskWriter is the subset of the task repository the reconciler drives.
type TaskWriter interface {
	Create(ctx context.Context, task *model.Task) error
	Update(ctx context.Context, userID, taskID string, patch model.TaskPatch) (*model.Task, error)
	DeleteMany(ctx context.Context, userID string, taskIDs []string) (int64, error)
	ReorderGroup(ctx context.Context, userID, date string, projectID *string, taskIDs []string) error
}

// Scope names the list being edited: a day's daily list, or a project's list
// when ProjectID is set.
type Scope struct {
	Date      string  `json:"date"`
	ProjectID *string `json:"projectId,omitempty"`
}

// CreatedTask pairs the client-side id of a new task with the stored task.
type CreatedTask struct {
	ClientID string     `json:"clientId"`
	Task     model.Task `json:"task"`
}

// ReconcileResult lists what a reconcile call changed.
type ReconcileResult struct {
	Created         []CreatedTask `json:"created"`
	Updated         []model.Task  `json:"updated"`
	HiddenCompleted []string      `json:"hiddenCompleted"`
	Deleted         []string      `json:"deleted"`
	Reordered       bool          `json:"reordered"`

	mu sync.Mutex
}

// CreateError aborts a reconcile before any update, deletion or reorder ran.
// Tasks created before the failure stay stored.
type CreateError struct {
	ClientID string
	Err      error
}

func (e *CreateError) Error() string {
	return fmt.Sprintf("create task %q: %v", e.ClientID, e.Err)
}

func (e *CreateError) Unwrap() error { return e.Err }

// Reconciler turns an edited task list into the minimal set of creates,
// updates, deletions and one reorder.
type Reconciler struct {
	tasks TaskWriter
	now   func() time.Time
}

func NewReconciler(tasks TaskWriter, now func() time.Time) *Reconciler {
	if now == nil {
		now = time.Now
	}
	return &Reconciler{tasks: tasks, now: now}
}

// Reconcile diffs previous, the list as last loaded, against next, the list
// as edited. Tasks in next with ids not seen in previous are new; their ids
// are client-side placeholders and are replaced by stored ids in the reorder.
//
// Creations run one by one in next's order and the first failure aborts the
// call with a *CreateError. Updates, hidden completions, deletions and the
// reorder then run concurrently. A failing batch does not cancel the others;
// all of them are attempted and the first error is returned.
//
// A task missing from next is a deletion, unless the completion behavior
// hides completed tasks and it was still active in previous: then it was
// completed and hidden, and is stored as completed instead.
func (r *Reconciler) Reconcile(ctx context.Context, userID string, scope Scope, settings model.Settings, previous, next []model.Task) (*ReconcileResult, error) {
	if userID == "" {
		return nil, &repository.ValidationError{Field: "user_id", Reason: "is required"}
	}
	if scope.ProjectID == nil && scope.Date == "" {
		return nil, &repository.ValidationError{Field: "date", Reason: "is required"}
	}
	behavior := settings.Normalize().CompletionBehavior
	at := r.now()

	before := make(map[string]model.Task, len(previous))
	for _, t := range previous {
		before[t.ID] = t
	}

	result := &ReconcileResult{
		Created:         []CreatedTask{},
		Updated:         []model.Task{},
		HiddenCompleted: []string{},
		Deleted:         []string{},
	}

	storedIDs := make(map[string]string)
	for _, t := range next {
		if _, ok := before[t.ID]; ok {
			continue
		}
		created, err := r.create(ctx, userID, scope, t, at)
		if err != nil {
			log.Printf("[error] reconcile for %s aborted: %v", userID, err)
			return result, &CreateError{ClientID: t.ID, Err: err}
		}
		storedIDs[t.ID] = created.ID
		result.Created = append(result.Created, CreatedTask{ClientID: t.ID, Task: *created})
	}

	kept := make(map[string]bool, len(next))
	for _, t := range next {
		kept[t.ID] = true
	}

	reorder := len(next) > 0 && !sameIDs(previous, next)

	type update struct {
		id    string
		patch model.TaskPatch
	}
	var updates, hides []update
	var deletes []string

	for _, t := range next {
		old, ok := before[t.ID]
		if !ok {
			continue
		}
		patch := diff(old, t, !reorder)
		if patch.Empty() {
			continue
		}
		patch.At = at
		updates = append(updates, update{id: t.ID, patch: patch})
	}
	for _, t := range previous {
		if kept[t.ID] {
			continue
		}
		if model.VanishedByHiding(t, behavior) {
			done := true
			hides = append(hides, update{id: t.ID, patch: model.TaskPatch{Completed: &done, At: at}})
			continue
		}
		deletes = append(deletes, t.ID)
	}

	var g errgroup.Group
	for _, u := range updates {
		u := u
		g.Go(func() error {
			task, err := r.tasks.Update(ctx, userID, u.id, u.patch)
			if err != nil {
				return err
			}
			if task != nil {
				result.mu.Lock()
				result.Updated = append(result.Updated, *task)
				result.mu.Unlock()
			}
			return nil
		})
	}
	for _, u := range hides {
		u := u
		g.Go(func() error {
			task, err := r.tasks.Update(ctx, userID, u.id, u.patch)
			if err != nil {
				return err
			}
			if task != nil {
				result.mu.Lock()
				result.HiddenCompleted = append(result.HiddenCompleted, task.ID)
				result.mu.Unlock()
			}
			return nil
		})
	}
	if len(deletes) > 0 {
		g.Go(func() error {
			if _, err := r.tasks.DeleteMany(ctx, userID, deletes); err != nil {
				return err
			}
			result.mu.Lock()
			result.Deleted = append(result.Deleted, deletes...)
			result.mu.Unlock()
			return nil
		})
	}
	if reorder {
		ids := make([]string, len(next))
		for i, t := range next {
			if stored, ok := storedIDs[t.ID]; ok {
				ids[i] = stored
			} else {
				ids[i] = t.ID
			}
		}
		g.Go(func() error {
			if err := r.tasks.ReorderGroup(ctx, userID, scope.Date, scope.ProjectID, ids); err != nil {
				return err
			}
			result.mu.Lock()
			result.Reordered = true
			result.mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		log.Printf("[error] reconcile for %s: %v", userID, err)
		return result, fmt.Errorf("apply task changes: %w", err)
	}
	log.Printf("[info] reconciled %s: %d created, %d updated, %d hidden, %d deleted, reordered=%v",
		userID, len(result.Created), len(result.Updated), len(result.HiddenCompleted), len(result.Deleted), result.Reordered)
	return result, nil
}

func (r *Reconciler) create(ctx context.Context, userID string, scope Scope, t model.Task, at time.Time) (*model.Task, error) {
	task := &model.Task{
		UserID:             userID,
		ProjectID:          scope.ProjectID,
		Content:            t.Content,
		DateCreated:        scope.Date,
		EisenhowerQuadrant: t.EisenhowerQuadrant,
	}
	if task.DateCreated == "" {
		task.DateCreated = t.DateCreated
	}
	if task.DateCreated == "" {
		task.DateCreated = clock.DateString(at)
	}
	task.SetCompleted(t.Completed, at)
	if err := r.tasks.Create(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// diff builds the patch taking old to next. Order is only compared when no
// reorder will run; a reorder rewrites every position anyway.
func diff(old, next model.Task, withOrder bool) model.TaskPatch {
	var patch model.TaskPatch
	if old.Content != next.Content {
		content := next.Content
		patch.Content = &content
	}
	if old.Completed != next.Completed {
		completed := next.Completed
		patch.Completed = &completed
	}
	if withOrder && old.Order != next.Order {
		order := next.Order
		patch.Order = &order
	}
	return patch
}

func sameIDs(a, b []model.Task) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID != b[i].ID {
			return false
		}
	}
	return true
}
