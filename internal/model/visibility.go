package model

import (
	"fmt"
	"sort"
)

// Visibility is where a task currently shows up.
//
//	Active ──complete──▶ CompletedVisible | CompletedHidden (by behavior)
//	Completed* ──reopen──▶ Active
//	any ──archive──▶ Archived ──restore──▶ Active | Completed*
type Visibility int

const (
	VisibilityActive Visibility = iota
	VisibilityCompletedVisible
	VisibilityCompletedHidden
	VisibilityArchived
)

func (v Visibility) String() string {
	switch v {
	case VisibilityActive:
		return "active"
	case VisibilityCompletedVisible:
		return "completed-visible"
	case VisibilityCompletedHidden:
		return "completed-hidden"
	case VisibilityArchived:
		return "archived"
	default:
		return fmt.Sprintf("visibility(%d)", int(v))
	}
}

// Shown reports whether a task in this state is part of the current view.
func (v Visibility) Shown() bool {
	return v == VisibilityActive || v == VisibilityCompletedVisible
}

// VisibilityOf derives the state of t under behavior b.
func VisibilityOf(t Task, b CompletionBehavior) Visibility {
	switch {
	case t.Archived:
		return VisibilityArchived
	case !t.Completed:
		return VisibilityActive
	case b == BehaviorHide:
		return VisibilityCompletedHidden
	default:
		return VisibilityCompletedVisible
	}
}

// VanishedByHiding reports whether a task that dropped out of the view was
// most likely completed and auto-hidden rather than deleted: the behavior
// hides completed tasks and the task was still active before it vanished.
func VanishedByHiding(before Task, b CompletionBehavior) bool {
	return b == BehaviorHide && VisibilityOf(before, b) == VisibilityActive
}

// ArrangeForView applies the completion behavior to a day's tasks. The input
// is expected in stored order and is not modified.
func ArrangeForView(tasks []Task, b CompletionBehavior) []Task {
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if VisibilityOf(t, b).Shown() {
			out = append(out, t)
		}
	}
	if b == BehaviorMoveToBottom {
		sort.SliceStable(out, func(i, j int) bool {
			return !out[i].Completed && out[j].Completed
		})
	}
	return out
}
