package model

import "fmt"

// CompletionBehavior controls where completed tasks sit in the daily list.
type CompletionBehavior string

const (
	BehaviorStayVisible  CompletionBehavior = "stay_visible"
	BehaviorMoveToBottom CompletionBehavior = "move_to_bottom"
	BehaviorHide         CompletionBehavior = "hide"
)

// CompletionVisual controls how a completed task is drawn.
type CompletionVisual string

const (
	VisualChangeColor CompletionVisual = "change_color"
	VisualNoChange    CompletionVisual = "no_change"
)

const (
	DefaultOverloadThreshold = 15
	DefaultAutoArchiveDays   = 7
)

// Settings is the per-user policy configuration.
type Settings struct {
	CompletionBehavior      CompletionBehavior `json:"task_completion_behavior"`
	CompletionVisual        CompletionVisual   `json:"task_completion_visual"`
	SmartSuggestionsEnabled *bool              `json:"smart_suggestions_enabled,omitempty"`
	OverloadThreshold       int                `json:"task_overload_threshold"`
	ProjectAutoArchiveDays  int                `json:"project_auto_archive_days"`
	ProjectArchiveCompleted *bool              `json:"project_archive_completed,omitempty"`
}

// DefaultSettings returns the settings of a new user.
func DefaultSettings() Settings {
	return Settings{}.Normalize()
}

// Normalize fills unset or unknown values with defaults. The legacy
// "change_color" behavior is read as stay_visible.
func (s Settings) Normalize() Settings {
	switch s.CompletionBehavior {
	case BehaviorStayVisible, BehaviorMoveToBottom, BehaviorHide:
	default:
		s.CompletionBehavior = BehaviorStayVisible
	}
	switch s.CompletionVisual {
	case VisualChangeColor, VisualNoChange:
	default:
		s.CompletionVisual = VisualChangeColor
	}
	if s.SmartSuggestionsEnabled == nil {
		s.SmartSuggestionsEnabled = boolPtr(true)
	}
	if s.OverloadThreshold <= 0 {
		s.OverloadThreshold = DefaultOverloadThreshold
	}
	if s.ProjectAutoArchiveDays <= 0 {
		s.ProjectAutoArchiveDays = DefaultAutoArchiveDays
	}
	if s.ProjectArchiveCompleted == nil {
		s.ProjectArchiveCompleted = boolPtr(true)
	}
	return s
}

// Validate rejects values Normalize would silently replace.
func (s Settings) Validate() error {
	switch s.CompletionBehavior {
	case "", BehaviorStayVisible, BehaviorMoveToBottom, BehaviorHide:
	default:
		return fmt.Errorf("unknown completion behavior %q", s.CompletionBehavior)
	}
	switch s.CompletionVisual {
	case "", VisualChangeColor, VisualNoChange:
	default:
		return fmt.Errorf("unknown completion visual %q", s.CompletionVisual)
	}
	if s.OverloadThreshold < 0 {
		return fmt.Errorf("overload threshold must not be negative")
	}
	if s.ProjectAutoArchiveDays < 0 {
		return fmt.Errorf("project auto-archive days must not be negative")
	}
	return nil
}

// ArchiveCompletedProjects reports the auto-archive-on-completion toggle.
func (s Settings) ArchiveCompletedProjects() bool {
	return s.ProjectArchiveCompleted == nil || *s.ProjectArchiveCompleted
}

// SmartSuggestions reports the smart-suggestion toggle.
func (s Settings) SmartSuggestions() bool {
	return s.SmartSuggestionsEnabled == nil || *s.SmartSuggestionsEnabled
}

// OverloadMessage returns an advisory when count exceeds the threshold.
func (s Settings) OverloadMessage(count int) string {
	threshold := s.Normalize().OverloadThreshold
	if count <= threshold {
		return ""
	}
	return fmt.Sprintf("You have %d tasks today. Consider using the Eisenhower Matrix to prioritize them.", count)
}

func boolPtr(v bool) *bool { return &v }
