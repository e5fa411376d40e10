package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Priority of a todo as shown on the task list
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// ParsePriority normalizes a stored priority, falling back to medium
func ParsePriority(raw *string) Priority {
	if raw == nil {
		return PriorityMedium
	}
	switch p := Priority(strings.ToLower(strings.TrimSpace(*raw))); p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return p
	default:
		return PriorityMedium
	}
}

// Todo is a daily task row under a weekly goal
type Todo struct {
	ID           uuid.UUID
	UserID       uuid.UUID `validate:"required"`
	WeeklyGoalID uuid.UUID `validate:"required"`
	Title        string    `validate:"required"`
	IsCompleted  bool
	Priority     *string
	Deadline     *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Task is the display shape of a todo
type Task struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Completed bool       `json:"completed"`
	UserID    string     `json:"userId"`
	DueDate   *time.Time `json:"dueDate,omitempty"`
	Priority  Priority   `json:"priority"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// ToTask converts a Todo row into its display shape
func (t *Todo) ToTask() *Task {
	return &Task{
		ID:        t.ID.String(),
		Title:     t.Title,
		Completed: t.IsCompleted,
		UserID:    t.UserID.String(),
		DueDate:   t.Deadline,
		Priority:  ParsePriority(t.Priority),
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}
