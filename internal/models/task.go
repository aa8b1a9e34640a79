package models

import (
	"strings"
	"time"
)

// TaskStatus is the kanban column a task sits in.
type TaskStatus string

const (
	TaskStatusNotStarted TaskStatus = "not_started"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusNotStarted, TaskStatusInProgress, TaskStatusCompleted:
		return true
	}
	return false
}

// Priority ranks tasks on the board.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// DefaultTaskXPReward is used when a task is created without a reward.
const DefaultTaskXPReward = 10

// MaxXPReward caps the reward a task or milestone may carry.
const MaxXPReward = 1_000_000

// ValidXPReward reports whether r is a usable task or milestone reward.
func ValidXPReward(r int) bool {
	return r > 0 && r <= MaxXPReward
}

// Task is a unit of work on a project's board.
type Task struct {
	ID          string     `gorm:"primaryKey;type:varchar(36)" json:"id"`
	ProjectID   string     `gorm:"index;not null;type:varchar(36)" json:"projectId"`
	Title       string     `gorm:"not null" json:"title"`
	Description *string    `json:"description"`
	Status      TaskStatus `gorm:"not null;type:varchar(20)" json:"status"`
	AssignedTo  *string    `gorm:"index;type:varchar(36)" json:"assignedTo"`
	Priority    Priority   `gorm:"type:varchar(10)" json:"priority"`
	XPReward    int        `gorm:"not null" json:"xpReward"`
	DueDate     *time.Time `json:"dueDate"`
	CreatedAt   time.Time  `json:"createdAt"`
	CompletedAt *time.Time `json:"completedAt"`
}

func (t *Task) Clone() *Task {
	if t == nil {
		return nil
	}
	c := *t
	c.Description = cloneString(t.Description)
	c.AssignedTo = cloneString(t.AssignedTo)
	if t.DueDate != nil {
		d := *t.DueDate
		c.DueDate = &d
	}
	if t.CompletedAt != nil {
		d := *t.CompletedAt
		c.CompletedAt = &d
	}
	return &c
}

func (t *Task) IsCompleted() bool {
	return t.Status == TaskStatusCompleted
}

// TaskPatch enumerates the task fields a client may change.
type TaskPatch struct {
	Title       *string             `json:"title"`
	Description Optional[string]    `json:"description"`
	Status      *TaskStatus         `json:"status"`
	AssignedTo  Optional[string]    `json:"assignedTo"`
	Priority    *Priority           `json:"priority"`
	XPReward    *int                `json:"xpReward"`
	DueDate     Optional[time.Time] `json:"dueDate"`
}

// Validate checks the patch values without looking at stored state.
func (p TaskPatch) Validate() error {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return NewValidationError("Title cannot be empty")
	}
	if p.Status != nil && !p.Status.Valid() {
		return NewValidationError("Invalid status: " + string(*p.Status))
	}
	if p.Priority != nil && !p.Priority.Valid() {
		return NewValidationError("Invalid priority: " + string(*p.Priority))
	}
	if p.XPReward != nil && !ValidXPReward(*p.XPReward) {
		return NewValidationError("xpReward must be a positive integer up to 1000000")
	}
	if p.AssignedTo.Set && p.AssignedTo.Value != nil && *p.AssignedTo.Value == "" {
		return NewValidationError("assignedTo cannot be empty; use null to unassign")
	}
	return nil
}

// Apply merges the patch into t. completedAt is not touched here.
func (p TaskPatch) Apply(t *Task) {
	if p.Title != nil {
		t.Title = strings.TrimSpace(*p.Title)
	}
	p.Description.ApplyTo(&t.Description)
	if p.Status != nil {
		t.Status = *p.Status
	}
	p.AssignedTo.ApplyTo(&t.AssignedTo)
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.XPReward != nil {
		t.XPReward = *p.XPReward
	}
	p.DueDate.ApplyTo(&t.DueDate)
}
