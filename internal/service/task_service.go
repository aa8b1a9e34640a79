package service

import (
	"context"
	"strings"
	"time"

	"collabnexus/internal/models"
	"collabnexus/internal/observability"
	"collabnexus/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

type TaskService struct {
	store repository.Store
	now   Clock
}

type CreateTaskInput struct {
	ProjectID   string
	Title       string
	Description *string
	Status      models.TaskStatus
	AssignedTo  *string
	Priority    models.Priority
	XPReward    *int
	DueDate     *time.Time
}

func NewTaskService(store repository.Store) *TaskService {
	return &TaskService{store: store, now: utcNow}
}

// WithClock overrides the time source used for completedAt.
func (s *TaskService) WithClock(now Clock) *TaskService {
	s.now = now
	return s
}

// CreateTask adds a task to a project's board. A task created already
// completed counts as a completion and pays its assignee.
func (s *TaskService) CreateTask(ctx context.Context, in CreateTaskInput) (*models.Task, error) {
	task := &models.Task{
		ProjectID:   in.ProjectID,
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Status:      in.Status,
		AssignedTo:  in.AssignedTo,
		Priority:    in.Priority,
		XPReward:    models.DefaultTaskXPReward,
		DueDate:     in.DueDate,
	}
	if task.Status == "" {
		task.Status = models.TaskStatusNotStarted
	}
	if task.Priority == "" {
		task.Priority = models.PriorityMedium
	}
	if in.XPReward != nil {
		task.XPReward = *in.XPReward
	}
	if err := validateNewTask(task); err != nil {
		return nil, err
	}

	var award *xpAward
	err := s.store.WithTx(ctx, func(tx repository.Tx) error {
		if _, err := tx.GetProject(ctx, task.ProjectID); err != nil {
			return err
		}
		if task.AssignedTo != nil {
			if err := requireUsers(ctx, tx, *task.AssignedTo); err != nil {
				return err
			}
		}
		completed := task.IsCompleted()
		if completed {
			at := s.now()
			task.CompletedAt = &at
		}
		if err := tx.CreateTask(ctx, task); err != nil {
			return err
		}
		if completed && task.AssignedTo != nil {
			var err error
			_, award, err = awardXP(ctx, tx, *task.AssignedTo, task.XPReward)
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if task.CompletedAt != nil {
		reportCompletion(ctx, task, award)
	}
	return task, nil
}

func validateNewTask(t *models.Task) error {
	switch {
	case t.ProjectID == "":
		return models.NewValidationError("projectId is required")
	case t.Title == "":
		return models.NewValidationError("Title is required")
	case !t.Status.Valid():
		return models.NewValidationError("Invalid status: " + string(t.Status))
	case !t.Priority.Valid():
		return models.NewValidationError("Invalid priority: " + string(t.Priority))
	case !models.ValidXPReward(t.XPReward):
		return models.NewValidationError("xpReward must be a positive integer up to 1000000")
	case t.AssignedTo != nil && *t.AssignedTo == "":
		return models.NewValidationError("assignedTo cannot be empty; use null to unassign")
	}
	return nil
}

// ListTasks returns the board of a project in creation order.
func (s *TaskService) ListTasks(ctx context.Context, projectID string) ([]models.Task, error) {
	if _, err := s.store.GetProject(ctx, projectID); err != nil {
		return nil, err
	}
	return s.store.ListTasksByProject(ctx, projectID)
}

// ListTasksByAssignee returns every task assigned to userID.
func (s *TaskService) ListTasksByAssignee(ctx context.Context, userID string) ([]models.Task, error) {
	if _, err := s.store.GetUser(ctx, userID); err != nil {
		return nil, err
	}
	return s.store.ListTasksByAssignee(ctx, userID)
}

// UpdateTask applies patch to a task of projectID. The first transition
// into completed stamps completedAt and pays xpReward to the assignee; the
// whole read-modify-write runs in one transaction so that edge is decided
// exactly once even under concurrent updates.
func (s *TaskService) UpdateTask(ctx context.Context, projectID, taskID string, patch models.TaskPatch) (*models.Task, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	ctx, span := observability.StartServiceSpan(ctx, "task", "UpdateTask",
		attribute.String("project.id", projectID),
		attribute.String("task.id", taskID),
	)

	var (
		updated   *models.Task
		completed bool
		award     *xpAward
	)
	err := s.store.WithTx(ctx, func(tx repository.Tx) error {
		task, err := tx.GetTask(ctx, taskID)
		if err != nil {
			return err
		}
		if task.ProjectID != projectID {
			return models.NewNotFoundError("Task", taskID)
		}
		if patch.AssignedTo.Set && patch.AssignedTo.Value != nil {
			if err := requireUsers(ctx, tx, *patch.AssignedTo.Value); err != nil {
				return err
			}
		}

		patch.Apply(task)
		completed = task.CompletedAt == nil && task.IsCompleted()
		if completed {
			at := s.now()
			task.CompletedAt = &at
		}
		if err := tx.UpdateTask(ctx, task); err != nil {
			return err
		}
		updated = task

		if completed && task.AssignedTo != nil {
			_, award, err = awardXP(ctx, tx, *task.AssignedTo, task.XPReward)
			return err
		}
		return nil
	})
	observability.EndSpan(span, err)
	if err != nil {
		return nil, err
	}
	if completed {
		reportCompletion(ctx, updated, award)
	}
	return updated, nil
}

// DeleteTask removes a task from projectID's board. Unknown tasks, and
// tasks that belong to another project, are left alone without error.
func (s *TaskService) DeleteTask(ctx context.Context, projectID, taskID string) error {
	return s.store.WithTx(ctx, func(tx repository.Tx) error {
		task, err := tx.GetTask(ctx, taskID)
		if models.IsNotFound(err) {
			return nil
		}
		if err != nil {
			return err
		}
		if task.ProjectID != projectID {
			return nil
		}
		return tx.DeleteTask(ctx, taskID)
	})
}
