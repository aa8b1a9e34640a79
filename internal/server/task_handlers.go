package server

import (
	"context"
	"time"

	"collabnexus/internal/models"
	"collabnexus/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetProjectTasks handles GET /api/projects/:id/tasks
func (s *Server) GetProjectTasks(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	tasks, err := s.taskSvc().ListTasks(ctx, id)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(tasks)
}

// CreateTask handles POST /api/projects/:id/tasks
// @Summary Create task
// @Tags tasks
// @Accept json
// @Produce json
// @Param id path string true "Project id"
// @Param request body object{title=string,description=string,status=string,assignedTo=string,priority=string,xpReward=int,dueDate=string} true "Task"
// @Success 201 {object} models.Task
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /projects/{id}/tasks [post]
func (s *Server) CreateTask(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Title       string            `json:"title"`
		Description *string           `json:"description"`
		Status      models.TaskStatus `json:"status"`
		AssignedTo  *string           `json:"assignedTo"`
		Priority    models.Priority   `json:"priority"`
		XPReward    *int              `json:"xpReward"`
		DueDate     *time.Time        `json:"dueDate"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	task, err := s.taskSvc().CreateTask(ctx, service.CreateTaskInput{
		ProjectID:   id,
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		AssignedTo:  req.AssignedTo,
		Priority:    req.Priority,
		XPReward:    req.XPReward,
		DueDate:     req.DueDate,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(task)
}

// UpdateTask handles PATCH /api/projects/:projectId/tasks/:taskId
// @Summary Update task
// @Description Partial update; the first move to completed awards the task's XP to its assignee
// @Tags tasks
// @Accept json
// @Produce json
// @Param projectId path string true "Project id"
// @Param taskId path string true "Task id"
// @Param request body models.TaskPatch true "Fields to change; null clears description, assignedTo and dueDate"
// @Success 200 {object} models.Task
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /projects/{projectId}/tasks/{taskId} [patch]
func (s *Server) UpdateTask(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	projectID, err := s.parseID(c, "projectId")
	if err != nil {
		return nil
	}
	taskID, err := s.parseID(c, "taskId")
	if err != nil {
		return nil
	}

	var patch models.TaskPatch
	if err := parseBody(c, &patch); err != nil {
		return nil
	}

	task, err := s.taskSvc().UpdateTask(ctx, projectID, taskID, patch)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(task)
}

// DeleteTask handles DELETE /api/projects/:projectId/tasks/:taskId
func (s *Server) DeleteTask(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	projectID, err := s.parseID(c, "projectId")
	if err != nil {
		return nil
	}
	taskID, err := s.parseID(c, "taskId")
	if err != nil {
		return nil
	}

	if err := s.taskSvc().DeleteTask(ctx, projectID, taskID); err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{"success": true})
}
