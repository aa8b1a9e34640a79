package server

import (
	"context"
	"time"

	"collabnexus/internal/models"
	"collabnexus/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateMilestone handles POST /api/milestones
func (s *Server) CreateMilestone(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	var req struct {
		ProjectID   string  `json:"projectId"`
		Title       string  `json:"title"`
		Description *string `json:"description"`
		XPReward    *int    `json:"xpReward"`
		IsCompleted bool    `json:"isCompleted"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	m, err := s.milestoneSvc().CreateMilestone(ctx, service.CreateMilestoneInput{
		ProjectID:   req.ProjectID,
		Title:       req.Title,
		Description: req.Description,
		XPReward:    req.XPReward,
		IsCompleted: req.IsCompleted,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(m)
}

// GetProjectMilestones handles GET /api/projects/:id/milestones
func (s *Server) GetProjectMilestones(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	milestones, err := s.milestoneSvc().ListMilestones(c.UserContext(), id)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(milestones)
}

// UpdateMilestone handles PATCH /api/milestones/:id
func (s *Server) UpdateMilestone(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var patch models.MilestonePatch
	if err := parseBody(c, &patch); err != nil {
		return nil
	}

	m, err := s.milestoneSvc().UpdateMilestone(ctx, id, patch)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(m)
}
