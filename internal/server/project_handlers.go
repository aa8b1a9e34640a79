package server

import (
	"context"
	"time"

	"collabnexus/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetProjects handles GET /api/projects
func (s *Server) GetProjects(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	projects, err := s.projectSvc().ListProjects(ctx)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(projects)
}

// CreateProject handles POST /api/projects
// @Summary Create project
// @Tags projects
// @Accept json
// @Produce json
// @Param request body object{name=string,description=string,ownerId=string,teamMembers=[]string} true "Project"
// @Success 201 {object} models.Project
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /projects [post]
func (s *Server) CreateProject(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	var req struct {
		Name        string   `json:"name"`
		Description *string  `json:"description"`
		OwnerID     string   `json:"ownerId"`
		TeamMembers []string `json:"teamMembers"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	project, err := s.projectSvc().CreateProject(ctx, service.CreateProjectInput{
		Name:        req.Name,
		Description: req.Description,
		OwnerID:     req.OwnerID,
		TeamMembers: req.TeamMembers,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(project)
}

// GetProject handles GET /api/projects/:id
func (s *Server) GetProject(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	project, err := s.projectSvc().GetProject(c.UserContext(), id)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(project)
}

// AddProjectMember handles POST /api/projects/:id/members
func (s *Server) AddProjectMember(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		UserID string `json:"userId"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	project, err := s.projectSvc().AddMember(ctx, id, req.UserID)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(project)
}

// RemoveProjectMember handles DELETE /api/projects/:id/members/:userId
func (s *Server) RemoveProjectMember(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	userID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}

	project, err := s.projectSvc().RemoveMember(ctx, id, userID)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(project)
}

// GetProjectProgress handles GET /api/projects/:id/progress
// @Summary Project progress
// @Description Completion percentage and per-user contributions over completed tasks
// @Tags projects
// @Produce json
// @Param id path string true "Project id"
// @Success 200 {object} models.ProjectProgress
// @Failure 404 {object} models.ErrorResponse
// @Router /projects/{id}/progress [get]
func (s *Server) GetProjectProgress(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	progress, err := s.projectSvc().GetProgress(ctx, id)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(progress)
}
