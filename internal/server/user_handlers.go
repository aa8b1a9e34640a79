package server

import (
	"context"
	"strings"
	"time"

	"collabnexus/internal/models"
	"collabnexus/internal/service"

	"github.com/gofiber/fiber/v2"
)

// accountRequest carries the external auth id under its current name or
// the legacy firebaseUid key.
type accountRequest struct {
	Username       string   `json:"username"`
	Email          string   `json:"email"`
	ExternalAuthID string   `json:"externalAuthId"`
	FirebaseUID    string   `json:"firebaseUid"`
	Skills         []string `json:"skills"`
	Interests      []string `json:"interests"`
}

func (r accountRequest) externalID() string {
	if id := strings.TrimSpace(r.ExternalAuthID); id != "" {
		return id
	}
	return strings.TrimSpace(r.FirebaseUID)
}

// Signup handles POST /api/signup
// @Summary User signup
// @Description Register a collaborator linked to an external auth provider account
// @Tags users
// @Accept json
// @Produce json
// @Param request body object{username=string,email=string,externalAuthId=string,skills=[]string,interests=[]string} true "Signup request"
// @Success 201 {object} models.User
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /signup [post]
func (s *Server) Signup(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	var req accountRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	user, err := s.userSvc().CreateUser(ctx, service.CreateUserInput{
		Username:       req.Username,
		Email:          req.Email,
		ExternalAuthID: req.externalID(),
		Skills:         req.Skills,
		Interests:      req.Interests,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(user)
}

// Login handles POST /api/login
// @Summary Sync user on login
// @Description Look up the collaborator linked to an external auth id
// @Tags users
// @Accept json
// @Produce json
// @Param request body object{externalAuthId=string} true "Login request"
// @Success 200 {object} models.User
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /login [post]
func (s *Server) Login(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	var req accountRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	user, err := s.userSvc().GetUserByExternalAuthID(ctx, req.externalID())
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(user)
}

// GetUsers handles GET /api/users
func (s *Server) GetUsers(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	users, err := s.userSvc().ListUsers(ctx)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(users)
}

// GetUser handles GET /api/users/:id
// @Summary Get user
// @Description Fetch a user by id or by external auth id
// @Tags users
// @Produce json
// @Param id path string true "User id or external auth id"
// @Success 200 {object} models.User
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id} [get]
func (s *Server) GetUser(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	user, err := s.userSvc().ResolveUser(c.UserContext(), id)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(user)
}

// UpdateUserProfile handles PUT /api/users/:id/profile
func (s *Server) UpdateUserProfile(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var patch models.UserProfilePatch
	if err := parseBody(c, &patch); err != nil {
		return nil
	}

	user, err := s.userSvc().UpdateProfile(ctx, id, patch)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(user)
}

// AwardXP handles PATCH /api/users/:id/xp
// @Summary Award XP
// @Description Add experience points to a user and recompute the level
// @Tags users
// @Accept json
// @Produce json
// @Param id path string true "User id"
// @Param request body object{xpToAdd=int} true "XP to add"
// @Success 200 {object} models.User
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id}/xp [patch]
func (s *Server) AwardXP(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		XPToAdd *int `json:"xpToAdd"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	if req.XPToAdd == nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("xpToAdd must be a number"))
	}

	user, err := s.userSvc().AwardXP(ctx, id, *req.XPToAdd)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(user)
}

// GetUserProgression handles GET /api/users/:id/progression
func (s *Server) GetUserProgression(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	p, err := s.userSvc().GetProgression(c.UserContext(), id)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(p)
}

// GetUserProjects handles GET /api/users/:id/projects
func (s *Server) GetUserProjects(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	projects, err := s.projectSvc().ListProjectsByUser(c.UserContext(), id)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(projects)
}

// GetUserTasks handles GET /api/users/:id/tasks
func (s *Server) GetUserTasks(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	tasks, err := s.taskSvc().ListTasksByAssignee(c.UserContext(), id)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(tasks)
}

// GetUserReviews handles GET /api/users/:id/reviews
func (s *Server) GetUserReviews(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	reviews, err := s.reviewSvc().ListByReviewee(c.UserContext(), id)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(reviews)
}
