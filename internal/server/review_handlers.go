package server

import (
	"context"
	"time"

	"collabnexus/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateReview handles POST /api/reviews
// @Summary Create peer review
// @Tags reviews
// @Accept json
// @Produce json
// @Param request body object{projectId=string,reviewerId=string,revieweeId=string,rating=int,feedback=string,tags=[]string} true "Review"
// @Success 201 {object} models.Review
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /reviews [post]
func (s *Server) CreateReview(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	var req struct {
		ProjectID  string   `json:"projectId"`
		ReviewerID string   `json:"reviewerId"`
		RevieweeID string   `json:"revieweeId"`
		Rating     int      `json:"rating"`
		Feedback   string   `json:"feedback"`
		Tags       []string `json:"tags"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	review, err := s.reviewSvc().CreateReview(ctx, service.CreateReviewInput{
		ProjectID:  req.ProjectID,
		ReviewerID: req.ReviewerID,
		RevieweeID: req.RevieweeID,
		Rating:     req.Rating,
		Feedback:   req.Feedback,
		Tags:       req.Tags,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(review)
}

// GetProjectReviews handles GET /api/projects/:id/reviews
func (s *Server) GetProjectReviews(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	reviews, err := s.reviewSvc().ListByProject(c.UserContext(), id)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(reviews)
}
