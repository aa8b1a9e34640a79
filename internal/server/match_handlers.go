package server

import (
	"context"
	"time"

	"collabnexus/internal/matchmaking"

	"github.com/gofiber/fiber/v2"
)

// MatchTeammates handles POST /api/match-teammates
// @Summary Find teammates
// @Description Rank users by overlap with the requested skills and interests (at most 10)
// @Tags matching
// @Accept json
// @Produce json
// @Param request body object{skills=[]string,interests=[]string,projectIdea=string} true "Match request"
// @Success 200 {array} models.TeammateMatch
// @Failure 400 {object} models.ErrorResponse
// @Router /match-teammates [post]
func (s *Server) MatchTeammates(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	// projectIdea is accepted for client compatibility and not used for scoring.
	var req struct {
		Skills      []string `json:"skills"`
		Interests   []string `json:"interests"`
		ProjectIdea string   `json:"projectIdea"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	matches, err := s.matchSvc().FindTeammates(ctx, matchmaking.Request{
		Skills:    req.Skills,
		Interests: req.Interests,
	}, c.IP())
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(matches)
}
