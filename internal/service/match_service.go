package service

import (
	"context"

	"collabnexus/internal/featureflags"
	"collabnexus/internal/matchmaking"
	"collabnexus/internal/models"
	"collabnexus/internal/observability"
	"collabnexus/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

type MatchService struct {
	store repository.Store
	flags *featureflags.Manager
}

func NewMatchService(store repository.Store, flags *featureflags.Manager) *MatchService {
	return &MatchService{store: store, flags: flags}
}

// FindTeammates ranks every user against req. subject keys feature flag
// rollout; whether matching interests are reported depends on it.
func (s *MatchService) FindTeammates(ctx context.Context, req matchmaking.Request, subject string) ([]models.TeammateMatch, error) {
	ctx, span := observability.StartServiceSpan(ctx, "match", "FindTeammates",
		attribute.Int("request.skills", len(req.Skills)),
		attribute.Int("request.interests", len(req.Interests)),
	)

	users, err := s.store.ListUsers(ctx)
	if err != nil {
		observability.EndSpan(span, err)
		return nil, err
	}

	expose := s.flags.Enabled(featureflags.ExposeMatchingInterests, subject)
	matches := matchmaking.FindTeammates(users, req, expose)

	observability.TeammateMatchResults.Observe(float64(len(matches)))
	span.SetAttributes(attribute.Int("match.results", len(matches)))
	observability.EndSpan(span, nil)
	return matches, nil
}
