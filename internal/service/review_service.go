package service

import (
	"context"
	"fmt"
	"strings"

	"collabnexus/internal/models"
	"collabnexus/internal/repository"
)

type ReviewService struct {
	store repository.Store
}

type CreateReviewInput struct {
	ProjectID  string
	ReviewerID string
	RevieweeID string
	Rating     int
	Feedback   string
	Tags       []string
}

func NewReviewService(store repository.Store) *ReviewService {
	return &ReviewService{store: store}
}

func (s *ReviewService) CreateReview(ctx context.Context, in CreateReviewInput) (*models.Review, error) {
	r := &models.Review{
		ProjectID:  strings.TrimSpace(in.ProjectID),
		ReviewerID: strings.TrimSpace(in.ReviewerID),
		RevieweeID: strings.TrimSpace(in.RevieweeID),
		Rating:     in.Rating,
		Feedback:   strings.TrimSpace(in.Feedback),
		Tags:       models.NormalizeTerms(in.Tags),
	}
	switch {
	case r.ProjectID == "":
		return nil, models.NewValidationError("projectId is required")
	case r.ReviewerID == "" || r.RevieweeID == "":
		return nil, models.NewValidationError("reviewerId and revieweeId are required")
	case r.Rating < models.MinRating || r.Rating > models.MaxRating:
		return nil, models.NewValidationError(fmt.Sprintf("Rating must be between %d and %d", models.MinRating, models.MaxRating))
	case r.Feedback == "":
		return nil, models.NewValidationError("Feedback is required")
	}

	err := s.store.WithTx(ctx, func(tx repository.Tx) error {
		if _, err := tx.GetProject(ctx, r.ProjectID); err != nil {
			return err
		}
		if err := requireUsers(ctx, tx, r.ReviewerID, r.RevieweeID); err != nil {
			return err
		}
		return tx.CreateReview(ctx, r)
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (s *ReviewService) ListByProject(ctx context.Context, projectID string) ([]models.Review, error) {
	if _, err := s.store.GetProject(ctx, projectID); err != nil {
		return nil, err
	}
	return s.store.ListReviewsByProject(ctx, projectID)
}

// ListByReviewee returns the reviews userID has received.
func (s *ReviewService) ListByReviewee(ctx context.Context, userID string) ([]models.Review, error) {
	if _, err := s.store.GetUser(ctx, userID); err != nil {
		return nil, err
	}
	return s.store.ListReviewsByReviewee(ctx, userID)
}
