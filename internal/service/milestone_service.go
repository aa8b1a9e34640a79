package service

import (
	"context"
	"strings"

	"collabnexus/internal/models"
	"collabnexus/internal/repository"
)

type MilestoneService struct {
	store repository.Store
	now   Clock
}

type CreateMilestoneInput struct {
	ProjectID   string
	Title       string
	Description *string
	XPReward    *int
	IsCompleted bool
}

func NewMilestoneService(store repository.Store) *MilestoneService {
	return &MilestoneService{store: store, now: utcNow}
}

func (s *MilestoneService) WithClock(now Clock) *MilestoneService {
	s.now = now
	return s
}

func (s *MilestoneService) CreateMilestone(ctx context.Context, in CreateMilestoneInput) (*models.Milestone, error) {
	m := &models.Milestone{
		ProjectID:   strings.TrimSpace(in.ProjectID),
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		XPReward:    models.DefaultMilestoneXPReward,
		IsCompleted: in.IsCompleted,
	}
	if in.XPReward != nil {
		m.XPReward = *in.XPReward
	}
	switch {
	case m.ProjectID == "":
		return nil, models.NewValidationError("projectId is required")
	case m.Title == "":
		return nil, models.NewValidationError("Title is required")
	case !models.ValidXPReward(m.XPReward):
		return nil, models.NewValidationError("xpReward must be a positive integer up to 1000000")
	}
	if m.IsCompleted {
		at := s.now()
		m.CompletedAt = &at
	}

	err := s.store.WithTx(ctx, func(tx repository.Tx) error {
		if _, err := tx.GetProject(ctx, m.ProjectID); err != nil {
			return err
		}
		return tx.CreateMilestone(ctx, m)
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (s *MilestoneService) ListMilestones(ctx context.Context, projectID string) ([]models.Milestone, error) {
	if _, err := s.store.GetProject(ctx, projectID); err != nil {
		return nil, err
	}
	return s.store.ListMilestonesByProject(ctx, projectID)
}

// UpdateMilestone applies patch. completedAt is stamped on the first
// transition to completed and kept afterwards. Milestones pay no XP.
func (s *MilestoneService) UpdateMilestone(ctx context.Context, id string, patch models.MilestonePatch) (*models.Milestone, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	var updated *models.Milestone
	err := s.store.WithTx(ctx, func(tx repository.Tx) error {
		m, err := tx.GetMilestone(ctx, id)
		if err != nil {
			return err
		}
		patch.Apply(m)
		if m.IsCompleted && m.CompletedAt == nil {
			at := s.now()
			m.CompletedAt = &at
		}
		if err := tx.UpdateMilestone(ctx, m); err != nil {
			return err
		}
		updated = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
