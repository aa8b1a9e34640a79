package service

import (
	"context"
	"slices"
	"strings"

	"collabnexus/internal/models"
	"collabnexus/internal/progress"
	"collabnexus/internal/repository"
)

type ProjectService struct {
	store repository.Store
}

type CreateProjectInput struct {
	Name        string
	Description *string
	OwnerID     string
	TeamMembers []string
}

func NewProjectService(store repository.Store) *ProjectService {
	return &ProjectService{store: store}
}

// CreateProject stores a project after checking that the owner and every
// team member exist. Duplicate member ids are dropped.
func (s *ProjectService) CreateProject(ctx context.Context, in CreateProjectInput) (*models.Project, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, models.NewValidationError("Project name is required")
	}
	if strings.TrimSpace(in.OwnerID) == "" {
		return nil, models.NewValidationError("ownerId is required")
	}

	members := make([]string, 0, len(in.TeamMembers))
	for _, id := range in.TeamMembers {
		id = strings.TrimSpace(id)
		if id == "" {
			return nil, models.NewValidationError("teamMembers cannot contain empty ids")
		}
		if !slices.Contains(members, id) {
			members = append(members, id)
		}
	}

	project := &models.Project{
		Name:        name,
		Description: in.Description,
		OwnerID:     in.OwnerID,
		TeamMembers: members,
	}
	err := s.store.WithTx(ctx, func(tx repository.Tx) error {
		if err := requireUsers(ctx, tx, in.OwnerID); err != nil {
			return err
		}
		if err := requireUsers(ctx, tx, members...); err != nil {
			return err
		}
		return tx.CreateProject(ctx, project)
	})
	if err != nil {
		return nil, err
	}
	return project, nil
}

func (s *ProjectService) GetProject(ctx context.Context, id string) (*models.Project, error) {
	return s.store.GetProject(ctx, id)
}

func (s *ProjectService) ListProjects(ctx context.Context) ([]models.Project, error) {
	return s.store.ListProjects(ctx)
}

// ListProjectsByUser returns the projects userID owns or is a member of.
func (s *ProjectService) ListProjectsByUser(ctx context.Context, userID string) ([]models.Project, error) {
	if _, err := s.store.GetUser(ctx, userID); err != nil {
		return nil, err
	}
	return s.store.ListProjectsByUser(ctx, userID)
}

// AddMember puts userID on the project's team. Adding the owner or an
// existing member is a no-op.
func (s *ProjectService) AddMember(ctx context.Context, projectID, userID string) (*models.Project, error) {
	var updated *models.Project
	err := s.store.WithTx(ctx, func(tx repository.Tx) error {
		project, err := tx.GetProject(ctx, projectID)
		if err != nil {
			return err
		}
		if err := requireUsers(ctx, tx, userID); err != nil {
			return err
		}
		updated = project
		if project.Involves(userID) {
			return nil
		}
		project.TeamMembers = append(project.TeamMembers, userID)
		return tx.UpdateProject(ctx, project)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// RemoveMember takes userID off the team. The owner cannot be removed.
func (s *ProjectService) RemoveMember(ctx context.Context, projectID, userID string) (*models.Project, error) {
	var updated *models.Project
	err := s.store.WithTx(ctx, func(tx repository.Tx) error {
		project, err := tx.GetProject(ctx, projectID)
		if err != nil {
			return err
		}
		if project.OwnerID == userID {
			return models.NewValidationError("The project owner cannot be removed from the team")
		}
		updated = project
		idx := slices.Index(project.TeamMembers, userID)
		if idx < 0 {
			return nil
		}
		project.TeamMembers = slices.Delete(project.TeamMembers, idx, idx+1)
		return tx.UpdateProject(ctx, project)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// GetProgress aggregates task completion for a project from one consistent
// snapshot of its tasks and their assignees.
func (s *ProjectService) GetProgress(ctx context.Context, projectID string) (*models.ProjectProgress, error) {
	var snapshot models.ProjectProgress
	err := s.store.WithReadTx(ctx, func(tx repository.Reader) error {
		if _, err := tx.GetProject(ctx, projectID); err != nil {
			return err
		}
		tasks, err := tx.ListTasksByProject(ctx, projectID)
		if err != nil {
			return err
		}
		snapshot = progress.Compute(projectID, tasks, func(userID string) (string, bool) {
			u, err := tx.GetUser(ctx, userID)
			if err != nil {
				return "", false
			}
			return u.Username, true
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &snapshot, nil
}
