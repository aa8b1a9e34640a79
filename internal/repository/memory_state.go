package repository

import (
	"context"
	"strings"
	"time"

	"collabnexus/internal/models"
)

// memState holds the collections behind MemoryStore. It does no locking of
// its own; MemoryStore serializes access to it.
type memState struct {
	now   func() time.Time
	newID func() string

	users      *table[models.User]
	projects   *table[models.Project]
	tasks      *table[models.Task]
	milestones *table[models.Milestone]
	reviews    *table[models.Review]

	// undo is only recorded while a WithTx callback runs.
	undo []func()
	inTx bool
}

var _ Tx = (*memState)(nil)

func (s *memState) record(fn func()) {
	if s.inTx {
		s.undo = append(s.undo, fn)
	}
}

func (s *memState) rollback() {
	for i := len(s.undo) - 1; i >= 0; i-- {
		s.undo[i]()
	}
}

func insertRow[T any](s *memState, t *table[T], id string, row *T) {
	t.insert(id, row)
	s.record(func() { t.remove(id) })
}

func replaceRow[T any](s *memState, t *table[T], id string, row *T) {
	prev, _ := t.get(id)
	t.replace(id, row)
	s.record(func() { t.replace(id, prev) })
}

func (s *memState) stamp() (string, time.Time) {
	return s.newID(), s.now()
}

// checkUserUnique rejects a username, email or external auth id that
// another user already holds. Username and email compare case-insensitively.
func (s *memState) checkUserUnique(u *models.User) error {
	var err error
	s.users.each(func(other *models.User) bool {
		if other.ID == u.ID {
			return true
		}
		switch {
		case strings.EqualFold(other.Username, u.Username):
			err = models.NewConflictError("Username already taken")
		case strings.EqualFold(other.Email, u.Email):
			err = models.NewConflictError("Email already registered")
		case other.ExternalAuthID == u.ExternalAuthID:
			err = models.NewConflictError("External auth id already linked to a user")
		}
		return err == nil
	})
	return err
}

// Users

func (s *memState) CreateUser(_ context.Context, user *models.User) error {
	user.ID = ""
	if err := s.checkUserUnique(user); err != nil {
		return err
	}
	user.ID, user.CreatedAt = s.stamp()
	insertRow(s, s.users, user.ID, user.Clone())
	return nil
}

func (s *memState) GetUser(_ context.Context, id string) (*models.User, error) {
	u, ok := s.users.get(id)
	if !ok {
		return nil, models.NewNotFoundError("User", id)
	}
	return u.Clone(), nil
}

func (s *memState) GetUserByExternalAuthID(_ context.Context, externalAuthID string) (*models.User, error) {
	var found *models.User
	s.users.each(func(u *models.User) bool {
		if u.ExternalAuthID == externalAuthID {
			found = u
			return false
		}
		return true
	})
	if found == nil {
		return nil, models.NewNotFoundError("User", externalAuthID)
	}
	return found.Clone(), nil
}

func (s *memState) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	var found *models.User
	s.users.each(func(u *models.User) bool {
		if strings.EqualFold(u.Username, username) {
			found = u
			return false
		}
		return true
	})
	if found == nil {
		return nil, models.NewNotFoundError("User", username)
	}
	return found.Clone(), nil
}

func (s *memState) ListUsers(context.Context) ([]models.User, error) {
	out := make([]models.User, 0, s.users.size())
	s.users.each(func(u *models.User) bool {
		out = append(out, *u.Clone())
		return true
	})
	return out, nil
}

func (s *memState) UpdateUser(_ context.Context, user *models.User) error {
	cur, ok := s.users.get(user.ID)
	if !ok {
		return models.NewNotFoundError("User", user.ID)
	}
	user.CreatedAt = cur.CreatedAt
	if err := s.checkUserUnique(user); err != nil {
		return err
	}
	replaceRow(s, s.users, user.ID, user.Clone())
	return nil
}

// Projects

func (s *memState) CreateProject(_ context.Context, project *models.Project) error {
	project.ID, project.CreatedAt = s.stamp()
	insertRow(s, s.projects, project.ID, project.Clone())
	return nil
}

func (s *memState) GetProject(_ context.Context, id string) (*models.Project, error) {
	p, ok := s.projects.get(id)
	if !ok {
		return nil, models.NewNotFoundError("Project", id)
	}
	return p.Clone(), nil
}

func (s *memState) ListProjects(context.Context) ([]models.Project, error) {
	return s.filterProjects(func(*models.Project) bool { return true }), nil
}

func (s *memState) ListProjectsByUser(_ context.Context, userID string) ([]models.Project, error) {
	return s.filterProjects(func(p *models.Project) bool { return p.Involves(userID) }), nil
}

func (s *memState) filterProjects(keep func(*models.Project) bool) []models.Project {
	out := make([]models.Project, 0)
	s.projects.each(func(p *models.Project) bool {
		if keep(p) {
			out = append(out, *p.Clone())
		}
		return true
	})
	return out
}

func (s *memState) UpdateProject(_ context.Context, project *models.Project) error {
	cur, ok := s.projects.get(project.ID)
	if !ok {
		return models.NewNotFoundError("Project", project.ID)
	}
	project.CreatedAt = cur.CreatedAt
	replaceRow(s, s.projects, project.ID, project.Clone())
	return nil
}

// Tasks

func (s *memState) CreateTask(_ context.Context, task *models.Task) error {
	task.ID, task.CreatedAt = s.stamp()
	insertRow(s, s.tasks, task.ID, task.Clone())
	return nil
}

func (s *memState) GetTask(_ context.Context, id string) (*models.Task, error) {
	t, ok := s.tasks.get(id)
	if !ok {
		return nil, models.NewNotFoundError("Task", id)
	}
	return t.Clone(), nil
}

func (s *memState) ListTasksByProject(_ context.Context, projectID string) ([]models.Task, error) {
	return s.filterTasks(func(t *models.Task) bool { return t.ProjectID == projectID }), nil
}

func (s *memState) ListTasksByAssignee(_ context.Context, userID string) ([]models.Task, error) {
	return s.filterTasks(func(t *models.Task) bool {
		return t.AssignedTo != nil && *t.AssignedTo == userID
	}), nil
}

func (s *memState) filterTasks(keep func(*models.Task) bool) []models.Task {
	out := make([]models.Task, 0)
	s.tasks.each(func(t *models.Task) bool {
		if keep(t) {
			out = append(out, *t.Clone())
		}
		return true
	})
	return out
}

func (s *memState) UpdateTask(_ context.Context, task *models.Task) error {
	cur, ok := s.tasks.get(task.ID)
	if !ok {
		return models.NewNotFoundError("Task", task.ID)
	}
	task.CreatedAt = cur.CreatedAt
	replaceRow(s, s.tasks, task.ID, task.Clone())
	return nil
}

func (s *memState) DeleteTask(_ context.Context, id string) error {
	row, pos, ok := s.tasks.remove(id)
	if ok {
		s.record(func() { s.tasks.restore(id, row, pos) })
	}
	return nil
}

// Milestones

func (s *memState) CreateMilestone(_ context.Context, milestone *models.Milestone) error {
	milestone.ID, milestone.CreatedAt = s.stamp()
	insertRow(s, s.milestones, milestone.ID, milestone.Clone())
	return nil
}

func (s *memState) GetMilestone(_ context.Context, id string) (*models.Milestone, error) {
	m, ok := s.milestones.get(id)
	if !ok {
		return nil, models.NewNotFoundError("Milestone", id)
	}
	return m.Clone(), nil
}

func (s *memState) ListMilestonesByProject(_ context.Context, projectID string) ([]models.Milestone, error) {
	out := make([]models.Milestone, 0)
	s.milestones.each(func(m *models.Milestone) bool {
		if m.ProjectID == projectID {
			out = append(out, *m.Clone())
		}
		return true
	})
	return out, nil
}

func (s *memState) UpdateMilestone(_ context.Context, milestone *models.Milestone) error {
	cur, ok := s.milestones.get(milestone.ID)
	if !ok {
		return models.NewNotFoundError("Milestone", milestone.ID)
	}
	milestone.CreatedAt = cur.CreatedAt
	replaceRow(s, s.milestones, milestone.ID, milestone.Clone())
	return nil
}

// Reviews

func (s *memState) CreateReview(_ context.Context, review *models.Review) error {
	review.ID, review.CreatedAt = s.stamp()
	insertRow(s, s.reviews, review.ID, review.Clone())
	return nil
}

func (s *memState) ListReviewsByProject(_ context.Context, projectID string) ([]models.Review, error) {
	return s.filterReviews(func(r *models.Review) bool { return r.ProjectID == projectID }), nil
}

func (s *memState) ListReviewsByReviewee(_ context.Context, userID string) ([]models.Review, error) {
	return s.filterReviews(func(r *models.Review) bool { return r.RevieweeID == userID }), nil
}

func (s *memState) filterReviews(keep func(*models.Review) bool) []models.Review {
	out := make([]models.Review, 0)
	s.reviews.each(func(r *models.Review) bool {
		if keep(r) {
			out = append(out, *r.Clone())
		}
		return true
	})
	return out
}
