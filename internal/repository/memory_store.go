package repository

import (
	"context"
	"sync"
	"time"

	"collabnexus/internal/models"

	"github.com/google/uuid"
)

// MemoryStore is the process-local entity store. A single RWMutex guards all
// collections: reads run concurrently, writes and WithTx callbacks run alone.
type MemoryStore struct {
	mu sync.RWMutex
	st *memState
}

// MemoryOption configures a MemoryStore.
type MemoryOption func(*memState)

// WithClock overrides the creation-time source.
func WithClock(now func() time.Time) MemoryOption {
	return func(s *memState) { s.now = now }
}

// WithIDGenerator overrides the id source.
func WithIDGenerator(next func() string) MemoryOption {
	return func(s *memState) { s.newID = next }
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	st := &memState{
		now:        func() time.Time { return time.Now().UTC() },
		newID:      uuid.NewString,
		users:      newTable[models.User](),
		projects:   newTable[models.Project](),
		tasks:      newTable[models.Task](),
		milestones: newTable[models.Milestone](),
		reviews:    newTable[models.Review](),
	}
	for _, opt := range opts {
		opt(st)
	}
	return &MemoryStore{st: st}
}

var _ Store = (*MemoryStore)(nil)

// WithTx holds the writer lock for the whole of fn and undoes every write
// fn made when it returns an error or panics. fn must only use tx; calling
// back into the MemoryStore from fn deadlocks.
func (s *MemoryStore) WithTx(_ context.Context, fn func(tx Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.st.undo = make([]func(), 0, 4)
	s.st.inTx = true
	committed := false
	defer func() {
		if !committed {
			s.st.rollback()
		}
		s.st.undo = nil
		s.st.inTx = false
	}()

	if err := fn(s.st); err != nil {
		return err
	}
	committed = true
	return nil
}

// WithReadTx holds the reader lock for the whole of fn. Like WithTx, fn must
// only use r.
func (s *MemoryStore) WithReadTx(_ context.Context, fn func(r Reader) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.st)
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }

// Counts reports the number of stored records per collection.
func (s *MemoryStore) Counts() map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return map[string]int{
		"users":      s.st.users.size(),
		"projects":   s.st.projects.size(),
		"tasks":      s.st.tasks.size(),
		"milestones": s.st.milestones.size(),
		"reviews":    s.st.reviews.size(),
	}
}

func (s *MemoryStore) read(fn func(st *memState) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.st)
}

func (s *MemoryStore) write(fn func(st *memState) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.st)
}

// Users

func (s *MemoryStore) CreateUser(ctx context.Context, user *models.User) error {
	return s.write(func(st *memState) error { return st.CreateUser(ctx, user) })
}

func (s *MemoryStore) GetUser(ctx context.Context, id string) (u *models.User, err error) {
	err = s.read(func(st *memState) error { u, err = st.GetUser(ctx, id); return err })
	return u, err
}

func (s *MemoryStore) GetUserByExternalAuthID(ctx context.Context, externalAuthID string) (u *models.User, err error) {
	err = s.read(func(st *memState) error { u, err = st.GetUserByExternalAuthID(ctx, externalAuthID); return err })
	return u, err
}

func (s *MemoryStore) GetUserByUsername(ctx context.Context, username string) (u *models.User, err error) {
	err = s.read(func(st *memState) error { u, err = st.GetUserByUsername(ctx, username); return err })
	return u, err
}

func (s *MemoryStore) ListUsers(ctx context.Context) (out []models.User, err error) {
	err = s.read(func(st *memState) error { out, err = st.ListUsers(ctx); return err })
	return out, err
}

func (s *MemoryStore) UpdateUser(ctx context.Context, user *models.User) error {
	return s.write(func(st *memState) error { return st.UpdateUser(ctx, user) })
}

// Projects

func (s *MemoryStore) CreateProject(ctx context.Context, project *models.Project) error {
	return s.write(func(st *memState) error { return st.CreateProject(ctx, project) })
}

func (s *MemoryStore) GetProject(ctx context.Context, id string) (p *models.Project, err error) {
	err = s.read(func(st *memState) error { p, err = st.GetProject(ctx, id); return err })
	return p, err
}

func (s *MemoryStore) ListProjects(ctx context.Context) (out []models.Project, err error) {
	err = s.read(func(st *memState) error { out, err = st.ListProjects(ctx); return err })
	return out, err
}

func (s *MemoryStore) ListProjectsByUser(ctx context.Context, userID string) (out []models.Project, err error) {
	err = s.read(func(st *memState) error { out, err = st.ListProjectsByUser(ctx, userID); return err })
	return out, err
}

func (s *MemoryStore) UpdateProject(ctx context.Context, project *models.Project) error {
	return s.write(func(st *memState) error { return st.UpdateProject(ctx, project) })
}

// Tasks

func (s *MemoryStore) CreateTask(ctx context.Context, task *models.Task) error {
	return s.write(func(st *memState) error { return st.CreateTask(ctx, task) })
}

func (s *MemoryStore) GetTask(ctx context.Context, id string) (t *models.Task, err error) {
	err = s.read(func(st *memState) error { t, err = st.GetTask(ctx, id); return err })
	return t, err
}

func (s *MemoryStore) ListTasksByProject(ctx context.Context, projectID string) (out []models.Task, err error) {
	err = s.read(func(st *memState) error { out, err = st.ListTasksByProject(ctx, projectID); return err })
	return out, err
}

func (s *MemoryStore) ListTasksByAssignee(ctx context.Context, userID string) (out []models.Task, err error) {
	err = s.read(func(st *memState) error { out, err = st.ListTasksByAssignee(ctx, userID); return err })
	return out, err
}

func (s *MemoryStore) UpdateTask(ctx context.Context, task *models.Task) error {
	return s.write(func(st *memState) error { return st.UpdateTask(ctx, task) })
}

func (s *MemoryStore) DeleteTask(ctx context.Context, id string) error {
	return s.write(func(st *memState) error { return st.DeleteTask(ctx, id) })
}

// Milestones

func (s *MemoryStore) CreateMilestone(ctx context.Context, milestone *models.Milestone) error {
	return s.write(func(st *memState) error { return st.CreateMilestone(ctx, milestone) })
}

func (s *MemoryStore) GetMilestone(ctx context.Context, id string) (m *models.Milestone, err error) {
	err = s.read(func(st *memState) error { m, err = st.GetMilestone(ctx, id); return err })
	return m, err
}

func (s *MemoryStore) ListMilestonesByProject(ctx context.Context, projectID string) (out []models.Milestone, err error) {
	err = s.read(func(st *memState) error { out, err = st.ListMilestonesByProject(ctx, projectID); return err })
	return out, err
}

func (s *MemoryStore) UpdateMilestone(ctx context.Context, milestone *models.Milestone) error {
	return s.write(func(st *memState) error { return st.UpdateMilestone(ctx, milestone) })
}

// Reviews

func (s *MemoryStore) CreateReview(ctx context.Context, review *models.Review) error {
	return s.write(func(st *memState) error { return st.CreateReview(ctx, review) })
}

func (s *MemoryStore) ListReviewsByProject(ctx context.Context, projectID string) (out []models.Review, err error) {
	err = s.read(func(st *memState) error { out, err = st.ListReviewsByProject(ctx, projectID); return err })
	return out, err
}

func (s *MemoryStore) ListReviewsByReviewee(ctx context.Context, userID string) (out []models.Review, err error) {
	err = s.read(func(st *memState) error { out, err = st.ListReviewsByReviewee(ctx, userID); return err })
	return out, err
}
