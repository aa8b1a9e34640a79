package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"collabnexus/internal/database"
	"collabnexus/internal/models"
	"collabnexus/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
)

func ptr[T any](v T) *T { return &v }

func assertValidationError(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected *models.AppError, got %T", err)
	assert.Equal(t, models.CodeValidation, appErr.Code)
}

func assertNotFound(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, models.IsNotFound(err), "expected NOT_FOUND, got %v", err)
}

// fixture bundles a fresh store with the services built on it. store is
// only set for memory-backed fixtures.
type fixture struct {
	store      *repository.MemoryStore
	users      *UserService
	projects   *ProjectService
	tasks      *TaskService
	milestones *MilestoneService
	reviews    *ReviewService
}

func newFixture() *fixture {
	store := repository.NewMemoryStore()
	f := newFixtureOn(store)
	f.store = store
	return f
}

// newSQLiteFixture runs the services on a GormStore over a file-backed
// SQLite database with a single connection.
func newSQLiteFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := database.Open(sqlite.Open(filepath.Join(t.TempDir(), "collabnexus.db")))
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.Migrate(db))
	return newFixtureOn(repository.NewGormStore(db, nil))
}

func newFixtureOn(store repository.Store) *fixture {
	return &fixture{
		users:      NewUserService(store),
		projects:   NewProjectService(store),
		tasks:      NewTaskService(store),
		milestones: NewMilestoneService(store),
		reviews:    NewReviewService(store),
	}
}

func (f *fixture) user(t *testing.T, name string, skills ...string) *models.User {
	t.Helper()
	u, err := f.users.CreateUser(context.Background(), CreateUserInput{
		Username:       name,
		Email:          name + "@example.com",
		ExternalAuthID: "ext-" + name,
		Skills:         skills,
	})
	require.NoError(t, err)
	return u
}

func (f *fixture) project(t *testing.T, owner *models.User, members ...string) *models.Project {
	t.Helper()
	p, err := f.projects.CreateProject(context.Background(), CreateProjectInput{
		Name:        "Board for " + owner.Username,
		OwnerID:     owner.ID,
		TeamMembers: members,
	})
	require.NoError(t, err)
	return p
}

func (f *fixture) task(t *testing.T, projectID string, assignee *string, reward int) *models.Task {
	t.Helper()
	task, err := f.tasks.CreateTask(context.Background(), CreateTaskInput{
		ProjectID:  projectID,
		Title:      "Ship it",
		AssignedTo: assignee,
		XPReward:   &reward,
	})
	require.NoError(t, err)
	return task
}

// failingStore hands WithTx callbacks a Tx whose UpdateUser fails.
type failingStore struct {
	repository.Store
	updateUserErr error
}

type failingTx struct {
	repository.Tx
	updateUserErr error
}

func (s failingStore) WithTx(ctx context.Context, fn func(tx repository.Tx) error) error {
	return s.Store.WithTx(ctx, func(tx repository.Tx) error {
		return fn(failingTx{Tx: tx, updateUserErr: s.updateUserErr})
	})
}

func (tx failingTx) UpdateUser(ctx context.Context, u *models.User) error {
	if tx.updateUserErr != nil {
		return tx.updateUserErr
	}
	return tx.Tx.UpdateUser(ctx, u)
}
