// Package repository implements the entity store for users, projects,
// tasks, milestones and reviews.
package repository

import (
	"context"

	"collabnexus/internal/models"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByExternalAuthID(ctx context.Context, externalAuthID string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
}

// ProjectRepository defines persistence operations for projects.
type ProjectRepository interface {
	CreateProject(ctx context.Context, project *models.Project) error
	GetProject(ctx context.Context, id string) (*models.Project, error)
	ListProjects(ctx context.Context) ([]models.Project, error)
	ListProjectsByUser(ctx context.Context, userID string) ([]models.Project, error)
	UpdateProject(ctx context.Context, project *models.Project) error
}

// TaskRepository defines persistence operations for tasks.
type TaskRepository interface {
	CreateTask(ctx context.Context, task *models.Task) error
	GetTask(ctx context.Context, id string) (*models.Task, error)
	ListTasksByProject(ctx context.Context, projectID string) ([]models.Task, error)
	ListTasksByAssignee(ctx context.Context, userID string) ([]models.Task, error)
	UpdateTask(ctx context.Context, task *models.Task) error
	// DeleteTask removes a task. Deleting an unknown id is not an error.
	DeleteTask(ctx context.Context, id string) error
}

// MilestoneRepository defines persistence operations for milestones.
type MilestoneRepository interface {
	CreateMilestone(ctx context.Context, milestone *models.Milestone) error
	GetMilestone(ctx context.Context, id string) (*models.Milestone, error)
	ListMilestonesByProject(ctx context.Context, projectID string) ([]models.Milestone, error)
	UpdateMilestone(ctx context.Context, milestone *models.Milestone) error
}

// ReviewRepository defines persistence operations for reviews. Reviews are
// immutable once created.
type ReviewRepository interface {
	CreateReview(ctx context.Context, review *models.Review) error
	ListReviewsByProject(ctx context.Context, projectID string) ([]models.Review, error)
	ListReviewsByReviewee(ctx context.Context, userID string) ([]models.Review, error)
}

// Tx is the full set of entity operations. It is what WithTx hands to its
// callback and what Store exposes outside of transactions.
type Tx interface {
	UserRepository
	ProjectRepository
	TaskRepository
	MilestoneRepository
	ReviewRepository
}

// Reader is the read-only subset of Tx handed to WithReadTx callbacks.
type Reader interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByExternalAuthID(ctx context.Context, externalAuthID string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	GetProject(ctx context.Context, id string) (*models.Project, error)
	ListProjects(ctx context.Context) ([]models.Project, error)
	ListProjectsByUser(ctx context.Context, userID string) ([]models.Project, error)
	GetTask(ctx context.Context, id string) (*models.Task, error)
	ListTasksByProject(ctx context.Context, projectID string) ([]models.Task, error)
	ListTasksByAssignee(ctx context.Context, userID string) ([]models.Task, error)
	GetMilestone(ctx context.Context, id string) (*models.Milestone, error)
	ListMilestonesByProject(ctx context.Context, projectID string) ([]models.Milestone, error)
	ListReviewsByProject(ctx context.Context, projectID string) ([]models.Review, error)
	ListReviewsByReviewee(ctx context.Context, userID string) ([]models.Review, error)
}

var _ Reader = Tx(nil)

// Store is the entity store.
//
// Create* assigns the id and creation time and fills them into the passed
// record. Get* and Update* return a NOT_FOUND AppError for unknown ids.
// List* preserve insertion order. Records handed out are copies.
type Store interface {
	Tx
	// WithTx runs fn atomically: no other reader or writer observes a
	// partial result, and every write made through tx is discarded when fn
	// returns an error.
	WithTx(ctx context.Context, fn func(tx Tx) error) error
	// WithReadTx gives fn a consistent read-only snapshot. It takes no
	// write locks, so it runs alongside other readers.
	WithReadTx(ctx context.Context, fn func(r Reader) error) error
	Ping(ctx context.Context) error
	Close() error
}
