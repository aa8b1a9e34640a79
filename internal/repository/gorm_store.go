package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync"
	"time"

	"collabnexus/internal/cache"
	"collabnexus/internal/models"
	"collabnexus/internal/observability"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore is the Store backed by a SQL database through GORM. Users and
// projects are read through the Redis cache outside of transactions.
type GormStore struct {
	db      *gorm.DB
	cache   *cache.Cache
	metrics *observability.StoreMetrics
	clock   *monotonicClock

	// tx is set on the copy handed to WithTx callbacks.
	tx *txState
}

type txState struct {
	readOnly bool
	users    []string
	projects []string
}

// NewGormStore returns a Store on db. c may be nil.
func NewGormStore(db *gorm.DB, c *cache.Cache) *GormStore {
	return &GormStore{
		db:      db,
		cache:   c,
		metrics: observability.NewStoreMetrics(db.Dialector.Name()),
		clock:   &monotonicClock{now: time.Now},
	}
}

var _ Store = (*GormStore)(nil)

// monotonicClock hands out strictly increasing microsecond timestamps so
// ORDER BY created_at reproduces insertion order.
type monotonicClock struct {
	mu   sync.Mutex
	now  func() time.Time
	last time.Time
}

func (c *monotonicClock) next() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.now().UTC().Truncate(time.Microsecond)
	if !t.After(c.last) {
		t = c.last.Add(time.Microsecond)
	}
	c.last = t
	return t
}

// WithTx runs fn in a database transaction. Cached users and projects written
// inside fn are invalidated once the transaction commits.
func (s *GormStore) WithTx(ctx context.Context, fn func(tx Tx) error) error {
	state := &txState{}
	if err := s.transaction(ctx, state, nil, func(txStore *GormStore) error { return fn(txStore) }); err != nil {
		return err
	}
	s.cache.InvalidateUser(ctx, state.users...)
	for _, id := range state.projects {
		s.cache.InvalidateProject(ctx, id)
	}
	return nil
}

// WithReadTx runs fn in a read-only transaction. Rows are read without
// FOR UPDATE; on postgres the transaction is REPEATABLE READ so every read in
// fn sees the same snapshot.
func (s *GormStore) WithReadTx(ctx context.Context, fn func(r Reader) error) error {
	var opts *sql.TxOptions
	if s.db.Dialector.Name() == "postgres" {
		opts = &sql.TxOptions{ReadOnly: true, Isolation: sql.LevelRepeatableRead}
	}
	return s.transaction(ctx, &txState{readOnly: true}, opts, func(txStore *GormStore) error { return fn(txStore) })
}

func (s *GormStore) transaction(ctx context.Context, state *txState, opts *sql.TxOptions, fn func(txStore *GormStore) error) error {
	run := func(db *gorm.DB) error {
		txStore := *s
		txStore.db = db
		txStore.tx = state
		return fn(&txStore)
	}
	var err error
	if opts != nil {
		err = s.db.WithContext(ctx).Transaction(run, opts)
	} else {
		err = s.db.WithContext(ctx).Transaction(run)
	}
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			return err
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *GormStore) inTx() bool { return s.tx != nil }

// observe opens a span and a latency timer for one operation; the returned
// func closes both.
func (s *GormStore) observe(ctx context.Context, op, entity string) (context.Context, func(error)) {
	done := s.metrics.TrackQuery(op, entity)
	ctx, span := observability.StartStoreSpan(ctx, s.db.Dialector.Name(), op, entity)
	return ctx, func(err error) {
		done()
		observability.EndSpan(span, err)
	}
}

// locked adds SELECT ... FOR UPDATE inside postgres write transactions so a
// read-modify-write on the row is serialized. SQLite serializes writers on
// its own.
func (s *GormStore) locked(db *gorm.DB) *gorm.DB {
	if s.inTx() && !s.tx.readOnly && s.db.Dialector.Name() == "postgres" {
		return db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return db
}

func (s *GormStore) userChanged(ctx context.Context, id string) {
	if s.inTx() {
		s.tx.users = append(s.tx.users, id)
		return
	}
	s.cache.InvalidateUser(ctx, id)
}

func (s *GormStore) projectChanged(ctx context.Context, id string) {
	if s.inTx() {
		s.tx.projects = append(s.tx.projects, id)
		return
	}
	s.cache.InvalidateProject(ctx, id)
}

func (s *GormStore) stamp() (string, time.Time) {
	return uuid.NewString(), s.clock.next()
}

// isUniqueConstraintError checks if a DB error is a unique constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key")
}

func notFoundOr(err error, resource, id string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError(resource, id)
	}
	return models.NewInternalError(err)
}

// Users

func (s *GormStore) checkUserUnique(ctx context.Context, u *models.User) error {
	var existing []models.User
	q := s.db.WithContext(ctx).
		Where("LOWER(username) = LOWER(?) OR LOWER(email) = LOWER(?) OR firebase_uid = ?",
			u.Username, u.Email, u.ExternalAuthID)
	if u.ID != "" {
		q = q.Where("id <> ?", u.ID)
	}
	if err := q.Find(&existing).Error; err != nil {
		return models.NewInternalError(err)
	}
	for _, other := range existing {
		switch {
		case strings.EqualFold(other.Username, u.Username):
			return models.NewConflictError("Username already taken")
		case strings.EqualFold(other.Email, u.Email):
			return models.NewConflictError("Email already registered")
		default:
			return models.NewConflictError("External auth id already linked to a user")
		}
	}
	return nil
}

func (s *GormStore) CreateUser(ctx context.Context, user *models.User) (err error) {
	ctx, done := s.observe(ctx, "create", "users")
	defer func() { done(err) }()

	user.ID = ""
	if err := s.checkUserUnique(ctx, user); err != nil {
		return err
	}
	user.ID, user.CreatedAt = s.stamp()
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("User already exists")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (s *GormStore) GetUser(ctx context.Context, id string) (_ *models.User, err error) {
	ctx, done := s.observe(ctx, "get", "users")
	defer func() { done(err) }()

	var user models.User
	fetch := func() error {
		if err := s.locked(s.db.WithContext(ctx)).First(&user, "id = ?", id).Error; err != nil {
			return notFoundOr(err, "User", id)
		}
		return nil
	}

	if s.inTx() {
		err = fetch()
	} else {
		err = s.cache.Aside(ctx, cache.UserKey(id), &user, cache.UserTTL, fetch)
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *GormStore) GetUserByExternalAuthID(ctx context.Context, externalAuthID string) (_ *models.User, err error) {
	ctx, done := s.observe(ctx, "get_by_external_auth_id", "users")
	defer func() { done(err) }()

	var user models.User
	if err := s.db.WithContext(ctx).Where("firebase_uid = ?", externalAuthID).First(&user).Error; err != nil {
		return nil, notFoundOr(err, "User", externalAuthID)
	}
	return &user, nil
}

func (s *GormStore) GetUserByUsername(ctx context.Context, username string) (_ *models.User, err error) {
	ctx, done := s.observe(ctx, "get_by_username", "users")
	defer func() { done(err) }()

	var user models.User
	if err := s.db.WithContext(ctx).Where("LOWER(username) = LOWER(?)", username).First(&user).Error; err != nil {
		return nil, notFoundOr(err, "User", username)
	}
	return &user, nil
}

func (s *GormStore) ListUsers(ctx context.Context) (_ []models.User, err error) {
	ctx, done := s.observe(ctx, "list", "users")
	defer func() { done(err) }()

	users := make([]models.User, 0)
	if err := s.db.WithContext(ctx).Order("created_at ASC").Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

func (s *GormStore) UpdateUser(ctx context.Context, user *models.User) (err error) {
	ctx, done := s.observe(ctx, "update", "users")
	defer func() { done(err) }()

	var current models.User
	if err := s.db.WithContext(ctx).Select("id", "created_at").First(&current, "id = ?", user.ID).Error; err != nil {
		return notFoundOr(err, "User", user.ID)
	}
	if err := s.checkUserUnique(ctx, user); err != nil {
		return err
	}
	user.CreatedAt = current.CreatedAt
	if err := s.db.WithContext(ctx).Save(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("User already exists")
		}
		return models.NewInternalError(err)
	}
	s.userChanged(ctx, user.ID)
	return nil
}

// Projects

func (s *GormStore) CreateProject(ctx context.Context, project *models.Project) (err error) {
	ctx, done := s.observe(ctx, "create", "projects")
	defer func() { done(err) }()

	project.ID, project.CreatedAt = s.stamp()
	if err := s.db.WithContext(ctx).Create(project).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (s *GormStore) GetProject(ctx context.Context, id string) (_ *models.Project, err error) {
	ctx, done := s.observe(ctx, "get", "projects")
	defer func() { done(err) }()

	var project models.Project
	fetch := func() error {
		if err := s.locked(s.db.WithContext(ctx)).First(&project, "id = ?", id).Error; err != nil {
			return notFoundOr(err, "Project", id)
		}
		return nil
	}

	if s.inTx() {
		err = fetch()
	} else {
		err = s.cache.Aside(ctx, cache.ProjectKey(id), &project, cache.ProjectTTL, fetch)
	}
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func (s *GormStore) ListProjects(ctx context.Context) (_ []models.Project, err error) {
	ctx, done := s.observe(ctx, "list", "projects")
	defer func() { done(err) }()

	projects := make([]models.Project, 0)
	if err := s.db.WithContext(ctx).Order("created_at ASC").Find(&projects).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return projects, nil
}

// ListProjectsByUser filters membership in Go: team members are stored as a
// JSON column and neither dialect indexes into it portably.
func (s *GormStore) ListProjectsByUser(ctx context.Context, userID string) ([]models.Project, error) {
	all, err := s.ListProjects(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.Project, 0)
	for _, p := range all {
		if p.Involves(userID) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *GormStore) UpdateProject(ctx context.Context, project *models.Project) (err error) {
	ctx, done := s.observe(ctx, "update", "projects")
	defer func() { done(err) }()

	var current models.Project
	if err := s.db.WithContext(ctx).Select("id", "created_at").First(&current, "id = ?", project.ID).Error; err != nil {
		return notFoundOr(err, "Project", project.ID)
	}
	project.CreatedAt = current.CreatedAt
	if err := s.db.WithContext(ctx).Save(project).Error; err != nil {
		return models.NewInternalError(err)
	}
	s.projectChanged(ctx, project.ID)
	return nil
}

// Tasks

func (s *GormStore) CreateTask(ctx context.Context, task *models.Task) (err error) {
	ctx, done := s.observe(ctx, "create", "tasks")
	defer func() { done(err) }()

	task.ID, task.CreatedAt = s.stamp()
	if err := s.db.WithContext(ctx).Create(task).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (s *GormStore) GetTask(ctx context.Context, id string) (_ *models.Task, err error) {
	ctx, done := s.observe(ctx, "get", "tasks")
	defer func() { done(err) }()

	var task models.Task
	if err := s.locked(s.db.WithContext(ctx)).First(&task, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, "Task", id)
	}
	return &task, nil
}

func (s *GormStore) ListTasksByProject(ctx context.Context, projectID string) (_ []models.Task, err error) {
	ctx, done := s.observe(ctx, "list_by_project", "tasks")
	defer func() { done(err) }()

	tasks := make([]models.Task, 0)
	if err := s.db.WithContext(ctx).Where("project_id = ?", projectID).Order("created_at ASC").Find(&tasks).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return tasks, nil
}

func (s *GormStore) ListTasksByAssignee(ctx context.Context, userID string) (_ []models.Task, err error) {
	ctx, done := s.observe(ctx, "list_by_assignee", "tasks")
	defer func() { done(err) }()

	tasks := make([]models.Task, 0)
	if err := s.db.WithContext(ctx).Where("assigned_to = ?", userID).Order("created_at ASC").Find(&tasks).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return tasks, nil
}

func (s *GormStore) UpdateTask(ctx context.Context, task *models.Task) (err error) {
	ctx, done := s.observe(ctx, "update", "tasks")
	defer func() { done(err) }()

	var current models.Task
	if err := s.db.WithContext(ctx).Select("id", "created_at").First(&current, "id = ?", task.ID).Error; err != nil {
		return notFoundOr(err, "Task", task.ID)
	}
	task.CreatedAt = current.CreatedAt
	if err := s.db.WithContext(ctx).Save(task).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (s *GormStore) DeleteTask(ctx context.Context, id string) (err error) {
	ctx, done := s.observe(ctx, "delete", "tasks")
	defer func() { done(err) }()

	if err := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Task{}).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// Milestones

func (s *GormStore) CreateMilestone(ctx context.Context, milestone *models.Milestone) (err error) {
	ctx, done := s.observe(ctx, "create", "milestones")
	defer func() { done(err) }()

	milestone.ID, milestone.CreatedAt = s.stamp()
	if err := s.db.WithContext(ctx).Create(milestone).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (s *GormStore) GetMilestone(ctx context.Context, id string) (_ *models.Milestone, err error) {
	ctx, done := s.observe(ctx, "get", "milestones")
	defer func() { done(err) }()

	var milestone models.Milestone
	if err := s.locked(s.db.WithContext(ctx)).First(&milestone, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, "Milestone", id)
	}
	return &milestone, nil
}

func (s *GormStore) ListMilestonesByProject(ctx context.Context, projectID string) (_ []models.Milestone, err error) {
	ctx, done := s.observe(ctx, "list_by_project", "milestones")
	defer func() { done(err) }()

	milestones := make([]models.Milestone, 0)
	if err := s.db.WithContext(ctx).Where("project_id = ?", projectID).Order("created_at ASC").Find(&milestones).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return milestones, nil
}

func (s *GormStore) UpdateMilestone(ctx context.Context, milestone *models.Milestone) (err error) {
	ctx, done := s.observe(ctx, "update", "milestones")
	defer func() { done(err) }()

	var current models.Milestone
	if err := s.db.WithContext(ctx).Select("id", "created_at").First(&current, "id = ?", milestone.ID).Error; err != nil {
		return notFoundOr(err, "Milestone", milestone.ID)
	}
	milestone.CreatedAt = current.CreatedAt
	if err := s.db.WithContext(ctx).Save(milestone).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// Reviews

func (s *GormStore) CreateReview(ctx context.Context, review *models.Review) (err error) {
	ctx, done := s.observe(ctx, "create", "reviews")
	defer func() { done(err) }()

	review.ID, review.CreatedAt = s.stamp()
	if err := s.db.WithContext(ctx).Create(review).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (s *GormStore) ListReviewsByProject(ctx context.Context, projectID string) (_ []models.Review, err error) {
	ctx, done := s.observe(ctx, "list_by_project", "reviews")
	defer func() { done(err) }()

	reviews := make([]models.Review, 0)
	if err := s.db.WithContext(ctx).Where("project_id = ?", projectID).Order("created_at ASC").Find(&reviews).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return reviews, nil
}

func (s *GormStore) ListReviewsByReviewee(ctx context.Context, userID string) (_ []models.Review, err error) {
	ctx, done := s.observe(ctx, "list_by_reviewee", "reviews")
	defer func() { done(err) }()

	reviews := make([]models.Review, 0)
	if err := s.db.WithContext(ctx).Where("reviewee_id = ?", userID).Order("created_at ASC").Find(&reviews).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return reviews, nil
}
