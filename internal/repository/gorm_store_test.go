package repository

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"collabnexus/internal/cache"
	"collabnexus/internal/database"
	"collabnexus/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

func setupSQLiteStore(t *testing.T, c *cache.Cache) *GormStore {
	t.Helper()
	db, err := database.Open(sqlite.Open(":memory:"))
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { _ = sqlDB.Close() })
	return NewGormStore(db, c)
}

func TestGormStore_GetUser_Postgres(t *testing.T) {
	db, mock := setupMockDB(t)
	store := NewGormStore(db, nil)
	ctx := context.Background()

	tests := []struct {
		name         string
		userID       string
		mockBehavior func()
		expectedCode string
	}{
		{
			name:   "Success",
			userID: "u-1",
			mockBehavior: func() {
				rows := sqlmock.NewRows([]string{"id", "username", "email", "firebase_uid", "xp", "level"}).
					AddRow("u-1", "alice", "alice@example.com", "ext-1", 120, 2)
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE id = $1 ORDER BY "users"."id" LIMIT $2`)).
					WithArgs("u-1", 1).
					WillReturnRows(rows)
			},
		},
		{
			name:   "Not Found",
			userID: "u-99",
			mockBehavior: func() {
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE id = $1 ORDER BY "users"."id" LIMIT $2`)).
					WithArgs("u-99", 1).
					WillReturnError(gorm.ErrRecordNotFound)
			},
			expectedCode: models.CodeNotFound,
		},
		{
			name:   "Database Error",
			userID: "u-2",
			mockBehavior: func() {
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE id = $1`)).
					WithArgs("u-2", 1).
					WillReturnError(errors.New("connection timeout"))
			},
			expectedCode: models.CodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockBehavior()
			user, err := store.GetUser(ctx, tt.userID)

			if tt.expectedCode != "" {
				assert.Equal(t, tt.expectedCode, models.ErrorCode(err))
				assert.Nil(t, user)
			} else if assert.NoError(t, err) {
				assert.Equal(t, "alice", user.Username)
				assert.Equal(t, "ext-1", user.ExternalAuthID)
				assert.Equal(t, 2, user.Level)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestGormStore_DeleteTask_Postgres(t *testing.T) {
	db, mock := setupMockDB(t)
	store := NewGormStore(db, nil)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "tasks" WHERE id = $1`)).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	assert.NoError(t, store.DeleteTask(context.Background(), "missing"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_TaskLocking_Postgres(t *testing.T) {
	const selectTask = `SELECT * FROM "tasks" WHERE id = $1 ORDER BY "tasks"."id" LIMIT $2`
	taskRows := func() *sqlmock.Rows {
		return sqlmock.NewRows([]string{"id", "project_id", "title", "status", "priority", "xp_reward"}).
			AddRow("t-1", "p-1", "Ship it", "in_progress", "medium", 40)
	}

	tests := []struct {
		name  string
		query string
		run   func(ctx context.Context, store *GormStore) error
	}{
		{
			name:  "write transaction locks the row",
			query: regexp.QuoteMeta(selectTask + " FOR UPDATE"),
			run: func(ctx context.Context, store *GormStore) error {
				return store.WithTx(ctx, func(tx Tx) error {
					_, err := tx.GetTask(ctx, "t-1")
					return err
				})
			},
		},
		{
			name:  "read transaction does not lock",
			query: regexp.QuoteMeta(selectTask) + "$",
			run: func(ctx context.Context, store *GormStore) error {
				return store.WithReadTx(ctx, func(r Reader) error {
					_, err := r.GetTask(ctx, "t-1")
					return err
				})
			},
		},
		{
			name:  "plain read does not lock",
			query: regexp.QuoteMeta(selectTask) + "$",
			run: func(ctx context.Context, store *GormStore) error {
				_, err := store.GetTask(ctx, "t-1")
				return err
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := setupMockDB(t)
			store := NewGormStore(db, nil)

			inTx := !strings.HasPrefix(tt.name, "plain")
			if inTx {
				mock.ExpectBegin()
			}
			mock.ExpectQuery(tt.query).WithArgs("t-1", 1).WillReturnRows(taskRows())
			if inTx {
				mock.ExpectCommit()
			}

			require.NoError(t, tt.run(context.Background(), store))
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestGormStore_WithReadTx_SQLite(t *testing.T) {
	store := setupSQLiteStore(t, nil)
	ctx := context.Background()

	u := &models.User{Username: "dana", Email: "dana@example.com", ExternalAuthID: "ext-dana", Level: 1}
	require.NoError(t, store.CreateUser(ctx, u))

	var seen string
	require.NoError(t, store.WithReadTx(ctx, func(r Reader) error {
		got, err := r.GetUser(ctx, u.ID)
		if err != nil {
			return err
		}
		seen = got.Username
		return nil
	}))
	assert.Equal(t, "dana", seen)

	err := store.WithReadTx(ctx, func(r Reader) error {
		_, err := r.GetProject(ctx, "missing")
		return err
	})
	assert.True(t, models.IsNotFound(err))
}

func TestIsUniqueConstraintError(t *testing.T) {
	assert.False(t, isUniqueConstraintError(nil))
	assert.True(t, isUniqueConstraintError(errors.New("UNIQUE constraint failed: users.username")))
	assert.True(t, isUniqueConstraintError(errors.New(`ERROR: duplicate key value violates unique constraint "idx_users_email"`)))
	assert.False(t, isUniqueConstraintError(errors.New("connection reset")))
}

func TestGormStore_SQLiteContract(t *testing.T) {
	store := setupSQLiteStore(t, nil)
	ctx := context.Background()

	alice := &models.User{Username: "alice", Email: "alice@example.com", ExternalAuthID: "ext-a", Skills: []string{"Go", "SQL"}, Interests: []string{}, Level: 1}
	require.NoError(t, store.CreateUser(ctx, alice))
	require.NotEmpty(t, alice.ID)

	dup := &models.User{Username: "ALICE", Email: "other@example.com", ExternalAuthID: "ext-b", Level: 1}
	assert.True(t, models.IsConflict(store.CreateUser(ctx, dup)))

	got, err := store.GetUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Go", "SQL"}, got.Skills)

	byExt, err := store.GetUserByExternalAuthID(ctx, "ext-a")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, byExt.ID)

	project := &models.Project{Name: "Board", OwnerID: alice.ID, TeamMembers: []string{}}
	require.NoError(t, store.CreateProject(ctx, project))

	var ids []string
	for _, title := range []string{"first", "second", "third"} {
		task := &models.Task{ProjectID: project.ID, Title: title, Status: models.TaskStatusNotStarted, Priority: models.PriorityMedium, XPReward: 10}
		require.NoError(t, store.CreateTask(ctx, task))
		ids = append(ids, task.ID)
	}

	tasks, err := store.ListTasksByProject(ctx, project.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 3)
	for i := range tasks {
		assert.Equal(t, ids[i], tasks[i].ID)
	}

	tasks[1].Status = models.TaskStatusCompleted
	tasks[1].AssignedTo = &alice.ID
	require.NoError(t, store.UpdateTask(ctx, &tasks[1]))
	mine, err := store.ListTasksByAssignee(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, models.TaskStatusCompleted, mine[0].Status)

	require.NoError(t, store.DeleteTask(ctx, ids[0]))
	require.NoError(t, store.DeleteTask(ctx, ids[0]))
	_, err = store.GetTask(ctx, ids[0])
	assert.True(t, models.IsNotFound(err))

	assert.True(t, models.IsNotFound(store.UpdateMilestone(ctx, &models.Milestone{ID: "missing"})))

	projects, err := store.ListProjectsByUser(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, projects, 1)

	require.NoError(t, store.Ping(ctx))
}

func TestGormStore_WithTxRollsBack(t *testing.T) {
	store := setupSQLiteStore(t, nil)
	ctx := context.Background()

	u := &models.User{Username: "bob", Email: "bob@example.com", ExternalAuthID: "ext-bob", Level: 1}
	require.NoError(t, store.CreateUser(ctx, u))

	boom := errors.New("boom")
	err := store.WithTx(ctx, func(tx Tx) error {
		cur, err := tx.GetUser(ctx, u.ID)
		if err != nil {
			return err
		}
		cur.XP = 250
		if err := tx.UpdateUser(ctx, cur); err != nil {
			return err
		}
		return boom
	})
	assert.Error(t, err)

	got, err := store.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.XP)
}

func TestGormStore_CacheInvalidatedAfterCommit(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	defer mr.Close()
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = rdb.Close() }()

	c := cache.New(rdb)
	store := setupSQLiteStore(t, c)
	ctx := context.Background()

	u := &models.User{Username: "carol", Email: "carol@example.com", ExternalAuthID: "ext-carol", Level: 1}
	require.NoError(t, store.CreateUser(ctx, u))

	_, err = store.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, mr.Exists(cache.UserKey(u.ID)))

	require.NoError(t, store.WithTx(ctx, func(tx Tx) error {
		cur, err := tx.GetUser(ctx, u.ID)
		if err != nil {
			return err
		}
		cur.XP = 40
		return tx.UpdateUser(ctx, cur)
	}))
	found, err := c.GetJSON(ctx, cache.UserKey(u.ID), &models.User{})
	require.NoError(t, err)
	assert.False(t, found)

	got, err := store.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 40, got.XP)
}

func TestMonotonicClock(t *testing.T) {
	fixed := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c := &monotonicClock{now: func() time.Time { return fixed }}

	a, b := c.next(), c.next()
	assert.Equal(t, fixed, a)
	assert.Equal(t, time.Microsecond, b.Sub(a))
}
