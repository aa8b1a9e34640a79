package seed

import (
	"context"
	"strings"
	"testing"

	"collabnexus/internal/models"
	"collabnexus/internal/progression"
	"collabnexus/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDemo(t *testing.T) {
	t.Parallel()
	store := repository.NewMemoryStore()
	ctx := context.Background()

	sum, err := Demo(ctx, store, Options{Users: 6, Projects: 3, TasksPerProject: 5, Seed: 7})
	require.NoError(t, err)
	assert.Equal(t, 6, sum.Users)
	assert.Equal(t, 3, sum.Projects)
	assert.Equal(t, 15, sum.Tasks)
	assert.Equal(t, 3, sum.Milestones)

	counts := store.Counts()
	assert.Equal(t, 6, counts["users"])
	assert.Equal(t, 15, counts["tasks"])
	assert.Equal(t, sum.Reviews, counts["reviews"])

	users, err := store.ListUsers(ctx)
	require.NoError(t, err)
	earned := map[string]int{}
	projects, err := store.ListProjects(ctx)
	require.NoError(t, err)
	completed := 0
	for _, p := range projects {
		tasks, err := store.ListTasksByProject(ctx, p.ID)
		require.NoError(t, err)
		for _, task := range tasks {
			if !task.IsCompleted() {
				continue
			}
			completed++
			require.NotNil(t, task.CompletedAt)
			if task.AssignedTo != nil {
				earned[*task.AssignedTo] += task.XPReward
			}
		}
	}
	assert.Equal(t, sum.Completed, completed)
	for _, u := range users {
		assert.Equal(t, earned[u.ID], u.XP, "xp of %s equals rewards of their completed tasks", u.Username)
		assert.Equal(t, progression.LevelForXP(u.XP), u.Level)
	}
}

func TestDemo_RejectsTinyDataSet(t *testing.T) {
	t.Parallel()
	_, err := Demo(context.Background(), repository.NewMemoryStore(), Options{Users: 1, Projects: 1})
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	t.Parallel()
	store := repository.NewMemoryStore()
	ctx := context.Background()

	sum, err := LoadFile(ctx, store, "testdata/team.yml")
	require.NoError(t, err)
	assert.Equal(t, &Summary{Users: 3, Projects: 1, Tasks: 4, Completed: 2, Milestones: 1, Reviews: 1}, sum)

	grace, err := store.GetUserByUsername(ctx, "grace")
	require.NoError(t, err)
	assert.Equal(t, 70, grace.XP)

	ada, err := store.GetUserByExternalAuthID(ctx, "fb-ada")
	require.NoError(t, err)
	assert.Equal(t, 40, ada.XP)

	projects, err := store.ListProjectsByUser(ctx, ada.ID)
	require.NoError(t, err)
	require.Len(t, projects, 1)
	tasks, err := store.ListTasksByProject(ctx, projects[0].ID)
	require.NoError(t, err)
	require.Len(t, tasks, 4)
	assert.Equal(t, models.TaskStatusInProgress, tasks[2].Status)
	assert.Equal(t, models.TaskStatusNotStarted, tasks[3].Status)
}

func TestParseFixture_RejectsUnknownKeys(t *testing.T) {
	t.Parallel()
	_, err := ParseFixture(strings.NewReader("users:\n  - username: ada\n    password: hunter2\n"))
	assert.Error(t, err)
}

func TestApply_UnknownReferences(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		yaml string
	}{
		{"unknown owner", "projects:\n  - name: P\n    owner: ghost\n"},
		{"unknown assignee", "users:\n  - {username: ada, email: ada@example.com, externalAuthId: fb-ada}\nprojects:\n  - name: P\n    owner: ada\n    tasks:\n      - {title: T, assignee: ghost}\n"},
		{"unknown review project", "users:\n  - {username: ada, email: ada@example.com, externalAuthId: fb-ada}\nreviews:\n  - {project: Nope, reviewer: ada, reviewee: ada, rating: 3, feedback: ok}\n"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			fx, err := ParseFixture(strings.NewReader(tt.yaml))
			require.NoError(t, err)
			_, err = Apply(context.Background(), repository.NewMemoryStore(), fx)
			assert.Error(t, err)
		})
	}
}
