package progress

import (
	"testing"

	"collabnexus/internal/models"

	"github.com/stretchr/testify/assert"
)

func ptr[T any](v T) *T { return &v }

func names(known map[string]string) UsernameFunc {
	return func(id string) (string, bool) {
		name, ok := known[id]
		return name, ok
	}
}

func task(status models.TaskStatus, assignee string, reward int) models.Task {
	t := models.Task{Status: status, XPReward: reward}
	if assignee != "" {
		t.AssignedTo = ptr(assignee)
	}
	return t
}

func TestCompute_NoTasks(t *testing.T) {
	t.Parallel()

	got := Compute("p1", nil, names(nil))
	assert.Equal(t, "p1", got.ProjectID)
	assert.Equal(t, 0, got.TotalTasks)
	assert.Equal(t, 0, got.CompletedTasks)
	assert.Equal(t, 0, got.CompletionPercentage)
	assert.NotNil(t, got.Contributions)
	assert.Empty(t, got.Contributions)
}

func TestCompute_ThreeOfFour(t *testing.T) {
	t.Parallel()

	tasks := []models.Task{
		task(models.TaskStatusCompleted, "bob", 10),
		task(models.TaskStatusCompleted, "alice", 20),
		task(models.TaskStatusInProgress, "alice", 50),
		task(models.TaskStatusCompleted, "bob", 15),
	}
	got := Compute("p1", tasks, names(map[string]string{"alice": "Alice", "bob": "Bob"}))

	assert.Equal(t, 4, got.TotalTasks)
	assert.Equal(t, 3, got.CompletedTasks)
	assert.Equal(t, 75, got.CompletionPercentage)
	assert.Equal(t, []models.Contribution{
		{UserID: "bob", Username: "Bob", TasksCompleted: 2, XPEarned: 25},
		{UserID: "alice", Username: "Alice", TasksCompleted: 1, XPEarned: 20},
	}, got.Contributions)
}

func TestCompute_UnassignedAndUnknownUsers(t *testing.T) {
	t.Parallel()

	tasks := []models.Task{
		task(models.TaskStatusCompleted, "", 10),
		task(models.TaskStatusCompleted, "ghost", 10),
		task(models.TaskStatusNotStarted, "", 10),
	}
	got := Compute("p1", tasks, names(nil))

	assert.Equal(t, 2, got.CompletedTasks)
	assert.Equal(t, 67, got.CompletionPercentage)
	assert.Empty(t, got.Contributions)
}

func TestPercent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		part, whole, want int
	}{
		{0, 0, 0},
		{1, 3, 33},
		{2, 3, 67},
		{1, 8, 13},
		{1, 200, 1},
		{5, 5, 100},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Percent(tt.part, tt.whole), "%d/%d", tt.part, tt.whole)
	}
}
