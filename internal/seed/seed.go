package seed

import (
	"context"
	"fmt"
	"log/slog"

	"collabnexus/internal/middleware"
	"collabnexus/internal/models"
	"collabnexus/internal/repository"
)

// Options controls the size of a demo data set.
type Options struct {
	Users           int
	Projects        int
	TasksPerProject int
	Seed            int64
}

// DefaultOptions is the data set used by SEED_DEMO_DATA.
var DefaultOptions = Options{Users: 12, Projects: 4, TasksPerProject: 8, Seed: 42}

// Summary counts what a seeding run created.
type Summary struct {
	Users      int `json:"users" yaml:"users"`
	Projects   int `json:"projects" yaml:"projects"`
	Tasks      int `json:"tasks" yaml:"tasks"`
	Completed  int `json:"completed" yaml:"completed"`
	Milestones int `json:"milestones" yaml:"milestones"`
	Reviews    int `json:"reviews" yaml:"reviews"`
}

const maxUserAttempts = 5

// Demo fills store with a generated team: users, projects with members, a
// board of tasks in mixed states and peer reviews. Tasks are completed
// through the task service, so users end up with matching XP.
func Demo(ctx context.Context, store repository.Store, opts Options) (*Summary, error) {
	if opts.Users < 2 || opts.Projects < 1 {
		return nil, fmt.Errorf("demo seed needs at least 2 users and 1 project, got %d/%d", opts.Users, opts.Projects)
	}

	f := NewFactory(store, opts.Seed)
	sum := &Summary{}

	users := make([]*models.User, 0, opts.Users)
	for len(users) < opts.Users {
		var (
			u   *models.User
			err error
		)
		for attempt := 0; attempt < maxUserAttempts; attempt++ {
			u, err = f.CreateUser(ctx)
			if !models.IsConflict(err) {
				break
			}
		}
		if err != nil {
			return sum, fmt.Errorf("seed user: %w", err)
		}
		users = append(users, u)
		sum.Users++
	}

	for i := 0; i < opts.Projects; i++ {
		owner := users[i%len(users)]
		team := teamFor(users, owner, f.faker.Number(1, 3))

		project, err := f.CreateProject(ctx, owner, ids(team))
		if err != nil {
			return sum, fmt.Errorf("seed project: %w", err)
		}
		sum.Projects++

		crew := append([]*models.User{owner}, team...)
		for j := 0; j < opts.TasksPerProject; j++ {
			var assignee *string
			if f.faker.Number(0, 4) > 0 {
				id := crew[f.faker.Number(0, len(crew)-1)].ID
				assignee = &id
			}
			task, err := f.CreateTask(ctx, project, assignee)
			if err != nil {
				return sum, fmt.Errorf("seed task: %w", err)
			}
			sum.Tasks++

			switch f.faker.Number(0, 2) {
			case 1:
				_, err = f.MoveTask(ctx, task, models.TaskStatusInProgress)
			case 2:
				_, err = f.MoveTask(ctx, task, models.TaskStatusCompleted)
				sum.Completed++
			}
			if err != nil {
				return sum, fmt.Errorf("seed task status: %w", err)
			}
		}

		if _, err := f.CreateMilestone(ctx, project, f.faker.Bool()); err != nil {
			return sum, fmt.Errorf("seed milestone: %w", err)
		}
		sum.Milestones++

		for _, member := range team {
			if _, err := f.CreateReview(ctx, project, owner.ID, member.ID); err != nil {
				return sum, fmt.Errorf("seed review: %w", err)
			}
			sum.Reviews++
		}
	}

	middleware.Logger.InfoContext(ctx, "demo data seeded",
		slog.Int("users", sum.Users),
		slog.Int("projects", sum.Projects),
		slog.Int("tasks", sum.Tasks),
		slog.Int("completed", sum.Completed),
	)
	return sum, nil
}

// teamFor picks up to n users other than owner, starting after the owner's
// position so that teams differ between projects.
func teamFor(users []*models.User, owner *models.User, n int) []*models.User {
	start := 0
	for i, u := range users {
		if u.ID == owner.ID {
			start = i + 1
			break
		}
	}
	team := make([]*models.User, 0, n)
	for k := 0; k < len(users) && len(team) < n; k++ {
		u := users[(start+k)%len(users)]
		if u.ID != owner.ID {
			team = append(team, u)
		}
	}
	return team
}

func ids(users []*models.User) []string {
	out := make([]string, len(users))
	for i, u := range users {
		out[i] = u.ID
	}
	return out
}
