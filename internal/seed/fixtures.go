package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"collabnexus/internal/models"
	"collabnexus/internal/repository"
	"collabnexus/internal/service"

	"gopkg.in/yaml.v3"
)

// Fixture is a hand-written data set. Users are referenced by username and
// projects by name.
type Fixture struct {
	Users    []UserFixture    `yaml:"users"`
	Projects []ProjectFixture `yaml:"projects"`
	Reviews  []ReviewFixture  `yaml:"reviews"`
}

type UserFixture struct {
	Username       string   `yaml:"username"`
	Email          string   `yaml:"email"`
	ExternalAuthID string   `yaml:"externalAuthId"`
	Skills         []string `yaml:"skills"`
	Interests      []string `yaml:"interests"`
}

type ProjectFixture struct {
	Name        string             `yaml:"name"`
	Description string             `yaml:"description"`
	Owner       string             `yaml:"owner"`
	Members     []string           `yaml:"members"`
	Tasks       []TaskFixture      `yaml:"tasks"`
	Milestones  []MilestoneFixture `yaml:"milestones"`
}

type TaskFixture struct {
	Title    string            `yaml:"title"`
	Assignee string            `yaml:"assignee"`
	Status   models.TaskStatus `yaml:"status"`
	Priority models.Priority   `yaml:"priority"`
	XPReward int               `yaml:"xpReward"`
}

type MilestoneFixture struct {
	Title     string `yaml:"title"`
	XPReward  int    `yaml:"xpReward"`
	Completed bool   `yaml:"completed"`
}

type ReviewFixture struct {
	Project  string   `yaml:"project"`
	Reviewer string   `yaml:"reviewer"`
	Reviewee string   `yaml:"reviewee"`
	Rating   int      `yaml:"rating"`
	Feedback string   `yaml:"feedback"`
	Tags     []string `yaml:"tags"`
}

// ParseFixture decodes a YAML fixture. Unknown keys are rejected.
func ParseFixture(r io.Reader) (*Fixture, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var fx Fixture
	if err := dec.Decode(&fx); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse fixture: %w", err)
	}
	return &fx, nil
}

// LoadFile parses the fixture at path and applies it to store.
func LoadFile(ctx context.Context, store repository.Store, path string) (*Summary, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open fixture: %w", err)
	}
	defer func() { _ = fh.Close() }()

	fx, err := ParseFixture(fh)
	if err != nil {
		return nil, err
	}
	return Apply(ctx, store, fx)
}

// Apply creates everything in fx through the services. Tasks with status
// completed are created open and then completed, which pays their assignee.
func Apply(ctx context.Context, store repository.Store, fx *Fixture) (*Summary, error) {
	users := service.NewUserService(store)
	projects := service.NewProjectService(store)
	tasks := service.NewTaskService(store)
	milestones := service.NewMilestoneService(store)
	reviews := service.NewReviewService(store)

	sum := &Summary{}
	userIDs := make(map[string]string, len(fx.Users))
	projectIDs := make(map[string]string, len(fx.Projects))

	userRef := func(name string) (string, error) {
		id, ok := userIDs[name]
		if !ok {
			return "", fmt.Errorf("fixture references unknown user %q", name)
		}
		return id, nil
	}

	for _, uf := range fx.Users {
		u, err := users.CreateUser(ctx, service.CreateUserInput{
			Username:       uf.Username,
			Email:          uf.Email,
			ExternalAuthID: uf.ExternalAuthID,
			Skills:         uf.Skills,
			Interests:      uf.Interests,
		})
		if err != nil {
			return sum, fmt.Errorf("user %q: %w", uf.Username, err)
		}
		userIDs[uf.Username] = u.ID
		sum.Users++
	}

	for _, pf := range fx.Projects {
		ownerID, err := userRef(pf.Owner)
		if err != nil {
			return sum, err
		}
		members := make([]string, 0, len(pf.Members))
		for _, m := range pf.Members {
			id, err := userRef(m)
			if err != nil {
				return sum, err
			}
			members = append(members, id)
		}

		in := service.CreateProjectInput{Name: pf.Name, OwnerID: ownerID, TeamMembers: members}
		if pf.Description != "" {
			in.Description = &pf.Description
		}
		p, err := projects.CreateProject(ctx, in)
		if err != nil {
			return sum, fmt.Errorf("project %q: %w", pf.Name, err)
		}
		projectIDs[pf.Name] = p.ID
		sum.Projects++

		for _, tf := range pf.Tasks {
			if err := applyTask(ctx, tasks, p.ID, tf, userRef); err != nil {
				return sum, fmt.Errorf("project %q task %q: %w", pf.Name, tf.Title, err)
			}
			sum.Tasks++
			if tf.Status == models.TaskStatusCompleted {
				sum.Completed++
			}
		}

		for _, mf := range pf.Milestones {
			in := service.CreateMilestoneInput{ProjectID: p.ID, Title: mf.Title, IsCompleted: mf.Completed}
			if mf.XPReward != 0 {
				in.XPReward = &mf.XPReward
			}
			if _, err := milestones.CreateMilestone(ctx, in); err != nil {
				return sum, fmt.Errorf("project %q milestone %q: %w", pf.Name, mf.Title, err)
			}
			sum.Milestones++
		}
	}

	for i, rf := range fx.Reviews {
		projectID, ok := projectIDs[rf.Project]
		if !ok {
			return sum, fmt.Errorf("review %d references unknown project %q", i, rf.Project)
		}
		reviewer, err := userRef(rf.Reviewer)
		if err != nil {
			return sum, err
		}
		reviewee, err := userRef(rf.Reviewee)
		if err != nil {
			return sum, err
		}
		if _, err := reviews.CreateReview(ctx, service.CreateReviewInput{
			ProjectID:  projectID,
			ReviewerID: reviewer,
			RevieweeID: reviewee,
			Rating:     rf.Rating,
			Feedback:   rf.Feedback,
			Tags:       rf.Tags,
		}); err != nil {
			return sum, fmt.Errorf("review %d: %w", i, err)
		}
		sum.Reviews++
	}

	return sum, nil
}

func applyTask(ctx context.Context, tasks *service.TaskService, projectID string, tf TaskFixture, userRef func(string) (string, error)) error {
	in := service.CreateTaskInput{ProjectID: projectID, Title: tf.Title, Priority: tf.Priority}
	if tf.Assignee != "" {
		id, err := userRef(tf.Assignee)
		if err != nil {
			return err
		}
		in.AssignedTo = &id
	}
	if tf.XPReward != 0 {
		in.XPReward = &tf.XPReward
	}

	task, err := tasks.CreateTask(ctx, in)
	if err != nil {
		return err
	}
	if tf.Status == "" || tf.Status == models.TaskStatusNotStarted {
		return nil
	}
	status := tf.Status
	_, err = tasks.UpdateTask(ctx, projectID, task.ID, models.TaskPatch{Status: &status})
	return err
}
