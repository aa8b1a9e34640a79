// Package seed creates demo and fixture data through the application
// services, so seeded data obeys the same rules as API traffic. It is meant
// for development and tests only.
package seed

import (
	"context"
	"fmt"
	"strings"

	"collabnexus/internal/models"
	"collabnexus/internal/repository"
	"collabnexus/internal/service"

	"github.com/brianvoe/gofakeit/v6"
)

// SkillPool is the vocabulary generated users draw their skills from. It
// is kept small so that teammate matching finds overlaps in demo data.
var SkillPool = []string{
	"Go", "React", "TypeScript", "Node", "Python", "Rust", "SQL", "Postgres",
	"Docker", "Kubernetes", "Figma", "CSS", "GraphQL", "Redis", "Swift",
}

// InterestPool is the vocabulary generated users draw their interests from.
var InterestPool = []string{
	"open source", "gaming", "fintech", "education", "health", "music",
	"climate", "devtools", "ai", "hackathons",
}

// Factory builds domain entities with fake data and persists them via the
// services. Overrides run before validation.
type Factory struct {
	faker      *gofakeit.Faker
	users      *service.UserService
	projects   *service.ProjectService
	tasks      *service.TaskService
	milestones *service.MilestoneService
	reviews    *service.ReviewService
}

// NewFactory creates a Factory bound to store. A fixed seed makes the
// generated data reproducible.
func NewFactory(store repository.Store, seed int64) *Factory {
	return &Factory{
		faker:      gofakeit.New(seed),
		users:      service.NewUserService(store),
		projects:   service.NewProjectService(store),
		tasks:      service.NewTaskService(store),
		milestones: service.NewMilestoneService(store),
		reviews:    service.NewReviewService(store),
	}
}

// pick returns up to n distinct entries of pool.
func (f *Factory) pick(pool []string, n int) []string {
	shuffled := append([]string(nil), pool...)
	f.faker.ShuffleStrings(shuffled)
	if n > len(shuffled) {
		n = len(shuffled)
	}
	return shuffled[:n]
}

// CreateUser persists a user with a fake identity and 1-4 skills.
func (f *Factory) CreateUser(ctx context.Context, overrides ...func(*service.CreateUserInput)) (*models.User, error) {
	handle := fmt.Sprintf("%s%d", f.faker.Username(), f.faker.Number(100, 999))
	if len(handle) > 30 {
		handle = handle[:30]
	}
	in := service.CreateUserInput{
		Username:       handle,
		Email:          strings.ToLower(handle) + "@" + f.faker.DomainName(),
		ExternalAuthID: f.faker.UUID(),
		Skills:         f.pick(SkillPool, f.faker.Number(1, 4)),
		Interests:      f.pick(InterestPool, f.faker.Number(0, 3)),
	}
	for _, override := range overrides {
		override(&in)
	}
	return f.users.CreateUser(ctx, in)
}

// CreateProject persists a project owned by owner with the given members.
func (f *Factory) CreateProject(ctx context.Context, owner *models.User, members []string, overrides ...func(*service.CreateProjectInput)) (*models.Project, error) {
	desc := f.faker.HackerPhrase()
	in := service.CreateProjectInput{
		Name:        f.faker.AppName(),
		Description: &desc,
		OwnerID:     owner.ID,
		TeamMembers: members,
	}
	for _, override := range overrides {
		override(&in)
	}
	return f.projects.CreateProject(ctx, in)
}

// CreateTask persists a not-started task on project, optionally assigned.
func (f *Factory) CreateTask(ctx context.Context, project *models.Project, assignee *string, overrides ...func(*service.CreateTaskInput)) (*models.Task, error) {
	reward := f.faker.RandomInt([]int{5, 10, 15, 20, 25, 40, 50})
	priority := models.Priority(f.faker.RandomString([]string{"low", "medium", "high"}))
	in := service.CreateTaskInput{
		ProjectID:  project.ID,
		Title:      f.faker.Sentence(f.faker.Number(3, 6)),
		AssignedTo: assignee,
		Priority:   priority,
		XPReward:   &reward,
	}
	for _, override := range overrides {
		override(&in)
	}
	return f.tasks.CreateTask(ctx, in)
}

// MoveTask transitions a task to status through the regular update path,
// which awards XP on completion.
func (f *Factory) MoveTask(ctx context.Context, task *models.Task, status models.TaskStatus) (*models.Task, error) {
	return f.tasks.UpdateTask(ctx, task.ProjectID, task.ID, models.TaskPatch{Status: &status})
}

// CreateMilestone persists a milestone on project.
func (f *Factory) CreateMilestone(ctx context.Context, project *models.Project, completed bool) (*models.Milestone, error) {
	return f.milestones.CreateMilestone(ctx, service.CreateMilestoneInput{
		ProjectID:   project.ID,
		Title:       "Milestone: " + f.faker.BuzzWord(),
		IsCompleted: completed,
	})
}

// CreateReview persists a review of reviewee by reviewer on project.
func (f *Factory) CreateReview(ctx context.Context, project *models.Project, reviewerID, revieweeID string) (*models.Review, error) {
	return f.reviews.CreateReview(ctx, service.CreateReviewInput{
		ProjectID:  project.ID,
		ReviewerID: reviewerID,
		RevieweeID: revieweeID,
		Rating:     f.faker.Number(models.MinRating, models.MaxRating),
		Feedback:   f.faker.Sentence(f.faker.Number(6, 14)),
		Tags:       f.pick([]string{"reliable", "communicative", "fast", "thorough", "mentor", "creative"}, f.faker.Number(0, 2)),
	})
}
