package models

import (
	"slices"
	"time"
)

// Project groups tasks, milestones and reviews under one owner.
type Project struct {
	ID          string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Name        string    `gorm:"not null" json:"name"`
	Description *string   `json:"description"`
	OwnerID     string    `gorm:"index;not null;type:varchar(36)" json:"ownerId"`
	TeamMembers []string  `gorm:"serializer:json" json:"teamMembers"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (p *Project) Clone() *Project {
	if p == nil {
		return nil
	}
	c := *p
	c.Description = cloneString(p.Description)
	c.TeamMembers = cloneStrings(p.TeamMembers)
	return &c
}

// Involves reports whether userID owns the project or is on its team.
func (p *Project) Involves(userID string) bool {
	return p.OwnerID == userID || slices.Contains(p.TeamMembers, userID)
}

// ProjectProgress is a read-only completion snapshot of a project.
type ProjectProgress struct {
	ProjectID            string         `json:"projectId"`
	TotalTasks           int            `json:"totalTasks"`
	CompletedTasks       int            `json:"completedTasks"`
	CompletionPercentage int            `json:"completionPercentage"`
	Contributions        []Contribution `json:"contributions"`
}

// Contribution sums a user's completed work on one project.
type Contribution struct {
	UserID         string `json:"userId"`
	Username       string `json:"username"`
	TasksCompleted int    `json:"tasksCompleted"`
	XPEarned       int    `json:"xpEarned"`
}
